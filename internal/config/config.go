package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/avelichko/postboard/internal/models"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DB_HOST          string
	DB_PORT          string
	DB_USER          string
	DB_PASSWORD      string
	DB_NAME          string
	ES_URL           string
	ES_USER          string
	ES_PASSWORD      string
	JWT_SECRET       string
	KAFKA_ADDRESS    string
	LOG_LEVEL        string
	TOKEN_TTL        time.Duration
	UNIQUE_USERNAMES bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:          os.Getenv("DB_HOST"),
		DB_PORT:          os.Getenv("DB_PORT"),
		DB_USER:          os.Getenv("DB_USER"),
		DB_PASSWORD:      os.Getenv("DB_PASSWORD"),
		DB_NAME:          os.Getenv("DB_NAME"),
		ES_URL:           os.Getenv("ES_URL"),
		ES_USER:          os.Getenv("ES_USER"),
		ES_PASSWORD:      os.Getenv("ES_PASSWORD"),
		JWT_SECRET:       os.Getenv("JWT_SECRET"),
		KAFKA_ADDRESS:    os.Getenv("KAFKA_ADDRESS"),
		LOG_LEVEL:        os.Getenv("LOG_LEVEL"),
		TOKEN_TTL:        24 * time.Hour,
		UNIQUE_USERNAMES: true,
	}

	if config.JWT_SECRET == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		config.TOKEN_TTL = ttl
	}

	if v := os.Getenv("UNIQUE_USERNAMES"); v != "" {
		unique, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid UNIQUE_USERNAMES %q: %w", v, err)
		}
		config.UNIQUE_USERNAMES = unique
	}

	return config, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	if err := Migrate(db, cfg.UNIQUE_USERNAMES); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB, uniqueUsernames bool) error {
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if uniqueUsernames {
		if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_unique ON users(username)").Error; err != nil {
			return fmt.Errorf("failed to create username index: %w", err)
		}
	}
	return nil
}
