package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avelichko/postboard/internal/config"
	"github.com/avelichko/postboard/internal/es"
	"github.com/avelichko/postboard/internal/handlers"
	"github.com/avelichko/postboard/internal/logging"
	authmw "github.com/avelichko/postboard/internal/middleware/auth"
	loggingmw "github.com/avelichko/postboard/internal/middleware/logging"
	"github.com/avelichko/postboard/internal/mykafka"
	"github.com/avelichko/postboard/internal/tokens"
	httpserver "github.com/avelichko/postboard/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	codec := &tokens.Codec{
		Secret: []byte(configuration.JWT_SECRET),
		TTL:    configuration.TOKEN_TTL,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &handlers.AuthHandler{
			DB:              db,
			Codec:           codec,
			Producer:        prod,
			UniqueUsernames: configuration.UNIQUE_USERNAMES,
		},
		LikeHandler:    &handlers.LikeHandler{DB: db, Producer: prod},
		PostHandler:    &handlers.PostHandler{DB: db, Producer: prod, ES: esClient, Index: "post"},
		CommentHandler: &handlers.CommentHandler{DB: db, Producer: prod},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: "post"},
		RequireLogin:   authmw.NewRequireLogin(codec),
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("server started", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
