package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelichko/postboard/internal/config"
	"github.com/avelichko/postboard/internal/hash"
	authmw "github.com/avelichko/postboard/internal/middleware/auth"
	"github.com/avelichko/postboard/internal/models"
	"github.com/avelichko/postboard/internal/tokens"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	DB    *gorm.DB
	Codec *tokens.Codec
	A     *AuthHandler
	L     *LikeHandler
	P     *PostHandler
	C     *CommentHandler
}

func InitTestDB(t *testing.T, uniqueUsernames bool) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// a single connection keeps the in-memory database shared and
	// serializes transactions the way the production store does
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db, uniqueUsernames); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvUnique(t, true)
}

func newTestEnvUnique(t *testing.T, uniqueUsernames bool) *testEnv {
	db := InitTestDB(t, uniqueUsernames)
	codec := &tokens.Codec{Secret: []byte("test_secret"), TTL: time.Hour}

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	return &testEnv{
		T:     t,
		E:     e,
		DB:    db,
		Codec: codec,
		A:     &AuthHandler{DB: db, Codec: codec, UniqueUsernames: uniqueUsernames},
		L:     &LikeHandler{DB: db},
		P:     &PostHandler{DB: db},
		C:     &CommentHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, payload interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var body *bytes.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(bodyBytes)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)

	return rec, c
}

// asUser attaches verified claims the way the login middleware would.
func (env *testEnv) asUser(c echo.Context, username string, id uint) {
	c.Set(authmw.ContextKey, &tokens.AccessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatUint(uint64(id), 10),
		},
	})
}

func (env *testEnv) createUser(username, password string) models.User {
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{Username: username, PasswordHash: pwHash}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}
