package auth

import (
	"net/http"

	"github.com/avelichko/postboard/internal/tokens"
	"github.com/labstack/echo/v4"
)

// HeaderName carries the raw signed token, no Bearer prefix.
const HeaderName = "accesstoken"

const ContextKey = "user"

type RequireLogin struct {
	Codec *tokens.Codec
}

func NewRequireLogin(codec *tokens.Codec) *RequireLogin {
	return &RequireLogin{Codec: codec}
}

func (m *RequireLogin) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(HeaderName)
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": tokens.ErrMissingToken.Error()})
		}

		claims, err := m.Codec.Verify(raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
		}

		c.Set(ContextKey, claims)
		return next(c)
	}
}

// ClaimsFrom returns the authenticated claims attached by Middleware.
func ClaimsFrom(c echo.Context) (*tokens.AccessClaims, bool) {
	claims, ok := c.Get(ContextKey).(*tokens.AccessClaims)
	return claims, ok
}
