package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avelichko/postboard/internal/hash"
	authmw "github.com/avelichko/postboard/internal/middleware/auth"
	"github.com/avelichko/postboard/internal/models"
	"github.com/avelichko/postboard/internal/mykafka"
	"github.com/avelichko/postboard/internal/tokens"
)

type AuthHandler struct {
	DB              *gorm.DB
	Codec           *tokens.Codec
	Producer        *mykafka.Producer
	UniqueUsernames bool
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "username and password are required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if h.UniqueUsernames && errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorJSON(c, http.StatusConflict, "user already exists")
		}
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "user_events", user.ID, map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, "SUCCESS")
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "username and password are required")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return errorJSON(c, http.StatusUnauthorized, "wrong username and password combination")
	}

	token, err := h.Codec.Sign(user.Username, user.ID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "user_events", user.ID, map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"token":    token,
		"username": user.Username,
		"id":       user.ID,
	})
}

// WhoAmI echoes the verified claims back to the caller.
func (h *AuthHandler) WhoAmI(c echo.Context) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, tokens.ErrMissingToken.Error())
	}
	id, err := claims.UserID()
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"username": claims.Username,
		"id":       id,
	})
}

func (h *AuthHandler) BasicInfo(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, tokens.ErrMissingToken.Error())
	}

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "oldPassword and newPassword are required")
	}

	// The stored digest doubles as an optimistic version token: the write only
	// lands if the digest is still the one the old password was verified
	// against, so concurrent changes for the same username cannot interleave
	// verify and write. A lost race re-verifies against the new digest.
	for attempt := 0; attempt < 3; attempt++ {
		var user models.User
		if err := h.DB.Where("username = ?", claims.Username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorJSON(c, http.StatusNotFound, "user not found")
			}
			return errorJSON(c, http.StatusInternalServerError, err.Error())
		}

		if !hash.CheckPassword(user.PasswordHash, req.OldPassword) {
			return errorJSON(c, http.StatusUnauthorized, "wrong password entered")
		}

		newHash, err := hash.HashPassword(req.NewPassword)
		if err != nil {
			return errorJSON(c, http.StatusInternalServerError, err.Error())
		}

		res := h.DB.Model(&models.User{}).
			Where("username = ? AND password_hash = ?", claims.Username, user.PasswordHash).
			Update("password_hash", newHash)
		if res.Error != nil {
			return errorJSON(c, http.StatusInternalServerError, res.Error.Error())
		}
		if res.RowsAffected > 0 {
			publish(c, h.Producer, "user_events", user.ID, map[string]interface{}{
				"type":     "password_changed",
				"userID":   user.ID,
				"username": claims.Username,
			})
			return c.JSON(http.StatusOK, "SUCCESS")
		}
	}

	return errorJSON(c, http.StatusConflict, "concurrent password change, try again")
}
