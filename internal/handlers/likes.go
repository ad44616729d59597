package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avelichko/postboard/internal/logging"
	authmw "github.com/avelichko/postboard/internal/middleware/auth"
	"github.com/avelichko/postboard/internal/models"
	"github.com/avelichko/postboard/internal/mykafka"
	"github.com/avelichko/postboard/internal/tokens"
)

type LikeHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// Toggle flips the (user, post) like. There is no read-then-write window:
// the delete either removes the row, or the insert runs and the composite
// unique index resolves races. A duplicate-key conflict means a concurrent
// toggle already created the like, which converges to liked=true.
func (h *LikeHandler) Toggle(c echo.Context) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, tokens.ErrMissingToken.Error())
	}
	userID, err := claims.UserID()
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, err.Error())
	}

	var req struct {
		PostID uint `json:"PostId" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "PostId is required")
	}

	var liked bool
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, req.PostID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		like := models.Like{UserID: userID, PostID: req.PostID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// a concurrent toggle created the like first
				logging.FromContext(c.Request().Context()).
					Info("like toggle converged", "userID", userID, "postID", req.PostID)
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	if txErr != nil {
		return errorJSON(c, http.StatusInternalServerError, txErr.Error())
	}

	eventType := "post_unliked"
	if liked {
		eventType = "post_liked"
	}
	publish(c, h.Producer, "like_events", userID, map[string]interface{}{
		"type":   eventType,
		"userID": userID,
		"postID": req.PostID,
	})

	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}
