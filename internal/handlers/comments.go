package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/avelichko/postboard/internal/middleware/auth"
	"github.com/avelichko/postboard/internal/models"
	"github.com/avelichko/postboard/internal/mykafka"
	"github.com/avelichko/postboard/internal/tokens"
)

type CommentHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *CommentHandler) GetForPost(c echo.Context) error {
	postID, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid post id")
	}

	comments := []models.Comment{}
	if err := h.DB.Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Create(c echo.Context) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, tokens.ErrMissingToken.Error())
	}

	var req struct {
		CommentBody string `json:"commentBody" validate:"required"`
		PostID      uint   `json:"PostId" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "commentBody and PostId are required")
	}

	comment := models.Comment{
		CommentBody: req.CommentBody,
		PostID:      req.PostID,
		Username:    claims.Username,
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "comment_events", comment.PostID, map[string]interface{}{
		"type":      "comment_created",
		"commentID": comment.ID,
		"postID":    comment.PostID,
		"username":  comment.Username,
	})

	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Comment{}, id).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "comment_events", uint(id), map[string]interface{}{
		"type":      "comment_deleted",
		"commentID": id,
	})

	return c.JSON(http.StatusOK, "DELETED SUCCESSFULLY")
}
