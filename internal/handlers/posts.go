package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/avelichko/postboard/internal/middleware/auth"
	"github.com/avelichko/postboard/internal/models"
	"github.com/avelichko/postboard/internal/mykafka"
	"github.com/avelichko/postboard/internal/service/search"
	"github.com/avelichko/postboard/internal/tokens"
)

type PostHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

// GetPosts returns the whole feed plus the likes of the calling user, so
// the client can render which posts are already liked.
func (h *PostHandler) GetPosts(c echo.Context) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, tokens.ErrMissingToken.Error())
	}
	userID, err := claims.UserID()
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, err.Error())
	}

	var posts []models.Post
	if err := h.DB.Order("id ASC").Find(&posts).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	var liked []models.Like
	if err := h.DB.Where("user_id = ?", userID).Find(&liked).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"listOfPosts": posts,
		"likedPosts":  liked,
	})
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	var post models.Post
	if err := h.DB.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, http.StatusNotFound, "post not found")
		}
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	var posts []models.Post
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&posts).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, tokens.ErrMissingToken.Error())
	}
	userID, err := claims.UserID()
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, err.Error())
	}

	var req struct {
		Title    string `json:"title" validate:"required"`
		PostText string `json:"postText" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "title and postText are required")
	}

	post := models.Post{
		Title:    req.Title,
		PostText: req.PostText,
		Username: claims.Username,
		UserID:   userID,
	}
	if err := h.DB.Create(&post).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := search.IndexPost(ctx, h.ES, h.Index, &post); err != nil {
			c.Logger().Errorf("ES index error: %v", err)
		}
	}

	publish(c, h.Producer, "post_events", post.ID, map[string]interface{}{
		"type":   "post_created",
		"postID": post.ID,
		"userID": post.UserID,
		"title":  post.Title,
	})

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UpdateTitle(c echo.Context) error {
	var req struct {
		NewTitle string `json:"newTitle" validate:"required"`
		ID       uint   `json:"id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "newTitle and id are required")
	}

	if err := h.DB.Model(&models.Post{}).Where("id = ?", req.ID).
		Update("title", req.NewTitle).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "post_events", req.ID, map[string]interface{}{
		"type":   "post_updated",
		"postID": req.ID,
		"title":  req.NewTitle,
	})

	return c.JSON(http.StatusOK, req.NewTitle)
}

func (h *PostHandler) UpdateText(c echo.Context) error {
	var req struct {
		NewText string `json:"newText" validate:"required"`
		ID      uint   `json:"id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "newText and id are required")
	}

	if err := h.DB.Model(&models.Post{}).Where("id = ?", req.ID).
		Update("post_text", req.NewText).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "post_events", req.ID, map[string]interface{}{
		"type":   "post_updated",
		"postID": req.ID,
	})

	return c.JSON(http.StatusOK, req.NewText)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Post{}, id).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, "post_events", uint(id), map[string]interface{}{
		"type":   "post_deleted",
		"postID": id,
	})

	return c.JSON(http.StatusOK, "DELETED SUCCESSFULLY")
}
