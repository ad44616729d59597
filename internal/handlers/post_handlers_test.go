package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avelichko/postboard/internal/models"
)

func (env *testEnv) createPost(title, text, username string, userID uint) models.Post {
	post := models.Post{Title: title, PostText: text, Username: username, UserID: userID}
	require.NoError(env.T, env.DB.Create(&post).Error)
	return post
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/posts",
		map[string]string{"title": "First Post", "postText": "hello"})
	env.asUser(c, "test_user", 1)

	require.NoError(t, env.P.CreatePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "First Post", resp.Title)
	require.Equal(t, "hello", resp.PostText)
	require.Equal(t, "test_user", resp.Username)
	require.Equal(t, uint(1), resp.UserID)
	require.NotEmpty(t, resp.ID)
}

func TestCreatePostMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/posts", map[string]string{"title": "no text"})
	env.asUser(c, "test_user", 1)

	require.NoError(t, env.P.CreatePost(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPostsWithLikes(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost("First Post", "hello", "test_user", 1)
	env.createPost("Second Post", "world", "other_user", 2)
	require.NoError(t, env.DB.Create(&models.Like{UserID: 1, PostID: post.ID}).Error)
	require.NoError(t, env.DB.Create(&models.Like{UserID: 2, PostID: post.ID}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/posts", nil)
	env.asUser(c, "test_user", 1)

	require.NoError(t, env.P.GetPosts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ListOfPosts []models.Post `json:"listOfPosts"`
		LikedPosts  []models.Like `json:"likedPosts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ListOfPosts, 2)
	require.Len(t, resp.LikedPosts, 1, "only the caller's likes are returned")
	require.Equal(t, post.ID, resp.LikedPosts[0].PostID)
}

func TestGetPostByID(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost("First Post", "hello", "test_user", 1)

	rec, c := env.doJSONRequest(http.MethodGet, "/posts/byId/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, env.P.GetPost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, post.ID, resp.ID)
	require.Equal(t, "First Post", resp.Title)
}

func TestGetPostByIDNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/posts/byId/999", nil)
	c.SetParamNames("id")
	c.SetParamValues("999")

	require.NoError(t, env.P.GetPost(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPostsByUser(t *testing.T) {
	env := newTestEnv(t)
	env.createPost("First Post", "hello", "test_user", 1)
	env.createPost("Second Post", "world", "other_user", 2)
	env.createPost("Third Post", "again", "test_user", 1)

	rec, c := env.doJSONRequest(http.MethodGet, "/posts/byuserId/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, env.P.GetPostsByUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
}

func TestUpdateTitle(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost("First Post", "hello", "test_user", 1)

	rec, c := env.doJSONRequest(http.MethodPut, "/posts/title",
		map[string]interface{}{"newTitle": "Updated Title", "id": post.ID})
	env.asUser(c, "test_user", 1)

	require.NoError(t, env.P.UpdateTitle(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Updated Title", resp)

	var stored models.Post
	require.NoError(t, env.DB.First(&stored, post.ID).Error)
	require.Equal(t, "Updated Title", stored.Title)
}

func TestUpdateText(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost("First Post", "hello", "test_user", 1)

	rec, c := env.doJSONRequest(http.MethodPut, "/posts/postText",
		map[string]interface{}{"newText": "Updated Content", "id": post.ID})
	env.asUser(c, "test_user", 1)

	require.NoError(t, env.P.UpdateText(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Post
	require.NoError(t, env.DB.First(&stored, post.ID).Error)
	require.Equal(t, "Updated Content", stored.PostText)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost("First Post", "hello", "test_user", 1)

	rec, c := env.doJSONRequest(http.MethodDelete, "/posts/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	env.asUser(c, "test_user", 1)

	require.NoError(t, env.P.DeletePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "DELETED SUCCESSFULLY", resp)

	var count int64
	require.NoError(t, env.DB.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
