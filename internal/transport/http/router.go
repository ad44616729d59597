package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avelichko/postboard/internal/handlers"
	authmw "github.com/avelichko/postboard/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	LikeHandler    *handlers.LikeHandler
	PostHandler    *handlers.PostHandler
	CommentHandler *handlers.CommentHandler
	SearchHandler  *handlers.SearchHandler
	RequireLogin   *authmw.RequireLogin
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewRequestValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(204) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(204) })

	login := d.RequireLogin.Middleware

	auth := e.Group("/auth")
	auth.POST("", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/auth", d.AuthHandler.WhoAmI, login)
	auth.GET("/basicinfo/:id", d.AuthHandler.BasicInfo)
	auth.POST("/changepassword", d.AuthHandler.ChangePassword, login)

	e.POST("/likes", d.LikeHandler.Toggle, login)

	posts := e.Group("/posts")
	posts.GET("", d.PostHandler.GetPosts, login)
	posts.GET("/byId/:id", d.PostHandler.GetPost)
	posts.GET("/byuserId/:id", d.PostHandler.GetPostsByUser)
	posts.POST("", d.PostHandler.CreatePost, login)
	posts.PUT("/title", d.PostHandler.UpdateTitle, login)
	posts.PUT("/postText", d.PostHandler.UpdateText, login)
	posts.DELETE("/:id", d.PostHandler.DeletePost, login)

	comments := e.Group("/comments")
	comments.GET("/:postId", d.CommentHandler.GetForPost)
	comments.POST("", d.CommentHandler.Create, login)
	comments.DELETE("/:id", d.CommentHandler.Delete, login)

	e.GET("/search", d.SearchHandler.Search)
}
