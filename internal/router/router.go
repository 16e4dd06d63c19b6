package router

import (
	"net/http"

	"captionvote/internal/handlers"
	"captionvote/internal/middleware"
	"captionvote/internal/services"

	"github.com/gin-gonic/gin"
)

// Services are the dependencies the route table needs.
type Services struct {
	Auth    *services.AuthService
	Feed    *services.FeedService
	Votes   *services.VoteService
	PerPage int
}

// RegisterRoutes expects the sessions middleware to be installed on r already.
func RegisterRoutes(r *gin.Engine, svc Services) {
	r.Use(middleware.LoadUser(svc.Auth))

	authHandler := handlers.NewAuthHandler(svc.Auth)
	feedHandler := handlers.NewFeedHandler(svc.Feed, svc.PerPage)
	voteHandler := handlers.NewVoteHandler(svc.Votes)

	// Public Routes
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/login", authHandler.ShowLogin) // 登录页面
	r.POST("/login", authHandler.Login)    // 提交登录
	r.GET("/logout", authHandler.Logout)   // 退出登录

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/", feedHandler.Index)                      // caption 列表
		authorized.GET("/api/captions", feedHandler.List)           // caption 列表 (JSON)
		authorized.POST("/api/captions/:id/vote", voteHandler.Vote) // 投票 / 改票
	}
}
