package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/aidemo/internal/handlers"
)

func registerPortfolioRoutes(r *gin.RouterGroup, portfolio *handlers.PortfolioHandler, csrf gin.HandlerFunc) {
	pages := r.Group("")
	pages.Use(csrf)
	{
		pages.GET("", portfolio.Project)
		pages.GET("name_generator", portfolio.NameGeneratorForm)
		pages.POST("name_generator", portfolio.NameGenerator)
		pages.GET("blog", portfolio.Blog)
	}

	posts := r.Group("api/posts")
	{
		posts.GET("", portfolio.ListPosts)
		posts.GET("/:id", portfolio.GetPost)
	}
}
