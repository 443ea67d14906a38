package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-diagram-workspace/internal/interface/http"
	"github.com/oksasatya/go-diagram-workspace/internal/interface/middleware"
)

type ProjectModule struct {
	Handler *handlers.ProjectHandler
	RDB     *redis.Client
}

func NewProjectModule(h *handlers.ProjectHandler, rdb *redis.Client) *ProjectModule {
	return &ProjectModule{Handler: h, RDB: rdb}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByPrincipal(), nil))
	{
		projects.GET("", m.Handler.List)
		projects.POST("", m.Handler.Create)
		projects.GET("/search", m.Handler.Search)
		projects.GET("/:id", m.Handler.Get)
		projects.PUT("/:id", m.Handler.Update)
		projects.DELETE("/:id", m.Handler.Delete)
		// exports shell out to the renderer and upload, keep them scarce
		projects.POST("/:id/export", middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByPrincipal(), nil), m.Handler.Export)
	}
}
