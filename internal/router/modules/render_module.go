package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-diagram-workspace/internal/interface/http"
	"github.com/oksasatya/go-diagram-workspace/internal/interface/middleware"
)

// RenderModule exposes the public POST /api/render endpoint.
type RenderModule struct {
	Handler *handlers.RenderHandler
	RDB     *redis.Client
}

func NewRenderModule(h *handlers.RenderHandler, rdb *redis.Client) *RenderModule {
	return &RenderModule{Handler: h, RDB: rdb}
}

func (m *RenderModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.POST("/render", rl, m.Handler.Render)
}
