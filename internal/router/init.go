package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/config"
	"github.com/oksasatya/go-diagram-workspace/internal/application"
	"github.com/oksasatya/go-diagram-workspace/internal/container"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/cache"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/plantuml"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/search"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-diagram-workspace/internal/interface/http"
	"github.com/oksasatya/go-diagram-workspace/internal/interface/middleware"
	"github.com/oksasatya/go-diagram-workspace/internal/router/modules"
	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
)

// Deps is everything InitModules needs. Optional collaborators stay nil
// (untyped) when their backend is not configured.
type Deps struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	Repos  container.Repositories
	Tokens *helpers.JWTManager
	Redis  *redis.Client

	Renderer    application.Renderer
	RenderCache application.RenderCache
	Index       application.ProjectIndexer
	Objects     application.ObjectStore
	Publisher   application.JobPublisher
}

// DepsFromContainer builds Deps from the process-wide singletons set in main.
func DepsFromContainer() Deps {
	cfg := container.GetConfig()
	d := Deps{
		Cfg:      cfg,
		Logger:   container.GetLogger(),
		Repos:    container.GetRepositories(),
		Tokens:   container.GetJWT(),
		Redis:    container.GetRedis(),
		Renderer: plantuml.NewRenderer(cfg.PlantUMLBin, cfg.RenderTimeout),
	}
	if rdb := container.GetRedis(); rdb != nil {
		d.RenderCache = cache.NewRenderCache(rdb, cfg.RenderCacheTTL)
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewProjectIndex(es, cfg.ESProjectsIndex)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Objects = storage.NewGCSExporter(gcs, cfg.GCSBucket)
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		d.Publisher = pub
	}
	return d
}

// InitModules builds services and handlers from d and registers every module.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, d Deps) error {
	auth, err := application.NewAuthService(d.Repos.Users, d.Repos.Roles, d.Cfg.BcryptCost, d.Logger)
	if err != nil {
		return err
	}
	auth.Publisher = d.Publisher
	auth.AppName = d.Cfg.AppName

	renderSvc := application.NewRenderService(d.Renderer, d.Cfg.RenderMaxSize, d.Logger)
	renderSvc.Cache = d.RenderCache

	projects := application.NewProjectService(d.Repos.Projects, d.Logger)
	projects.Index = d.Index
	projects.Render = renderSvc
	projects.Objects = d.Objects

	r.Use(
		middleware.Gate(d.Tokens, d.Repos.Users, d.Logger),
		middleware.Authorize(Policy),
	)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(auth, d.Tokens, d.Logger), d.Redis))
	r.Add(modules.NewProjectModule(handlers.NewProjectHandler(projects, d.Logger), d.Redis))
	r.Add(modules.NewRenderModule(handlers.NewRenderHandler(renderSvc, d.Logger), d.Redis))
	if d.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Redis))
	}
	r.AddRoot(modules.NewHealthModule(handlers.NewHealthHandler(d.Repos.Pinger, d.Logger)))
	return nil
}
