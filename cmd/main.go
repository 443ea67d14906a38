package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/config"
	"github.com/oksasatya/go-diagram-workspace/internal/container"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-diagram-workspace/internal/infrastructure/postgres"
	"github.com/oksasatya/go-diagram-workspace/internal/infrastructure/search"
	"github.com/oksasatya/go-diagram-workspace/internal/interface/middleware"
	"github.com/oksasatya/go-diagram-workspace/internal/router"
	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
	"github.com/oksasatya/go-diagram-workspace/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()
	if err := repos.Roles.EnsureDefaults(ctx); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	// Redis is optional: without it rate limits and the render cache are off.
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	jwtManager, err := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatalf("failed to init token service: %v", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRepositories(repos)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		if err := search.NewProjectIndex(es, cfg.ESProjectsIndex).EnsureIndex(ctx); err != nil {
			helpers.LogError(logger, "ensure search index failed, search falls back to the store", err, nil)
		} else {
			container.SetES(es)
		}
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq unavailable, welcome emails disabled", err, nil)
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:  cfg.CORSOrigins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(logger))
	}

	reg := router.NewRegistry(r)
	if err := router.InitModules(reg, router.DepsFromContainer()); err != nil {
		log.Fatalf("failed to init modules: %v", err)
	}
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// openStore connects the configured backend. The memory driver keeps
// everything in process and loses it on exit.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (container.Repositories, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is not persisted")
		s := memory.NewStore()
		return container.Repositories{
			Users:    s.Users(),
			Roles:    s.Roles(),
			Projects: s.Projects(),
			Pinger:   s,
		}, func() {}, nil
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return container.Repositories{}, nil, err
	}
	db := pginfra.OpenDB(pool)
	if err := pginfra.RunMigrations(db, cfg.MigrationsDir, logger); err != nil {
		_ = db.Close()
		pool.Close()
		return container.Repositories{}, nil, err
	}
	container.SetPGPool(pool)
	repos := container.Repositories{
		Users:    pginfra.NewUserRepository(db),
		Roles:    pginfra.NewRoleRepository(db),
		Projects: pginfra.NewProjectRepository(db),
		Pinger:   db,
	}
	return repos, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}
