package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/resumehub/resumehub/handlers"
	"github.com/resumehub/resumehub/internal/config"
	"github.com/resumehub/resumehub/internal/database"
	"github.com/resumehub/resumehub/internal/mailer"
	"github.com/resumehub/resumehub/internal/resumes"
	"github.com/resumehub/resumehub/internal/sessions"
	"github.com/resumehub/resumehub/internal/storage"
	"github.com/resumehub/resumehub/internal/users"
	"github.com/resumehub/resumehub/pkg/logger"
	"github.com/resumehub/resumehub/pkg/metrics"
	"github.com/resumehub/resumehub/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s mongo=%v redis=%v sendgrid=%v minio=%v",
		cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Redis.Host != "",
		cfg.Email.SendGridAPIKey != "", os.Getenv("MINIO_ENDPOINT") != "")

	r := gin.New()

	// Lightweight CORS for the frontend; production deployments sit behind a
	// stricter proxy policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Redis is optional: it backs session revocation on logout and the
	// distributed rate limiter. Everything else works without it.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis unreachable (%s:%s), continuing without it: %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetRevocationClient(redisClient)
			logger.Infof("connected to redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimit(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	db := client.Database(cfg.MongoDB.Database)

	// Outbound email: SendGrid when configured, otherwise log-only so local
	// logins still surface the magic link.
	var mail mailer.Mailer
	if cfg.Email.SendGridAPIKey != "" {
		sg, err := mailer.NewSendGridMailer(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			logger.Fatalf("sendgrid setup failed: %v", err)
		}
		mail = sg
	} else {
		logger.Warn("SENDGRID_API_KEY not set, emails will be logged instead of sent")
		mail = mailer.NewLogMailer()
	}

	// Object storage: MinIO when configured, local directory otherwise.
	var store storage.ObjectStore
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		ms, err := storage.NewMinIOStore(mcfg)
		if err != nil {
			logger.Fatalf("minio setup failed: %v", err)
		}
		store = ms
		logger.Infof("storing resumes in MinIO bucket %q", mcfg.Bucket)
	} else {
		ds, err := storage.NewDirStore(cfg.Upload.Dir)
		if err != nil {
			logger.Fatalf("upload dir setup failed: %v", err)
		}
		store = ds
		logger.Infof("storing resumes under %s", cfg.Upload.Dir)
	}

	usersRepo := users.NewMongoRepository(db.Collection("users"))
	usersSvc := users.NewService(usersRepo, mail, cfg.Email.FrontendURL, cfg.JWT.MagicLinkTTL)

	resumesRepo := resumes.NewMongoRepository(db.Collection("resumes"))
	resumesSvc := resumes.NewService(resumesRepo, store, cfg.Upload.MaxBytes)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo":   client.Ping(c.Request.Context(), nil) == nil,
			"storage": store != nil,
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil && redisClient.Ping(c.Request.Context()).Err() == nil
		}
		ready := true
		for _, ok := range deps {
			if !ok {
				ready = false
			}
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	api := r.Group("/api")
	handlers.NewAuthHandler(cfg, usersSvc).Register(api)
	handlers.NewResumeHandler(cfg, resumesSvc, usersSvc, mail).Register(api)
	handlers.NewAdminHandler(cfg, usersSvc).Register(api)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting resumehub on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
