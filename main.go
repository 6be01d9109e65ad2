package main

import (
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"

	"github.com/gracechapel/backend/biz/dal/model"
	"github.com/gracechapel/backend/biz/handler"
	"github.com/gracechapel/backend/biz/middleware"
	"github.com/gracechapel/backend/biz/router"
	"github.com/gracechapel/backend/biz/service"
	"github.com/gracechapel/backend/pkg/config"
	"github.com/gracechapel/backend/pkg/database"
	"github.com/gracechapel/backend/pkg/lock"
	"github.com/gracechapel/backend/pkg/mailer"
	pkgredis "github.com/gracechapel/backend/pkg/redis"
	"github.com/gracechapel/backend/pkg/storage/factory"
	"github.com/gracechapel/backend/pkg/thumbnail"
	"github.com/gracechapel/backend/pkg/validator"
)

func main() {
	// Secrets come from .env in development; absence is fine in production.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		hlog.Fatalf("load config: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		hlog.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&model.MediaAsset{}); err != nil {
		hlog.Fatalf("migrate: %v", err)
	}

	store, err := factory.New(cfg.Storage)
	if err != nil {
		hlog.Fatalf("init storage: %v", err)
	}
	hlog.Infof("storage backend: %s", store.Type())

	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			hlog.Fatalf("connect redis: %v", err)
		}
		writeLock := lock.New(client, "gracechapel:write_lock", 30*time.Second, 5*time.Second)
		middleware.InitWriteLock(writeLock)
		hlog.Info("distributed write lock enabled")
	}

	thumbs := thumbnail.NewFFmpegGenerator()
	if !thumbs.Available() {
		hlog.Warn("ffmpeg not found, video thumbnails disabled")
	}

	uploadPolicy := validator.NewUploadConfig(cfg.Upload.MaxSize, cfg.Upload.AllowedTypes)
	mediaSvc := service.NewService(db, store, thumbs, uploadPolicy)
	contactSvc := service.NewContactService(mailer.NewSMTPMailer(cfg.SMTP), cfg.Contact.Recipient)

	h := server.Default(server.WithHostPorts(cfg.Server.Address))
	h.Use(middleware.Recovery())
	h.Use(middleware.Logging())
	h.Use(middleware.CORS(&cfg.CORS))
	h.Use(middleware.Auth())

	router.RegisterMediaRoutes(h, handler.NewMediaHandler(mediaSvc))
	router.RegisterContactRoutes(h, handler.NewContactHandler(contactSvc))

	h.Spin()
}
