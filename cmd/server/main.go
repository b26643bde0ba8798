package main

import (
	"anoa.com/yamdb/internal/bootstrap"
	"anoa.com/yamdb/internal/config"
	"anoa.com/yamdb/internal/server"
	"anoa.com/yamdb/pkg/database"
	"anoa.com/yamdb/pkg/logger"
	"anoa.com/yamdb/pkg/metrics"
	"anoa.com/yamdb/pkg/validator"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Init()
	validator.Register()

	db, err := database.Connect(cfg.Database, cfg.AppEnv)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Warnf("redis unavailable, rate limits are disabled: %v", err)
		redisClient = nil
	}

	srv, err := server.NewServer(cfg, db, redisClient, server.Options{})
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	log.Infof("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
