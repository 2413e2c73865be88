package main

import (
	"context"
	"time"

	"anoa.com/jobboard/internal/bootstrap"
	"anoa.com/jobboard/internal/config"
	"anoa.com/jobboard/internal/server"
	"anoa.com/jobboard/pkg/database"
	"anoa.com/jobboard/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if err := bootstrap.SeedAdminUser(db, log, cfg.AdminSeedEmail, cfg.AdminSeedPassword); err != nil {
		log.WithError(err).Fatal("failed to seed admin user")
	}

	redisClient := connectRedis(cfg.RedisURL, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}
	defer srv.Close()

	log.WithField("port", cfg.Port).Info("server starting")
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Error("server exited with error")
	}
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; the server
// runs without rate limits and live updates in that case.
func connectRedis(url string, log *logrus.Logger) *redis.Client {
	if url == "" {
		log.Warn("REDIS_URL not set, rate limiting and live updates disabled")
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.WithError(err).Warn("invalid REDIS_URL, rate limiting and live updates disabled")
		return nil
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, rate limiting and live updates disabled")
		_ = client.Close()
		return nil
	}

	log.Info("connected to redis")
	return client
}
