package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/roomloop/roomloop-backend/internal/clients/blur"
	"github.com/roomloop/roomloop-backend/internal/clients/redis"
	"github.com/roomloop/roomloop-backend/internal/platform/gcp"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type Clients struct {
	GcpBucket gcp.BucketService
	GcpVideo  gcp.Video
	Blur      blur.Client
	Cache     redis.Cache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := gcp.NewBucketService(log, cfg.GCSBucket, cfg.CDNDomain)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	video, err := gcp.NewVideo(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init video intelligence client: %w", err)
	}

	blurClient, err := blur.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init blur client: %w", err)
	}

	// Structure cache is optional; without redis reads go straight to
	// postgres.
	var cache redis.Cache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		c, err := redis.NewCache(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis cache: %w", err)
		}
		cache = c
	}

	return Clients{
		GcpBucket: bucket,
		GcpVideo:  video,
		Blur:      blurClient,
		Cache:     cache,
	}, nil
}
