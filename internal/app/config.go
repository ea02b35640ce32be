package app

import (
	"github.com/roomloop/roomloop-backend/internal/platform/envutil"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type Config struct {
	Port         string
	Environment  string
	Version      string
	JWTSecretKey string
	RobotAPIKey  string
	GCSBucket    string
	CDNDomain    string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:         envutil.String("PORT", "8080"),
		Environment:  envutil.String("APP_ENV", "development"),
		Version:      envutil.String("APP_VERSION", "dev"),
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		RobotAPIKey:  envutil.String("ROBOT_API_KEY", ""),
		GCSBucket:    envutil.String("GCS_BUCKET", ""),
		CDNDomain:    envutil.String("CDN_DOMAIN", ""),
	}
	if cfg.RobotAPIKey == "" {
		log.Warn("ROBOT_API_KEY is not set; robot query endpoint will reject all callers")
	}
	return cfg
}
