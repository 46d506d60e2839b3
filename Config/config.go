package Config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// AppConfig holds runtime configuration loaded from the environment.
type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	DBPath         string
	JWTSecret      string
	AttachmentDir  string
	MaxUploadMB    int64
	AllowedOrigins string
}

var Cfg AppConfig

// Load reads .env if present and populates Cfg. Missing keys fall back to
// development defaults so the server can start on a fresh checkout.
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		zap.L().Info("no .env file found, using environment defaults")
	}

	Cfg = AppConfig{
		Port:          getEnv("PORT", "3001"),
		Env:           getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBPath:        getEnv("DB_PATH", "database.db"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		AttachmentDir: getEnv("ATTACHMENT_DIR", "VisitAttachments"),
		MaxUploadMB:   getEnvInt64("MAX_UPLOAD_MB", 5),
		// comma-separated list; the auth cookie needs credentialed CORS,
		// which rules out a wildcard origin
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		zap.L().Warn("invalid integer env value", zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return n
}
