package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 上流クライアントには構築時に明示的に渡す（グローバル状態を持たない）。
type Config struct {
	// Hardcover API
	HardcoverToken  string
	HardcoverAPIURL string

	// Upstream fetch
	UpstreamTimeout time.Duration
	UpstreamMaxSize int64

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// defaultHardcoverAPIURL はHardcover GraphQL APIのデフォルトエンドポイント。
const defaultHardcoverAPIURL = "https://api.hardcover.app/v1/graphql"

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.HardcoverToken = os.Getenv("HARDCOVER_TOKEN")
	if cfg.HardcoverToken == "" {
		missing = append(missing, "HARDCOVER_TOKEN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.HardcoverAPIURL = getEnvString("HARDCOVER_API_URL", defaultHardcoverAPIURL)
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	cfg.UpstreamMaxSize = getEnvInt64("UPSTREAM_MAX_SIZE", 1048576)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
