// Package config はサーバー全体の設定を環境変数（と任意の.envファイル）から読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ServerConfig はHTTPサーバーとバックグラウンドジョブの設定です。
type ServerConfig struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	JWTSecret     string        `envconfig:"JWT_SECRET"`
	JWTExpiration time.Duration `envconfig:"JWT_EXPIRATION" default:"24h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
}

// Addr はgin.Runに渡すリッスンアドレスを返します。
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

// LoadDotEnv はカレントディレクトリの.envを読み込みます。ファイルが無い場合は何もしません。
// 既に設定済みの環境変数は上書きしません。
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
		slog.Info("loaded env file", "file", f)
	}
	return nil
}

// LoadServerConfig は環境変数からServerConfigを読み込みます。
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("load server config: %w", err)
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; authenticated routes will answer 500")
	}
	if cfg.SweepInterval <= 0 {
		return ServerConfig{}, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	return cfg, nil
}
