// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// MongoDB設定
	MongoURI string // MongoDB接続URI
	MongoDB  string // 使用するデータベース名

	// セッション設定
	SessionSecret      string // セッションクッキー署名用の秘密鍵
	SessionMaxAgeHours int    // セッションの有効期間（時間）。0 ならブラウザセッション限り
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		MongoURI: getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGODB_DB", "auth-demo"),

		SessionSecret:      getEnv("SESSION_SECRET", "super-secret"),
		SessionMaxAgeHours: getEnvAsInt("SESSION_MAX_AGE_HOURS", 0),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
// ローカル開発ではデフォルト値で動きますが、releaseモードでは必須項目を厳格にチェックします。
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.MongoDB == "" {
		return fmt.Errorf("MONGODB_DB is required")
	}

	if c.GinMode == "release" {
		if c.SessionSecret == "" || c.SessionSecret == "super-secret" {
			return fmt.Errorf("SESSION_SECRET must be set to a non-default value in release mode")
		}
	}

	if c.SessionMaxAgeHours < 0 {
		return fmt.Errorf("SESSION_MAX_AGE_HOURS must not be negative")
	}

	return nil
}

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
// 0 の場合はブラウザ終了まで有効なセッションクッキーになります。
func (c *Config) SessionMaxAgeSeconds() int {
	return c.SessionMaxAgeHours * 60 * 60
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
