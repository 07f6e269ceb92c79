package config

import (
	"fmt"
	"os"
	"strconv"
)

// 開発用のデフォルトシークレット。prodでは使わせない。
const (
	devJWTSecret     = "dev-jwt-secret-not-for-production"
	devEncryptionKey = "dev-encryption-key-not-for-production"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTSecret     string // JWT署名シークレット
	EncryptionKey string // 項目暗号化のマスターシークレット

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）
}

// IsProdはprod環境かどうか
func (c Config) IsProd() bool {
	return c.GoEnv == "prod" || c.GoEnv == "production"
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret:     os.Getenv("JWT_SECRET"),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	//シークレットはprodで未設定なら起動エラー（デフォルトに落とさない）
	if cfg.JWTSecret == "" {
		if cfg.IsProd() {
			return Config{}, fmt.Errorf("JWT_SECRET is required in prod")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.EncryptionKey == "" {
		if cfg.IsProd() {
			return Config{}, fmt.Errorf("ENCRYPTION_KEY is required in prod")
		}
		cfg.EncryptionKey = devEncryptionKey
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
