package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// IdentityConfig holds settings for the external OAuth identity provider.
// BaseURL and JWTKey are mandatory: sessions cannot be verified without them,
// so their absence is fatal at startup rather than a request-time error.
type IdentityConfig struct {
	BaseURL     string
	JWTKey      string // PEM public key, or shared HMAC secret
	CookieName  string
	RedirectURL string // default post-login redirect
}

// UploadConfig holds the validation limits of the upload pipeline.
type UploadConfig struct {
	MaxFileSizeBytes int64
	MaxBulkDeleteIDs int
	MaxPreviewBytes  int64
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Identity IdentityConfig
	Upload   UploadConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "docvault"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Identity: IdentityConfig{
			BaseURL:     getEnv("IDENTITY_BASE_URL", ""),
			JWTKey:      getEnv("IDENTITY_JWT_KEY", ""),
			CookieName:  getEnv("IDENTITY_COOKIE_NAME", "dv_session"),
			RedirectURL: getEnv("IDENTITY_REDIRECT_URL", "/"),
		},
		Upload: UploadConfig{
			MaxFileSizeBytes: getEnvInt64("UPLOAD_MAX_FILE_SIZE_BYTES", 10*1024*1024),
			MaxBulkDeleteIDs: getEnvInt("UPLOAD_MAX_BULK_DELETE_IDS", 50),
			MaxPreviewBytes:  getEnvInt64("UPLOAD_MAX_PREVIEW_BYTES", 512*1024),
		},
	}
}

// Validate checks the settings that must be present before the server can
// serve any request at all.
func (c *AppConfig) Validate() error {
	if c.Identity.BaseURL == "" {
		return fmt.Errorf("IDENTITY_BASE_URL is required")
	}
	if c.Identity.JWTKey == "" {
		return fmt.Errorf("IDENTITY_JWT_KEY is required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
