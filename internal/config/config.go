package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	DatabaseURL string
	RedisAddr   string

	OCRBackend  string
	OCREndpoint string
	OCRAPIKey   string
	ClaudeKey   string
	ClaudeModel string

	ImagingEndpoint string

	BlobBackend   string
	BlobLocalPath string
	S3Bucket      string
	S3Region      string
	S3PublicURL   string

	LogLevel string
	LogFile  string
}

func Load() *Config {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		OCRBackend:      getEnv("OCR_BACKEND", "off"),
		OCREndpoint:     getEnv("OCR_ENDPOINT", ""),
		OCRAPIKey:       getEnv("OCR_API_KEY", ""),
		ClaudeKey:       getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:     getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-20241022"),
		ImagingEndpoint: getEnv("IMAGING_ENDPOINT", ""),
		BlobBackend:     getEnv("BLOB_BACKEND", "local"),
		BlobLocalPath:   getEnv("BLOB_LOCAL_PATH", "/data/images"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3PublicURL:     getEnv("S3_PUBLIC_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
	}
}

// Validate reports missing required variables. The process must not start
// without them.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.OCRBackend {
	case "off":
	case "http":
		if c.OCREndpoint == "" || c.OCRAPIKey == "" {
			return fmt.Errorf("OCR_ENDPOINT and OCR_API_KEY are required when OCR_BACKEND=http")
		}
	case "claude":
		if c.ClaudeKey == "" {
			return fmt.Errorf("CLAUDE_API_KEY is required when OCR_BACKEND=claude")
		}
	default:
		return fmt.Errorf("unknown OCR_BACKEND %q", c.OCRBackend)
	}
	switch c.BlobBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
