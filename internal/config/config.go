package config

import (
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

// StorageConfig holds S3-compatible object storage settings.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicBaseURL prefixes object keys to form the image URL stored with a measurement.
	// Empty means https://<bucket>.s3.<region>.amazonaws.com.
	PublicBaseURL string
	KeyPrefix     string
	// PresignTTLMin > 0 makes history responses carry presigned GET URLs for private buckets.
	PresignTTLMin int
}

// AuthConfig holds JWT signing settings.
type AuthConfig struct {
	SecretKey            string
	AccessTokenExpireMin int
}

// SegmenterConfig points at the model server that runs the segmentation network.
type SegmenterConfig struct {
	URL           string
	Mode          string // "instance" or "semantic"
	TimeoutSec    int
	MaxConcurrent int
}

// LeftoverConfig tunes the ratio computation.
type LeftoverConfig struct {
	LeftoverMinConfidence float64

	PlateClass    int
	LeftoverClass int

	MinPlateAreaRatio float64
	MinPlatePixels    int
	Border            int
	MaxSideTouch      float64
	TouchRatio        float64

	Weighted  bool
	DistTau   float64
	WeightEps float64
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port      string
	StaticDir string
	Timezone  string
	Database  DatabaseConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Segmenter SegmenterConfig
	Leftover  LeftoverConfig
	Log       LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:      getEnv("PORT", "8000"),
		StaticDir: getEnv("STATIC_DIR", "static"),
		Timezone:  getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", "leftover_db"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("S3_ENDPOINT", "s3.amazonaws.com"),
			AccessKey:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:        getEnv("S3_BUCKET_NAME", ""),
			Region:        getEnv("AWS_REGION", "ap-northeast-2"),
			UseSSL:        getEnvBool("S3_USE_SSL", true),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			KeyPrefix:     getEnv("STORAGE_KEY_PREFIX", "leftover-images"),
			PresignTTLMin: getEnvInt("STORAGE_PRESIGN_TTL_MIN", 0),
		},
		Auth: AuthConfig{
			SecretKey:            getEnv("SECRET_KEY", ""),
			AccessTokenExpireMin: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
		},
		Segmenter: SegmenterConfig{
			URL:           getEnv("SEGMENTER_URL", "http://localhost:8080"),
			Mode:          getEnv("SEGMENTER_MODE", "instance"),
			TimeoutSec:    getEnvInt("SEGMENTER_TIMEOUT_SEC", 30),
			MaxConcurrent: getEnvInt("SEGMENTER_MAX_CONCURRENT", 2),
		},
		Leftover: LeftoverConfig{
			LeftoverMinConfidence: getEnvFloat("LEFTOVER_MIN_CONFIDENCE", 0.4),
			PlateClass:            getEnvInt("LEFTOVER_PLATE_CLASS", 1),
			LeftoverClass:         getEnvInt("LEFTOVER_LEFTOVER_CLASS", 2),
			MinPlateAreaRatio:     getEnvFloat("LEFTOVER_MIN_PLATE_AREA_RATIO", 0.25),
			MinPlatePixels:        getEnvInt("LEFTOVER_MIN_PLATE_PIXELS", 5000),
			Border:                getEnvInt("LEFTOVER_BORDER_PX", 6),
			MaxSideTouch:          getEnvFloat("LEFTOVER_MAX_SIDE_TOUCH", 0.35),
			TouchRatio:            getEnvFloat("LEFTOVER_TOUCH_RATIO", 0.08),
			Weighted:              getEnvBool("LEFTOVER_WEIGHTED", true),
			DistTau:               getEnvFloat("LEFTOVER_DIST_TAU", 12),
			WeightEps:             getEnvFloat("LEFTOVER_WEIGHT_EPS", 0.08),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
	}
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

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
