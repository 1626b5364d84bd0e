package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageBolt   = "bolt"
	StorageSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Kakao search API
	KakaoAPIKey   string
	KakaoBaseURL  string
	Sort          models.Sort
	ImagePageSize int
	VideoPageSize int
	HTTPTimeout   time.Duration
	RateLimit     float64       // requests per second, 0 disables
	CacheTTL      time.Duration // 0 disables the response cache

	// Storage
	StorageDriver string
	BoltFile      string // $CONFIG_DIR/imagesearch.db
	SQLiteFile    string // $CONFIG_DIR/imagesearch.sqlite

	// Server
	ServerPort string

	// Logging and tracing
	LogLevel       string
	LogFormat      string
	TracingEnabled bool
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("KAKAO_BASE_URL", "https://dapi.kakao.com")
	v.SetDefault("SEARCH_SORT", string(models.SortAccuracy))
	v.SetDefault("IMAGE_PAGE_SIZE", models.DefaultImagePageSize)
	v.SetDefault("VIDEO_PAGE_SIZE", models.DefaultVideoPageSize)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 20)
	v.SetDefault("RATE_LIMIT_PER_SECOND", 10)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("STORAGE_DRIVER", StorageBolt)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("TRACING_ENABLED", false)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	configDir := v.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "imagesearch")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	sort, err := models.ParseSort(v.GetString("SEARCH_SORT"))
	if err != nil {
		return nil, fmt.Errorf("SEARCH_SORT: %w", err)
	}

	config := &Config{
		KakaoAPIKey:   v.GetString("KAKAO_API_KEY"),
		KakaoBaseURL:  v.GetString("KAKAO_BASE_URL"),
		Sort:          sort,
		ImagePageSize: v.GetInt("IMAGE_PAGE_SIZE"),
		VideoPageSize: v.GetInt("VIDEO_PAGE_SIZE"),
		HTTPTimeout:   time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		RateLimit:     v.GetFloat64("RATE_LIMIT_PER_SECOND"),
		CacheTTL:      time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,

		StorageDriver: v.GetString("STORAGE_DRIVER"),
		BoltFile:      filepath.Join(configDir, "imagesearch.db"),
		SQLiteFile:    filepath.Join(configDir, "imagesearch.sqlite"),

		ServerPort: v.GetString("SERVER_PORT"),

		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		TracingEnabled: v.GetBool("TRACING_ENABLED"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.KakaoAPIKey == "" {
		return fmt.Errorf("KAKAO_API_KEY is required")
	}
	if c.ImagePageSize < 1 || c.ImagePageSize > models.MaxImagePageSize {
		return fmt.Errorf("IMAGE_PAGE_SIZE must be between 1 and %d", models.MaxImagePageSize)
	}
	if c.VideoPageSize < 1 || c.VideoPageSize > models.MaxVideoPageSize {
		return fmt.Errorf("VIDEO_PAGE_SIZE must be between 1 and %d", models.MaxVideoPageSize)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must not be negative")
	}
	if c.StorageDriver != StorageBolt && c.StorageDriver != StorageSQLite {
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageBolt, StorageSQLite)
	}
	return nil
}
