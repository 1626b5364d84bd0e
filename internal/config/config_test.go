package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper(t *testing.T) *viper.Viper {
	v := viper.New()
	v.Set("KAKAO_API_KEY", "key")
	v.Set("CONFIG_DIR", t.TempDir())
	return v
}

func TestDefaults(t *testing.T) {
	v := baseViper(t)
	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "https://dapi.kakao.com", cfg.KakaoBaseURL)
	assert.Equal(t, models.SortAccuracy, cfg.Sort)
	assert.Equal(t, 80, cfg.ImagePageSize)
	assert.Equal(t, 15, cfg.VideoPageSize)
	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10.0, cfg.RateLimit)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, StorageBolt, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TracingEnabled)

	dir := v.GetString("CONFIG_DIR")
	assert.Equal(t, filepath.Join(dir, "imagesearch.db"), cfg.BoltFile)
	assert.Equal(t, filepath.Join(dir, "imagesearch.sqlite"), cfg.SQLiteFile)
}

func TestOverrides(t *testing.T) {
	v := baseViper(t)
	v.Set("SEARCH_SORT", "recency")
	v.Set("VIDEO_PAGE_SIZE", 30)
	v.Set("STORAGE_DRIVER", "sqlite")
	v.Set("CACHE_TTL_SECONDS", 0)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, models.SortRecency, cfg.Sort)
	assert.Equal(t, 30, cfg.VideoPageSize)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Zero(t, cfg.CacheTTL)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"missing key", "KAKAO_API_KEY", ""},
		{"image size too big", "IMAGE_PAGE_SIZE", 81},
		{"video size too big", "VIDEO_PAGE_SIZE", 31},
		{"video size zero", "VIDEO_PAGE_SIZE", 0},
		{"bad sort", "SEARCH_SORT", "popular"},
		{"bad driver", "STORAGE_DRIVER", "postgres"},
		{"negative rate", "RATE_LIMIT_PER_SECOND", -1},
		{"zero timeout", "HTTP_TIMEOUT_SECONDS", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := baseViper(t)
			v.Set(tt.key, tt.value)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}
