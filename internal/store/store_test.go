package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/amaumene/imagesearch/internal/config"
	"github.com/amaumene/imagesearch/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func record(thumb string) models.FavoriteRecord {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return models.NewSearchItem(models.KindImage, thumb, "site", &ts).Record()
}

// backends returns every KeyValue implementation, each on fresh storage
func backends(t *testing.T) map[string]func(t *testing.T) KeyValue {
	return map[string]func(t *testing.T) KeyValue{
		"memory": func(t *testing.T) KeyValue {
			return NewMemoryKV()
		},
		"bolt": func(t *testing.T) KeyValue {
			kv, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = kv.Close() })
			return kv
		},
		"sqlite": func(t *testing.T) KeyValue {
			kv, err := OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
			if err != nil {
				t.Skipf("sqlite unavailable: %v", err)
			}
			t.Cleanup(func() { _ = kv.Close() })
			return kv
		},
	}
}

func TestKeyValue(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			ctx := context.Background()

			_, found, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, kv.Put(ctx, "k", "v1"))
			require.NoError(t, kv.Put(ctx, "k", "v2"))
			v, found, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "v2", v)

			require.NoError(t, kv.Update(ctx, "k", func(current string, found bool) (string, error) {
				assert.True(t, found)
				return current + "+", nil
			}))
			require.NoError(t, kv.Update(ctx, "fresh", func(current string, found bool) (string, error) {
				assert.False(t, found)
				assert.Empty(t, current)
				return "new", nil
			}))

			v, _, err = kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2+", v)
			v, _, err = kv.Get(ctx, "fresh")
			require.NoError(t, err)
			assert.Equal(t, "new", v)
		})
	}
}

func TestFavoritesStore(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			favorites := NewFavoritesStore(open(t), quietLogger())
			ctx := context.Background()

			records, err := favorites.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, records)

			a, b := record("https://a"), record("https://b")
			added, err := favorites.Add(ctx, a)
			require.NoError(t, err)
			assert.True(t, added)
			added, err = favorites.Add(ctx, b)
			require.NoError(t, err)
			assert.True(t, added)
			added, err = favorites.Add(ctx, a)
			require.NoError(t, err)
			assert.False(t, added)

			records, err = favorites.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, a.ID, records[0].ID)
			assert.Equal(t, b.ID, records[1].ID)
			require.NotNil(t, records[0].Timestamp)
			assert.True(t, records[0].Timestamp.Equal(*a.Timestamp))

			removed, err := favorites.RemoveByID(ctx, a.ID)
			require.NoError(t, err)
			assert.True(t, removed)
			removed, err = favorites.RemoveByID(ctx, a.ID)
			require.NoError(t, err)
			assert.False(t, removed)

			records, err = favorites.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, b.ID, records[0].ID)
		})
	}
}

func TestFavoritesCorruptBlobReadsEmpty(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			ctx := context.Background()
			require.NoError(t, kv.Put(ctx, FavoritesKey, `[{"id": "broken`))

			favorites := NewFavoritesStore(kv, quietLogger())
			records, err := favorites.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, records)

			// the next write replaces the corrupt blob
			added, err := favorites.Add(ctx, record("https://a"))
			require.NoError(t, err)
			assert.True(t, added)
			records, err = favorites.List(ctx)
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestFavoritesConcurrentAdds(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			favorites := NewFavoritesStore(open(t), quietLogger())
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := favorites.Add(ctx, record("https://item/"+string(rune('a'+i))))
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			records, err := favorites.List(ctx)
			require.NoError(t, err)
			assert.Len(t, records, 20)
		})
	}
}

func TestSQLiteConcurrentUpdatesAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.sqlite")
	first, err := OpenSQLite(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer first.Close()
	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	// two stores on one file behave like two sessions
	stores := []*FavoritesStore{
		NewFavoritesStore(first, quietLogger()),
		NewFavoritesStore(second, quietLogger()),
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := stores[i%2].Add(ctx, record("https://shared/"+string(rune('a'+i))))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := stores[0].List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestKeywordStore(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			keywords := NewKeywordStore(open(t))
			ctx := context.Background()

			_, found, err := keywords.Load(ctx)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, keywords.Save(ctx, "고양이"))
			require.NoError(t, keywords.Save(ctx, "cats"))
			kw, found, err := keywords.Load(ctx)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "cats", kw)
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	kv, err := OpenBolt(path)
	require.NoError(t, err)
	_, err = NewFavoritesStore(kv, quietLogger()).Add(ctx, record("https://a"))
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	kv, err = OpenBolt(path)
	require.NoError(t, err)
	defer kv.Close()

	records, err := NewFavoritesStore(kv, quietLogger()).List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	kv := NewMemoryKV()
	_, _, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)

	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "cancel.db"))
	require.NoError(t, err)
	defer bolt.Close()
	assert.ErrorIs(t, bolt.Put(ctx, "k", "v"), context.Canceled)
}

func TestOpenSelectsDriver(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StorageDriver: config.StorageBolt,
		BoltFile:      filepath.Join(dir, "imagesearch.db"),
	}

	kv, err := Open(cfg, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &BoltKV{}, kv)
	require.NoError(t, kv.Close())

	cfg.StorageDriver = "postgres"
	_, err = Open(cfg, quietLogger())
	assert.Error(t, err)
}
