package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuknee/stock-profit-analyzer/internal/model"
)

func testEntry(t *testing.T) *model.CacheEntry {
	t.Helper()
	pts := []model.PricePoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("185.640015")},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("184.25")},
		{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("181.910004")},
	}
	series, err := model.NewPriceSeries("AAPL", pts)
	require.NoError(t, err)
	return &model.CacheEntry{
		Symbol:      "AAPL",
		Series:      series,
		RefreshedAt: time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	in := testEntry(t)
	data, err := EncodeEntry(in)
	require.NoError(t, err)

	out, err := DecodeEntry(data)
	require.NoError(t, err)
	assert.Equal(t, in.Symbol, out.Symbol)
	assert.True(t, in.RefreshedAt.Equal(out.RefreshedAt))
	assert.True(t, in.Series.Equal(out.Series))
	for i := 0; i < in.Series.Len(); i++ {
		assert.Equal(t, in.Series.At(i).Price.String(), out.Series.At(i).Price.String())
	}
}

func TestCodec_RejectsCorruptPayload(t *testing.T) {
	_, err := DecodeEntry([]byte("{not json"))
	assert.Error(t, err)

	_, err = DecodeEntry([]byte(`{"symbol":"X","points":[{"date":"2024-13-01","price":"1"}]}`))
	assert.Error(t, err)

	_, err = DecodeEntry([]byte(`{"symbol":"X","points":[{"date":"2024-01-01","price":"-1"}]}`))
	assert.Error(t, err)
}

// exerciseStore runs the contract every backend must meet.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "MISSING")
	require.ErrorIs(t, err, ErrNotFound)

	entry := testEntry(t)
	data, err := EncodeEntry(entry)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "AAPL", data))

	got, err := s.Get(ctx, "AAPL")
	require.NoError(t, err)
	decoded, err := DecodeEntry(got)
	require.NoError(t, err)
	assert.True(t, entry.Series.Equal(decoded.Series))

	require.NoError(t, s.Put(ctx, "AAPL", []byte(`replaced`)))
	got, err = s.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []byte(`replaced`), got)

	require.NoError(t, s.Delete(ctx, "AAPL"))
	_, err = s.Get(ctx, "AAPL")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "AAPL"))
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	t.Run("leaves no temp files behind", func(t *testing.T) {
		require.NoError(t, s.Put(context.Background(), "MSFT", []byte("x")))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "MSFT_cache.json", entries[0].Name())
	})

	t.Run("distinct keys never share a file", func(t *testing.T) {
		ctx := context.Background()
		keys := []string{"A_B", "A/B", `A\B`, "A..B", "A%2FB", ".."}
		for _, k := range keys {
			require.NoError(t, s.Put(ctx, k, []byte(k)))
		}
		for _, k := range keys {
			got, err := s.Get(ctx, k)
			require.NoError(t, err, "key %q", k)
			assert.Equal(t, []byte(k), got, "key %q", k)
		}
		for _, k := range keys {
			require.NoError(t, s.Delete(ctx, k))
		}
	})

	t.Run("survives reopen", func(t *testing.T) {
		reopened, err := NewFileStore(dir)
		require.NoError(t, err)
		got, err := reopened.Get(context.Background(), "MSFT")
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), got)
	})
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)

	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "NVDA", []byte("kept")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := NewRedisStore(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 15)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestNoopStore(t *testing.T) {
	s := NewNoopStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "AAPL", []byte("x")))
	_, err := s.Get(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		backend string
		name    string
	}{
		{"", "file"},
		{"file", "file"},
		{"sqlite", "sqlite"},
		{"memory", "memory"},
		{"none", "none"},
	}
	for _, tt := range tests {
		s, err := Open(ctx, Options{Backend: tt.backend, Dir: dir}, nil)
		require.NoError(t, err, "backend %q", tt.backend)
		assert.Equal(t, tt.name, s.Name())
		require.NoError(t, s.Close())
	}

	_, err := Open(ctx, Options{Backend: "etcd"}, nil)
	assert.Error(t, err)
}
