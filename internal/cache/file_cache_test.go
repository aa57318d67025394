package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache_SetGet(t *testing.T) {
	fc := NewFileCache[[]string](t.TempDir(), 0, nil)
	key := fc.GenerateKey("noaa-goes16", "ABI-L2-CMIPF/2021/115/17/")

	_, ok := fc.Get(key)
	assert.False(t, ok)

	keys := []string{"a.nc", "b.nc"}
	require.NoError(t, fc.Set(key, keys))
	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, keys, got)
}

func TestFileCache_GenerateKeyStable(t *testing.T) {
	fc := NewFileCache[int](t.TempDir(), 0, nil)
	assert.Equal(t, fc.GenerateKey("x", 1), fc.GenerateKey("x", 1))
	assert.NotEqual(t, fc.GenerateKey("x", 1), fc.GenerateKey("x", 2))
	assert.Len(t, fc.GenerateKey("x"), 40)
}

func TestFileCache_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2021, 4, 25, 18, 0, 0, 0, time.UTC))
	fc := NewFileCache[string](t.TempDir(), time.Hour, clock)
	require.NoError(t, fc.Set("k", "v"))

	clock.Advance(30 * time.Minute)
	_, ok := fc.Get("k")
	assert.True(t, ok)

	clock.Advance(31 * time.Minute)
	_, ok = fc.Get("k")
	assert.False(t, ok)
}

func TestFileCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[string](dir, 0, nil)
	require.NoError(t, fc.Set("k", "v"))

	raw, err := os.ReadFile(filepath.Join(dir, "k.json"))
	require.NoError(t, err)
	tampered := []byte(string(raw[:len(raw)-2]) + "x}")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), tampered, 0644))

	_, ok := fc.Get("k")
	assert.False(t, ok)
}
