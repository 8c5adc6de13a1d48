package storage

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, ok, err := store.Read(ctx, "absent")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Write(ctx, "k", []byte(`[{"id":"1"}]`)))
	blob, ok, err := store.Read(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"1"}]`, string(blob))
}

func TestMemoryCopiesBlobs(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	src := []byte("abc")
	require.NoError(t, store.Write(ctx, "k", src))
	src[0] = 'x'

	blob, ok, err := store.Read(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", string(blob))
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFile(dir)
	require.NoError(t, err)

	_, ok, err := store.Read(ctx, "food-inventory-products")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Write(ctx, "food-inventory-products", []byte("[]")))
	blob, ok, err := store.Read(ctx, "food-inventory-products")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", string(blob))

	// Overwrite replaces, not appends.
	require.NoError(t, store.Write(ctx, "food-inventory-products", []byte(`[{"id":"a"}]`)))
	blob, ok, err = store.Read(ctx, "food-inventory-products")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"a"}]`, string(blob))
}

func TestFileSanitizesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "../escape/attempt", []byte("x")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "___escape_attempt.json", entries[0].Name())
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisWithClient(client, "freshtrack")

	_, ok, err := store.Read(ctx, "food-inventory-movements")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Write(ctx, "food-inventory-movements", []byte(`[]`)))
	blob, ok, err := store.Read(ctx, "food-inventory-movements")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", string(blob))

	stored, err := mr.Get("freshtrack:food-inventory-movements")
	require.NoError(t, err)
	require.Equal(t, "[]", stored)
}
