package miniostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStore_Integration(t *testing.T) {
	s, err := New(Config{
		Endpoint:  envOr("TEST_MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: envOr("TEST_MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("TEST_MINIO_SECRET_KEY", "minioadmin"),
		Bucket:    "sheetmerge-test",
		Object:    fmt.Sprintf("data-%d.json", time.Now().UnixNano()),
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	require.NoError(t, s.EnsureBucket(ctx))

	set, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, set, "missing object loads as empty set")

	want := record.Set{
		record.New("sku", "X", "qty", 5),
		record.New("sku", "Y", "qty", nil),
	}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"sku", "qty"}, got[0].Keys())
	assert.Equal(t, "minio", s.Name())
}
