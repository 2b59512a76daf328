package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)

	ctx := context.Background()
	url, err := store.Put(ctx, "groups/g1/photo.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/media/groups/g1/photo.jpg", url)

	reader, err := store.Get(ctx, "groups/g1/photo.jpg")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(content))

	require.NoError(t, store.Delete(ctx, "groups/g1/photo.jpg"))

	_, err = store.Get(ctx, "groups/g1/photo.jpg")
	require.Error(t, err)

	// Deleting a missing object is a no-op.
	require.NoError(t, store.Delete(ctx, "groups/g1/photo.jpg"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Put(ctx, "../escape.txt", "text/plain", strings.NewReader("x"))
	require.Error(t, err)

	_, err = store.Get(ctx, "/etc/passwd")
	require.Error(t, err)
}
