package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirStore_Roundtrip(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := "%PDF-1.4 fake resume"
	require.NoError(t, s.Upload(ctx, "abc.pdf", strings.NewReader(content), int64(len(content)), "application/pdf"))

	rc, err := s.Download(ctx, "abc.pdf")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, content, string(b))

	require.NoError(t, s.Delete(ctx, "abc.pdf"))
	_, err = s.Download(ctx, "abc.pdf")
	require.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)

	// deleting a missing object is not an error
	require.NoError(t, s.Delete(ctx, "abc.pdf"))
}

func TestDirStore_RejectsTraversalKeys(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../evil", "a/b", `a\b`} {
		err := s.Upload(ctx, key, strings.NewReader("x"), 1, "text/plain")
		require.Error(t, err, "key %q should be rejected", key)
	}
}
