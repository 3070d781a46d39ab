package localdisk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "pets/p1/a.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/pets/p1/a.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "pets", "p1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
}

func TestStore_PutKeepsKeysInsideDir(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "../../etc/evil.png", "image/png", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/etc/evil.png", url)

	_, err = os.Stat(filepath.Join(dir, "etc", "evil.png"))
	assert.NoError(t, err)
}
