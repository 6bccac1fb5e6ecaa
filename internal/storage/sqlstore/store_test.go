package sqlstore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/pagewright/internal/checksum"
	"github.com/starford/pagewright/internal/storage"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pagewright-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	var count int
	require.NoError(t, s.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count))
	assert.Zero(t, count)
}

func TestWriteAndRead(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.True(t, storage.IsStorage(s))
	require.NoError(t, s.WriteFile(ctx, `public\file1.html`, []byte("content1")))

	got, err := s.ReadFile(ctx, "/public/file1.html")
	require.NoError(t, err)
	assert.Equal(t, "content1", string(got))

	cs, err := s.Checksum(ctx, "public/file1.html")
	require.NoError(t, err)
	assert.Equal(t, checksum.Sum([]byte("content1")), cs)
}

func TestOverwrite(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteFile(ctx, "a.html", []byte("one")))
	require.NoError(t, s.WriteFile(ctx, "a.html", []byte("two")))

	got, err := s.ReadFile(ctx, "a.html")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	paths, err := s.Paths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html"}, paths)
}

func TestReadMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.ReadFile(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestReadDir(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, p := range []string{"/a/hello.md", "/a/world.md", "/a/b/foo.md", "/c/bar.md", "/ab/x.md"} {
		require.NoError(t, s.WriteFile(ctx, p, []byte(p)))
	}

	names, err := s.ReadDir(ctx, "a", storage.ReadDirOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.md", "world.md"}, names)

	names, err = s.ReadDir(ctx, "a", storage.ReadDirOptions{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b/foo.md", "hello.md", "world.md"}, names)
}

func TestStat(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteFile(ctx, "a/hello.md", []byte("# Hello")))

	info, err := s.Stat(ctx, "a/hello.md")
	require.NoError(t, err)
	assert.True(t, storage.IsFile(info))
	assert.EqualValues(t, 7, info.Size())

	info, err = s.Stat(ctx, "a")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	created, err := s.Mkdir(ctx, "a/new", storage.MkdirOptions{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, "/a/new", created)
}

func TestBinaryContent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	raw := []byte{0x00, 0xff, 0x10}

	require.NoError(t, s.WriteFile(ctx, "img.bin", raw))
	got, err := s.ReadFile(ctx, "img.bin")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}
