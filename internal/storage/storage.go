// Package storage defines the filesystem capability both pipelines operate through,
// together with the in-memory and go-billy backed adapters.
package storage

import (
	"context"
	"io/fs"
	"path"
	"time"
)

// ReadDirOptions controls a ReadDir listing.
type ReadDirOptions struct {
	// Recursive lists every entry at or below the directory instead of
	// only its immediate children.
	Recursive bool
}

// MkdirOptions controls directory creation.
type MkdirOptions struct {
	Recursive bool
}

// Storage is the capability every adapter must satisfy. Each method either
// returns a result or an error, never both.
type Storage interface {
	// Stat describes name. Anything that is not a regular file is treated
	// as a directory by callers.
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
	// ReadDir lists entries under name as slash-separated paths relative to
	// name. Entries may be files or directories.
	ReadDir(ctx context.Context, name string, opts ReadDirOptions) ([]string, error)
	// Mkdir creates name and, when recursive, any missing ancestors. Calling
	// it on an existing directory is not an error.
	Mkdir(ctx context.Context, name string, opts MkdirOptions) (string, error)
	// ReadFile returns the raw content of name. Missing files wrap fs.ErrNotExist.
	ReadFile(ctx context.Context, name string) ([]byte, error)
	// WriteFile creates or overwrites name. Parent directories are not
	// guaranteed to be created.
	WriteFile(ctx context.Context, name string, data []byte) error
}

// IsStorage reports whether v exposes the full Storage capability.
func IsStorage(v any) bool {
	if v == nil {
		return false
	}
	_, ok := v.(Storage)
	return ok
}

// IsFile reports whether info describes a regular file.
func IsFile(info fs.FileInfo) bool {
	return info != nil && info.Mode().IsRegular()
}

type fileInfo struct {
	name    string
	size    int64
	dir     bool
	modTime time.Time
}

// NewFileInfo returns a minimal fs.FileInfo for adapters whose backends have
// no native stat result.
func NewFileInfo(name string, size int64, dir bool, modTime time.Time) fs.FileInfo {
	return &fileInfo{name: path.Base(name), size: size, dir: dir, modTime: modTime}
}

func (f *fileInfo) Name() string       { return f.name }
func (f *fileInfo) Size() int64        { return f.size }
func (f *fileInfo) ModTime() time.Time { return f.modTime }
func (f *fileInfo) IsDir() bool        { return f.dir }
func (f *fileInfo) Sys() any           { return nil }

func (f *fileInfo) Mode() fs.FileMode {
	if f.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

func notExist(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

// Verify adapters satisfy Storage at compile time.
var (
	_ Storage = (*Memory)(nil)
	_ Storage = (*Billy)(nil)
)
