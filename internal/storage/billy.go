package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Billy implements Storage over any go-billy filesystem.
type Billy struct {
	bfs billy.Filesystem
}

// NewBilly wraps bfs.
func NewBilly(bfs billy.Filesystem) *Billy {
	return &Billy{bfs: bfs}
}

// NewLocal creates a Billy storage rooted at the given local directory.
// The directory must already exist.
func NewLocal(root string) (*Billy, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Billy{bfs: osfs.New(abs, osfs.WithBoundOS())}, nil
}

// safePath maps name onto a root-relative slash path and rejects any
// result that escapes the root. A leading "/" means the storage root.
func safePath(name string) (string, error) {
	cleaned := path.Clean(ToSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("storage: path escapes root: %s", name)
	}
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return ".", nil
	}
	return cleaned, nil
}

// Stat returns file metadata for name.
func (b *Billy) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := safePath(name)
	if err != nil {
		return nil, err
	}
	return b.bfs.Stat(p)
}

// ReadDir lists files and directories under name, sorted lexically within
// each directory.
func (b *Billy) ReadDir(ctx context.Context, name string, opts ReadDirOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base, err := safePath(name)
	if err != nil {
		return nil, err
	}
	if !opts.Recursive {
		infos, err := b.bfs.ReadDir(base)
		if err != nil {
			return nil, fmt.Errorf("storage: readdir %s: %w", name, err)
		}
		out := make([]string, len(infos))
		for i, info := range infos {
			out[i] = info.Name()
		}
		return out, nil
	}

	var out []string
	err = util.Walk(b.bfs, base, func(p string, _ fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := filepath.ToSlash(p)
		if base != "." {
			if rel == base {
				return nil
			}
			rel = strings.TrimPrefix(rel, base+"/")
		}
		if rel == "." || rel == "" {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: readdir %s: %w", name, err)
	}
	return out, nil
}

// Mkdir creates name and any missing parents.
func (b *Billy) Mkdir(ctx context.Context, name string, _ MkdirOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := safePath(name)
	if err != nil {
		return "", err
	}
	if err := b.bfs.MkdirAll(p, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir %s: %w", name, err)
	}
	return p, nil
}

// ReadFile returns the raw bytes of name.
func (b *Billy) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(b.bfs, p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// WriteFile creates or truncates name with data.
func (b *Billy) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := safePath(name)
	if err != nil {
		return err
	}
	if err := util.WriteFile(b.bfs, p, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}
