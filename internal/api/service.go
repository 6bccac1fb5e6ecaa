package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/starford/pagewright/internal/apperr"
	"github.com/starford/pagewright/internal/checksum"
	"github.com/starford/pagewright/internal/storage"
)

const indexPage = "index.html"

// Site serves the rendered output of a build from a storage.
type Site struct {
	store storage.Storage
	cwd   string
	ext   string
}

// NewSite creates a Site over the pages written under cwd with extension ext.
func NewSite(store storage.Storage, cwd, ext string) *Site {
	return &Site{store: store, cwd: storage.ToSlash(cwd), ext: ext}
}

// Page is one stored output file.
type Page struct {
	Key      string
	Content  []byte
	Checksum string
}

// Candidates returns the storage keys tried, in order, for a request path.
// "/" and paths ending in "/" map to an index page; extension-less paths
// map to the page extension first and to a directory index second.
func (s *Site) Candidates(urlPath string) []string {
	clean := strings.TrimPrefix(storage.Clean(urlPath), "/")
	if clean == "" {
		return []string{path.Join(s.cwd, indexPage)}
	}
	if strings.HasSuffix(urlPath, "/") {
		return []string{path.Join(s.cwd, clean, indexPage)}
	}
	if path.Ext(clean) != "" {
		return []string{path.Join(s.cwd, clean)}
	}
	return []string{
		path.Join(s.cwd, clean+s.ext),
		path.Join(s.cwd, clean, indexPage),
	}
}

// Page reads the first existing candidate for urlPath. A miss wraps
// apperr.ErrNotFound and the storage's fs.ErrNotExist.
func (s *Site) Page(ctx context.Context, urlPath string) (*Page, error) {
	var lastErr error
	for _, key := range s.Candidates(urlPath) {
		data, err := s.store.ReadFile(ctx, key)
		if err == nil {
			return &Page{Key: key, Content: data, Checksum: checksum.Sum(data)}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read page %s: %w", key, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s: %w", apperr.ErrNotFound, urlPath, lastErr)
}

// Pages lists every stored output file.
func (s *Site) Pages(ctx context.Context) ([]PageItem, error) {
	names, err := s.store.ReadDir(ctx, s.cwd, storage.ReadDirOptions{Recursive: true})
	if errors.Is(err, fs.ErrNotExist) {
		return []PageItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	items := make([]PageItem, 0, len(names))
	for _, name := range names {
		info, err := s.store.Stat(ctx, path.Join(s.cwd, name))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		if !storage.IsFile(info) {
			continue
		}
		items = append(items, PageItem{
			Path: name,
			URL:  "/" + strings.TrimSuffix(name, s.ext),
			Size: info.Size(),
		})
	}
	return items, nil
}
