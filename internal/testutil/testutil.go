// Package testutil provides shared test helpers for setting up storages.
package testutil

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/pagewright/internal/storage"
	"github.com/starford/pagewright/internal/storage/sqlstore"
)

// TestDB creates a temporary SQLite store that is automatically closed.
func TestDB(t *testing.T) *sqlstore.Store {
	t.Helper()
	st, err := sqlstore.Open(filepath.Join(t.TempDir(), "pagewright-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestSite creates a temporary site directory wrapped by a local storage.
func TestSite(t *testing.T) (string, *storage.Billy) {
	t.Helper()
	dir := t.TempDir()
	st, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, st
}

// Call records one storage operation made through a Recorder.
type Call struct {
	Op   string
	Path string
}

// Recorder wraps a storage, records every call and lets tests replace
// individual operations.
type Recorder struct {
	storage.Storage

	StatFunc      func(ctx context.Context, name string) (fs.FileInfo, error)
	ReadDirFunc   func(ctx context.Context, name string, opts storage.ReadDirOptions) ([]string, error)
	MkdirFunc     func(ctx context.Context, name string, opts storage.MkdirOptions) (string, error)
	ReadFileFunc  func(ctx context.Context, name string) ([]byte, error)
	WriteFileFunc func(ctx context.Context, name string, data []byte) error

	mu    sync.Mutex
	calls []Call
}

// NewRecorder wraps next.
func NewRecorder(next storage.Storage) *Recorder {
	return &Recorder{Storage: next}
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the paths passed to op.
func (r *Recorder) CallsTo(op string) []string {
	var out []string
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c.Path)
		}
	}
	return out
}

func (r *Recorder) record(op, name string) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, Path: name})
	r.mu.Unlock()
}

func (r *Recorder) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	r.record("stat", name)
	if r.StatFunc != nil {
		return r.StatFunc(ctx, name)
	}
	return r.Storage.Stat(ctx, name)
}

func (r *Recorder) ReadDir(ctx context.Context, name string, opts storage.ReadDirOptions) ([]string, error) {
	r.record("readdir", name)
	if r.ReadDirFunc != nil {
		return r.ReadDirFunc(ctx, name, opts)
	}
	return r.Storage.ReadDir(ctx, name, opts)
}

func (r *Recorder) Mkdir(ctx context.Context, name string, opts storage.MkdirOptions) (string, error) {
	r.record("mkdir", name)
	if r.MkdirFunc != nil {
		return r.MkdirFunc(ctx, name, opts)
	}
	return r.Storage.Mkdir(ctx, name, opts)
}

func (r *Recorder) ReadFile(ctx context.Context, name string) ([]byte, error) {
	r.record("readfile", name)
	if r.ReadFileFunc != nil {
		return r.ReadFileFunc(ctx, name)
	}
	return r.Storage.ReadFile(ctx, name)
}

func (r *Recorder) WriteFile(ctx context.Context, name string, data []byte) error {
	r.record("writefile", name)
	if r.WriteFileFunc != nil {
		return r.WriteFileFunc(ctx, name, data)
	}
	return r.Storage.WriteFile(ctx, name, data)
}
