package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/starford/pagewright/internal/apperr"
	"github.com/starford/pagewright/internal/models"
	"github.com/starford/pagewright/internal/storage"
	"github.com/starford/pagewright/internal/testutil"
)

func TestRead_InvalidOptions(t *testing.T) {
	mem := storage.NewMemory(nil)

	tests := []struct {
		name string
		opts ReadOptions[models.Document]
	}{
		{"missing storage", ReadOptions[models.Document]{}},
		{"blank cwd", ReadOptions[models.Document]{FS: mem, Cwd: "   "}},
		{"empty pattern", ReadOptions[models.Document]{FS: mem, Pattern: []string{""}}},
		{"malformed pattern", ReadOptions[models.Document]{FS: mem, Pattern: []string{"[a-"}}},
		{"unclosed group", ReadOptions[models.Document]{FS: mem, Pattern: []string{"@(a|b"}}},
		{"unclosed negation", ReadOptions[models.Document]{FS: mem, Ignore: []string{"!(draft.md"}}},
		{"unclosed class after extglob", ReadOptions[models.Document]{FS: mem, Pattern: []string{"*(a)[b"}}},
		{"unclosed brace after extglob", ReadOptions[models.Document]{FS: mem, Pattern: []string{"+(a){b,c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Read(context.Background(), tt.opts)
			if !errors.Is(err, apperr.ErrInvalidOptions) {
				t.Fatalf("err = %v, want ErrInvalidOptions", err)
			}
			if seq != nil {
				t.Error("expected no sequence on invalid options")
			}
		})
	}
}

func TestRead_ParseRequiredForCustomType(t *testing.T) {
	type page struct{ Title string }

	_, err := Read(context.Background(), ReadOptions[page]{FS: storage.NewMemory(nil)})
	if !errors.Is(err, apperr.ErrInvalidOptions) {
		t.Fatalf("err = %v, want ErrInvalidOptions", err)
	}

	// any can hold a Document, so the default parser applies.
	if _, err := Read(context.Background(), ReadOptions[any]{FS: storage.NewMemory(nil)}); err != nil {
		t.Fatalf("Read[any]: %v", err)
	}
}

func TestRead_ValidationDoesNoIO(t *testing.T) {
	rec := testutil.NewRecorder(storage.NewMemory(nil))
	_, err := Read(context.Background(), ReadOptions[models.Document]{FS: rec, Pattern: []string{"*(x"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls := rec.Calls(); len(calls) != 0 {
		t.Errorf("storage touched during validation: %v", calls)
	}
}

func TestRead_ConfigErrorsBypassOnError(t *testing.T) {
	called := false
	_, err := Read(context.Background(), ReadOptions[models.Document]{
		OnError: func(err error) error {
			called = true
			return nil
		},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("OnError received a configuration error")
	}
}

func TestWrite_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts WriteOptions[models.Document]
	}{
		{"missing storage", WriteOptions[models.Document]{}},
		{"blank cwd", WriteOptions[models.Document]{FS: storage.NewMemory(nil), Cwd: "\t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Write(tt.opts)
			if !errors.Is(err, apperr.ErrInvalidOptions) {
				t.Fatalf("err = %v, want ErrInvalidOptions", err)
			}
			if fn != nil {
				t.Error("expected no write func on invalid options")
			}
		})
	}
}

func TestOptions_Defaults(t *testing.T) {
	rc, err := ReadOptions[models.Document]{FS: storage.NewMemory(nil)}.resolve()
	if err != nil {
		t.Fatal(err)
	}
	if rc.cwd != DefaultReadCwd || rc.logger == nil || rc.parse == nil {
		t.Errorf("read defaults not applied: %+v", rc)
	}
	if herr := rc.onError(errors.New("boom")); herr == nil {
		t.Error("default OnError swallowed the error")
	}

	wc, err := WriteOptions[models.Document]{FS: storage.NewMemory(nil), Cwd: `out\site`}.resolve()
	if err != nil {
		t.Fatal(err)
	}
	if wc.cwd != "out/site" {
		t.Errorf("cwd = %q, want out/site", wc.cwd)
	}
}

// mapFS is a map-typed adapter, valid even when it holds no files.
type mapFS map[string][]byte

func (m mapFS) Stat(_ context.Context, name string) (fs.FileInfo, error) {
	if data, ok := m[name]; ok {
		return storage.NewFileInfo(name, int64(len(data)), false, time.Time{}), nil
	}
	for k := range m {
		if strings.HasPrefix(k, name+"/") {
			return storage.NewFileInfo(name, 0, true, time.Time{}), nil
		}
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m mapFS) ReadDir(_ context.Context, name string, _ storage.ReadDirOptions) ([]string, error) {
	var out []string
	for k := range m {
		if rel, ok := strings.CutPrefix(k, name+"/"); ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m mapFS) Mkdir(_ context.Context, name string, _ storage.MkdirOptions) (string, error) {
	return name, nil
}

func (m mapFS) ReadFile(_ context.Context, name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m mapFS) WriteFile(_ context.Context, name string, data []byte) error {
	m[name] = data
	return nil
}

func TestOptions_EmptyMapStorageAccepted(t *testing.T) {
	empty := mapFS{}

	seq, err := Read(context.Background(), ReadOptions[models.Document]{FS: empty})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	n := 0
	for _, err := range seq {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n++
	}
	if n != 0 {
		t.Errorf("read %d documents from empty storage", n)
	}

	write, err := Write(WriteOptions[models.Document]{FS: empty})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	doc := models.Document{"url": "index", "content": "hi"}
	if err := write(context.Background(), doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := string(empty["public/index.html"]); got != "hi" {
		t.Errorf("public/index.html = %q, want hi", got)
	}
}
