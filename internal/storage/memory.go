package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"
	"unicode/utf8"
)

// Encoding names how an Entry's Content is stored.
type Encoding string

const (
	EncodingText   Encoding = "text"
	EncodingBase64 Encoding = "base64"
)

// Entry is one stored file of a Memory storage.
type Entry struct {
	Encoding Encoding `json:"encoding" yaml:"encoding"`
	Content  string   `json:"content" yaml:"content"`
}

// Text returns a plain text entry.
func Text(s string) Entry {
	return Entry{Encoding: EncodingText, Content: s}
}

// Binary returns a base64 encoded entry holding b.
func Binary(b []byte) Entry {
	return Entry{Encoding: EncodingBase64, Content: base64.StdEncoding.EncodeToString(b)}
}

// Bytes decodes the entry content.
func (e Entry) Bytes() ([]byte, error) {
	switch e.Encoding {
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(e.Content)
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
		return b, nil
	case EncodingText, "":
		return []byte(e.Content), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", e.Encoding)
	}
}

// Memory is a Storage backed by a flat path -> entry map. Directories are
// never stored; they are implied by the files beneath them.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory builds a Memory storage over entries. Every key is normalized
// with Clean and re-inserted under its normalized form, so the caller's map
// is re-keyed in place and keeps reflecting later writes.
func NewMemory(entries map[string]Entry) *Memory {
	if entries == nil {
		entries = make(map[string]Entry)
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n := Clean(k)
		if n == k {
			continue
		}
		e := entries[k]
		delete(entries, k)
		entries[n] = e
	}
	return &Memory{entries: entries}
}

// NewMemoryText builds a Memory storage from plain text contents.
func NewMemoryText(files map[string]string) *Memory {
	entries := make(map[string]Entry, len(files))
	for k, v := range files {
		entries[k] = Text(v)
	}
	return NewMemory(entries)
}

// Stat reports a file for an exact stored key and a directory otherwise.
func (m *Memory) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := Clean(name)
	m.mu.RLock()
	e, ok := m.entries[n]
	m.mu.RUnlock()
	if !ok {
		return NewFileInfo(n, 0, true, time.Time{}), nil
	}
	var size int64
	if b, err := e.Bytes(); err == nil {
		size = int64(len(b))
	}
	return NewFileInfo(n, size, false, time.Time{}), nil
}

// ReadDir lists stored keys under name, sorted lexically.
func (m *Memory) ReadDir(ctx context.Context, name string, opts ReadDirOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return Listed(Clean(name), keys, opts.Recursive), nil
}

// Mkdir acknowledges the normalized path. Directories are implicit.
func (m *Memory) Mkdir(ctx context.Context, name string, _ MkdirOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Clean(name), nil
}

// ReadFile returns the decoded content stored at name.
func (m *Memory) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := Clean(name)
	m.mu.RLock()
	e, ok := m.entries[n]
	m.mu.RUnlock()
	if !ok {
		return nil, notExist("open", n)
	}
	b, err := e.Bytes()
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", n, err)
	}
	return b, nil
}

// WriteFile upserts name. UTF-8 data is kept as text, anything else as base64.
func (m *Memory) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := Binary(data)
	if utf8.Valid(data) {
		e = Text(string(data))
	}
	m.mu.Lock()
	m.entries[Clean(name)] = e
	m.mu.Unlock()
	return nil
}

// Files returns a decoded snapshot of every stored file.
func (m *Memory) Files() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.entries))
	for k, e := range m.entries {
		b, err := e.Bytes()
		if err != nil {
			continue
		}
		out[k] = string(b)
	}
	return out
}

// Entries returns a copy of the raw stored entries.
func (m *Memory) Entries() map[string]Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Entry, len(m.entries))
	for k, e := range m.entries {
		out[k] = e
	}
	return out
}
