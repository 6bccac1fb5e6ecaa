package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/starford/pagewright/internal/checksum"
	"github.com/starford/pagewright/internal/storage"
)

// Verify *Store satisfies storage.Storage at compile time.
var _ storage.Storage = (*Store)(nil)

// Stat reports a file for a stored path and a directory otherwise.
func (s *Store) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	p := storage.Clean(name)
	var (
		size      int64
		updatedAt time.Time
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT length(content), updated_at FROM entries WHERE path = ?`, p,
	).Scan(&size, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NewFileInfo(p, 0, true, time.Time{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: stat %s: %w", p, err)
	}
	return storage.NewFileInfo(p, size, false, updatedAt), nil
}

// ReadDir lists stored paths under name in lexical order.
func (s *Store) ReadDir(ctx context.Context, name string, opts storage.ReadDirOptions) ([]string, error) {
	dir := storage.Clean(name)
	prefix := dir + "/"
	if dir == "/" {
		prefix = "/"
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT path FROM entries WHERE instr(path, ?) = 1 ORDER BY path`, prefix)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: readdir %s: %w", dir, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		keys = append(keys, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return storage.Listed(dir, keys, opts.Recursive), nil
}

// Mkdir acknowledges the normalized path. Directories are implicit.
func (s *Store) Mkdir(ctx context.Context, name string, _ storage.MkdirOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return storage.Clean(name), nil
}

// ReadFile returns the content stored at name.
func (s *Store) ReadFile(ctx context.Context, name string) ([]byte, error) {
	p := storage.Clean(name)
	var data []byte
	err := s.conn.QueryRowContext(ctx, `SELECT content FROM entries WHERE path = ?`, p).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: read %s: %w", p, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// WriteFile inserts or replaces the content stored at name.
func (s *Store) WriteFile(ctx context.Context, name string, data []byte) error {
	p := storage.Clean(name)
	if data == nil {
		data = []byte{}
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO entries (path, content, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content    = excluded.content,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, p, data, checksum.Sum(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlstore: write %s: %w", p, err)
	}
	return nil
}

// Checksum returns the stored SHA-256 digest of name.
func (s *Store) Checksum(ctx context.Context, name string) (string, error) {
	p := storage.Clean(name)
	var cs string
	err := s.conn.QueryRowContext(ctx, `SELECT checksum FROM entries WHERE path = ?`, p).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &fs.PathError{Op: "checksum", Path: p, Err: fs.ErrNotExist}
	}
	if err != nil {
		return "", fmt.Errorf("sqlstore: checksum %s: %w", p, err)
	}
	return cs, nil
}

// Paths returns every stored path, relative to the root, in lexical order.
func (s *Store) Paths(ctx context.Context) ([]string, error) {
	return s.ReadDir(ctx, "/", storage.ReadDirOptions{Recursive: true})
}
