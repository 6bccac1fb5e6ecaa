package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/pagewright/internal/storage"
	"github.com/starford/pagewright/internal/storage/s3store"
	"github.com/starford/pagewright/internal/storage/sqlstore"
)

// openStorage builds the backend described by cfg. The returned close
// function releases it and is never nil.
func openStorage(cfg StorageConfig) (storage.Storage, func() error, error) {
	switch cfg.Kind {
	case StorageLocal:
		if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create storage root: %w", err)
		}
		st, err := storage.NewLocal(cfg.Root)
		if err != nil {
			return nil, nil, err
		}
		return st, noopClose, nil
	case StorageMemory:
		return storage.NewMemoryText(cfg.Files), noopClose, nil
	case StorageSQLite:
		st, err := sqlstore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case StorageS3:
		st, err := s3store.New(cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		return st, noopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}
}

func noopClose() error { return nil }

func (a *application) openSource() (storage.Storage, func() error, error) {
	if a.source != nil {
		return a.source, noopClose, nil
	}
	st, closeFn, err := openStorage(a.config.Source.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open source storage: %w", err)
	}
	return st, closeFn, nil
}

func (a *application) openOutput() (storage.Storage, func() error, error) {
	if a.output != nil {
		return a.output, noopClose, nil
	}
	st, closeFn, err := openStorage(a.config.Output.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open output storage: %w", err)
	}
	return st, closeFn, nil
}

func (a *application) closeStorage(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		a.logger.Warn("close storage failed", slog.String("storage", name), slog.String("error", err.Error()))
	}
}
