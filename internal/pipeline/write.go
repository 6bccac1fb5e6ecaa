package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/starford/pagewright/internal/storage"
)

// WriteFunc persists one document. It may be called any number of times; a
// failed call does not affect later ones.
type WriteFunc[T any] func(ctx context.Context, doc T) error

// Write validates opts and returns the function that writes documents.
func Write[T any](opts WriteOptions[T]) (WriteFunc[T], error) {
	cfg, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, doc T) error {
		if err := cfg.write(ctx, doc); err != nil {
			if herr := cfg.onError(err); herr != nil {
				return herr
			}
			cfg.logger.Warn("write: skipped document", slog.String("error", err.Error()))
		}
		return nil
	}, nil
}

func (c *writeConfig[T]) write(ctx context.Context, doc T) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	name, err := c.name(doc)
	if err != nil {
		return fmt.Errorf("write: name: %w", err)
	}
	target := path.Join(c.cwd, storage.ToSlash(name))
	dir := path.Dir(target)

	if _, err := c.fs.Stat(ctx, dir); err != nil {
		if _, err := c.fs.Mkdir(ctx, dir, storage.MkdirOptions{Recursive: true}); err != nil {
			return fmt.Errorf("write: mkdir %s: %w", dir, err)
		}
	}

	data, err := c.render(doc)
	if err != nil {
		return fmt.Errorf("write: render %s: %w", name, err)
	}
	if err := c.fs.WriteFile(ctx, target, data); err != nil {
		return fmt.Errorf("write: %s: %w", target, err)
	}

	c.logger.Debug("write: document", slog.String("file", target), slog.Int("bytes", len(data)))
	return nil
}
