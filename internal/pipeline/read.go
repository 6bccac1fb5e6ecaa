package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path"

	"github.com/starford/pagewright/internal/storage"
)

// Read validates opts and returns a lazy sequence of parsed documents. Every
// range over the sequence lists the source directory afresh and reads files
// one at a time, in listing order. Errors are yielded with a zero document;
// the sequence ends after yielding one.
func Read[T any](ctx context.Context, opts ReadOptions[T]) (iter.Seq2[T, error], error) {
	cfg, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	return func(yield func(T, error) bool) {
		var zero T

		files, err := cfg.discover(ctx)
		if err != nil {
			yield(zero, err)
			return
		}

		for _, name := range files {
			if err := ctxErr(ctx); err != nil {
				yield(zero, err)
				return
			}
			doc, err := cfg.load(ctx, name)
			if err != nil {
				if herr := cfg.onError(err); herr != nil {
					yield(zero, herr)
					return
				}
				cfg.logger.Warn("read: skipped document", slog.String("file", name), slog.String("error", err.Error()))
				continue
			}
			cfg.logger.Debug("read: document", slog.String("file", name))
			if !yield(doc, nil) {
				return
			}
		}
	}, nil
}

// discover lists the regular files under cwd that pass the glob filter.
// Returned names are relative to cwd.
func (c *readConfig[T]) discover(ctx context.Context) ([]string, error) {
	entries, err := c.fs.ReadDir(ctx, c.cwd, storage.ReadDirOptions{Recursive: true})
	if err != nil {
		return nil, fmt.Errorf("read: list %s: %w", c.cwd, err)
	}

	files := make([]string, 0, len(entries))
	for _, name := range entries {
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
		name = storage.ToSlash(name)
		info, err := c.fs.Stat(ctx, path.Join(c.cwd, name))
		if err != nil {
			if herr := c.onError(fmt.Errorf("read: stat %s: %w", name, err)); herr != nil {
				return nil, herr
			}
			c.logger.Warn("read: skipped entry", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		if !storage.IsFile(info) {
			continue
		}
		if c.filter.active() && !c.filter.keep(name) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func (c *readConfig[T]) load(ctx context.Context, name string) (T, error) {
	var zero T
	data, err := c.fs.ReadFile(ctx, path.Join(c.cwd, name))
	if err != nil {
		return zero, fmt.Errorf("read: %s: %w", name, err)
	}
	doc, err := c.parse(data, name)
	if err != nil {
		return zero, fmt.Errorf("read: %s: %w", name, err)
	}
	return doc, nil
}
