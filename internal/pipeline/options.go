package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pagewright/internal/apperr"
	"github.com/starford/pagewright/internal/models"
	"github.com/starford/pagewright/internal/parser"
	"github.com/starford/pagewright/internal/storage"
)

const (
	DefaultReadCwd   = "pages"
	DefaultWriteCwd  = "public"
	DefaultExtension = ".html"
)

// ErrorHandler decides the fate of a per-item failure. Returning nil skips
// the item; returning an error stops the pipeline with it.
type ErrorHandler func(err error) error

// FailFast is the default ErrorHandler.
func FailFast(err error) error { return err }

// Skip isolates every failure.
func Skip(error) error { return nil }

// ReadOptions configures Read.
type ReadOptions[T any] struct {
	FS  storage.Storage
	Cwd string // relative to the storage root, "pages" when empty

	// Pattern restricts the files read to those matching any glob. All
	// regular files are read when empty.
	Pattern []string
	Ignore  []string

	// Parse turns file bytes into a document. When nil, a parser built from
	// ParserOptions is used and T must be able to hold a models.Document.
	Parse         func(data []byte, filename string) (T, error)
	ParserOptions parser.Options

	OnError ErrorHandler
	Logger  *slog.Logger
}

// WriteOptions configures Write.
type WriteOptions[T any] struct {
	FS  storage.Storage
	Cwd string // "public" when empty

	// Name returns the output path relative to Cwd. Defaults to the
	// document url followed by ".html".
	Name func(doc T) (string, error)
	// Render returns the bytes to store. Defaults to the document content.
	Render func(doc T) ([]byte, error)

	OnError ErrorHandler
	Logger  *slog.Logger
}

type readConfig[T any] struct {
	fs      storage.Storage
	cwd     string
	filter  filter
	parse   func([]byte, string) (T, error)
	onError ErrorHandler
	logger  *slog.Logger
}

type writeConfig[T any] struct {
	fs      storage.Storage
	cwd     string
	name    func(T) (string, error)
	render  func(T) ([]byte, error)
	onError ErrorHandler
	logger  *slog.Logger
}

// Validate checks the options without touching storage.
func (o ReadOptions[T]) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.FS, validation.NotNil, validation.By(isStorage)),
		validation.Field(&o.Cwd, validation.By(notBlank)),
		validation.Field(&o.Pattern, validation.Each(validation.By(validGlob))),
		validation.Field(&o.Ignore, validation.Each(validation.By(validGlob))),
	)
}

// Validate checks the options without touching storage.
func (o WriteOptions[T]) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.FS, validation.NotNil, validation.By(isStorage)),
		validation.Field(&o.Cwd, validation.By(notBlank)),
	)
}

func (o ReadOptions[T]) resolve() (*readConfig[T], error) {
	if o.Cwd == "" {
		o.Cwd = DefaultReadCwd
	}
	if err := o.Validate(); err != nil {
		return nil, invalid("read", err)
	}

	cfg := &readConfig[T]{
		fs:      o.FS,
		cwd:     storage.ToSlash(o.Cwd),
		parse:   o.Parse,
		onError: o.OnError,
		logger:  o.Logger,
	}

	var err error
	if cfg.filter.include, err = compileGlobs(o.Pattern); err != nil {
		return nil, invalid("read", err)
	}
	if cfg.filter.ignore, err = compileGlobs(o.Ignore); err != nil {
		return nil, invalid("read", err)
	}

	if cfg.parse == nil {
		if cfg.parse, err = documentParser[T](o.ParserOptions); err != nil {
			return nil, invalid("read", err)
		}
	}
	if cfg.onError == nil {
		cfg.onError = FailFast
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg, nil
}

func (o WriteOptions[T]) resolve() (*writeConfig[T], error) {
	if o.Cwd == "" {
		o.Cwd = DefaultWriteCwd
	}
	if err := o.Validate(); err != nil {
		return nil, invalid("write", err)
	}

	cfg := &writeConfig[T]{
		fs:      o.FS,
		cwd:     storage.ToSlash(o.Cwd),
		name:    o.Name,
		render:  o.Render,
		onError: o.OnError,
		logger:  o.Logger,
	}
	if cfg.name == nil {
		cfg.name = func(doc T) (string, error) { return DefaultName(doc) }
	}
	if cfg.render == nil {
		cfg.render = func(doc T) ([]byte, error) { return DefaultRender(doc) }
	}
	if cfg.onError == nil {
		cfg.onError = FailFast
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg, nil
}

// documentParser adapts the default parser to T, which must accept a
// models.Document.
func documentParser[T any](opts parser.Options) (func([]byte, string) (T, error), error) {
	if _, ok := any(models.Document{}).(T); !ok {
		var zero T
		return nil, fmt.Errorf("parse is required for document type %T", zero)
	}
	p := parser.New(opts)
	return func(data []byte, filename string) (T, error) {
		doc, err := p.Parse(data, filename)
		if err != nil {
			var zero T
			return zero, err
		}
		return any(doc).(T), nil
	}, nil
}

func invalid(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrInvalidOptions, err)
}

func isStorage(v any) error {
	if !storage.IsStorage(v) {
		return errors.New("must implement stat, readdir, mkdir, readfile and writefile")
	}
	return nil
}

func notBlank(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must be a non-empty path")
	}
	return nil
}

func validGlob(v any) error {
	s, _ := v.(string)
	if s == "" {
		return errors.New("must be a non-empty glob")
	}
	_, err := compileGlobs([]string{s})
	return err
}

// URLName returns a namer mapping a document to its url followed by ext.
func URLName(ext string) func(doc any) (string, error) {
	return func(doc any) (string, error) {
		url, ok := models.URL(doc)
		if !ok {
			return "", &apperr.MissingFieldError{Field: models.FieldURL}
		}
		return url + ext, nil
	}
}

// DefaultName maps a document to its url followed by DefaultExtension.
func DefaultName(doc any) (string, error) {
	return URLName(DefaultExtension)(doc)
}

// DefaultRender returns the document content as bytes.
func DefaultRender(doc any) ([]byte, error) {
	v, ok := models.Field(doc, models.FieldContent)
	if !ok || v == nil {
		return nil, &apperr.MissingFieldError{Field: models.FieldContent}
	}
	switch c := v.(type) {
	case []byte:
		return c, nil
	case string:
		return []byte(c), nil
	default:
		return []byte(fmt.Sprint(c)), nil
	}
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}
