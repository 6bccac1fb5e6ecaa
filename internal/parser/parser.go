// Package parser turns raw file content into documents, choosing a decoder by
// file extension through a registry of parsers and aliases.
package parser

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/pagewright/internal/apperr"
	"github.com/starford/pagewright/internal/models"
	"github.com/starford/pagewright/internal/storage"
)

// maxAliasHops bounds alias resolution so that alias cycles fail.
const maxAliasHops = 20

// Wildcard is the registry key consulted when an extension has no entry.
const Wildcard = "*"

// Func decodes data read from filename into a document.
type Func func(data []byte, filename string) (models.Document, error)

// PostProcessFunc adjusts a freshly decoded document.
type PostProcessFunc func(doc models.Document, filename string) (models.Document, error)

// Entry is a registry value: either a concrete parser or an alias naming
// another extension.
type Entry struct {
	parse Func
	alias string
}

// Use returns an entry that parses with fn.
func Use(fn Func) Entry {
	return Entry{parse: fn}
}

// Alias returns an entry that redirects to the parser of ext.
func Alias(ext string) Entry {
	return Entry{alias: strings.ToLower(ext)}
}

// IsAlias reports whether the entry redirects to another extension.
func (e Entry) IsAlias() bool {
	return e.parse == nil
}

// Options configures a Parser.
type Options struct {
	// Parsers shadow the built-in entries by extension (without the dot).
	Parsers map[string]Entry
	// PostProcess replaces the default url derivation when set.
	PostProcess PostProcessFunc
}

// Parser resolves and runs the decoder for a file.
type Parser struct {
	user        map[string]Entry
	builtin     map[string]Entry
	postProcess PostProcessFunc
}

// New returns a Parser with the built-in json, yaml and markdown decoders.
func New(opts Options) *Parser {
	user := make(map[string]Entry, len(opts.Parsers))
	for k, e := range opts.Parsers {
		user[strings.ToLower(k)] = e
	}
	pp := opts.PostProcess
	if pp == nil {
		pp = DefaultPostProcess
	}
	return &Parser{user: user, builtin: builtins(), postProcess: pp}
}

func builtins() map[string]Entry {
	return map[string]Entry{
		"json":     Use(parseJSON),
		"yaml":     Use(parseYAML),
		"yml":      Alias("yaml"),
		"md":       Use(parseMarkdown),
		"markdown": Alias("md"),
	}
}

// Parse decodes data with the parser registered for filename's extension
// and runs the post-process step on the result.
func (p *Parser) Parse(data []byte, filename string) (models.Document, error) {
	ext, err := Extension(filename)
	if err != nil {
		return nil, err
	}
	fn, err := p.Resolve(ext)
	if err != nil {
		return nil, err
	}
	doc, err := fn(data, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return p.postProcess(doc, filename)
}

// Resolve follows the alias chain for ext until it reaches a concrete parser.
// An extension without an entry falls back to the wildcard entry once.
func (p *Parser) Resolve(ext string) (Func, error) {
	name := strings.ToLower(ext)
	usedWildcard := false
	for range maxAliasHops {
		e, ok := p.lookup(name)
		if !ok {
			if usedWildcard {
				break
			}
			usedWildcard = true
			if e, ok = p.lookup(Wildcard); !ok {
				break
			}
		}
		if !e.IsAlias() {
			return e.parse, nil
		}
		name = e.alias
	}
	if _, ok := p.lookup(name); ok {
		return nil, fmt.Errorf("%w: resolving '%s' exceeded %d hops", apperr.ErrAliasCycle, ext, maxAliasHops)
	}
	return nil, fmt.Errorf("could not parse document with '%s' extension: %w", ext, apperr.ErrUnknownExtension)
}

func (p *Parser) lookup(name string) (Entry, bool) {
	if e, ok := p.user[name]; ok {
		return e, true
	}
	e, ok := p.builtin[name]
	return e, ok
}

// Extension returns the text after the last dot of filename's base name.
func Extension(filename string) (string, error) {
	base := path.Base(storage.ToSlash(filename))
	i := strings.LastIndex(base, ".")
	if i <= 0 || i == len(base)-1 {
		return "", apperr.ErrNoExtension
	}
	return strings.ToLower(base[i+1:]), nil
}

// DefaultPostProcess fills a missing url from filename with its extension
// stripped and separators normalized to "/".
func DefaultPostProcess(doc models.Document, filename string) (models.Document, error) {
	if doc == nil {
		doc = models.Document{}
	}
	if _, ok := doc[models.FieldURL]; ok {
		return doc, nil
	}
	name := storage.ToSlash(filename)
	if i := strings.LastIndex(name, "."); i > strings.LastIndex(name, "/") {
		name = name[:i]
	}
	doc[models.FieldURL] = name
	return doc, nil
}
