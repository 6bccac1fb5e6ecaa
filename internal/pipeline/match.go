package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// errNoBraceForm marks extglob groups that brace alternation cannot express.
var errNoBraceForm = errors.New("extglob has no brace form")

type matcher interface {
	match(name string) bool
}

// braceGlob is a pattern in doublestar syntax.
type braceGlob string

func (g braceGlob) match(name string) bool {
	ok, _ := doublestar.Match(string(g), name)
	return ok
}

// globSet is a compiled list of patterns; a path matches when any pattern does.
type globSet []matcher

// compileGlobs hands patterns to doublestar when their extglob groups have a
// brace form and to the extglob matcher otherwise.
func compileGlobs(patterns []string) (globSet, error) {
	out := make(globSet, 0, len(patterns))
	for _, p := range patterns {
		translated, err := translateExtglob(p)
		if errors.Is(err, errNoBraceForm) {
			m, err := compileExtglob(p)
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
			}
			out = append(out, m)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !doublestar.ValidatePattern(translated) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
		out = append(out, braceGlob(translated))
	}
	return out, nil
}

func (g globSet) match(name string) bool {
	for _, m := range g {
		if m.match(name) {
			return true
		}
	}
	return false
}

// filter decides membership of a relative path: it must match the include
// set (when one is given) and must not match the ignore set.
type filter struct {
	include globSet
	ignore  globSet
}

func (f filter) active() bool {
	return len(f.include) > 0 || len(f.ignore) > 0
}

func (f filter) keep(name string) bool {
	if len(f.include) > 0 && !f.include.match(name) {
		return false
	}
	return !f.ignore.match(name)
}

// translateExtglob rewrites the extglob groups @(a|b) and ?(a|b) into the
// brace alternation doublestar understands. *(..), +(..) and !(..) yield
// errNoBraceForm.
func translateExtglob(pattern string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
			continue
		}
		if i+1 >= len(pattern) || pattern[i+1] != '(' || !strings.ContainsRune("@?*+!", rune(c)) {
			b.WriteByte(c)
			continue
		}
		end := closingParen(pattern, i+1)
		if end < 0 {
			return "", fmt.Errorf("unclosed group in glob pattern %q", pattern)
		}
		if c != '@' && c != '?' {
			return "", fmt.Errorf("%w: %q in pattern %q", errNoBraceForm, pattern[i:end+1], pattern)
		}
		alts := splitAlternatives(pattern[i+2 : end])
		for j, alt := range alts {
			t, err := translateExtglob(alt)
			if err != nil {
				return "", err
			}
			alts[j] = t
		}
		if c == '?' {
			alts = append(alts, "")
		}
		b.WriteString("{" + strings.Join(alts, ",") + "}")
		i = end
	}
	return b.String(), nil
}

func closingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitAlternatives splits s on "|" outside nested groups.
func splitAlternatives(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
