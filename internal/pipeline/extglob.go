package pipeline

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// node matches a prefix of s[i:] and calls k with each possible end until
// k accepts one.
type node func(s string, i int, k func(int) bool) bool

type sequence []node

func (q sequence) run(s string, i int, k func(int) bool) bool {
	if len(q) == 0 {
		return k(i)
	}
	return q[0](s, i, func(j int) bool { return q[1:].run(s, j, k) })
}

type alternatives []sequence

func (a alternatives) run(s string, i int, k func(int) bool) bool {
	for _, q := range a {
		if q.run(s, i, k) {
			return true
		}
	}
	return false
}

// extglob matches bash extended globs, including the *(..), +(..) and !(..)
// groups doublestar has no syntax for. Only "**" crosses a "/".
type extglob struct {
	q sequence
}

func (g extglob) match(name string) bool {
	return g.q.run(name, 0, func(j int) bool { return j == len(name) })
}

func compileExtglob(pattern string) (extglob, error) {
	p := &extglobParser{src: pattern}
	q, err := p.sequence("")
	if err != nil {
		return extglob{}, err
	}
	return extglob{q: q}, nil
}

type extglobParser struct {
	src string
	pos int
}

// sequence parses until EOF or an unescaped byte from stops.
func (p *extglobParser) sequence(stops string) (sequence, error) {
	var (
		q   sequence
		lit strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			q = append(q, literal(lit.String()))
			lit.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if strings.IndexByte(stops, c) >= 0 {
			break
		}
		isGroup := p.pos+1 < len(p.src) && p.src[p.pos+1] == '(' && strings.IndexByte("@?*+!", c) >= 0

		switch {
		case c == '\\':
			p.pos++
			if p.pos < len(p.src) {
				lit.WriteByte(p.src[p.pos])
				p.pos++
			} else {
				lit.WriteByte(c)
			}
		case isGroup:
			flush()
			n, err := p.group(c)
			if err != nil {
				return nil, err
			}
			q = append(q, n)
		case c == '*':
			flush()
			q = append(q, p.star())
		case c == '?':
			flush()
			q = append(q, anyRune)
			p.pos++
		case c == '[':
			flush()
			n, err := p.class()
			if err != nil {
				return nil, err
			}
			q = append(q, n)
		case c == '{':
			flush()
			n, err := p.brace()
			if err != nil {
				return nil, err
			}
			q = append(q, n)
		default:
			lit.WriteByte(c)
			p.pos++
		}
	}
	flush()
	return q, nil
}

func (p *extglobParser) star() node {
	segStart := p.pos == 0 || p.src[p.pos-1] == '/'
	if !segStart || !strings.HasPrefix(p.src[p.pos:], "**") {
		p.pos++
		return segmentRun
	}
	p.pos += 2
	if p.pos < len(p.src) && p.src[p.pos] == '/' {
		p.pos++
		return anyDirs
	}
	return anyRest
}

func (p *extglobParser) group(op byte) (node, error) {
	p.pos += 2
	var alts alternatives
	for {
		q, err := p.sequence("|)")
		if err != nil {
			return nil, err
		}
		alts = append(alts, q)
		if p.pos >= len(p.src) {
			return nil, errors.New("unclosed group")
		}
		p.pos++
		if p.src[p.pos-1] == ')' {
			break
		}
	}

	switch op {
	case '@':
		return alts.run, nil
	case '?':
		return func(s string, i int, k func(int) bool) bool {
			return k(i) || alts.run(s, i, k)
		}, nil
	case '*':
		return repeat(alts), nil
	case '+':
		more := repeat(alts)
		return func(s string, i int, k func(int) bool) bool {
			return alts.run(s, i, func(j int) bool { return more(s, j, k) })
		}, nil
	default:
		return negate(alts), nil
	}
}

func (p *extglobParser) brace() (node, error) {
	p.pos++
	var alts alternatives
	for {
		q, err := p.sequence(",}")
		if err != nil {
			return nil, err
		}
		alts = append(alts, q)
		if p.pos >= len(p.src) {
			return nil, errors.New("unclosed brace")
		}
		p.pos++
		if p.src[p.pos-1] == '}' {
			return alts.run, nil
		}
	}
}

type runeRange struct{ lo, hi rune }

func (p *extglobParser) class() (node, error) {
	p.pos++
	negated := false
	if p.pos < len(p.src) && (p.src[p.pos] == '!' || p.src[p.pos] == '^') {
		negated = true
		p.pos++
	}

	var ranges []runeRange
	first := true
	for {
		if p.pos >= len(p.src) {
			return nil, errors.New("unclosed character class")
		}
		if p.src[p.pos] == ']' && !first {
			p.pos++
			break
		}
		first = false

		lo, err := p.classRune()
		if err != nil {
			return nil, err
		}
		hi := lo
		if p.pos+1 < len(p.src) && p.src[p.pos] == '-' && p.src[p.pos+1] != ']' {
			p.pos++
			if hi, err = p.classRune(); err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, errors.New("reversed range in character class")
			}
		}
		ranges = append(ranges, runeRange{lo, hi})
	}

	return func(s string, i int, k func(int) bool) bool {
		if i >= len(s) {
			return false
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '/' {
			return false
		}
		in := false
		for _, rr := range ranges {
			if rr.lo <= r && r <= rr.hi {
				in = true
				break
			}
		}
		return in != negated && k(i+size)
	}, nil
}

func (p *extglobParser) classRune() (rune, error) {
	if p.src[p.pos] == '\\' {
		p.pos++
		if p.pos >= len(p.src) {
			return 0, errors.New("unclosed character class")
		}
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r, nil
}

func literal(lit string) node {
	return func(s string, i int, k func(int) bool) bool {
		return strings.HasPrefix(s[i:], lit) && k(i+len(lit))
	}
}

func anyRune(s string, i int, k func(int) bool) bool {
	if i >= len(s) || s[i] == '/' {
		return false
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return k(i + size)
}

// segmentRun is "*": any run of runes up to the next "/".
func segmentRun(s string, i int, k func(int) bool) bool {
	for {
		if k(i) {
			return true
		}
		if i >= len(s) || s[i] == '/' {
			return false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
}

// anyDirs is "**/": zero or more whole directories.
func anyDirs(s string, i int, k func(int) bool) bool {
	if k(i) {
		return true
	}
	for j := i; j < len(s); j++ {
		if s[j] == '/' && k(j+1) {
			return true
		}
	}
	return false
}

// anyRest is "**" not followed by "/": anything, "/" included.
func anyRest(s string, i int, k func(int) bool) bool {
	for j := len(s); j >= i; j-- {
		if k(j) {
			return true
		}
	}
	return false
}

// repeat matches zero or more non-empty occurrences of alts.
func repeat(alts alternatives) node {
	var more node
	more = func(s string, i int, k func(int) bool) bool {
		if k(i) {
			return true
		}
		return alts.run(s, i, func(j int) bool { return j > i && more(s, j, k) })
	}
	return more
}

// negate matches any run within the current segment that no alternative
// matches in full.
func negate(alts alternatives) node {
	return func(s string, i int, k func(int) bool) bool {
		end := i
		for end < len(s) && s[end] != '/' {
			end++
		}
		for j := i; j <= end; j++ {
			whole := alts.run(s, i, func(e int) bool { return e == j })
			if !whole && k(j) {
				return true
			}
		}
		return false
	}
}
