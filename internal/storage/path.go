package storage

import "strings"

// Clean normalizes p into a "/"-rooted, slash-separated path. Both "/" and
// "\" separate segments, "." segments are dropped, ".." pops the previous
// segment and empty segments are removed.
func Clean(p string) string {
	segs := strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' })
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		switch s {
		case ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, s)
		}
	}
	return "/" + strings.Join(out, "/")
}

// ToSlash replaces every backslash in p with a forward slash.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// childPrefix returns the prefix every descendant of dir starts with.
func childPrefix(dir string) string {
	if dir == "/" {
		return "/"
	}
	return dir + "/"
}

// Under reports whether key is strictly nested under dir and returns its
// path relative to dir. Both arguments must already be cleaned.
func Under(dir, key string) (string, bool) {
	prefix := childPrefix(dir)
	if key == dir || !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return key[len(prefix):], true
}

// Listed filters keys to those under dir, as ReadDir reports them: relative
// to dir, and only direct children unless recursive is set.
func Listed(dir string, keys []string, recursive bool) []string {
	var out []string
	for _, k := range keys {
		rel, ok := Under(dir, k)
		if !ok {
			continue
		}
		if !recursive && strings.Contains(rel, "/") {
			continue
		}
		out = append(out, rel)
	}
	return out
}
