package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/pagewright/internal/models"
)

func parseJSON(data []byte, _ string) (models.Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return asDocument("json", v)
}

func parseYAML(data []byte, _ string) (models.Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if v == nil {
		return models.Document{}, nil
	}
	return asDocument("yaml", normalizeYAML(v))
}

// parseMarkdown places the body under "content" and merges the frontmatter
// fields into the document. The body wins over a "content" frontmatter key.
func parseMarkdown(data []byte, _ string) (models.Document, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	doc := make(models.Document, len(fm)+1)
	for k, v := range fm {
		doc[k] = v
	}
	doc[models.FieldContent] = body
	return doc, nil
}

func asDocument(format string, v any) (models.Document, error) {
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: top-level value must be an object, got %T", format, v)
	}
	return doc, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	// "----" or "---title" is not an opening delimiter.
	if len(rest) > 0 && rest[0] != '\n' && rest[0] != '\r' {
		return nil, string(data), nil
	}

	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var v any
	if err := yaml.Unmarshal(yamlBlock, &v); err != nil {
		return nil, "", fmt.Errorf("frontmatter: %w", err)
	}
	if v == nil {
		return nil, body, nil
	}
	fm, ok := normalizeYAML(v).(map[string]any)
	if !ok {
		return nil, "", fmt.Errorf("frontmatter: must be a mapping, got %T", v)
	}
	return fm, body, nil
}

// normalizeYAML rewrites every mapping below v to map[string]any. yaml.v3
// yields map[any]any as soon as one key is not a string; such keys are
// formatted with fmt.Sprint.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	default:
		return v
	}
}
