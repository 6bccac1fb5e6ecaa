// Package models defines the domain types for pagewright.
package models

// Document is one parsed source file or one value to be rendered and written.
// The default parser and writer use the "url" and "content" fields.
type Document = map[string]any

// Conventional field names.
const (
	FieldURL     = "url"
	FieldContent = "content"
)

// Field returns the named field of doc when doc is an object.
func Field(doc any, key string) (any, bool) {
	m, ok := doc.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// URL returns the document's url field when it is a string.
func URL(doc any) (string, bool) {
	v, ok := Field(doc, FieldURL)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
