package contracts

import (
	"net/textproto"
)

// HeaderField is a single name/value pair in a header multimap.
type HeaderField struct {
	Name  string
	Value string
}

// Headers is an ordered, case-insensitive header multimap.
//
// Names are folded to canonical MIME form on write, so lookups match
// regardless of the caller's casing. Field order is preserved across all
// operations, which matters for multi-valued headers such as Set-Cookie.
// The zero value is an empty, usable multimap.
type Headers struct {
	fields []HeaderField
}

// NewHeaders creates a Headers multimap from the given fields, in order.
func NewHeaders(fields ...HeaderField) Headers {
	h := Headers{}
	for _, f := range fields {
		h.Add(f.Name, f.Value)
	}
	return h
}

// CanonicalHeaderName returns the canonical MIME form of a header name,
// e.g. "content-length" becomes "Content-Length".
func CanonicalHeaderName(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

// Get returns the first value associated with name, or "" if absent.
func (h Headers) Get(name string) string {
	name = CanonicalHeaderName(name)
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Values returns all values associated with name, in field order.
func (h Headers) Values(name string) []string {
	name = CanonicalHeaderName(name)
	var vs []string
	for _, f := range h.fields {
		if f.Name == name {
			vs = append(vs, f.Value)
		}
	}
	return vs
}

// Has reports whether at least one field with the given name is present.
func (h Headers) Has(name string) bool {
	name = CanonicalHeaderName(name)
	for _, f := range h.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of fields, counting repeated names individually.
func (h Headers) Len() int {
	return len(h.fields)
}

// Names returns the distinct header names in first-appearance order.
func (h Headers) Names() []string {
	var names []string
	seen := make(map[string]bool, len(h.fields))
	for _, f := range h.fields {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	return names
}

// Fields returns a copy of all fields in order.
func (h Headers) Fields() []HeaderField {
	out := make([]HeaderField, len(h.fields))
	copy(out, h.fields)
	return out
}

// Clone returns an independent copy of the multimap.
func (h Headers) Clone() Headers {
	return Headers{fields: h.Fields()}
}

// Set replaces every field matching name with a single field holding value,
// appended at the end. Last write wins.
func (h *Headers) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

// Add appends a field, preserving any existing fields with the same name.
func (h *Headers) Add(name, value string) {
	h.fields = append(h.fields, HeaderField{Name: CanonicalHeaderName(name), Value: value})
}

// Del removes every field matching name.
func (h *Headers) Del(name string) {
	name = CanonicalHeaderName(name)
	kept := make([]HeaderField, 0, len(h.fields))
	for _, f := range h.fields {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}
