package pdfmailer

import "strings"

// Template token markers.
const (
	tokenOpen  = "{{"
	tokenClose = "}}"
	condPrefix = "{{#if "
	condEnd    = "{{/if}}"
)

// TemplateLoader defines the contract for loading HTML templates by name.
// Implementations may load from embedded assets, the filesystem, etc.
type TemplateLoader interface {
	// LoadTemplate loads an HTML template by name (without the .html extension).
	LoadTemplate(name string) (string, error)
}

// Populate resolves {{key}} substitution tokens and {{#if key}}...{{/if}}
// conditional blocks in tpl against the data mapping, in a single scan.
//
// A conditional block is kept (minus its markers) when the keyed value is a
// non-empty string and removed entirely otherwise; keys absent from the map
// count as empty. Inside a kept block, resolution continues as normal.
// A {{key}} token is replaced with the mapped value for known keys; unknown
// plain tokens and unmatched conditional markers pass through verbatim.
//
// Nested conditional blocks are not supported: the block body ends at the
// first {{/if}} regardless of any inner {{#if}} markers. Populating an
// already fully resolved string is a no-op.
func Populate(tpl string, data map[string]string) string {
	var b strings.Builder
	b.Grow(len(tpl))

	i := 0
	for i < len(tpl) {
		open := strings.Index(tpl[i:], tokenOpen)
		if open < 0 {
			b.WriteString(tpl[i:])
			break
		}
		open += i
		b.WriteString(tpl[i:open])

		rest := tpl[open:]

		// Conditional blocks must be resolved before plain substitution so
		// the {{#if key}} marker is never corrupted by a key replacement.
		if strings.HasPrefix(rest, condPrefix) {
			key, markerLen, ok := parseCondMarker(rest)
			if ok {
				bodyStart := open + markerLen
				if end := strings.Index(tpl[bodyStart:], condEnd); end >= 0 {
					if data[key] != "" {
						b.WriteString(Populate(tpl[bodyStart:bodyStart+end], data))
					}
					i = bodyStart + end + len(condEnd)
					continue
				}
			}
			// Malformed or unclosed marker passes through untouched.
			b.WriteString(tokenOpen)
			i = open + len(tokenOpen)
			continue
		}

		key, tokenLen, ok := parseToken(rest)
		if !ok {
			b.WriteString(tokenOpen)
			i = open + len(tokenOpen)
			continue
		}
		if value, known := data[key]; known {
			b.WriteString(value)
		} else {
			b.WriteString(rest[:tokenLen])
		}
		i = open + tokenLen
	}

	return b.String()
}

// parseCondMarker parses a {{#if key}} marker at the start of s.
// Returns the key and the marker length in bytes.
func parseCondMarker(s string) (key string, length int, ok bool) {
	inner := s[len(condPrefix):]
	end := strings.Index(inner, tokenClose)
	if end < 0 {
		return "", 0, false
	}
	key = inner[:end]
	if !isTokenName(key) {
		return "", 0, false
	}
	return key, len(condPrefix) + end + len(tokenClose), true
}

// parseToken parses a plain {{key}} token at the start of s.
func parseToken(s string) (key string, length int, ok bool) {
	inner := s[len(tokenOpen):]
	end := strings.Index(inner, tokenClose)
	if end < 0 {
		return "", 0, false
	}
	key = inner[:end]
	if !isTokenName(key) {
		return "", 0, false
	}
	return key, len(tokenOpen) + end + len(tokenClose), true
}

// isTokenName reports whether s is a valid token name: one or more letters,
// digits, or underscores.
func isTokenName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
