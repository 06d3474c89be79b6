// Package pathcodec turns display names into materialized-path segments.
//
// A segment is the URL/identifier-safe token used as one element of a
// node's materialized path. Uniqueness and cycle checks are not this
// package's job; they belong to the hierarchy service.
package pathcodec

import (
	"fmt"
	"strings"
)

const (
	// Separator joins segments into a stored path string.
	Separator = "/"

	// MaxSegmentLen bounds a single encoded segment.
	MaxSegmentLen = 64
)

type InvalidSegmentError struct {
	Name string
}

func (e *InvalidSegmentError) Error() string {
	return fmt.Sprintf("name %q does not encode to a usable path segment", e.Name)
}

// Encode converts a display name into a canonical path segment:
// lowercased, runs of whitespace/punctuation collapsed to a single
// underscore, everything outside [a-z0-9_] dropped, leading/trailing
// underscores trimmed, truncated to MaxSegmentLen.
func Encode(name string) (string, error) {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	seg := strings.Trim(b.String(), "_")
	if len(seg) > MaxSegmentLen {
		seg = strings.Trim(seg[:MaxSegmentLen], "_")
	}
	if seg == "" {
		return "", &InvalidSegmentError{Name: name}
	}
	return seg, nil
}

// Valid reports whether s is a well-formed segment.
func Valid(s string) bool {
	if s == "" || len(s) > MaxSegmentLen {
		return false
	}
	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
		if !ok {
			return false
		}
	}
	return true
}

// Compose appends a segment to a parent path. An empty parent path
// yields a root path consisting of the segment alone.
func Compose(parentPath, segment string) string {
	if parentPath == "" {
		return segment
	}
	return parentPath + Separator + segment
}

// Split breaks a stored path into its ordered segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Depth is the number of ancestors a path implies: 0 for a root.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Separator)
}

// IsPrefix reports whether ancestor is a strict path prefix of path,
// i.e. path belongs to ancestor's subtree but is not ancestor itself.
func IsPrefix(ancestor, path string) bool {
	return strings.HasPrefix(path, ancestor+Separator)
}
