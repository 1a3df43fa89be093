// Package trie implements the path matcher used by the router: a segment trie
// mapping path patterns to ordered lists of layer indices.
//
// Patterns are made of slash separated segments:
//
//	/users            static segment, matched literally and case-sensitively
//	/users/{id}       parameter, matches exactly one non-empty segment
//	/files/{*rest}    catch-all, matches one or more trailing segments
//	/api/*            wildcard, matches any remaining segments and binds nothing
//
// Catch-all and wildcard segments must be the last segment of a pattern. The
// pattern "*" on its own is the global wildcard and is equivalent to "/*".
package trie

import (
	"errors"
	"fmt"
	"strings"
)

// SegmentKind identifies how a pattern segment matches a path segment.
type SegmentKind uint8

const (
	Static SegmentKind = iota
	Param
	CatchAll
	Wildcard
)

func (k SegmentKind) String() string {
	switch k {
	case Static:
		return "static"
	case Param:
		return "param"
	case CatchAll:
		return "catch-all"
	case Wildcard:
		return "wildcard"
	}
	return "unknown"
}

// Segment is one parsed element of a Pattern. Value holds the literal text for
// static segments and the parameter name for params and catch-alls.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// Pattern is a parsed path template.
type Pattern struct {
	raw      string
	segments []Segment
}

// Registration errors. ParsePattern and Matcher.Insert wrap these in a
// *PatternError so callers can match them with errors.Is.
var (
	ErrMissingSlash        = errors.New("pattern must begin with '/'")
	ErrEmptySegment        = errors.New("empty path segment")
	ErrInvalidSegment      = errors.New("invalid segment")
	ErrEmptyParamName      = errors.New("empty parameter name")
	ErrDuplicateParam      = errors.New("duplicate parameter name")
	ErrSegmentAfterTail    = errors.New("segment after catch-all or wildcard")
	ErrConflictingParamSet = errors.New("conflicting parameter names")
)

// PatternError reports a malformed or conflicting pattern at registration time.
type PatternError struct {
	Pattern string
	Segment string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("trie: pattern %q: %v at %q", e.Pattern, e.Err, e.Segment)
	}
	return fmt.Sprintf("trie: pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ParsePattern parses raw into a Pattern.
func ParsePattern(raw string) (Pattern, error) {
	if raw == "*" {
		return Pattern{raw: raw, segments: []Segment{{Kind: Wildcard}}}, nil
	}
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, &PatternError{Pattern: raw, Err: ErrMissingSlash}
	}

	parts := strings.Split(raw[1:], "/")
	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]struct{})

	for i, part := range parts {
		last := i == len(parts)-1

		if len(segments) > 0 {
			if tail := segments[len(segments)-1].Kind; tail == CatchAll || tail == Wildcard {
				return Pattern{}, &PatternError{Pattern: raw, Segment: part, Err: ErrSegmentAfterTail}
			}
		}

		// A trailing empty segment is a trailing slash, which is significant.
		if part == "" {
			if !last {
				return Pattern{}, &PatternError{Pattern: raw, Err: ErrEmptySegment}
			}
			segments = append(segments, Segment{Kind: Static})
			continue
		}

		seg, err := parseSegment(part)
		if err != nil {
			return Pattern{}, &PatternError{Pattern: raw, Segment: part, Err: err}
		}

		if seg.Kind == Param || seg.Kind == CatchAll {
			if _, dup := seen[seg.Value]; dup {
				return Pattern{}, &PatternError{Pattern: raw, Segment: part, Err: ErrDuplicateParam}
			}
			seen[seg.Value] = struct{}{}
		}
		segments = append(segments, seg)
	}

	return Pattern{raw: raw, segments: segments}, nil
}

func parseSegment(part string) (Segment, error) {
	if part == "*" {
		return Segment{Kind: Wildcard}, nil
	}

	if part[0] == '{' && part[len(part)-1] == '}' {
		name := part[1 : len(part)-1]
		kind := Param
		if strings.HasPrefix(name, "*") {
			kind = CatchAll
			name = name[1:]
		}
		if name == "" {
			return Segment{}, ErrEmptyParamName
		}
		if strings.ContainsAny(name, "{}*/") {
			return Segment{}, ErrInvalidSegment
		}
		return Segment{Kind: kind, Value: name}, nil
	}

	if strings.ContainsAny(part, "{}*") {
		return Segment{}, ErrInvalidSegment
	}
	return Segment{Kind: Static, Value: part}, nil
}

// String returns the pattern as it was registered.
func (p Pattern) String() string {
	return p.raw
}

// Segments returns a copy of the parsed segments.
func (p Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// ParamNames returns the names bound by the pattern, in order.
func (p Pattern) ParamNames() []string {
	var names []string
	for _, s := range p.segments {
		if s.Kind == Param || s.Kind == CatchAll {
			names = append(names, s.Value)
		}
	}
	return names
}

// Join appends a relative pattern to a prefix, keeping exactly one slash at
// the seam. It does not validate either side.
func Join(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return pattern
	}
	if pattern == "" || pattern == "/" {
		return prefix
	}
	if pattern == "*" {
		return prefix + "/*"
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	return prefix + pattern
}

// splitPath turns a request path into the segments the trie walks. The
// leading slash is dropped; every other slash is a separator, so "/" is a
// single empty segment and "/a/" ends in one.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	return strings.Split(path, "/")
}
