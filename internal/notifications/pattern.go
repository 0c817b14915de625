package notifications

import (
	"fmt"
	"regexp"
	"strings"
)

// Wildcard is the only special token in a topic pattern. It matches every
// event key when it is the whole pattern, and any suffix of at least one
// segment when it is the final segment.
const Wildcard = "*"

// SegmentPattern is the allowed alphabet for a single event-key or pattern
// segment. Deployments that need a wider character set can swap it before
// any patterns are parsed.
var SegmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidationError reports a malformed event key or topic pattern.
type ValidationError struct {
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
}

// TopicPattern is a single whitelist entry, parsed once at validation time.
// It has exactly two shapes: an exact key, or a literal segment prefix
// followed by a trailing wildcard.
type TopicPattern struct {
	raw    string
	prefix []string // nil for exact patterns; segments before the trailing *
}

// Raw returns the pattern string as the caller supplied it.
func (p TopicPattern) Raw() string { return p.raw }

// IsWildcard reports whether the pattern is the bare "*" that matches
// every event key.
func (p TopicPattern) IsWildcard() bool { return p.raw == Wildcard }

// ParsePattern validates and parses a topic pattern string. The wildcard is
// only meaningful as the entire pattern or as the final segment; anything
// else is a hard error.
func ParsePattern(s string) (TopicPattern, error) {
	if s == Wildcard {
		return TopicPattern{raw: s, prefix: []string{}}, nil
	}
	if s == "" {
		return TopicPattern{}, &ValidationError{Field: "pattern", Value: s, Msg: "must not be empty"}
	}

	segments := strings.Split(s, ".")
	for i, seg := range segments {
		last := i == len(segments)-1
		if seg == Wildcard {
			if !last {
				return TopicPattern{}, &ValidationError{Field: "pattern", Value: s, Msg: "wildcard is only allowed as the final segment"}
			}
			if len(segments) < 2 {
				return TopicPattern{}, &ValidationError{Field: "pattern", Value: s, Msg: "wildcard must follow at least one literal segment"}
			}
			return TopicPattern{raw: s, prefix: segments[:len(segments)-1]}, nil
		}
		if !SegmentPattern.MatchString(seg) {
			return TopicPattern{}, &ValidationError{Field: "pattern", Value: s, Msg: fmt.Sprintf("segment %q contains disallowed characters", seg)}
		}
	}
	return TopicPattern{raw: s}, nil
}

// ParsePatterns parses every pattern in order, failing on the first
// malformed entry.
func ParsePatterns(raw []string) ([]TopicPattern, error) {
	patterns := make([]TopicPattern, 0, len(raw))
	for _, s := range raw {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// ValidateEventKey checks that a key is a dot-separated sequence of
// non-empty segments drawn from the allowed alphabet.
func ValidateEventKey(key string) error {
	if key == "" {
		return &ValidationError{Field: "event key", Value: key, Msg: "must not be empty"}
	}
	for _, seg := range strings.Split(key, ".") {
		if !SegmentPattern.MatchString(seg) {
			return &ValidationError{Field: "event key", Value: key, Msg: fmt.Sprintf("segment %q contains disallowed characters", seg)}
		}
	}
	return nil
}
