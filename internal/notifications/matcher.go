package notifications

import "strings"

// Matches evaluates an event key against a set of parsed patterns.
// An empty set denies everything; a bare wildcard allows everything; any
// single matching pattern authorizes the key. The model is allow-only, so
// overlapping patterns have no precedence to resolve.
func Matches(key string, patterns []TopicPattern) bool {
	if len(patterns) == 0 {
		return false
	}

	var segments []string
	for _, p := range patterns {
		if p.IsWildcard() {
			return true
		}
		if p.prefix == nil {
			if p.raw == key {
				return true
			}
			continue
		}
		if segments == nil {
			segments = strings.Split(key, ".")
		}
		if matchesPrefix(segments, p.prefix) {
			return true
		}
	}
	return false
}

// matchesPrefix requires the key to share every literal prefix segment and
// to carry at least one more segment beyond it, so "membership.*" matches
// "membership.changed" but not "membership" alone.
func matchesPrefix(keySegments, prefix []string) bool {
	if len(keySegments) <= len(prefix) {
		return false
	}
	for i, seg := range prefix {
		if keySegments[i] != seg {
			return false
		}
	}
	return true
}

// ResolveEffectivePatterns applies the default-allow policy: a user who has
// never written a whitelist for a channel has no record, and that absence
// means every event key is permitted. A record that exists with an empty
// pattern list is a deliberate deny-all and is returned as-is.
func ResolveEffectivePatterns(stored []TopicPattern, exists bool) []TopicPattern {
	if !exists {
		return []TopicPattern{{raw: Wildcard, prefix: []string{}}}
	}
	return stored
}
