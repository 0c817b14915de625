package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatternExact(t *testing.T) {
	p, err := ParsePattern("membership.changed")
	require.NoError(t, err)
	assert.Equal(t, "membership.changed", p.Raw())
	assert.False(t, p.IsWildcard())
}

func TestParsePatternBareWildcard(t *testing.T) {
	p, err := ParsePattern("*")
	require.NoError(t, err)
	assert.True(t, p.IsWildcard())
}

func TestParsePatternTrailingWildcard(t *testing.T) {
	p, err := ParsePattern("membership.*")
	require.NoError(t, err)
	assert.Equal(t, "membership.*", p.Raw())
	assert.False(t, p.IsWildcard())
}

func TestParsePatternRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		".",
		"membership.",
		".membership",
		"a..b",
		"a.*.b",
		"*.changed",
		"member ship",
		"membership.chang=d",
		"a/b",
	}
	for _, raw := range cases {
		_, err := ParsePattern(raw)
		require.Error(t, err, "pattern %q should be rejected", raw)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "pattern", verr.Field)
	}
}

func TestParsePatternsStopsOnFirstError(t *testing.T) {
	_, err := ParsePatterns([]string{"user.created", "bad pattern", "membership.*"})
	require.Error(t, err)

	parsed, err := ParsePatterns([]string{"user.created", "membership.*"})
	require.NoError(t, err)
	assert.Len(t, parsed, 2)
}

func TestValidateEventKey(t *testing.T) {
	assert.NoError(t, ValidateEventKey("membership.changed"))
	assert.NoError(t, ValidateEventKey("user"))
	assert.NoError(t, ValidateEventKey("a.b.c.d"))

	for _, key := range []string{"", ".", "a.", ".a", "a..b", "a b", "a.*"} {
		assert.Error(t, ValidateEventKey(key), "key %q should be rejected", key)
	}
}
