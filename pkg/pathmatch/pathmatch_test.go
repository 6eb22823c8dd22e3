package pathmatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uma-tools/umadump/pkg/pathmatch"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"exact", "chara/chr1001", "chara/chr1001", true},
		{"star crosses slashes", "chara/*", "chara/chr1001/chr1001_00", true},
		{"star mid pattern", "*chara_stand*", "3d/chara_stand_1001/tex", true},
		{"question mark", "sound/?.awb", "sound/a.awb", true},
		{"question mark is one char", "sound/?.awb", "sound/ab.awb", false},
		{"anchored at start", "chr1001", "chara/chr1001", false},
		{"anchored at end", "chara", "chara/chr1001", false},
		{"class", "chara/chr100[12]", "chara/chr1002", true},
		{"negated class", "chara/chr100[!3]", "chara/chr1001", true},
		{"negated class miss", "chara/chr100[!3]", "chara/chr1003", false},
		{"escaped star", `live\*`, "live*", true},
		{"escaped star miss", `live\*`, "liveX", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m, err := pathmatch.New([]string{tc.pattern})
			require.NoError(t, err)

			assert.Equal(t, tc.want, m.Match(tc.path))
		})
	}
}

func TestMatchAnyOfSeveral(t *testing.T) {
	t.Parallel()

	m, err := pathmatch.New([]string{"bg/*", "live/*"})
	require.NoError(t, err)

	assert.True(t, m.Match("live/1001/stage"))
	assert.True(t, m.Match("bg/bg001"))
	assert.False(t, m.Match("chara/chr1001"))
}

func TestInvalidPatterns(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{"chara/[abc", `trailing\`} {
		_, err := pathmatch.New([]string{pattern})
		assert.Error(t, err, pattern)
	}
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	m, err := pathmatch.New(nil)
	require.NoError(t, err)

	assert.True(t, m.Empty())
	assert.False(t, m.Match("anything"))
}
