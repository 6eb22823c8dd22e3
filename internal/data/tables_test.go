package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharaID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1001), charaID(100101))
	assert.Equal(t, int64(1099), charaID(109901))
	// IDs of four digits or fewer pass through unchanged.
	assert.Equal(t, int64(1001), charaID(1001))
	assert.Equal(t, int64(42), charaID(42))
}

func TestStatKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "friendship_bonus", statKey("Friendship Bonus"))
	assert.Equal(t, "wit", statKey("Wit"))
	assert.Equal(t, "race_bonus", statKey("Race Bonus"))
}

func TestKindsSortedAndComplete(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"characard", "factor", "skill", "supportcard", "supportcardidonly"}, Kinds())
}
