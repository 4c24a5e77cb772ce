package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/teamvault/internal/errors"
)

func TestLevel_TotalOrder(t *testing.T) {
	ordered := []Level{LevelNone, LevelRead, LevelEdit, LevelOwner}

	for i, lower := range ordered {
		for j, higher := range ordered {
			assert.Equal(t, j >= i, higher.AtLeast(lower), "%s >= %s", higher, lower)
		}
	}

	assert.False(t, Level("admin").AtLeast(LevelRead))
}

func TestMaxLevel(t *testing.T) {
	assert.Equal(t, LevelNone, MaxLevel())
	assert.Equal(t, LevelRead, MaxLevel(LevelNone, LevelRead))
	assert.Equal(t, LevelEdit, MaxLevel(LevelRead, LevelEdit, LevelRead))
	assert.Equal(t, LevelEdit, MaxLevel(LevelEdit, LevelRead))
	assert.Equal(t, LevelOwner, MaxLevel(LevelRead, LevelOwner, LevelEdit))
}

func TestParseGrantLevel(t *testing.T) {
	level, err := ParseGrantLevel("read")
	require.NoError(t, err)
	assert.Equal(t, LevelRead, level)

	level, err = ParseGrantLevel("edit")
	require.NoError(t, err)
	assert.Equal(t, LevelEdit, level)

	for _, invalid := range []string{"owner", "none", "", "EDIT"} {
		_, err := ParseGrantLevel(invalid)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, invalid)
	}
}

func TestParseTargetType(t *testing.T) {
	target, err := ParseTargetType("group")
	require.NoError(t, err)
	assert.Equal(t, TargetGroup, target)

	_, err = ParseTargetType("team")
	assert.ErrorIs(t, err, ErrInvalidTargetType)
}
