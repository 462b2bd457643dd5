package comments_test

import (
	"testing"

	"coral-threads/comments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLikeIsIdempotent(t *testing.T) {
	forest := sampleForest()

	forest, changed := comments.SetLike(forest, "1.1", "U1", true)
	assert.True(t, changed)
	forest, changed = comments.SetLike(forest, "1.1", "U1", true)
	assert.False(t, changed)

	node := comments.FindByID(forest, "1.1")
	require.NotNil(t, node)
	assert.Equal(t, []string{"U1"}, node.LikedBy)

	forest, changed = comments.SetLike(forest, "1.1", "U2", true)
	assert.True(t, changed)
	assert.Equal(t, []string{"U1", "U2"}, node.LikedBy)

	forest, changed = comments.SetLike(forest, "1.1", "U1", false)
	assert.True(t, changed)
	_, changed = comments.SetLike(forest, "1.1", "U1", false)
	assert.False(t, changed)
	assert.Equal(t, []string{"U2"}, node.LikedBy)
}

func TestSetLikeUnlikeWithoutLikes(t *testing.T) {
	forest, changed := comments.SetLike(sampleForest(), "2", "U1", false)
	assert.False(t, changed)

	node := comments.FindByID(forest, "2")
	require.NotNil(t, node)
	assert.Empty(t, node.LikedBy)
}

func TestSetLikeUnknownComment(t *testing.T) {
	out, changed := comments.SetLike(sampleForest(), "missing", "U1", true)
	assert.False(t, changed)
	assert.Equal(t, sampleForest(), out)
}
