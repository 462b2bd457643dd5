package counts_test

import (
	"context"
	"testing"

	"coral-threads/coral"
	"coral-threads/counts"
	"coral-threads/reactions"
	"coral-threads/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()

	s1 := coral.Forest{
		{
			CommentID: "1",
			PostedBy:  coral.Author{ID: "A"},
			LikedBy:   []string{"U1", "U2"},
			Replies: coral.Forest{
				{CommentID: "1.1", PostedBy: coral.Author{ID: "B"}, LikedBy: []string{"U1"}},
			},
		},
		{CommentID: "2", PostedBy: coral.Author{ID: "A"}},
	}
	require.NoError(t, store.SaveJSON(ctx, s, store.CommentsKey("S1"), s1))

	s2 := coral.Forest{{CommentID: "1", PostedBy: coral.Author{ID: "B"}}}
	require.NoError(t, store.SaveJSON(ctx, s, store.CommentsKey("S2"), s2))

	var registry coral.Registry
	registry = reactions.SetReaction(registry, "S1", "U1", "like")
	registry = reactions.SetReaction(registry, "S1", "U2", "love")
	registry = reactions.SetReaction(registry, "S3", "U1", "like")
	require.NoError(t, store.SaveJSON(ctx, s, store.ReactionsKey, registry))

	return s
}

func TestCompute(t *testing.T) {
	forest := coral.Forest{
		{CommentID: "1", LikedBy: []string{"U1"}, Replies: coral.Forest{{CommentID: "1.1"}, {CommentID: "1.2", LikedBy: []string{"U1", "U2"}}}},
	}
	story := &coral.StoryReactions{
		StoryID:   "S1",
		Reactions: []*coral.ReactionBucket{{Name: "like", Users: []string{"U1", "U2"}}},
	}

	cc := counts.Compute(forest, story)
	assert.Equal(t, 1, cc.Comments)
	assert.Equal(t, 2, cc.Replies)
	assert.Equal(t, 3, cc.Likes)
	assert.Equal(t, map[string]int{"like": 2}, cc.Reactions)
}

func TestStoryIDs(t *testing.T) {
	s := seed(t)

	storyIDs, err := counts.StoryIDs(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2", "S3"}, storyIDs)
}

func TestProcessStories(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	require.NoError(t, counts.ProcessStories(ctx, s, nil, false))

	var story coral.StoryCounts
	require.NoError(t, store.LoadJSON(ctx, s, store.CountsKey("S1"), &story))
	assert.Equal(t, "S1", story.ID)
	assert.Equal(t, 2, story.CommentCounts.Comments)
	assert.Equal(t, 1, story.CommentCounts.Replies)
	assert.Equal(t, 3, story.CommentCounts.Likes)
	assert.Equal(t, map[string]int{"like": 1, "love": 1}, story.CommentCounts.Reactions)

	var empty coral.StoryCounts
	require.NoError(t, store.LoadJSON(ctx, s, store.CountsKey("S3"), &empty))
	assert.Equal(t, 0, empty.CommentCounts.Comments)
	assert.Equal(t, map[string]int{"like": 1}, empty.CommentCounts.Reactions)
}

func TestProcessStoriesDryRun(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	require.NoError(t, counts.ProcessStories(ctx, s, []string{"S1"}, true))

	exists, err := s.Exists(ctx, store.CountsKey("S1"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProcessSite(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	require.NoError(t, counts.ProcessSite(ctx, s, false))

	var site counts.Site
	require.NoError(t, store.LoadJSON(ctx, s, store.SiteCountsKey, &site))
	assert.Equal(t, 3, site.Stories)
	assert.Equal(t, 3, site.CommentCounts.Comments)
	assert.Equal(t, 1, site.CommentCounts.Replies)
	assert.Equal(t, 3, site.CommentCounts.Likes)
	assert.Equal(t, map[string]int{"like": 2, "love": 1}, site.CommentCounts.Reactions)
}

func TestProcessUsers(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	require.NoError(t, counts.ProcessUsers(ctx, s, nil, false))

	var user coral.UserCounts
	require.NoError(t, store.LoadJSON(ctx, s, store.UserCountsKey("A"), &user))
	assert.Equal(t, coral.UserCounts{ID: "A", Comments: 2, LikesReceived: 2}, user)

	var other coral.UserCounts
	require.NoError(t, store.LoadJSON(ctx, s, store.UserCountsKey("B"), &other))
	assert.Equal(t, coral.UserCounts{ID: "B", Comments: 2, LikesReceived: 1}, other)
}

func TestMerge(t *testing.T) {
	var cc coral.CommentCounts
	counts.Merge(&cc, &coral.CommentCounts{Comments: 1, Reactions: map[string]int{"like": 2}})
	counts.Merge(&cc, &coral.CommentCounts{Replies: 3, Likes: 1, Reactions: map[string]int{"like": 1, "wow": 1}})

	assert.Equal(t, coral.CommentCounts{
		Comments:  1,
		Replies:   3,
		Likes:     1,
		Reactions: map[string]int{"like": 3, "wow": 1},
	}, cc)
}
