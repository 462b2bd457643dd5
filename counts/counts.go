package counts

import (
	"coral-threads/comments"
	"coral-threads/coral"
	"coral-threads/reactions"
)

// MaxBatchWriteSize is the number of documents written before progress is
// logged.
const MaxBatchWriteSize = 200

// NewCommentCounts returns counts ready to be incremented.
func NewCommentCounts() coral.CommentCounts {
	return coral.CommentCounts{
		Reactions: make(map[string]int),
	}
}

// Increment will increment the counts based on the passed comment.
func Increment(cc *coral.CommentCounts, comment *coral.Comment, depth int) {
	if depth == 0 {
		cc.Comments++
	} else {
		cc.Replies++
	}

	cc.Likes += len(comment.LikedBy)
}

// Merge adds the counts onto cc.
func Merge(cc *coral.CommentCounts, counts *coral.CommentCounts) {
	cc.Comments += counts.Comments
	cc.Replies += counts.Replies
	cc.Likes += counts.Likes

	if cc.Reactions == nil {
		cc.Reactions = make(map[string]int)
	}
	for key, count := range counts.Reactions {
		cc.Reactions[key] += count
	}
}

// Compute returns the counts for a story from its comments and reactions.
func Compute(forest coral.Forest, story *coral.StoryReactions) coral.CommentCounts {
	cc := NewCommentCounts()

	comments.Walk(forest, func(comment *coral.Comment, depth int) {
		Increment(&cc, comment, depth)
	})

	for key, count := range reactions.Tally(story) {
		cc.Reactions[key] += count
	}

	return cc
}
