package comments

import (
	"strings"

	"coral-threads/coral"
)

// PathSeparator separates the segments of a dotted comment id.
const PathSeparator = "."

// FindByID will search the forest depth first for the comment with the given
// id. Each comment is checked before its replies, and its replies are searched
// before its next sibling. If the id appears more than once, the first comment
// found in that order wins.
func FindByID(forest coral.Forest, id string) *coral.Comment {
	for _, comment := range forest {
		if comment == nil {
			continue
		}

		if comment.CommentID == id {
			return comment
		}

		if found := FindByID(comment.Replies, id); found != nil {
			return found
		}
	}

	return nil
}

// FindParentByPathID locates the comment that a new reply should be inserted
// under. An empty parentID never resolves, as that denotes a top level comment.
func FindParentByPathID(forest coral.Forest, parentID string) *coral.Comment {
	if parentID == "" {
		return nil
	}

	return FindByID(forest, parentID)
}

// ParentID returns the portion of the dotted id before the last separator, or
// the empty string when the id has no parent.
func ParentID(commentID string) string {
	idx := strings.LastIndex(commentID, PathSeparator)
	if idx < 0 {
		return ""
	}

	return commentID[:idx]
}

// Walk visits every comment in the forest depth first, passing the depth of
// the comment (zero for top level comments).
func Walk(forest coral.Forest, fn func(comment *coral.Comment, depth int)) {
	walk(forest, 0, fn)
}

func walk(forest coral.Forest, depth int, fn func(comment *coral.Comment, depth int)) {
	for _, comment := range forest {
		if comment == nil {
			continue
		}

		fn(comment, depth)
		walk(comment.Replies, depth+1, fn)
	}
}
