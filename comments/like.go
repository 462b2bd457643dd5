package comments

import (
	"coral-threads/coral"

	"github.com/thoas/go-funk"
)

// SetLike will add or remove the user from the likes of the comment. Both
// directions are idempotent, and an unknown comment leaves the forest as is.
// The returned bool reports whether the forest was changed.
func SetLike(forest coral.Forest, commentID, userID string, liked bool) (coral.Forest, bool) {
	comment := FindByID(forest, commentID)
	if comment == nil {
		return forest, false
	}

	if liked {
		if funk.ContainsString(comment.LikedBy, userID) {
			return forest, false
		}

		comment.LikedBy = append(comment.LikedBy, userID)

		return forest, true
	}

	changed := false
	for idx := funk.IndexOfString(comment.LikedBy, userID); idx >= 0; idx = funk.IndexOfString(comment.LikedBy, userID) {
		comment.LikedBy = append(comment.LikedBy[:idx], comment.LikedBy[idx+1:]...)
		changed = true
	}

	return forest, changed
}
