package comments

import (
	"coral-threads/coral"
)

// Placement describes what Upsert did with the incoming comment.
type Placement int

const (
	// Ignored is returned when there was no comment to merge.
	Ignored Placement = iota

	// Updated means an existing comment was edited in place.
	Updated

	// TopLevel means the comment was appended to the story's forest.
	TopLevel

	// Reply means the comment was appended to its parent's replies.
	Reply

	// Orphaned means the comment referenced a parent that does not exist and
	// was appended at the top level instead.
	Orphaned
)

func (p Placement) String() string {
	switch p {
	case Updated:
		return "updated"
	case TopLevel:
		return "top_level"
	case Reply:
		return "reply"
	case Orphaned:
		return "orphaned"
	default:
		return "ignored"
	}
}

// Upsert will merge the incoming comment into the forest and return the full
// forest. An existing comment keeps its replies and likes, only the text,
// author and date are taken from the incoming comment. New comments are placed
// under the parent encoded in their dotted id, falling back to the top level
// when that parent can't be found. Existing comments are never relocated.
func Upsert(forest coral.Forest, incoming *coral.Comment) (coral.Forest, Placement) {
	if incoming == nil {
		return forest, Ignored
	}

	// Edit the comment in place if we already have it.
	if existing := FindByID(forest, incoming.CommentID); existing != nil {
		existing.CommentText = incoming.CommentText
		existing.PostedBy = incoming.PostedBy
		existing.PostedDate = incoming.PostedDate

		return forest, Updated
	}

	parentID := ParentID(incoming.CommentID)
	if parentID == "" {
		return append(forest, incoming), TopLevel
	}

	parent := FindParentByPathID(forest, parentID)
	if parent == nil {
		return append(forest, incoming), Orphaned
	}

	parent.Replies = append(parent.Replies, incoming)

	return forest, Reply
}
