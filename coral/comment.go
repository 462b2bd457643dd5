package coral

// Author is the person that posted a Comment.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Comment is a Comment on a story. The CommentID encodes the comment's
// lineage as dot separated segments, so "3.1.2" is the second reply to the
// first reply of comment "3".
type Comment struct {
	CommentID   string   `json:"commentId"`
	CommentText string   `json:"commentText"`
	PostedBy    Author   `json:"postedBy"`
	PostedDate  string   `json:"postedDate"`
	LikedBy     []string `json:"likedBy,omitempty"`
	Replies     Forest   `json:"replies,omitempty"`
}

// Forest is the ordered list of top level comments on a story. It is also used
// for the replies of a single comment.
type Forest []*Comment
