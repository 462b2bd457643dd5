package coral

// CommentCounts are the engagement counts cached for a story or a whole site.
type CommentCounts struct {
	Comments  int            `json:"comments"`
	Replies   int            `json:"replies"`
	Likes     int            `json:"likes"`
	Reactions map[string]int `json:"reactions"`
}

// StoryCounts is the counts document stored for a single story.
type StoryCounts struct {
	ID            string        `json:"id"`
	CommentCounts CommentCounts `json:"commentCounts"`
}

// UserCounts is the counts document stored for a single comment author.
type UserCounts struct {
	ID            string `json:"id"`
	Comments      int    `json:"comments"`
	LikesReceived int    `json:"likesReceived"`
}
