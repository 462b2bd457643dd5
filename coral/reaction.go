package coral

// ReactionBucket holds every user that picked the named reaction.
type ReactionBucket struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

// StoryReactions are the reaction buckets for a single story. A user appears
// in at most one of the buckets.
type StoryReactions struct {
	StoryID   string            `json:"storyId"`
	Reactions []*ReactionBucket `json:"reactions"`
}

// Registry is the shared reactions document covering every story.
type Registry []*StoryReactions
