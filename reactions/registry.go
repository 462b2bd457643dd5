package reactions

import (
	"coral-threads/coral"

	"github.com/thoas/go-funk"
)

// Find returns the reactions for the story, or nil if the story has none.
func Find(registry coral.Registry, storyID string) *coral.StoryReactions {
	for _, story := range registry {
		if story != nil && story.StoryID == storyID {
			return story
		}
	}

	return nil
}

// SetReaction will record reactionName as the user's reaction on the story,
// removing the user from whatever bucket they were in before. Picking the same
// reaction again leaves the registry unchanged. Empty buckets are kept.
func SetReaction(registry coral.Registry, storyID, userID, reactionName string) coral.Registry {
	story := Find(registry, storyID)
	if story == nil {
		return append(registry, &coral.StoryReactions{
			StoryID: storyID,
			Reactions: []*coral.ReactionBucket{
				{Name: reactionName, Users: []string{userID}},
			},
		})
	}

	var target *coral.ReactionBucket
	for _, bucket := range story.Reactions {
		if bucket == nil {
			continue
		}

		// The prior reaction is removed from every bucket so that a document
		// that was already inconsistent is repaired by the next write.
		bucket.Users = remove(bucket.Users, userID)

		if target == nil && bucket.Name == reactionName {
			target = bucket
		}
	}

	if target == nil {
		story.Reactions = append(story.Reactions, &coral.ReactionBucket{
			Name:  reactionName,
			Users: []string{userID},
		})

		return registry
	}

	if !funk.ContainsString(target.Users, userID) {
		target.Users = append(target.Users, userID)
	}

	return registry
}

// QueryReaction returns the name of the user's reaction on the story.
func QueryReaction(registry coral.Registry, storyID, userID string) (string, bool) {
	story := Find(registry, storyID)
	if story == nil {
		return "", false
	}

	for _, bucket := range story.Reactions {
		if bucket != nil && funk.ContainsString(bucket.Users, userID) {
			return bucket.Name, true
		}
	}

	return "", false
}

// Tally counts the users in each of the story's buckets.
func Tally(story *coral.StoryReactions) map[string]int {
	tally := make(map[string]int)
	if story == nil {
		return tally
	}

	for _, bucket := range story.Reactions {
		if bucket == nil {
			continue
		}

		tally[bucket.Name] += len(bucket.Users)
	}

	return tally
}

func remove(users []string, userID string) []string {
	for idx := funk.IndexOfString(users, userID); idx >= 0; idx = funk.IndexOfString(users, userID) {
		users = append(users[:idx], users[idx+1:]...)
	}

	return users
}
