package counts

import (
	"context"
	"sort"
	"time"

	"coral-threads/comments"
	"coral-threads/coral"
	"coral-threads/store"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// IncrementUser will increment the author's counts based on the passed comment.
func IncrementUser(user *coral.UserCounts, comment *coral.Comment) {
	user.Comments++
	user.LikesReceived += len(comment.LikedBy)
}

// ProcessUsers will aggregate the comments authored, and the likes received by
// them, for every author across the given stories.
func ProcessUsers(ctx context.Context, s store.Store, storyIDs []string, dryRun bool) error {
	if len(storyIDs) == 0 {
		found, err := StoryIDs(ctx, s)
		if err != nil {
			return errors.Wrap(err, "could not find stories")
		}

		storyIDs = found
	}

	// Store all the users in this map.
	users := make(map[string]*coral.UserCounts)

	started := time.Now()
	logrus.WithField("stories", len(storyIDs)).Info("loading users from comments")

	for _, storyID := range storyIDs {
		forest, err := loadForest(ctx, s, storyID)
		if err != nil {
			return errors.Wrapf(err, "could not process story %s", storyID)
		}

		comments.Walk(forest, func(comment *coral.Comment, depth int) {
			authorID := comment.PostedBy.ID
			if authorID == "" {
				return
			}
			if !store.ValidID(authorID) {
				logrus.WithFields(logrus.Fields{
					"storyID":   storyID,
					"commentID": comment.CommentID,
					"authorID":  authorID,
				}).Warn("author ID can not be used in a document key, skipping")
				return
			}

			// Create the user in the map if it isn't already.
			user, ok := users[authorID]
			if !ok {
				user = &coral.UserCounts{ID: authorID}
				users[authorID] = user
			}

			IncrementUser(user, comment)
		})
	}

	logrus.WithFields(logrus.Fields{
		"users": len(users),
		"took":  time.Since(started),
	}).Info("loaded users from comments")

	if dryRun {
		logrus.WithFields(logrus.Fields{
			"users": len(users),
		}).Info("not writing user updates as --dryRun is enabled")

		return nil
	}

	userIDs := make([]string, 0, len(users))
	for userID := range users {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	for idx, userID := range userIDs {
		if err := store.SaveJSON(ctx, s, store.UserCountsKey(userID), users[userID]); err != nil {
			return errors.Wrapf(err, "could not write counts for user %s", userID)
		}

		if (idx+1)%MaxBatchWriteSize == 0 {
			logrus.WithField("written", idx+1).Info("wrote user counts")
		}
	}

	logrus.WithField("users", len(userIDs)).Info("wrote user counts")

	return nil
}
