package counts

import (
	"context"
	"sort"
	"time"

	"coral-threads/coral"
	"coral-threads/reactions"
	"coral-threads/store"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// loadRegistry returns the reactions document, or nothing if it doesn't exist.
func loadRegistry(ctx context.Context, s store.Store) (coral.Registry, error) {
	var registry coral.Registry
	if err := store.LoadJSON(ctx, s, store.ReactionsKey, &registry); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrEmpty) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "could not load reactions")
	}

	return registry, nil
}

// loadForest returns the comments document for the story, or nothing if it
// doesn't exist.
func loadForest(ctx context.Context, s store.Store, storyID string) (coral.Forest, error) {
	var forest coral.Forest
	if err := store.LoadJSON(ctx, s, store.CommentsKey(storyID), &forest); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrEmpty) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "could not load comments")
	}

	return forest, nil
}

// StoryIDs will find every story that has comments or reactions. Comments are
// only discovered when the store can list its documents.
func StoryIDs(ctx context.Context, s store.Store) ([]string, error) {
	storyIDMap := make(map[string]struct{})

	if lister, ok := s.(store.Lister); ok {
		keys, err := lister.List(ctx, store.CommentsPrefix())
		if err != nil {
			return nil, errors.Wrap(err, "could not list comments documents")
		}

		for _, key := range keys {
			if storyID, ok := store.StoryIDFromCommentsKey(key); ok {
				storyIDMap[storyID] = struct{}{}
			}
		}
	} else {
		logrus.Warn("store can not list documents, only stories with reactions will be found")
	}

	registry, err := loadRegistry(ctx, s)
	if err != nil {
		return nil, err
	}

	for _, story := range registry {
		if story != nil && store.ValidID(story.StoryID) {
			storyIDMap[story.StoryID] = struct{}{}
		}
	}

	storyIDs := make([]string, 0, len(storyIDMap))
	for storyID := range storyIDMap {
		storyIDs = append(storyIDs, storyID)
	}
	sort.Strings(storyIDs)

	return storyIDs, nil
}

// ProcessStories will iterate over each story's comments and reactions and
// write the cached counts for each story. `storyID`'s are optional, when
// empty every story that can be found is processed.
func ProcessStories(ctx context.Context, s store.Store, storyIDs []string, dryRun bool) error {
	if len(storyIDs) == 0 {
		found, err := StoryIDs(ctx, s)
		if err != nil {
			return errors.Wrap(err, "could not find stories")
		}

		storyIDs = found
	}

	registry, err := loadRegistry(ctx, s)
	if err != nil {
		return err
	}

	started := time.Now()
	logrus.WithField("stories", len(storyIDs)).Info("loading stories from comments")

	written := 0
	for _, storyID := range storyIDs {
		forest, err := loadForest(ctx, s, storyID)
		if err != nil {
			return errors.Wrapf(err, "could not process story %s", storyID)
		}

		story := coral.StoryCounts{
			ID:            storyID,
			CommentCounts: Compute(forest, reactions.Find(registry, storyID)),
		}

		if dryRun {
			logrus.WithFields(logrus.Fields{
				"storyID":       storyID,
				"commentCounts": story.CommentCounts,
			}).Debug("not writing story counts as --dryRun is enabled")

			continue
		}

		if err := store.SaveJSON(ctx, s, store.CountsKey(storyID), story); err != nil {
			return errors.Wrapf(err, "could not write counts for story %s", storyID)
		}

		written++
		if written%MaxBatchWriteSize == 0 {
			logrus.WithField("written", written).Info("wrote story counts")
		}
	}

	logrus.WithFields(logrus.Fields{
		"stories": len(storyIDs),
		"written": written,
		"dryRun":  dryRun,
		"took":    time.Since(started),
	}).Info("processed stories")

	return nil
}
