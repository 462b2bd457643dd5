package counts

import (
	"context"
	"time"

	"coral-threads/coral"
	"coral-threads/reactions"
	"coral-threads/store"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Site holds the counts merged across every story.
type Site struct {
	Stories       int                 `json:"stories"`
	CommentCounts coral.CommentCounts `json:"commentCounts"`
}

// ProcessSite will update the site's counts based on the stories that compose
// the values for that. The story counts are computed from the source
// documents so that a --dryRun still reports accurate totals.
func ProcessSite(ctx context.Context, s store.Store, dryRun bool) error {
	storyIDs, err := StoryIDs(ctx, s)
	if err != nil {
		return errors.Wrap(err, "could not find stories")
	}

	registry, err := loadRegistry(ctx, s)
	if err != nil {
		return err
	}

	// Store all the counts for this site.
	site := Site{CommentCounts: NewCommentCounts()}

	started := time.Now()
	logrus.Info("loading counts from site stories")

	for _, storyID := range storyIDs {
		forest, err := loadForest(ctx, s, storyID)
		if err != nil {
			return errors.Wrapf(err, "could not process story %s", storyID)
		}

		counts := Compute(forest, reactions.Find(registry, storyID))
		Merge(&site.CommentCounts, &counts)
		site.Stories++
	}

	logrus.WithField("took", time.Since(started)).Info("loaded counts from site stories")

	if dryRun {
		logrus.WithFields(logrus.Fields{
			"stories":       site.Stories,
			"commentCounts": site.CommentCounts,
		}).Info("not writing site update as --dryRun is enabled")

		return nil
	}

	started = time.Now()
	logrus.Info("updating site")

	if err := store.SaveJSON(ctx, s, store.SiteCountsKey, site); err != nil {
		return errors.Wrap(err, "could not update the site")
	}

	logrus.WithFields(logrus.Fields{
		"stories": site.Stories,
		"took":    time.Since(started),
	}).Info("site updated")

	return nil
}
