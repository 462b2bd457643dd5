package internal

import (
	"context"
	"sync"

	"coral-threads/store"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewWatcher will return a watcher that can watch the documents collection for
// changes to ensure the counts stay in sync.
func NewWatcher(collection *mongo.Collection) *Watcher {
	return &Watcher{
		collection: collection,
		events:     make([]WatchEvent, 0),
	}
}

// WatchEvent is used to return which document has been modified.
type WatchEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// Watcher can be used to monitor for dirty stories to trigger future update
// operations.
type Watcher struct {
	collection *mongo.Collection
	events     []WatchEvent
	mux        sync.Mutex
}

// Watch will watch for changes to the documents collection, and mark the
// affected stories as dirty so that we can re-run on changes.
func (w *Watcher) Watch(ctx context.Context) error {
	// Create the change stream that we'll use to monitor the collection for any
	// writes to comments documents or the reactions document.
	cs, err := w.collection.Watch(ctx, mongo.Pipeline{
		bson.D{
			primitive.E{
				Key: "$match",
				Value: bson.D{
					primitive.E{
						Key: "operationType",
						Value: bson.D{
							primitive.E{
								Key:   "$in",
								Value: []string{"insert", "update", "replace"},
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "could not watch the change stream")
	}
	defer cs.Close(ctx)

	// Continue iterating over this change stream until either the context is
	// cancelled or there is an error.
	for cs.Next(ctx) {
		var event WatchEvent
		if err := cs.Decode(&event); err != nil {
			return errors.Wrap(err, "could not decode change stream event")
		}

		w.Record(event)
	}

	if err := cs.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return errors.Wrap(err, "an error occurred while processing the change stream")
	}

	return nil
}

// Record marks the document in the event as changed. Events for documents
// other than comments and reactions are dropped.
func (w *Watcher) Record(event WatchEvent) {
	key := event.DocumentKey.ID

	_, isComments := store.StoryIDFromCommentsKey(key)
	if !isComments && key != store.ReactionsKey {
		return
	}

	logrus.WithFields(logrus.Fields{
		"key":           key,
		"operationType": event.OperationType,
	}).Info("a document has been changed, marking its stories as dirty")

	// Add this record.
	w.mux.Lock()
	w.events = append(w.events, event)
	w.mux.Unlock()
}

// Dirty will return a list of all the story id's that are dirty. When the
// shared reactions document changed every story is dirty, which is reported
// with all set to true.
func (w *Watcher) Dirty() (storyIDs []string, all bool) {
	// Lock access to the records, as we'll be trying to get them all.
	w.mux.Lock()
	defer w.mux.Unlock()

	// If we have no records, then return nothing!
	if len(w.events) == 0 {
		return nil, false
	}

	// Deduplicate all the story id's.
	storyIDMap := make(map[string]struct{})
	for _, event := range w.events {
		if event.DocumentKey.ID == store.ReactionsKey {
			all = true
			continue
		}

		storyID, ok := store.StoryIDFromCommentsKey(event.DocumentKey.ID)
		if !ok {
			continue
		}

		storyIDMap[storyID] = struct{}{}
	}

	// Turn the map into a slice.
	storyIDs = make([]string, 0, len(storyIDMap))
	for storyID := range storyIDMap {
		storyIDs = append(storyIDs, storyID)
	}

	// Reset the underlying slice.
	w.events = make([]WatchEvent, 0)

	return storyIDs, all
}
