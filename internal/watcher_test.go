package internal

import (
	"context"
	"testing"

	"coral-threads/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func event(key string) WatchEvent {
	var e WatchEvent
	e.OperationType = "replace"
	e.DocumentKey.ID = key
	return e
}

func TestWatcherDirty(t *testing.T) {
	w := NewWatcher(nil)

	storyIDs, all := w.Dirty()
	assert.Empty(t, storyIDs)
	assert.False(t, all)

	w.Record(event(store.CommentsKey("S1")))
	w.Record(event(store.CommentsKey("S2")))
	w.Record(event(store.CommentsKey("S1")))
	w.Record(event(store.CountsKey("S1")))

	storyIDs, all = w.Dirty()
	assert.ElementsMatch(t, []string{"S1", "S2"}, storyIDs)
	assert.False(t, all)

	// Dirty flushes the recorded events.
	storyIDs, _ = w.Dirty()
	assert.Empty(t, storyIDs)

	w.Record(event(store.ReactionsKey))
	_, all = w.Dirty()
	assert.True(t, all)
}

func TestLoggerFromContext(t *testing.T) {
	entry := logrus.WithField("requestID", "abc")

	ctx := WithLogger(context.Background(), entry)
	assert.Same(t, entry, Logger(ctx))

	assert.NotNil(t, Logger(context.Background()))
}
