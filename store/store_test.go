package store_test

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"coral-threads/coral"
	"coral-threads/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listingStore interface {
	store.Store
	store.Lister
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s listingStore) {
	t.Helper()
	ctx := context.Background()

	key := store.CommentsKey("S1")

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Read(ctx, key)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Write(ctx, key, []byte(`[{"commentId":"1"}]`)))

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"commentId":"1"}]`, string(data))

	// Writes replace the whole document.
	require.NoError(t, s.Write(ctx, key, []byte(`[]`)))
	data, err = s.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, s.Write(ctx, store.CommentsKey("S2"), []byte(`[]`)))
	require.NoError(t, s.Write(ctx, store.ReactionsKey, []byte(`[]`)))

	keys, err := s.List(ctx, store.CommentsPrefix())
	require.NoError(t, err)
	assert.Equal(t, []string{store.CommentsKey("S1"), store.CommentsKey("S2")}, keys)
}

func TestMemory(t *testing.T) {
	testStore(t, store.NewMemory())
}

func TestDisk(t *testing.T) {
	s, err := store.NewDisk(t.TempDir())
	require.NoError(t, err)

	testStore(t, s)
}

func TestDiskRejectsEscapingKeys(t *testing.T) {
	s, err := store.NewDisk(t.TempDir())
	require.NoError(t, err)

	err = s.Write(context.Background(), "../outside.json", []byte(`[]`))
	assert.Error(t, err)
}

func TestDiskRejectsKeysAddressingOtherDocuments(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewDisk(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, store.ReactionsKey, []byte(`[]`)))

	for _, key := range []string{
		store.CommentsKey("../reactions/reactions"),
		store.CommentsKey("x/../../counts/site"),
		"comments//S1.json",
		"./comments/S1.json",
		"comments/S1.json/",
		"/comments/S1.json",
		".",
		"",
	} {
		assert.Error(t, s.Write(ctx, key, []byte(`[{"commentId":"1"}]`)), key)

		_, err := s.Exists(ctx, key)
		assert.Error(t, err, key)
	}

	data, err := s.Read(ctx, store.ReactionsKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestValidID(t *testing.T) {
	for _, id := range []string{"S1", "story-1", "a.b", "2024_01"} {
		assert.True(t, store.ValidID(id), id)
	}

	for _, id := range []string{"", ".", "..", "../reactions/reactions", "a/b", `a\b`, "x..y"} {
		assert.False(t, store.ValidID(id), id)
	}
}

func TestRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	defer client.Close()

	s := store.NewRedis(client, "coral:")
	testStore(t, s)

	assert.True(t, mr.Exists("coral:"+store.ReactionsKey))
}

func TestRedisPrefixWithGlobCharacters(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	defer client.Close()

	s := store.NewRedis(client, "[tenant]*:")
	require.NoError(t, s.Write(ctx, store.CommentsKey("S1"), []byte(`[]`)))

	// A key the unescaped pattern would also have matched.
	other := store.NewRedis(client, "tenant:")
	require.NoError(t, other.Write(ctx, store.CommentsKey("S2"), []byte(`[]`)))

	keys, err := s.List(ctx, store.CommentsPrefix())
	require.NoError(t, err)
	assert.Equal(t, []string{store.CommentsKey("S1")}, keys)
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	u, err := url.Parse(uri)
	require.NoError(t, err)
	require.Greater(t, len(u.Path), 1, "expected database name in MONGODB_URI")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	collection := "documents_test_" + uuid.NewString()
	s := store.NewMongo(client.Database(u.Path[1:]), collection)
	defer s.Collection().Drop(context.Background())

	testStore(t, s)
}

func TestLoadJSON(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	var forest coral.Forest
	err := store.LoadJSON(ctx, s, store.CommentsKey("S1"), &forest)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Write(ctx, store.CommentsKey("S1"), nil))
	err = store.LoadJSON(ctx, s, store.CommentsKey("S1"), &forest)
	assert.ErrorIs(t, err, store.ErrEmpty)

	require.NoError(t, s.Write(ctx, store.CommentsKey("S1"), []byte(`{not json`)))
	err = store.LoadJSON(ctx, s, store.CommentsKey("S1"), &forest)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	in := coral.Forest{{CommentID: "1", LikedBy: []string{"U1"}, Replies: coral.Forest{{CommentID: "1.1"}}}}
	require.NoError(t, store.SaveJSON(ctx, s, store.CommentsKey("S1"), in))

	require.NoError(t, store.LoadJSON(ctx, s, store.CommentsKey("S1"), &forest))
	assert.Equal(t, in, forest)
}

func TestStoryIDFromCommentsKey(t *testing.T) {
	storyID, ok := store.StoryIDFromCommentsKey(store.CommentsKey("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", storyID)

	_, ok = store.StoryIDFromCommentsKey(store.ReactionsKey)
	assert.False(t, ok)

	_, ok = store.StoryIDFromCommentsKey("comments/.json")
	assert.False(t, ok)
}
