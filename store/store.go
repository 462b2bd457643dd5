package store

import (
	"context"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrEmpty is returned by Load when a document exists but has no content.
	ErrEmpty = errors.New("document is empty")
)

// Store persists whole documents by key. Writes replace the entire document,
// readers never observe a partial write.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

const (
	// ReactionsKey is the single document holding every story's reactions.
	ReactionsKey = "reactions/reactions.json"

	// SiteCountsKey holds the counts merged across every story.
	SiteCountsKey = "counts/site.json"

	commentsPrefix   = "comments/"
	countsPrefix     = "counts/stories/"
	userCountsPrefix = "counts/users/"
	documentSuffix   = ".json"
)

// ValidID reports whether id can be embedded in a document key. Ids that
// contain a path separator or a ".." could address another document.
func ValidID(id string) bool {
	return id != "" && id != "." && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

// CommentsPrefix is the key prefix shared by every comments document.
func CommentsPrefix() string {
	return commentsPrefix
}

// CommentsKey returns the key of the comments document for the story.
func CommentsKey(storyID string) string {
	return commentsPrefix + storyID + documentSuffix
}

// CountsKey returns the key of the counts document for the story.
func CountsKey(storyID string) string {
	return countsPrefix + storyID + documentSuffix
}

// UserCountsKey returns the key of the counts document for the user.
func UserCountsKey(userID string) string {
	return userCountsPrefix + userID + documentSuffix
}

// StoryIDFromCommentsKey extracts the story id out of a comments document key.
func StoryIDFromCommentsKey(key string) (string, bool) {
	if !strings.HasPrefix(key, commentsPrefix) || !strings.HasSuffix(key, documentSuffix) {
		return "", false
	}

	storyID := strings.TrimSuffix(strings.TrimPrefix(key, commentsPrefix), documentSuffix)
	if storyID == "" {
		return "", false
	}

	return storyID, true
}

// Load will check that the document exists before reading it. ErrNotFound is
// returned for a missing document and ErrEmpty for one without content.
func Load(ctx context.Context, s Store, key string) ([]byte, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "could not check if %s exists", key)
	}
	if !exists {
		return nil, ErrNotFound
	}

	data, err := s.Read(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrapf(err, "could not read %s", key)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	return data, nil
}

// LoadJSON will load the document and decode it into v.
func LoadJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := Load(ctx, s, key)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "could not decode %s", key)
	}

	return nil
}

// SaveJSON will encode v and write it as the whole document.
func SaveJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "could not encode %s", key)
	}

	if err := s.Write(ctx, key, data); err != nil {
		return errors.Wrapf(err, "could not write %s", key)
	}

	return nil
}
