package store

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/rueidis"
)

// globEscaper escapes the characters Redis treats as glob patterns in MATCH.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob makes s match itself literally in a SCAN MATCH pattern.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

// Redis stores documents as string values in Redis, each key namespaced by an
// optional prefix.
type Redis struct {
	client rueidis.Client
	prefix string
}

// NewRedis returns a store that uses the client. The prefix is prepended to
// every document key.
func NewRedis(client rueidis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Do(ctx, r.client.B().Exists().Key(r.prefix+key).Build()).AsInt64()
	if err != nil {
		return false, errors.Wrap(err, "could not check document")
	}

	return count > 0, nil
}

func (r *Redis) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Do(ctx, r.client.B().Get().Key(r.prefix+key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "could not get document")
	}

	return data, nil
}

func (r *Redis) Write(ctx context.Context, key string, data []byte) error {
	err := r.client.Do(ctx, r.client.B().Set().Key(r.prefix+key).Value(rueidis.BinaryString(data)).Build()).Error()
	if err != nil {
		return errors.Wrap(err, "could not set document")
	}

	return nil
}

func (r *Redis) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	seen := make(map[string]struct{})

	var cursor uint64
	for {
		entry, err := r.client.Do(ctx, r.client.B().Scan().Cursor(cursor).Match(escapeGlob(r.prefix+prefix)+"*").Count(100).Build()).AsScanEntry()
		if err != nil {
			return nil, errors.Wrap(err, "could not scan documents")
		}

		for _, element := range entry.Elements {
			key := strings.TrimPrefix(element, r.prefix)
			if _, ok := seen[key]; ok || !strings.HasPrefix(key, prefix) {
				continue
			}

			seen[key] = struct{}{}
			keys = append(keys, key)
		}

		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}

	sort.Strings(keys)

	return keys, nil
}
