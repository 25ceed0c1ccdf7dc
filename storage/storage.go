// Package storage loads and saves the raw bytes of images. Identifiers are
// plain paths, file:// URLs, http(s):// URLs or s3://bucket/key.
package storage

import (
	"context"
	"strings"
	"sync"

	"pixpal/config"
	"pixpal/oops"
)

type Store interface {
	Load(ctx context.Context, id string) ([]byte, error)
	// Save writes data and returns the identifier it was written to, which
	// may differ from id when the store picks a name.
	Save(ctx context.Context, id string, data []byte) (string, error)
}

var (
	files = &FileStore{}
	web   = sync.OnceValue(func() *HTTPStore { return NewHTTPStore(config.Config.Fetch) })
	s3s   = sync.OnceValues(func() (*S3Store, error) { return NewS3Store(context.Background(), config.Config.S3) })
)

// For picks the store serving id.
func For(id string) (Store, error) {
	scheme, _, found := strings.Cut(id, "://")
	if !found {
		return files, nil
	}
	switch strings.ToLower(scheme) {
	case "file":
		return files, nil
	case "http", "https":
		return web(), nil
	case "s3":
		store, err := s3s()
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, oops.New(nil, "unsupported storage scheme %q in %q", scheme, id)
}

func LoadBytes(ctx context.Context, id string) ([]byte, error) {
	store, err := For(id)
	if err != nil {
		return nil, err
	}
	return store.Load(ctx, id)
}

func SaveBytes(ctx context.Context, id string, data []byte) (string, error) {
	store, err := For(id)
	if err != nil {
		return "", err
	}
	return store.Save(ctx, id, data)
}
