package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixpal/oops"

	"github.com/google/uuid"
)

// FileStore reads and writes the local file system. Saves go through a
// temporary file in the same directory and a rename, so readers never see a
// partial image.
type FileStore struct{}

func filePath(id string) string {
	return strings.TrimPrefix(id, "file://")
}

func (s *FileStore) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(filePath(id))
	if err != nil {
		return nil, oops.New(err, "failed to read %s", id)
	}
	return data, nil
}

func (s *FileStore) Save(ctx context.Context, id string, data []byte) (string, error) {
	path := filePath(id)
	dir, name := filepath.Split(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.New()))

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", oops.New(err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", oops.New(err, "failed to move %s into place", path)
	}
	return path, nil
}
