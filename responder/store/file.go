package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/theimaginaryfoundation/chat-o-bot/responder/fileutils"
)

// FileStore keeps each document as <Dir>/<name>.json.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("NewFileStore: dir is empty")
	}
	return &FileStore{Dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) Path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

func (s *FileStore) Load(ctx context.Context, name string, v any) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutils.ReadJSONFile(s.Path(name), v); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("FileStore.Load: %w", err)
	}
	return nil
}

// Save writes the document through a same-directory temp file and rename.
func (s *FileStore) Save(ctx context.Context, name string, v any) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutils.WriteJSONFileAtomic(s.Path(name), v, true); err != nil {
		return fmt.Errorf("FileStore.Save: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
