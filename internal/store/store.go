// Package store persists mangas and chapters as folder-backed JSON
// documents. A folder is an entity iff it contains the well-known
// metadata filename; the folder path is the entity's identity.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptMetadata marks a metadata document that is missing or
// unparsable.
var ErrCorruptMetadata = errors.New("corrupt metadata")

const (
	MangaFile   = "manga.json"
	ChapterFile = "chapter.json"
)

func loadDoc(path, filename string, v any) error {
	b, err := os.ReadFile(filepath.Join(path, filename))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptMetadata, path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptMetadata, path, err)
	}
	return nil
}

// saveDoc writes the document to a temp file in the entity folder and
// renames it over the well-known name, so a concurrent reader never
// observes a half-written document.
func saveDoc(path, filename string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(path, filename+".*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(path, filename))
}

func hasFile(path, filename string) bool {
	info, err := os.Stat(filepath.Join(path, filename))
	return err == nil && !info.IsDir()
}
