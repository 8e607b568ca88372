package store

import (
	"os"
	"path/filepath"
)

// Manga is a manga folder. Path is its identity and is not serialized.
type Manga struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Site  string `json:"site"`

	Path string `json:"-"`
}

func NewManga(path, title, url, site string) *Manga {
	return &Manga{Title: title, URL: url, Site: site, Path: path}
}

// LoadManga reads the manga document from the given folder.
func LoadManga(path string) (*Manga, error) {
	m := &Manga{Path: path}
	if err := loadDoc(path, MangaFile, m); err != nil {
		return nil, err
	}
	return m, nil
}

// IsManga reports whether the folder contains a manga document.
func IsManga(path string) bool {
	return hasFile(path, MangaFile)
}

func (m *Manga) Save() error {
	return saveDoc(m.Path, MangaFile, m)
}

func (m *Manga) String() string {
	return m.Title
}

// Chapters loads every chapter folder directly under the manga folder.
// Folders whose document fails to load are skipped and reported
// through onErr when non-nil. The order is the filesystem enumeration
// order; callers must not rely on it.
func (m *Manga) Chapters(onErr func(path string, err error)) []*Chapter {
	entries, err := os.ReadDir(m.Path)
	if err != nil {
		if onErr != nil {
			onErr(m.Path, err)
		}
		return nil
	}

	var out []*Chapter
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(m.Path, e.Name())
		if !IsChapter(path) {
			continue
		}
		ch, err := LoadChapter(path)
		if err != nil {
			if onErr != nil {
				onErr(path, err)
			}
			continue
		}
		out = append(out, ch)
	}

	return out
}

// HasPending reports whether any chapter of the manga still has images
// to download.
func (m *Manga) HasPending() bool {
	for _, ch := range m.Chapters(nil) {
		if !ch.Complete() {
			return true
		}
	}
	return false
}

// Mangas loads every manga folder directly under dir. Folders whose
// document fails to load are skipped and reported through onErr when
// non-nil, so one corrupt manga never hides its healthy siblings.
func Mangas(dir string, onErr func(path string, err error)) ([]*Manga, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []*Manga
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !IsManga(path) {
			continue
		}
		m, err := LoadManga(path)
		if err != nil {
			if onErr != nil {
				onErr(path, err)
			}
			continue
		}
		out = append(out, m)
	}

	return out, nil
}
