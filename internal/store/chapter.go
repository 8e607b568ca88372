package store

// Chapter is a chapter folder. Current is the download cursor: -1 means
// the image list has not been resolved yet, otherwise it counts the
// images already persisted to disk; Current == len(Images) means the
// chapter is complete. Images is populated once, at the -1 -> 0
// transition, and is append-only afterwards.
type Chapter struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Current int      `json:"current"`
	Images  []string `json:"images"`

	Path string `json:"-"`
}

func NewChapter(path, title, url string) *Chapter {
	return &Chapter{
		Title:   title,
		URL:     url,
		Current: -1,
		Images:  []string{},
		Path:    path,
	}
}

// LoadChapter reads the chapter document from the given folder.
func LoadChapter(path string) (*Chapter, error) {
	ch := &Chapter{Path: path}
	if err := loadDoc(path, ChapterFile, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// IsChapter reports whether the folder contains a chapter document.
func IsChapter(path string) bool {
	return hasFile(path, ChapterFile)
}

func (c *Chapter) Save() error {
	return saveDoc(c.Path, ChapterFile, c)
}

func (c *Chapter) String() string {
	return c.Title
}

// Complete reports whether every image of the chapter is on disk.
func (c *Chapter) Complete() bool {
	return c.Current != -1 && c.Current == len(c.Images)
}
