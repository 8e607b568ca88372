package util

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ErrFolderExists marks a folder-name collision.
var ErrFolderExists = errors.New("folder already exists")

// Mkdir creates the folder basename inside dirname. On a collision or
// an invalid name it asks rename for an alternate name and tries again,
// so an existing folder is never silently reused. It returns the path
// of the created folder.
func Mkdir(dirname, basename string, rename func(taken string) (string, error)) (string, error) {
	for {
		name := Sanitize(basename)
		if name == "" {
			name = "untitled"
		}
		path := filepath.Join(dirname, name)

		_, err := os.Stat(path)
		if err != nil && os.IsNotExist(err) {
			if err := os.Mkdir(path, 0755); err == nil {
				return path, nil
			}
		}

		if rename == nil {
			return "", ErrFolderExists
		}
		basename, err = rename(name)
		if err != nil {
			return "", err
		}
	}
}

var reUnderscore = regexp.MustCompile(`_+`)

// Sanitize turns a title into a safe folder name.
func Sanitize(s string) string {
	repl := []string{
		"•", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			clean = append(clean, r)
		}
	}
	s = reUnderscore.ReplaceAllString(string(clean), "_")

	return strings.Trim(s, "_")
}
