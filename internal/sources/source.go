// Package sources defines the content-site capability interface and
// the per-site adapters implementing it.
package sources

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Result is one search or chapter-list entry.
type Result struct {
	Title string
	URL   string
}

// Source is the capability a site adapter provides: search for a
// manga, list its chapters (oldest first), list a chapter's image
// references and resolve an indirect reference to a direct image URL.
type Source interface {
	Name() string
	Lang() string
	Search(ctx context.Context, query string) ([]Result, error)
	Chapters(ctx context.Context, mangaURL string) ([]Result, error)
	Images(ctx context.Context, chapterURL string) ([]string, error)
	ResolveImage(ctx context.Context, ref string) (string, error)
}

// ErrUnknownSite marks a site name no adapter answers to.
var ErrUnknownSite = errors.New("unknown site")

// ByName finds the source with the given name, case-insensitively.
func ByName(all []Source, name string) (Source, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range all {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSite, name)
}

// FilterLang keeps the sources with the given language code.
func FilterLang(all []Source, lang string) []Source {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return all
	}

	out := []Source{}
	for _, s := range all {
		if s.Lang() == lang {
			out = append(out, s)
		}
	}
	return out
}

// Langs returns the sorted set of languages covered by the sources.
func Langs(all []Source) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range all {
		if !seen[s.Lang()] {
			seen[s.Lang()] = true
			out = append(out, s.Lang())
		}
	}
	sort.Strings(out)
	return out
}

// Promote moves the given source to the front of the candidate list.
func Promote(all []Source, preferred Source) []Source {
	out := []Source{preferred}
	for _, s := range all {
		if s != preferred {
			out = append(out, s)
		}
	}
	return out
}
