// Package orchestrator coordinates a manga download end to end:
// search, result selection, chapter listing and selection, folder
// creation, per-chapter fetching, and the resume/update/fallback
// flows on top.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/smd-project/smd/internal/fetcher"
	"github.com/smd-project/smd/internal/selector"
	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/store"
	"github.com/smd-project/smd/internal/ui"
	"github.com/smd-project/smd/internal/util"
)

// Prompter is the interactive seam: pickers and free-form input.
// ui.Prompt implements it; tests stub it.
type Prompter interface {
	Select(label string, items []string) (int, error)
	Input(label string) (string, error)
}

type Orchestrator struct {
	dir      string
	fetcher  *fetcher.Fetcher
	prompt   Prompter
	log      *ui.Logger
	progress func(name string) fetcher.Progress
}

// New builds an orchestrator writing under dir. progress may be nil.
func New(dir string, f *fetcher.Fetcher, prompt Prompter, log *ui.Logger, progress func(name string) fetcher.Progress) *Orchestrator {
	return &Orchestrator{
		dir:      dir,
		fetcher:  f,
		prompt:   prompt,
		log:      log,
		progress: progress,
	}
}

// Download runs the download state machine against the first candidate
// source. On failure with tryAll set it lets the user pick the next
// preferred source from the remainder and tries again; the candidate
// list is an explicit worklist, shrinking by one per attempt. Selector
// errors are user errors and never trigger fallback.
func (o *Orchestrator) Download(ctx context.Context, candidates []sources.Source, name, selectors string, tryAll bool) error {
	if len(candidates) == 0 {
		return errors.New("no sources to download from")
	}

	for {
		src := candidates[0]
		candidates = candidates[1:]

		err := o.downloadFrom(ctx, src, name, selectors)
		if err == nil {
			return nil
		}
		if isSelectorErr(err) {
			return err
		}

		o.log.Errorf("Download from %s failed: %v\n", src.Name(), err)
		if !tryAll || len(candidates) == 0 {
			return err
		}

		idx, perr := o.prompt.Select("Choose a site", sourceNames(candidates))
		if perr != nil {
			return perr
		}
		candidates[0], candidates[idx] = candidates[idx], candidates[0]
	}
}

func (o *Orchestrator) downloadFrom(ctx context.Context, src sources.Source, name, selectors string) error {
	o.log.Infof("[%s] Searching for '%s' ...\n", src.Name(), name)
	results, err := src.Search(ctx, name)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no results for %q on %s", name, src.Name())
	}

	chosen := results[0]
	if len(results) > 1 {
		titles := make([]string, len(results))
		for i, r := range results {
			titles[i] = r.Title
		}
		idx, err := o.prompt.Select("Select a manga", titles)
		if err != nil {
			return err
		}
		chosen = results[idx]
	}

	path, err := util.Mkdir(o.dir, chosen.Title, o.renamePrompt)
	if err != nil {
		return err
	}
	manga := store.NewManga(path, chosen.Title, chosen.URL, src.Name())
	if err := manga.Save(); err != nil {
		return err
	}

	o.log.Infof("Getting chapter list of '%s' ...\n", manga)
	all, err := src.Chapters(ctx, chosen.URL)
	if err != nil {
		return err
	}
	o.log.Infof("Found %d chapters for '%s'\n", len(all), manga)

	idxs, err := selector.Select(len(all), selectors)
	if err != nil {
		return err
	}
	o.log.Infof("Selected %d chapters to download\n", len(idxs))

	chaps := make([]*store.Chapter, 0, len(idxs))
	for _, i := range idxs {
		chPath, err := util.Mkdir(manga.Path, all[i].Title, o.renamePrompt)
		if err != nil {
			return err
		}
		ch := store.NewChapter(chPath, all[i].Title, all[i].URL)
		if err := ch.Save(); err != nil {
			return err
		}
		chaps = append(chaps, ch)
	}

	o.log.Infof("Downloading '%s':\n", manga)
	for _, ch := range chaps {
		if err := o.fetchOne(ctx, src, ch); err != nil {
			return err
		}
	}

	return nil
}

// Resume re-fetches every chapter of the manga whose cursor has not
// reached the end of its image list. Corrupt chapter documents are
// reported and skipped. It returns the number of chapters resumed.
func (o *Orchestrator) Resume(ctx context.Context, src sources.Source, manga *store.Manga) (int, error) {
	o.log.Infof("Resuming download of '%s' ...\n", manga)

	resumed := 0
	for _, ch := range o.loadChapters(manga) {
		if ch.Complete() {
			continue
		}
		if err := o.fetchOne(ctx, src, ch); err != nil {
			return resumed, err
		}
		resumed++
	}

	if resumed == 0 {
		o.log.Warnf("No pending chapters found for '%s'.\n", manga)
	}
	return resumed, nil
}

// Update lists the chapters currently on the site, diffs them by URL
// against the chapters already on disk, and downloads only the new
// ones. It returns the number of new chapters.
func (o *Orchestrator) Update(ctx context.Context, src sources.Source, manga *store.Manga) (int, error) {
	o.log.Infof("Looking for new chapters of '%s' ...\n", manga)

	all, err := src.Chapters(ctx, manga.URL)
	if err != nil {
		return 0, err
	}

	known := map[string]bool{}
	for _, ch := range o.loadChapters(manga) {
		known[ch.URL] = true
	}

	var fresh []*store.Chapter
	for _, r := range all {
		if known[r.URL] {
			continue
		}
		chPath, err := util.Mkdir(manga.Path, r.Title, o.renamePrompt)
		if err != nil {
			return 0, err
		}
		ch := store.NewChapter(chPath, r.Title, r.URL)
		if err := ch.Save(); err != nil {
			return 0, err
		}
		fresh = append(fresh, ch)
	}

	o.log.Infof("Found %d new chapters for '%s'\n", len(fresh), manga)
	for _, ch := range fresh {
		if err := o.fetchOne(ctx, src, ch); err != nil {
			return len(fresh), err
		}
	}

	return len(fresh), nil
}

// loadChapters enumerates the chapter folders of a manga, skipping and
// reporting the ones whose document cannot be loaded.
func (o *Orchestrator) loadChapters(manga *store.Manga) []*store.Chapter {
	return manga.Chapters(func(path string, err error) {
		o.log.Errorf("Skipping %s: %v\n", path, err)
	})
}

func (o *Orchestrator) fetchOne(ctx context.Context, src sources.Source, ch *store.Chapter) error {
	var ph fetcher.Progress
	if o.progress != nil {
		ph = o.progress(ch.Title)
	}
	return o.fetcher.Fetch(ctx, src, ch, ph)
}

func (o *Orchestrator) renamePrompt(taken string) (string, error) {
	return o.prompt.Input(fmt.Sprintf("Folder %q already exists, enter a new name", taken))
}

func isSelectorErr(err error) bool {
	return errors.Is(err, selector.ErrInvalidSelector) ||
		errors.Is(err, selector.ErrOutOfRange) ||
		errors.Is(err, selector.ErrEmptySelection)
}

func sourceNames(srcs []sources.Source) []string {
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = fmt.Sprintf("%s (%s)", s.Name(), s.Lang())
	}
	return out
}
