package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/smd-project/smd/internal/config"
	"github.com/smd-project/smd/internal/fetcher"
	"github.com/smd-project/smd/internal/orchestrator"
	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/store"
	"github.com/smd-project/smd/internal/ui"
	"github.com/smd-project/smd/internal/util"

	"github.com/spf13/cobra"
)

func init() {
	resumeCmd := &cobra.Command{
		Use:   "resume [folder ...]",
		Short: "Resume canceled downloads. With no folder arguments, scans the manga directory and lets you pick",
		RunE:  runResume,
	}

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		MangaDir:     flagDir,
	})
	if err != nil {
		return err
	}

	mangas, err := pickMangas(env, args, true)
	if err != nil {
		return err
	}

	exitStatus = runPerManga(env, mangas, "Resumed",
		func(ctx context.Context, o *orchestrator.Orchestrator, src sources.Source, m *store.Manga) (int, error) {
			return o.Resume(ctx, src, m)
		})
	return nil
}

// pickMangas resolves the manga folders a command operates on: the
// explicit folder arguments, or an interactive pick over the manga
// directory. With pendingOnly set the scan keeps only mangas that
// still have images to download.
func pickMangas(env *appEnv, args []string, pendingOnly bool) ([]*store.Manga, error) {
	if len(args) > 0 {
		out := make([]*store.Manga, 0, len(args))
		for _, path := range args {
			m, err := store.LoadManga(path)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}

	all, err := store.Mangas(env.cfg.MangaDir, func(path string, err error) {
		env.log.Errorf("Skipping %s: %v\n", path, err)
	})
	if err != nil {
		return nil, err
	}

	var found []*store.Manga
	for _, m := range all {
		if pendingOnly && !m.HasPending() {
			continue
		}
		found = append(found, m)
	}
	if len(found) == 0 {
		if pendingOnly {
			return nil, fmt.Errorf("no canceled download found in %s", env.cfg.MangaDir)
		}
		return nil, fmt.Errorf("no mangas found in %s", env.cfg.MangaDir)
	}

	items := make([]string, len(found))
	for i, m := range found {
		items[i] = fmt.Sprintf("%s (%s)", m.Title, m.Site)
	}
	idxs, err := env.prompt.SelectMulti("Select mangas", items)
	if err != nil {
		return nil, err
	}

	out := make([]*store.Manga, len(idxs))
	for i, idx := range idxs {
		out[i] = found[idx]
	}
	return out, nil
}

// runPerManga drives op over each manga with the site recorded in its
// document, counting the mangas that failed.
func runPerManga(env *appEnv, mangas []*store.Manga, verb string,
	op func(context.Context, *orchestrator.Orchestrator, sources.Source, *store.Manga) (int, error)) int {

	pm := ui.NewProgressManager()
	stats := &ui.Stats{}
	dl := fetcher.New(env.client, env.log, stats)
	o := orchestrator.New(env.cfg.MangaDir, dl, env.prompt, env.log,
		func(name string) fetcher.Progress { return pm.Register(name) })

	ctx := context.Background()
	start := time.Now()
	failed := 0

	for _, m := range mangas {
		src, err := sources.ByName(env.sites, m.Site)
		if err != nil {
			env.log.Errorf("Cannot handle '%s': %v\n", m, err)
			failed++
			continue
		}
		if _, err := op(ctx, o, src, m); err != nil {
			env.log.Errorf("%s of '%s' failed: %v\n", verb, m, err)
			failed++
			continue
		}
		stats.TotalMangas.Add(1)
	}
	pm.Close()

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("Mangas:   %d (%d failed)\n", stats.TotalMangas.Load(), failed)
	fmt.Printf("Chapters: %d\n", stats.TotalChapters.Load())
	fmt.Printf("Images:   %d\n", stats.TotalImages.Load())
	fmt.Printf("Data:     %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))

	return failed
}
