package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/smd-project/smd/internal/config"
	"github.com/smd-project/smd/internal/fetcher"
	"github.com/smd-project/smd/internal/orchestrator"
	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/ui"
	"github.com/smd-project/smd/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagChapters string
	flagSite     string
	flagLang     string
	flagTryAll   bool
	flagFile     string

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download [manga ...]",
		Short: "Search for mangas and download selected chapters. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagChapters, "chapters", "", "chapters to download (e.g. 5, 1:10, -1, 1:5,!3, blank for all)")
	downloadCmd.Flags().StringVarP(&flagSite, "site", "s", "", "preferred site to search on (see `smd sites`)")
	downloadCmd.Flags().StringVarP(&flagLang, "lang", "l", "", "only search sites of this language")
	downloadCmd.Flags().BoolVar(&flagTryAll, "tryall", false, "on failure, offer the remaining sites")
	downloadCmd.Flags().StringVarP(&flagFile, "file", "f", "", "file with one manga name per line")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	downloadCmd.MarkFlagsMutuallyExclusive("site", "lang")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Language:     flagLang,
		MangaDir:     flagDir,
		Site:         flagSite,
		TryAll:       flagTryAll,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
		UserAgent:    flagUserAgent,
	})
	if err != nil {
		return err
	}

	names := append([]string{}, args...)
	if flagFile != "" {
		fromFile, err := readNames(flagFile)
		if err != nil {
			return err
		}
		names = append(names, fromFile...)
	}
	if len(names) == 0 {
		name, err := env.prompt.Input("Enter manga name")
		if err != nil {
			return err
		}
		names = append(names, name)
	}

	candidates, err := env.candidates()
	if err != nil {
		return err
	}

	pm := ui.NewProgressManager()
	stats := &ui.Stats{}
	dl := fetcher.New(env.client, env.log, stats)
	o := orchestrator.New(env.cfg.MangaDir, dl, env.prompt, env.log,
		func(name string) fetcher.Progress { return pm.Register(name) })

	ctx := context.Background()
	start := time.Now()
	failed := 0

	for _, name := range names {
		worklist := append([]sources.Source{}, candidates...)
		if err := o.Download(ctx, worklist, name, flagChapters, env.cfg.TryAll); err != nil {
			env.log.Errorf("Download of '%s' failed: %v\n", name, err)
			failed++
			continue
		}
		stats.TotalMangas.Add(1)
	}
	pm.Close()

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Mangas:   %d (%d failed)\n", stats.TotalMangas.Load(), failed)
	fmt.Printf("Chapters: %d\n", stats.TotalChapters.Load())
	fmt.Printf("Images:   %d\n", stats.TotalImages.Load())
	fmt.Printf("Data:     %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))

	exitStatus = failed
	return nil
}

// readNames reads manga names one per line; "-" reads stdin. Blank
// lines and '#' comments are skipped.
func readNames(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}

	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		out = append(out, name)
	}

	return out, sc.Err()
}
