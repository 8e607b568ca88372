package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/smd-project/smd/internal/config"
	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/ui"
	"github.com/smd-project/smd/internal/util"
)

// appEnv bundles the pieces every download-like command needs: merged
// config, logger, shared HTTP client, the site registry and the
// interactive prompter.
type appEnv struct {
	cfg    *config.Config
	log    *ui.Logger
	client *http.Client
	sites  []sources.Source
	prompt *ui.Prompt
}

func newAppEnv(opts config.Options) (*appEnv, error) {
	cfg, used, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)
	if used != "" {
		fmt.Printf("Config file: %s\n", used)
	}

	if err := os.MkdirAll(cfg.MangaDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create manga folder: %w", err)
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: log,
	})
	if err != nil {
		return nil, err
	}

	return &appEnv{
		cfg:    cfg,
		log:    log,
		client: client,
		sites:  sources.All(client, log),
		prompt: ui.NewPrompt(),
	}, nil
}

// candidates orders the available sites by the config preferences: an
// explicit site goes first and the rest stay as fallbacks; otherwise
// the list is narrowed to one language, prompting when none is set.
func (e *appEnv) candidates() ([]sources.Source, error) {
	if e.cfg.Site != "" {
		preferred, err := sources.ByName(e.sites, e.cfg.Site)
		if err != nil {
			e.log.Warnf("%v\n", err)
			names := make([]string, len(e.sites))
			for i, s := range e.sites {
				names[i] = fmt.Sprintf("%s (%s)", s.Name(), s.Lang())
			}
			idx, perr := e.prompt.Select("Select a site", names)
			if perr != nil {
				return nil, perr
			}
			preferred = e.sites[idx]
		}
		return sources.Promote(e.sites, preferred), nil
	}

	lang := e.cfg.Language
	for {
		if lang == "" {
			langs := sources.Langs(e.sites)
			idx, err := e.prompt.Select("Select a language", langs)
			if err != nil {
				return nil, err
			}
			lang = langs[idx]
		}

		if out := sources.FilterLang(e.sites, lang); len(out) > 0 {
			return out, nil
		}
		e.log.Warnf("No sites for language %q.\n", lang)
		lang = ""
	}
}
