package cmd

import (
	"context"

	"github.com/smd-project/smd/internal/config"
	"github.com/smd-project/smd/internal/orchestrator"
	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/store"

	"github.com/spf13/cobra"
)

func init() {
	updateCmd := &cobra.Command{
		Use:   "update [folder ...]",
		Short: "Check previously downloaded mangas for new chapters and download them",
		RunE:  runUpdate,
	}

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		MangaDir:     flagDir,
	})
	if err != nil {
		return err
	}

	mangas, err := pickMangas(env, args, false)
	if err != nil {
		return err
	}

	exitStatus = runPerManga(env, mangas, "Update",
		func(ctx context.Context, o *orchestrator.Orchestrator, src sources.Source, m *store.Manga) (int, error) {
			return o.Update(ctx, src, m)
		})
	return nil
}
