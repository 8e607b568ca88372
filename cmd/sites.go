package cmd

import (
	"fmt"
	"time"

	"github.com/smd-project/smd/internal/sources"
	"github.com/smd-project/smd/internal/ui"
	"github.com/smd-project/smd/internal/util"

	"github.com/spf13/cobra"
)

func init() {
	sitesCmd := &cobra.Command{
		Use:   "sites",
		Short: "List the supported sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := util.NewHTTPClient(util.HTTPClientOptions{
				Timeout:   30 * time.Second,
				UserAgent: util.PickUserAgent(""),
			})
			if err != nil {
				return err
			}

			all := sources.All(client, ui.NewLogger(flagDebug))
			fmt.Printf("Supported sites (%d):\n", len(all))
			for _, s := range all {
				fmt.Printf(" * %s (%s)\n", s.Name(), s.Lang())
			}
			return nil
		},
	}

	rootCmd.AddCommand(sitesCmd)
}
