package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagDir          string
)

// exitStatus is the number of mangas that failed in the last run; the
// process exits with it so scripts can tell partial failures apart
// from clean runs.
var exitStatus int

var rootCmd = &cobra.Command{
	Use:   "smd",
	Short: "Resumable manga downloader",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVarP(&flagDir, "directory", "d", "", "folder to save downloads (default from config)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(exitStatus)
}
