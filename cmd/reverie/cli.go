package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reverie-dev/reverie/internal/command"
	"github.com/reverie-dev/reverie/internal/constant"
	"github.com/reverie-dev/reverie/internal/obs"
)

// Build information variables, set by the compiler via -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "reverie",
	Short: "Reverie - streaming reasoning segmentation for model output",
	Long: `Reverie splits streamed model responses into plain and reasoning blocks
using configurable tag pairs, renders reasoning as collapsible markup, and
filters it back out of stored conversations.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logCfg := obs.DefaultLogConfig("")
		logCfg.Verbose = verbose
		if configDir != "" {
			logCfg.File = constant.GetLogFile(configDir)
		}
		obs.SetupLogging(logCfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: ~/.reverie)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Reverie CLI\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Git Commit: %s\n", gitCommit)
			fmt.Printf("Build Time: %s\n", buildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)

	app := command.NewApp(version)
	cobra.OnInitialize(func() {
		app.SetConfigDir(configDir)
	})

	rootCmd.AddCommand(command.SegmentCommand(app))
	rootCmd.AddCommand(command.FilterCommand())
	rootCmd.AddCommand(command.ServeCommand(app))
	rootCmd.AddCommand(command.HistoryCommand(app))
	rootCmd.AddCommand(command.TagsCommand(app))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
