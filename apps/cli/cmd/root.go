package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "netreq",
	Short: "Typed HTTP calls from the command line.",
	Long: `netreq performs HTTP requests against named environments. Base URLs
and paths may reference {{variables}} from the config file, .env files and the
process environment. Every call runs through the same middleware pipeline
(logging, request ids, rate limiting, recording) used by the library.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
