package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/netrequester/packages/core/config"
	"github.com/abdul-hamid-achik/netrequester/packages/output"
	"github.com/abdul-hamid-achik/netrequester/packages/recorder"
)

type historyOptions struct {
	configPath string
	record     string
	limit      int
	output     string
	noColor    bool
}

var historyCmd = newHistoryCmd()

func newHistoryCmd() *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded calls, newest first",
		Long: `Show calls recorded with "netreq call --record" or the recordPath
config setting.

Examples:
  netreq history
  netreq history --record history.db --limit 50
  netreq history -o json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", getEnvString("NETREQ_CONFIG", ""), "Path to config file (env: NETREQ_CONFIG)")
	f.StringVar(&opts.record, "record", getEnvString("NETREQ_RECORD", ""), "SQLite history file (env: NETREQ_RECORD)")
	f.IntVarP(&opts.limit, "limit", "n", 20, "Maximum number of calls to show")
	f.StringVarP(&opts.output, "output", "o", getEnvString("NETREQ_OUTPUT", output.FormatConsole), "Output format: console, json (env: NETREQ_OUTPUT)")
	f.BoolVar(&opts.noColor, "no-color", getEnvBool("NETREQ_NO_COLOR", false), "Disable colored output (env: NETREQ_NO_COLOR)")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return configError(err)
	}

	path := opts.record
	if path == "" {
		path = cfg.RecordPath
	}
	if path == "" {
		return usageError(fmt.Errorf("no history file: pass --record or set recordPath in the config"))
	}

	formatter, err := output.New(opts.output, cmd.OutOrStdout(), false, opts.noColor || cfg.GetNoColor())
	if err != nil {
		return usageError(err)
	}

	start := time.Now()
	rec, err := recorder.Open(path)
	if err != nil {
		return configError(err)
	}
	defer rec.Close()

	entries, err := rec.Recent(opts.limit)
	if err != nil {
		return err
	}

	formatter.FormatHistory(entries)
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(time.Since(start)); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}
	return nil
}
