package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/netrequester/packages/output"
)

type versionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	var (
		short  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version:   version,
				BuildTime: buildTime,
				Go:        runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			w := cmd.OutOrStdout()
			switch {
			case format == output.FormatJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case short:
				fmt.Fprintln(w, info.Version)
			default:
				fmt.Fprintf(w, "netreq version %s\n", info.Version)
				fmt.Fprintf(w, "Built: %s (%s, %s)\n", info.BuildTime, info.Go, info.Platform)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatConsole, "Output format: console, json")
	return cmd
}
