package cmd

import (
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/netrequester/packages/core/config"
	"github.com/abdul-hamid-achik/netrequester/packages/output"
)

var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":  func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a shell completion script for netreq. Besides commands and flags,
the script completes environment names from the config file for --env and the
accepted values of --output and --transport.

  $ source <(netreq completion bash)
  $ netreq completion zsh > "${fpath[1]}/_netreq"
  $ netreq completion fish | source
  PS> netreq completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
	},
}

// registerCallCompletions adds value completion to the flags of the call
// command.
func registerCallCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	_ = cmd.RegisterFlagCompletionFunc("output", fixed(output.FormatConsole, output.FormatJSON))
	_ = cmd.RegisterFlagCompletionFunc("transport", fixed(config.TransportNet, config.TransportResty))
	_ = cmd.RegisterFlagCompletionFunc("env", func(c *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		path, _ := c.Flags().GetString("config")
		return environmentNames(path), cobra.ShellCompDirectiveNoFileComp
	})
}

// environmentNames lists the environments of the config file, sorted.
func environmentNames(path string) []string {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(cfg.Environments))
	for name := range cfg.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
