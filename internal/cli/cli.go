// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	baseURL    string
	token      string
	logLevel   string
	offline    bool
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "shopassist",
		Short: "Chat with the store's shopping assistants from your terminal",
		Long: `shopassist is a terminal client for the store's AI shopping assistants.

Run without arguments to open the chat panel. Press Tab to show or hide
it, Enter to send, and F1 for help.

Examples:
  shopassist                           Open the chat panel
  shopassist ask "any deals on tents?" Ask one question
  shopassist order 1001                Check on an order
  shopassist chat --offline            Line chat with the built-in demo assistants`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file path (default is ~/.shopassist/config.toml)")
	flags.StringVar(&opts.baseURL, "base-url", "", "agent API base URL")
	flags.StringVar(&opts.token, "token", "", "bearer token for the signed-in shopper")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.offline, "offline", false, "use the built-in demo assistants instead of the API")

	root.AddCommand(
		newChatCommand(opts),
		newAskCommand(opts),
		newProductCommand(opts),
		newOrderCommand(opts),
		newPersonasCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits with a categorised status code on
// failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		DisplayError(err)
		os.Exit(GetExitCode(err))
	}
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_date": BuildDate,
				"go_version": runtime.Version(),
				"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			}
			if jsonOut {
				return NewJSONResponse("version", info).Print(cmd.OutOrStdout())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("shopassist "+Version))
			for _, k := range []string{"git_commit", "build_date", "go_version", "platform"} {
				fmt.Fprintf(out, "%s%s\n", LabelStyle.Render(k), ValueStyle.Render(info[k]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
