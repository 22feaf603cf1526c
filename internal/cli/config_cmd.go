// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shopassist/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func newConfigCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change settings",
		Long: `Show and change settings.

Settings are read from ~/.shopassist/config.toml (or .yaml/.json), then
from a .env file and SHOPASSIST_* environment variables, then from flags.

Examples:
  shopassist config show
  shopassist config get gateway.base_url
  shopassist config set ui.theme light
  shopassist config keys`,
	}
	cmd.AddCommand(
		newConfigShowCommand(opts),
		newConfigGetCommand(opts),
		newConfigSetCommand(opts),
		newConfigKeysCommand(),
		newConfigPathCommand(opts),
	)
	return cmd
}

func newConfigShowCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			safe := cfg.Clone()
			if safe.Gateway.Token != "" {
				safe.Gateway.Token = "[REDACTED]"
			}
			if jsonOut {
				return NewJSONResponse("config show", safe).Print(cmd.OutOrStdout())
			}
			out := cmd.OutOrStdout()
			for _, key := range config.GetAllKeys() {
				v, err := safe.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s%v\n", LabelStyle.Width(32).Render(key), v)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newConfigGetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return NewValidationErrorWithExample("key", args[0], err.Error(), "shopassist config keys")
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newConfigSetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadFileConfig()
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return NewValidationErrorWithExample("key", args[0], err.Error(), "shopassist config set ui.theme light")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path, err := opts.configFilePath()
			if err != nil {
				return err
			}
			if opts.configPath == "" {
				if err := config.EnsureConfigDir(); err != nil {
					return err
				}
			}
			if err := config.SaveToPath(cfg, path); err != nil {
				return err
			}
			config.SetGlobal(cfg)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (%s)\n",
				SuccessStyle.Render("Saved"), args[0], args[1], filepath.Base(path))
			return nil
		},
	}
}

func newConfigKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every setting key",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, key := range config.GetAllKeys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
		},
	}
}

func newConfigPathCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.configFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
