// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// ONE-SHOT COMMANDS
// =============================================================================

// oneShot runs op against a fresh conversation and prints the reply.
func oneShot(cmd *cobra.Command, opts *globalOptions, jsonOut bool, name string,
	op func(ctx context.Context, conv *conversation.Manager) (*model.Message, error)) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts, appOptions{stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.Close()

	a.conv.SetOpen(true)
	reply, err := op(ctx, a.conv)
	if err != nil {
		if jsonOut {
			_ = NewJSONErrorResponse(name, err).Print(cmd.OutOrStdout())
		}
		return err
	}
	if jsonOut {
		return NewJSONResponse(name, reply).Print(cmd.OutOrStdout())
	}
	printMessage(cmd.OutOrStdout(), reply, GetTerminalWidth())
	if reply.Role == model.RoleError {
		return NewCommandError(name, "request", "the assistant is unavailable", nil)
	}
	return nil
}

func newAskCommand(opts *globalOptions) *cobra.Command {
	var (
		jsonOut bool
		agent   string
	)
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Example: `  shopassist ask "do you ship to Canada?"
  shopassist ask --agent product_expert "which tent is lightest?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return oneShot(cmd, opts, jsonOut, "ask", func(ctx context.Context, conv *conversation.Manager) (*model.Message, error) {
				if agent != "" {
					if _, err := conv.LoadPersonas(ctx); err != nil {
						return nil, err
					}
					if err := conv.SwitchAgent(ctx, agent); err != nil {
						return nil, err
					}
				}
				return conv.SendMessage(ctx, text, nil)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().StringVarP(&agent, "agent", "a", "", "assistant to ask (sales, product_expert, support)")
	return cmd
}

func newProductCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "product <id> [question]",
		Short:   "Ask the product expert about a product",
		Example: `  shopassist product SKU-1042 "is it waterproof?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, question := args[0], strings.Join(args[1:], " ")
			return oneShot(cmd, opts, jsonOut, "product", func(ctx context.Context, conv *conversation.Manager) (*model.Message, error) {
				return conv.AskAboutProduct(ctx, id, question)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newOrderCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "order <id>",
		Short:   "Check the status of an order",
		Example: `  shopassist order 1001`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return oneShot(cmd, opts, jsonOut, "order", func(ctx context.Context, conv *conversation.Manager) (*model.Message, error) {
				return conv.CheckOrderStatus(ctx, args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newPersonasCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "personas",
		Aliases: []string{"agents"},
		Short:   "List the available assistants",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, appOptions{stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			personas, err := a.conv.LoadPersonas(ctx)
			if jsonOut {
				if err != nil {
					_ = NewJSONErrorResponse("personas", err).Print(cmd.OutOrStdout())
					return err
				}
				return NewJSONResponse("personas", personas).Print(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			printPersonas(cmd.OutOrStdout(), personas, "")
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
