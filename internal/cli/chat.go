// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/shopassist/internal/config"
	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/export"
	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// INPUT
// =============================================================================

// lineReader reads one line of user input.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// historyReader provides line editing and persistent history.
type historyReader struct {
	line        *liner.State
	historyFile string
}

func newHistoryReader() *historyReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	r := &historyReader{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *historyReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (r *historyReader) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	return r.line.Close()
}

// plainReader reads piped input without echoing prompts.
type plainReader struct {
	scanner *bufio.Scanner
}

func newPlainReader(in io.Reader) *plainReader {
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &plainReader{scanner: s}
}

func (r *plainReader) ReadLine(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *plainReader) Close() error { return nil }

// =============================================================================
// CHAT COMMAND
// =============================================================================

func newChatCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line without the full-screen panel",
		Long: `Start a line-oriented chat session.

Interactive Commands:
  /agents              List assistants
  /agent <type>        Switch assistant
  /product <id> [q]    Ask about a product
  /order <id>          Check on an order
  /history [text]      Show the conversation, optionally filtered
  /export [json|md]    Save the conversation
  /clear               Start over
  /help                Show commands
  /quit                Exit (Ctrl+D also works)

Suggested actions are listed under each reply; type the number to pick one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}
}

// chatSession is one REPL run.
type chatSession struct {
	a       *app
	out     io.Writer
	in      lineReader
	width   int
	actions []model.SuggestedAction
}

func runChat(cmd *cobra.Command, opts *globalOptions) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, opts, appOptions{stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.Close()

	s := &chatSession{a: a, out: cmd.OutOrStdout(), width: GetTerminalWidth()}
	interactive := IsTTY() && cmd.InOrStdin() == os.Stdin
	if interactive {
		s.in = newHistoryReader()
	} else {
		s.in = newPlainReader(cmd.InOrStdin())
	}
	defer s.in.Close()

	a.conv.SetOpen(true)
	if _, err := a.conv.LoadPersonas(ctx); err != nil {
		fmt.Fprintln(s.out, WarningStyle.Render("Could not load assistants: "+err.Error()))
	}
	if greeted, err := a.sess.Greet(ctx, a.conv); err != nil {
		a.log.Debug().Err(err).Msg("greeting skipped")
	} else if greeted {
		if msg := a.conv.Snapshot().LastMessage(); msg != nil {
			s.printMessage(msg)
		}
	}
	if interactive {
		s.printWelcome()
	}

	for {
		input, err := s.in.ReadLine(PromptStyle.Render("you> "))
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		quit, err := s.handle(ctx, input)
		if err != nil {
			fmt.Fprintln(s.out, ErrorStyle.Render(err.Error()))
		}
		if quit {
			break
		}
	}

	if interactive {
		s.printSummary()
	}
	return nil
}

// handle runs one line of input and reports whether the session should end.
func (s *chatSession) handle(ctx context.Context, input string) (bool, error) {
	if strings.HasPrefix(input, "/") {
		return s.handleSlash(ctx, input)
	}
	if a, ok := s.pickAction(input); ok {
		return false, s.print(s.a.conv.HandleSuggestedAction(ctx, a.ActionID))
	}
	return false, s.print(s.a.conv.SendMessage(ctx, input, nil))
}

// pickAction resolves a bare number to one of the listed suggested actions.
func (s *chatSession) pickAction(input string) (model.SuggestedAction, bool) {
	if len(input) != 1 || input[0] < '1' || input[0] > '9' {
		return model.SuggestedAction{}, false
	}
	i := int(input[0] - '1')
	if i >= len(s.actions) {
		return model.SuggestedAction{}, false
	}
	return s.actions[i], true
}

func (s *chatSession) handleSlash(ctx context.Context, input string) (bool, error) {
	parts := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	switch name {
	case "quit", "q", "exit":
		return true, nil

	case "help", "h", "?":
		s.printHelp()

	case "agents":
		s.printPersonas()

	case "agent", "a":
		if len(args) == 0 {
			s.printPersonas()
			return false, nil
		}
		if err := s.a.conv.SwitchAgent(ctx, args[0]); err != nil {
			if errors.Is(err, conversation.ErrInvalidPersona) {
				return false, NewValidationErrorWithExample("assistant", args[0], "unknown assistant", "/agent support")
			}
			return false, err
		}
		if msg := s.a.conv.Snapshot().LastMessage(); msg != nil {
			s.printMessage(msg)
		}

	case "product", "p":
		if len(args) == 0 {
			return false, ErrMissingArgument("product id", "/product <id> [question]")
		}
		return false, s.print(s.a.conv.AskAboutProduct(ctx, args[0], strings.Join(args[1:], " ")))

	case "order", "o":
		if len(args) == 0 {
			return false, ErrMissingArgument("order id", "/order <id>")
		}
		return false, s.print(s.a.conv.CheckOrderStatus(ctx, args[0]))

	case "history", "find", "f":
		s.printHistory(conversation.Query{Search: strings.Join(args, " ")})

	case "export", "e":
		format := "json"
		if len(args) > 0 {
			format = args[0]
		}
		path, err := s.export(format)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("Saved to "+path))

	case "clear", "c":
		s.a.conv.Clear()
		s.actions = nil
		fmt.Fprintln(s.out, InfoStyle.Render("Conversation cleared."))

	case "signout", "logout":
		s.a.sess.SignOut(s.a.conv)
		s.actions = nil
		fmt.Fprintln(s.out, InfoStyle.Render("Signed out."))

	default:
		return false, fmt.Errorf("unknown command '/%s'; type /help for commands", name)
	}
	return false, nil
}

func (s *chatSession) export(format string) (string, error) {
	st := s.a.conv.Snapshot()
	if st.IsEmpty() {
		return "", errors.New("nothing to export yet")
	}
	opts := export.DefaultOptions()
	opts.OutputDir = s.a.cfg.UI.ExportDir
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return "", ErrUnsupportedFormat(format, []string{"json", "md"})
	}
	return export.ExportToFile(export.NewTranscript(s.a.sess.Identity().DisplayName(), st), exporter, opts)
}

// =============================================================================
// OUTPUT
// =============================================================================

// print shows a reply, including the fallback shown when the gateway failed.
func (s *chatSession) print(msg *model.Message, err error) error {
	if err != nil {
		if conversation.IsSilent(err) {
			return nil
		}
		return err
	}
	s.printMessage(msg)
	return nil
}

func (s *chatSession) printMessage(msg *model.Message) {
	printMessage(s.out, msg, s.width)
	if msg.Role != model.RoleUser {
		s.actions = msg.SuggestedActions
	}
}

func (s *chatSession) printWelcome() {
	fmt.Fprintln(s.out, TitleStyle.Render("ShopAssist"))
	name := "your assistant"
	if p := s.a.conv.Snapshot().ActivePersona; p != nil {
		name = p.DisplayName
	}
	fmt.Fprintf(s.out, "%s\n", InfoStyle.Render("Chatting with "+name+" as "+s.a.sess.Identity().DisplayName()+". Type /help for commands."))
}

func (s *chatSession) printHelp() {
	fmt.Fprintln(s.out, SectionStyle.Render("Commands"))
	for _, c := range [][2]string{
		{"/agents", "list assistants"},
		{"/agent <type>", "switch assistant"},
		{"/product <id> [q]", "ask about a product"},
		{"/order <id>", "check on an order"},
		{"/history [text]", "show the conversation"},
		{"/export [json|md]", "save the conversation"},
		{"/clear", "start over"},
		{"/signout", "sign out and start over"},
		{"/quit", "exit"},
		{"1-9", "pick a suggested action"},
	} {
		fmt.Fprintf(s.out, "  %s%s\n", CommandStyle.Render(fmt.Sprintf("%-20s", c[0])), DimStyle.Render(c[1]))
	}
}

func (s *chatSession) printPersonas() {
	printPersonas(s.out, s.a.conv.Personas(), s.a.conv.Snapshot().PersonaType())
}

func (s *chatSession) printHistory(q conversation.Query) {
	msgs := s.a.conv.Search(q)
	if len(msgs) == 0 {
		fmt.Fprintln(s.out, DimStyle.Render("No messages."))
		return
	}
	now := time.Now()
	for _, g := range conversation.GroupByDay(msgs, time.Local) {
		fmt.Fprintln(s.out, SectionStyle.Render(g.Label(now)))
		for _, msg := range g.Messages {
			printMessage(s.out, msg, s.width)
		}
	}
}

func (s *chatSession) printSummary() {
	sum := s.a.conv.Summary()
	fmt.Fprintln(s.out)
	fmt.Fprintf(s.out, "%s %d messages (%d from you) in %s\n",
		InfoStyle.Render("Session:"), sum.Total, sum.UserMessages, formatDuration(s.a.sess.Duration()))
}
