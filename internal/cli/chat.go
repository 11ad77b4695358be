// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"

	"github.com/jeranaias/sasage-tui/internal/controller"
	"github.com/jeranaias/sasage-tui/internal/export"
	"github.com/jeranaias/sasage-tui/internal/storage"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads one line of user input.
type LineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides line editing and input history for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a liner-backed reader. historyFile may be empty to
// disable persistent input history.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *ChatCLI) saveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves input history and restores the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// ChatSession is a running REPL.
type ChatSession struct {
	env   *Env
	ctrl  *controller.Controller
	input LineReader
	out   io.Writer

	// sent counts messages sent during the session.
	sent int
}

// NewChatSession creates a session reading from input.
func NewChatSession(env *Env, input LineReader) *ChatSession {
	return &ChatSession{
		env:   env,
		ctrl:  env.NewController(),
		input: input,
		out:   env.out(),
	}
}

// HandleChat runs `sasage chat`.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	if err := env.requireStore("chat"); err != nil {
		return err
	}

	input := NewChatCLI(filepath.Join(env.Config.Storage.Dir, "chat_history"))
	defer input.Close()

	session := NewChatSession(env, input)
	if ref := args.Parser.Flag("resume"); ref != "" {
		if err := session.open(ref); err != nil {
			return err
		}
	}
	if !args.Quiet {
		session.printWelcome()
	}
	return session.Run(ctx)
}

// Run reads input until /quit, EOF or Ctrl+C at the prompt.
func (s *ChatSession) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.input.ReadInput(PromptStyle.Render("sasage> "))
		if err != nil {
			fmt.Fprintln(s.out)
			s.printExitSummary()
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := s.handleSlashCommand(line)
			if err != nil {
				fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				s.printExitSummary()
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			s.printExitSummary()
			return nil
		}

		s.send(ctx, line)
	}
}

// send sends text in the current conversation, starting one first if
// needed. An issued send always runs to completion.
func (s *ChatSession) send(ctx context.Context, text string) {
	if s.ctrl.CurrentID() == "" {
		s.ctrl.StartNewConversation()
	}

	pending, ok := s.ctrl.BeginSend(text)
	if !ok {
		return
	}

	fmt.Fprintln(s.out, DimStyle.Render("Đang suy nghĩ..."))
	resp, err := s.ctrl.Send(ctx, pending)
	reply := s.ctrl.CompleteSend(pending, resp, err)
	s.sent++

	fmt.Fprintf(s.out, "%s\n%s\n\n", AssistantStyle.Render(reply.Sender.DisplayName()+":"), renderReply(reply.Content, GetTerminalWidth()))
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a /command. It returns false when the session
// should end.
func (s *ChatSession) handleSlashCommand(line string) (bool, error) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	rest := fields[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/?":
		s.printHelp()

	case "/new":
		conv := s.ctrl.StartNewConversation()
		fmt.Fprintf(s.out, "%s %s (%s)\n", SuccessStyle.Render("[New]"), conv.DisplayTitle(), conv.ConversationID)

	case "/history":
		s.ctrl.Reload()
		fmt.Fprint(s.out, storage.FormatHistoryTable(s.ctrl.History()))

	case "/open":
		if len(rest) == 0 {
			return true, ErrMissingArgument("conversation", "/open 2")
		}
		return true, s.open(rest[0])

	case "/show":
		conv, ok := s.ctrl.Current()
		if !ok {
			fmt.Fprintln(s.out, DimStyle.Render("No conversation yet."))
			return true, nil
		}
		writeTranscript(s.out, conv)

	case "/copy":
		conv, ok := s.ctrl.Current()
		if !ok {
			return true, errors.New("nothing to copy")
		}
		msg, ok := conv.LastAssistantMessage()
		if !ok {
			return true, errors.New("nothing to copy")
		}
		if err := clipboard.WriteAll(msg.Content); err != nil {
			return true, fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("[Copied]"))

	case "/export":
		return true, s.exportCurrent(rest)

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
	return true, nil
}

// open makes the conversation named by ref current.
func (s *ChatSession) open(ref string) error {
	conv, ok := s.env.Store.Resolve(ref)
	if !ok {
		return NewNotFoundError("conversation", ref)
	}
	s.ctrl.Reload()
	s.ctrl.SelectByID(conv.ConversationID)
	fmt.Fprintf(s.out, "%s %s (%d messages)\n", SuccessStyle.Render("[Open]"), conv.DisplayTitle(), len(conv.Messages))
	return nil
}

func (s *ChatSession) exportCurrent(rest []string) error {
	conv, ok := s.ctrl.Current()
	if !ok {
		return errors.New("no conversation to export")
	}
	format := "md"
	if len(rest) > 0 {
		format = rest[0]
	}
	opts := export.DefaultOptions()
	opts.Now = s.env.now
	path, err := export.Export(&conv, format, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s %s\n", SuccessStyle.Render("[Exported]"), path)
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (s *ChatSession) printWelcome() {
	cfg := s.env.Config
	fmt.Fprintln(s.out, TitleStyle.Render(cfg.DisplayName()+" "+cfg.App.Version))
	fmt.Fprintln(s.out, DimStyle.Render(cfg.App.Company+" · "+cfg.API.BaseURL))
	fmt.Fprintln(s.out, DimStyle.Render("Type a message, /help for commands, /quit to leave."))
	fmt.Fprintln(s.out)
}

func (s *ChatSession) printHelp() {
	fmt.Fprintln(s.out, SectionStyle.Render("Commands"))
	rows := [][2]string{
		{"/new", "start a new conversation"},
		{"/history", "list saved conversations"},
		{"/open <ref>", "continue a saved conversation"},
		{"/show", "print the current conversation"},
		{"/copy", "copy the last reply"},
		{"/export [md|json|html]", "export the current conversation"},
		{"/quit", "leave"},
	}
	for _, r := range rows {
		fmt.Fprintf(s.out, "  %-24s %s\n", r[0], DimStyle.Render(r[1]))
	}
}

func (s *ChatSession) printExitSummary() {
	if s.sent == 0 {
		return
	}
	fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("%d message(s) sent this session.", s.sent)))
}
