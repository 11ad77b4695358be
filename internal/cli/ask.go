// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// maxStdinMessage bounds a message piped on stdin.
const maxStdinMessage = 1 << 20

// HandleAsk sends one message in a new conversation and prints the reply.
// With no message arguments and a piped stdin, the message is read from
// stdin.
func HandleAsk(ctx context.Context, env *Env, args Args) error {
	if err := env.requireStore("ask"); err != nil {
		return err
	}

	text := strings.Join(args.Parser.PositionalFrom(0), " ")
	if strings.TrimSpace(text) == "" && !IsTTY() {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdinMessage))
		if err != nil {
			return NewCommandError("ask", "read", "could not read stdin", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return NewValidationErrorWithExample("message", "", "message is empty", `sasage ask "Xin chào"`)
	}

	ctrl := env.NewController()
	ctrl.StartNewConversation()
	pending, ok := ctrl.BeginSend(text)
	if !ok {
		return NewCommandError("ask", "send", "message was not accepted", nil)
	}
	resp, sendErr := ctrl.Send(ctx, pending)
	reply := ctrl.CompleteSend(pending, resp, sendErr)

	if args.JSON {
		if err := NewJSONResponse("ask", AskData{
			ConversationID: pending.ConversationID(),
			Title:          pending.Conversation.DisplayTitle(),
			Reply:          reply.Content,
			Failed:         sendErr != nil,
		}).Fprint(env.out()); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(env.out(), renderReply(reply.Content, GetTerminalWidth()))
		if args.Verbose {
			fmt.Fprintln(env.errOut(), DimStyle.Render("conversation "+pending.ConversationID()))
		}
	}

	if sendErr != nil {
		err := NewCommandError("ask", "send", "the chat service did not answer", sendErr)
		if args.JSON {
			return alreadyReported(err)
		}
		return err
	}
	return nil
}

// renderReply formats assistant text for the terminal. Markdown is rendered
// only when colors are on; piped output stays plain.
func renderReply(text string, width int) string {
	if !ColorsEnabled() {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
