// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/sasage-tui/internal/export"
	"github.com/jeranaias/sasage-tui/internal/model"
	"github.com/jeranaias/sasage-tui/internal/storage"
)

var historySubcommands = []string{"list", "show", "delete", "clear", "export"}

// HandleHistory runs `sasage history <subcommand>`.
func HandleHistory(env *Env, args Args) error {
	if err := env.requireStore("history"); err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list", "ls":
		return historyList(env, args)
	case "show", "view":
		return historyShow(env, args)
	case "delete", "rm":
		return historyDelete(env, args)
	case "clear":
		return historyClear(env, args)
	case "export":
		return historyExport(env, args)
	default:
		return ErrUnknownSubcommand("history", args.Subcommand, historySubcommands)
	}
}

func historyList(env *Env, args Args) error {
	convs := env.Store.Load()

	if args.JSON {
		items := make([]HistoryItem, 0, len(convs))
		for i, c := range convs {
			items = append(items, HistoryItem{
				Index:          i + 1,
				ConversationID: c.ConversationID,
				Title:          c.DisplayTitle(),
				Created:        c.CreatedAt().UTC().Format("2006-01-02T15:04:05Z"),
				Messages:       len(c.Messages),
			})
		}
		return NewJSONResponse("history list", items).Fprint(env.out())
	}

	fmt.Fprint(env.out(), storage.FormatHistoryTable(convs))
	return nil
}

// resolveRef finds the conversation named by the positional at index 1.
func resolveRef(env *Env, args Args, usage string) (model.Conversation, error) {
	ref, err := args.Parser.RequirePositional(1, "conversation", usage)
	if err != nil {
		return model.Conversation{}, err
	}
	conv, ok := env.Store.Resolve(ref)
	if !ok {
		return model.Conversation{}, NewNotFoundError("conversation", ref)
	}
	return conv, nil
}

func historyShow(env *Env, args Args) error {
	conv, err := resolveRef(env, args, "sasage history show 1")
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("history show", conv).Fprint(env.out())
	}
	writeTranscript(env.out(), conv)
	return nil
}

// writeTranscript prints a conversation as "[HH:MM] Sender: text" lines.
func writeTranscript(w io.Writer, conv model.Conversation) {
	fmt.Fprintln(w, TitleStyle.Render(conv.DisplayTitle()))
	fmt.Fprintln(w, RenderLabel("ID", conv.ConversationID))
	fmt.Fprintln(w, RenderLabel("Created", conv.CreatedAt().Format("2006-01-02 15:04")))
	fmt.Fprintln(w, RenderLabel("Messages", fmt.Sprint(len(conv.Messages))))
	fmt.Fprintln(w, RenderSeparator())

	if conv.IsEmpty() {
		fmt.Fprintln(w, DimStyle.Render("(no messages)"))
		return
	}
	for _, msg := range conv.Messages {
		name := AssistantStyle.Render(msg.Sender.DisplayName())
		if msg.IsUser() {
			name = UserStyle.Render(msg.Sender.DisplayName())
		}
		fmt.Fprintf(w, "%s %s: %s\n",
			DimStyle.Render("["+msg.Time().Format("15:04")+"]"),
			name,
			strings.TrimRight(msg.Content, "\n"))
	}
}

func historyDelete(env *Env, args Args) error {
	conv, err := resolveRef(env, args, "sasage history delete 1")
	if err != nil {
		return err
	}
	env.Store.DeleteByID(conv.ConversationID)
	if !args.Quiet {
		fmt.Fprintf(env.out(), "%s Deleted %q (%s)\n",
			SuccessStyle.Render("[OK]"), conv.DisplayTitle(), conv.ConversationID)
	}
	return nil
}

func historyClear(env *Env, args Args) error {
	if !args.Parser.BoolFlag("confirm") {
		return NewValidationErrorWithExample("confirm", "", "clearing history needs --confirm", "sasage history clear --confirm")
	}
	n := len(env.Store.Load())
	env.Store.Clear()
	if !args.Quiet {
		fmt.Fprintf(env.out(), "%s Deleted %d conversation(s)\n", SuccessStyle.Render("[OK]"), n)
	}
	return nil
}

func historyExport(env *Env, args Args) error {
	conv, err := resolveRef(env, args, "sasage history export 1 --format html")
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	opts.OutputDir = args.Parser.FlagOrDefault("output", args.Parser.FlagOrDefault("o", "."))
	opts.Theme = args.Parser.FlagOrDefault("theme", "light")
	opts.OpenAfterExport = args.Parser.BoolFlag("open")
	opts.Now = env.now

	format := args.Parser.FlagOrDefault("format", "md")
	exporter, err := export.ExporterFor(format, opts)
	if err != nil {
		return NewValidationError("format", format, err.Error())
	}

	path, err := export.ExportToFile(&conv, exporter, opts)
	if err != nil {
		return NewCommandError("history", "export", "could not write export", err)
	}

	if args.JSON {
		return NewJSONResponse("history export", ExportData{
			ConversationID: conv.ConversationID,
			Format:         format,
			Path:           path,
		}).Fprint(env.out())
	}
	fmt.Fprintf(env.out(), "%s Exported to %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}
