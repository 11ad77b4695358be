// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sasage-tui/internal/model"
)

var exportTime = time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)

func testOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return exportTime }
	return opts
}

func sampleConversation() *model.Conversation {
	created := time.UnixMilli(1718000000000)
	conv := model.Conversation{
		ConversationID: "conversation_1718000000000_abc123xyz",
		Title:          "Cách xử lý lỗi trong Go?",
		Timestamp:      created.UnixMilli(),
	}
	conv.Append(model.NewUserMessage("Cách xử lý lỗi trong Go?", created.Add(time.Second)))
	conv.Append(model.NewAssistantMessage(
		"Dùng giá trị `error` trả về:\n\n```go\nif err != nil {\n\treturn err\n}\n```\n\nVậy thôi <b>!</b>",
		created.Add(2*time.Second)))
	return &conv
}

func TestExporterFor(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"markdown", ".md"},
		{"md", ".md"},
		{"JSON", ".json"},
		{"html", ".html"},
		{"htm", ".html"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			e, err := ExporterFor(tt.format, nil)
			require.NoError(t, err)
			require.Equal(t, tt.ext, e.FileExtension())
			require.NotEmpty(t, e.MimeType())
		})
	}

	_, err := ExporterFor("pdf", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pdf")
}

func TestMarkdownExport(t *testing.T) {
	conv := sampleConversation()
	out, err := NewMarkdownExporter(testOptions(t.TempDir())).Export(conv)
	require.NoError(t, err)

	md := string(out)
	require.True(t, strings.HasPrefix(md, "---\n"))
	require.Contains(t, md, "title: Cách xử lý lỗi trong Go?\n")
	require.Contains(t, md, "conversation_id: conversation_1718000000000_abc123xyz\n")
	require.Contains(t, md, "messages: 2\n")
	require.Contains(t, md, "# Cách xử lý lỗi trong Go?\n")
	require.Contains(t, md, "### Bạn <sub>")
	require.Contains(t, md, "### Trợ lý <sub>")
	require.Contains(t, md, "```go\nif err != nil {\n\treturn err\n}\n```")
	require.Contains(t, md, "sasage-tui")
}

func TestMarkdownExport_NoMetadata(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	out, err := NewMarkdownExporter(opts).Export(sampleConversation())
	require.NoError(t, err)

	md := string(out)
	require.True(t, strings.HasPrefix(md, "# "))
	require.Contains(t, md, "### Bạn\n")
	require.NotContains(t, md, "<sub>")
}

func TestExportEmptyConversation(t *testing.T) {
	conv := model.NewConversation(exportTime)
	for _, format := range Formats {
		if format == "json" {
			continue
		}
		e, err := ExporterFor(format, nil)
		require.NoError(t, err)
		_, err = e.Export(&conv)
		require.True(t, errors.Is(err, ErrEmptyConversation), format)
	}
}

func TestJSONExportMatchesStoredLayout(t *testing.T) {
	conv := sampleConversation()
	out, err := NewJSONExporter(nil).Export(conv)
	require.NoError(t, err)

	var back model.Conversation
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, *conv, back)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	for _, field := range []string{"conversationId", "title", "timestamp", "messages"} {
		require.Contains(t, raw, field)
	}
}

func TestHTMLExport(t *testing.T) {
	out, err := NewHTMLExporter(testOptions(t.TempDir())).Export(sampleConversation())
	require.NoError(t, err)

	page := string(out)
	require.Contains(t, page, "<title>Cách xử lý lỗi trong Go?</title>")
	require.Contains(t, page, "user-message")
	require.Contains(t, page, "assistant-message")
	require.Contains(t, page, `<div class="code-lang">go</div>`)
	require.Contains(t, page, `<code class="inline-code">error</code>`)

	// Highlighted code is styled inline, prose is escaped
	require.Contains(t, page, "style=")
	require.Contains(t, page, "&lt;b&gt;!&lt;/b&gt;")
	require.NotContains(t, page, "<b>!</b>")
}

func TestHTMLExport_EscapesTitleAndLanguage(t *testing.T) {
	conv := sampleConversation()
	conv.Title = "<script>alert(1)</script>"
	conv.Messages[1].Content = "```<img>\nx\n```"

	out, err := NewHTMLExporter(nil).Export(conv)
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>alert(1)</script>")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(filepath.Join(dir, "nested"))

	path, err := Export(sampleConversation(), "markdown", opts)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "nested"), filepath.Dir(path))
	require.Equal(t, "conversation_Cách_xử_lý_lỗi_trong_Go-_20240610_143000.md", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Cách xử lý lỗi trong Go?")
}

func TestExportNil(t *testing.T) {
	_, err := Export(nil, "json", nil)
	require.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello world", "hello_world"},
		{"a/b\\c:d", "a-b-c-d"},
		{"", "conversation"},
		{"tab\there", "tab_here"},
		{"bell\x07", "bell-"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
