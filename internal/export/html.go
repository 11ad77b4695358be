// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/sasage-tui/internal/model"
)

var (
	codeBlockRegex  = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with embedded
// CSS. Fenced code blocks are highlighted with chroma.
type HTMLExporter struct {
	options   *Options
	formatter *chromahtml.Formatter
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options:   opts,
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
	}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	title := html.EscapeString(conv.DisplayTitle())
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"vi\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", title))
	sb.WriteString(fmt.Sprintf("    <meta name=\"generator\" content=\"%s\">\n", html.EscapeString(e.options.Generator)))
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt().Format(time.RFC3339)))
	sb.WriteString(htmlCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.theme()))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(conv))
	} else {
		sb.WriteString(fmt.Sprintf("        <header class=\"header\"><h1>%s</h1></header>\n", title))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	if e.options.Generator != "" {
		sb.WriteString("        <footer class=\"footer\">\n")
		sb.WriteString(fmt.Sprintf("            <p>Xuất từ <strong>%s</strong> lúc %s</p>\n",
			html.EscapeString(e.options.Generator), formatTimestamp(e.options.now())))
		sb.WriteString("        </footer>\n")
	}

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) theme() string {
	if e.options.Theme == "dark" {
		return "dark"
	}
	return "light"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(conv *model.Conversation) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.DisplayTitle())))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>ID:</strong> %s</span>\n", html.EscapeString(conv.ConversationID)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Tạo lúc:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt())))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Số tin nhắn:</strong> %d</span>\n", len(conv.Messages)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

func (e *HTMLExporter) renderMessage(msg model.Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", html.EscapeString(msg.Sender.String())))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(msg.Sender.DisplayName())))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Time())))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(e.formatContent(msg.Content))
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")

	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

// formatContent converts message Markdown to HTML: fenced code is
// highlighted, everything else is escaped prose.
func (e *HTMLExporter) formatContent(content string) string {
	var parts []string
	last := 0
	for _, loc := range codeBlockRegex.FindAllStringSubmatchIndex(content, -1) {
		parts = append(parts, formatProse(content[last:loc[0]]))
		lang := content[loc[2]:loc[3]]
		code := content[loc[4]:loc[5]]
		parts = append(parts, e.highlightCode(lang, code))
		last = loc[1]
	}
	parts = append(parts, formatProse(content[last:]))

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

// highlightCode renders one fenced block. Unknown languages are detected
// from the code; if highlighting fails the code is escaped as-is.
func (e *HTMLExporter) highlightCode(lang, code string) string {
	code = strings.TrimRight(code, "\n")

	langLabel := ""
	if lang != "" {
		langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang))
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github"
	if e.theme() == "dark" {
		styleName = "monokai"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	var buf bytes.Buffer
	iterator, err := lexer.Tokenise(nil, code)
	if err == nil {
		err = e.formatter.Format(&buf, style, iterator)
	}
	if err != nil {
		return fmt.Sprintf("<div class=\"code-block\">%s<pre><code>%s</code></pre></div>",
			langLabel, html.EscapeString(code))
	}
	return fmt.Sprintf("<div class=\"code-block\">%s%s</div>", langLabel, buf.String())
}

// formatProse escapes text and splits it into paragraphs. Single newlines
// become line breaks.
func formatProse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		para = html.EscapeString(para)
		para = inlineCodeRegex.ReplaceAllString(para, "<code class=\"inline-code\">$1</code>")
		para = strings.ReplaceAll(para, "\n", "<br>\n")
		paragraphs = append(paragraphs, "<p>"+para+"</p>")
	}
	return strings.Join(paragraphs, "\n")
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const htmlCSS = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --font-sans: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            --font-mono: "JetBrains Mono", "Fira Code", Consolas, monospace;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f8f9fa;
            --text-primary: #1a1a1a;
            --text-secondary: #5f6368;
            --border-color: #e0e0e0;
            --user-bg: #1976d2;
            --user-fg: #ffffff;
            --assistant-bg: #ffffff;
            --accent: #1976d2;
        }

        .dark-theme {
            --bg-primary: #1e1e1e;
            --bg-secondary: #181818;
            --text-primary: #e8eaed;
            --text-secondary: #9aa0a6;
            --border-color: #3c4043;
            --user-bg: #1565c0;
            --user-fg: #ffffff;
            --assistant-bg: #202020;
            --accent: #64b5f6;
        }

        body {
            font-family: var(--font-sans);
            background: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.6;
            padding: 24px;
        }

        .container { max-width: 900px; margin: 0 auto; }

        .header, .conversation, .footer {
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 16px;
        }

        .header h1 { font-size: 1.5rem; color: var(--accent); margin-bottom: 8px; }
        .metadata { display: flex; flex-wrap: wrap; gap: 16px; color: var(--text-secondary); font-size: 0.875rem; }

        .message { max-width: 80%; margin-bottom: 20px; padding: 12px 16px; border-radius: 12px; }
        .user-message { margin-left: auto; background: var(--user-bg); color: var(--user-fg); }
        .assistant-message { background: var(--assistant-bg); border: 1px solid var(--border-color); }

        .message-header { display: flex; justify-content: space-between; gap: 12px; font-size: 0.75rem; opacity: 0.8; margin-bottom: 6px; }
        .role-label { font-weight: 600; }
        .message-content p { margin-bottom: 8px; }

        .code-block { margin: 8px 0; border-radius: 8px; overflow: hidden; }
        .code-block pre { padding: 12px; overflow-x: auto; font-family: var(--font-mono); font-size: 0.85rem; }
        .code-lang { font-family: var(--font-mono); font-size: 0.75rem; padding: 4px 12px; background: var(--border-color); }
        .inline-code { font-family: var(--font-mono); padding: 1px 4px; border-radius: 4px; background: var(--bg-secondary); color: var(--text-primary); }

        .footer { text-align: center; color: var(--text-secondary); font-size: 0.875rem; }

        @media print {
            body { padding: 0; background: #fff; }
            .message { page-break-inside: avoid; }
        }

        @media (max-width: 768px) {
            body { padding: 10px; }
            .message { max-width: 100%; }
        }
    </style>
`
