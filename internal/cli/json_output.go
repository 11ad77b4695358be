// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every --json command prints.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Fprint writes the response as indented JSON.
func (r *JSONResponse) Fprint(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// =============================================================================
// PAYLOADS
// =============================================================================

// AskData is the payload of `ask --json`.
type AskData struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
	Reply          string `json:"reply"`
	Failed         bool   `json:"failed"`
}

// HistoryItem is one row of `history list --json`.
type HistoryItem struct {
	Index          int    `json:"index"`
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
	Created        string `json:"created"`
	Messages       int    `json:"messages"`
}

// ExportData is the payload of `history export --json`.
type ExportData struct {
	ConversationID string `json:"conversation_id"`
	Format         string `json:"format"`
	Path           string `json:"path"`
}

// VersionData is the payload of `version --json`.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}
