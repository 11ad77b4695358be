// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSend_Success(t *testing.T) {
	var gotBody map[string]any
	var gotPath, gotRequestID, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		require.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Hi there","conversation_id":"conversation_1","extra":42}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/api/v1/")
	resp, err := client.Send(context.Background(), "Hello", "conversation_1")
	require.NoError(t, err)

	reply, ok := resp.Reply()
	require.True(t, ok)
	require.Equal(t, "Hi there", reply)
	require.Equal(t, "/api/v1/chat", gotPath)
	require.Equal(t, "application/json", gotContentType)
	_, err = uuid.Parse(gotRequestID)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"message": "Hello", "conversation_id": "conversation_1"}, gotBody)
}

func TestSend_NullConversationID(t *testing.T) {
	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		raw = string(data)
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Send(context.Background(), "hi", "")
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"hi","conversation_id":null}`, raw)
}

func TestSend_MissingResponseField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"wrong field"}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Send(context.Background(), "hi", "c")
	require.NoError(t, err)
	_, ok := resp.Reply()
	require.False(t, ok)
}

func TestSend_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				require.Equal(t, http.StatusInternalServerError, apiErr.Status)
				require.Equal(t, "boom", apiErr.Body)
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				require.Equal(t, "chat API error (HTTP 404)", apiErr.Error())
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   "<html>not json</html>",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Send(context.Background(), "hi", "c")
			require.Error(t, err)
			tt.check(t, err)
			require.Equal(t, 1, calls, "no retry")
		})
	}
}

func TestSend_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).Send(context.Background(), "hi", "c")
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestSend_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := NewClient(server.URL, WithTimeout(50*time.Millisecond)).Send(context.Background(), "hi", "c")
	require.Error(t, err)
}

func TestSend_EmptyMessage(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1").Send(context.Background(), "   ", "c")
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSend_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRateLimit(0.001, 1))
	_, err := client.Send(context.Background(), "first", "c")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Send(ctx, "second", "c")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "rate limit"))
}

func TestSend_ErrorBodyTruncatedOnRuneBoundary(t *testing.T) {
	// "ư" is two bytes, so a byte cut at an odd offset would split it
	body := "x" + strings.Repeat("ư", maxErrorBody)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Send(context.Background(), "hi", "")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.True(t, utf8.ValidString(apiErr.Body), "body must stay valid UTF-8")
	require.True(t, strings.HasSuffix(apiErr.Body, "..."))
	require.Equal(t, maxErrorBody+3, utf8.RuneCountInString(apiErr.Body))
}
