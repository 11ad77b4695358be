// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatapi is the client for the remote chat endpoint.
//
// The endpoint takes one message at a time; conversation context lives
// server-side, keyed by conversation_id.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/sasage-tui/internal/util"
)

// Configuration constants for the chat API.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// maxErrorBody bounds how many runes of an error body are kept on APIError.
	maxErrorBody = 512
)

// Error variables for common chat API failures.
var (
	// ErrEmptyMessage indicates Send was called with blank text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMalformedResponse indicates a 2xx response that was not valid JSON.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrResponseTooLarge indicates the response exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// APIError is returned for non-2xx responses.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("chat API error (HTTP %d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("chat API error (HTTP %d)", e.Status)
}

// ChatRequest is the body of POST <base>/chat.
type ChatRequest struct {
	Message string `json:"message"`
	// ConversationID is encoded as null when empty.
	ConversationID *string `json:"conversation_id"`
}

// ChatResponse is the decoded reply. Only Response is required by callers;
// unknown fields are ignored.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Reply returns the reply text and whether the payload carried one.
func (r *ChatResponse) Reply() (string, bool) {
	if r == nil || r.Response == "" {
		return "", false
	}
	return r.Response, true
}

// Sender sends one user message and returns the endpoint's reply.
type Sender interface {
	Send(ctx context.Context, message, conversationID string) (*ChatResponse, error)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat endpoint. It makes exactly one attempt per Send.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the transport-level request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request/response logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("chatapi")
		}
	}
}

// WithRateLimit throttles sends to rps with the given burst. rps <= 0
// disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the endpoint rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
		userAgent:  "sasage-tui",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts message to <base>/chat. Any transport error, non-2xx status or
// undecodable body is returned as an error; there is no retry.
func (c *Client) Send(ctx context.Context, message, conversationID string) (*ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqBody := ChatRequest{Message: message}
	if conversationID != "" {
		reqBody.ConversationID = &conversationID
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	c.logRequest(req, requestID, conversationID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("chat request failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	c.logResponse(resp, requestID, time.Since(start))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: truncateBody(body)}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &chatResp, nil
}

// logRequest logs method, path and ids. Message text is never logged.
func (c *Client) logRequest(req *http.Request, requestID, conversationID string) {
	c.logger.Debug("chat request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", requestID),
		zap.String("conversation_id", conversationID))
}

// logResponse logs status and duration. The body is never logged.
func (c *Client) logResponse(resp *http.Response, requestID string, duration time.Duration) {
	c.logger.Debug("chat response",
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration))
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: exceeded %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

func truncateBody(body []byte) string {
	return util.TruncateRunes(strings.TrimSpace(string(body)), maxErrorBody)
}
