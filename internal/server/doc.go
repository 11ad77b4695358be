// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a local stand-in for the chat endpoint, used for
// development without the real backend.
//
// # Endpoints
//
//   - POST /api/v1/chat - echoes the message back as the reply
//   - GET  /health      - health check and request counters
//
// Two message texts trigger failure modes: "/error" answers HTTP 500 and
// "/empty" answers a body without a response field.
//
// # Usage
//
//	srv := server.New(server.DefaultConfig(), logger)
//	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
//		log.Fatal(err)
//	}
package server
