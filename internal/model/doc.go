// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation and message types shared by the
// store, the controller and the UI.
//
// # Key Types
//
//   - Conversation: one chat thread with an ID, title, creation time and messages
//   - Message: one turn authored by the user or the assistant
//   - Sender: user or assistant
//
// Timestamps are epoch milliseconds so the persisted history blob keeps the
// layout used by the browser client.
//
// # Usage
//
//	conv := model.NewConversation(time.Now())
//	conv.AppendUserMessage("Xin chào", time.Now())
//	fmt.Println(conv.Title) // "Xin chào"
package model
