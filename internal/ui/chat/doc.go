// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat interface for sasage.
//
// The screen has a conversation sidebar, a message pane and an input box.
// All state changes go through the controller on the update loop; the only
// work done off it is the network call, which runs as a tea.Cmd.
//
// # Key Types
//
//   - Model: The root tea.Model
//   - KeyMap: Keyboard bindings
//
// # Usage
//
//	m := chat.New(chat.Options{Controller: ctrl, Config: cfg, Theme: theme})
//	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
//	_, err := p.Run()
package chat
