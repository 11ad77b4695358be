// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sasage-tui/internal/config"
	"github.com/jeranaias/sasage-tui/internal/controller"
	"github.com/jeranaias/sasage-tui/internal/model"
	"github.com/jeranaias/sasage-tui/internal/ui/styles"
)

// noticeDuration is how long status notices stay visible.
const noticeDuration = 3 * time.Second

// =============================================================================
// FOCUS
// =============================================================================

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	Controller *controller.Controller
	Config     config.Config
	Theme      *styles.Theme
	Logger     *zap.Logger

	// HistoryChanges, if set, triggers a history reload on every value.
	HistoryChanges <-chan struct{}

	// Now returns the current time. Default: time.Now
	Now func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	ctrl    *controller.Controller
	cfg     config.Config
	theme   *styles.Theme
	keys    KeyMap
	logger  *zap.Logger
	changes <-chan struct{}
	now     func() time.Time

	list     list.Model
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *messageRenderer

	focus         focusArea
	sidebarHidden bool
	suggestion    int

	notice    string
	noticeSeq int

	width  int
	height int
	ready  bool
}

// New creates the chat model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(opts.Config.UI.Theme)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = fmt.Sprintf(inputPlaceholder, opts.Config.App.Name)
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Thinking),
	)

	m := Model{
		ctrl:     opts.Controller,
		cfg:      opts.Config,
		theme:    theme,
		keys:     DefaultKeyMap(),
		logger:   logger.Named("ui"),
		changes:  opts.HistoryChanges,
		now:      now,
		list:     newConversationList(theme, 20, 10),
		viewport: viewport.New(0, 0),
		input:    input,
		spinner:  sp,
	}
	m.refreshList()
	return m
}

// Init starts the cursor blink and the history watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForHistoryChange(m.changes))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case replyMsg:
		m.ctrl.CompleteSend(msg.pending, msg.resp, msg.err)
		m.refreshList()
		m.refreshViewport(true)
		return m, nil

	case historyChangedMsg:
		before := len(m.ctrl.History())
		m.ctrl.Reload()
		m.refreshList()
		m.refreshViewport(false)
		wait := waitForHistoryChange(m.changes)
		if len(m.ctrl.History()) == before {
			return m, wait
		}
		next, notice := m.setNotice(noticeReloaded)
		return next, tea.Batch(wait, notice)

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("clipboard write failed", zap.Error(msg.err))
			return m.setNotice("Không thể sao chép: " + msg.err.Error())
		}
		return m.setNotice(noticeCopied)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout holds the computed region sizes for the current terminal size.
type layout struct {
	sidebarWidth  int
	sidebarHeight int
	paneWidth     int
	bodyHeight    int
}

const (
	headerHeight   = 2
	inputHeight    = 3
	thinkingHeight = 1
	statusHeight   = 1
)

func (m Model) sidebarVisible() bool {
	return !m.sidebarHidden && m.theme.GetLayoutMode() != styles.LayoutNarrow
}

func (m Model) layout() layout {
	var l layout
	if m.sidebarVisible() {
		l.sidebarWidth = m.cfg.UI.SidebarWidth
		if l.sidebarWidth > m.width/2 {
			l.sidebarWidth = m.width / 2
		}
	}
	l.sidebarHeight = m.height - statusHeight
	l.paneWidth = m.width - l.sidebarWidth

	chips := 0
	if len(m.cfg.Features.Names()) > 0 {
		chips = 1
	}
	l.bodyHeight = m.height - headerHeight - inputHeight - thinkingHeight - statusHeight - chips
	if l.bodyHeight < 3 {
		l.bodyHeight = 3
	}
	return l
}

func (m Model) handleResize(width, height int) Model {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	l := m.layout()
	if l.sidebarWidth > 0 {
		// Border and padding take three columns; header lines take four rows
		m.list.SetSize(l.sidebarWidth-3, l.sidebarHeight-4)
	}
	m.viewport.Width = l.paneWidth
	m.viewport.Height = l.bodyHeight
	m.input.Width = l.paneWidth - 4 - len(m.input.Prompt) - 1
	m.renderer = newMessageRenderer(m.theme, l.paneWidth)

	if !m.sidebarVisible() && m.focus == focusSidebar {
		m.focusOn(focusInput)
	}

	m.ready = true
	m.refreshViewport(true)
	return m
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// While filtering, the list owns the keyboard
	if m.focus == focusSidebar && m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		m.ctrl.StartNewConversation()
		m.suggestion = 0
		m.focusOn(focusInput)
		m.refreshList()
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarHidden = !m.sidebarHidden
		return m.handleResize(m.width, m.height), nil

	case key.Matches(msg, m.keys.CopyReply):
		current, ok := m.ctrl.Current()
		if !ok {
			return m.setNotice(noticeNothing)
		}
		reply, ok := current.LastAssistantMessage()
		if !ok {
			return m.setNotice(noticeNothing)
		}
		return m, copyCmd(reply.Content)

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == focusInput && m.sidebarVisible() {
			m.focusOn(focusSidebar)
		} else {
			m.focusOn(focusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
			return m, nil
		}
		m.focusOn(focusInput)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		item, ok := m.list.SelectedItem().(conversationItem)
		if !ok {
			return m, nil
		}
		m.ctrl.SelectByID(item.conv.ConversationID)
		m.suggestion = 0
		m.focusOn(focusInput)
		m.refreshList()
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(conversationItem)
		if !ok {
			return m, nil
		}
		m.ctrl.DeleteConversation(item.conv.ConversationID)
		m.refreshList()
		m.refreshViewport(true)
		return m.setNotice(noticeDeleted)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	empty := strings.TrimSpace(m.input.Value()) == ""

	if m.showSuggestions() && empty {
		switch {
		case key.Matches(msg, m.keys.PrevItem):
			if m.suggestion > 0 {
				m.suggestion--
			}
			return m, nil
		case key.Matches(msg, m.keys.NextItem):
			if m.suggestion < len(SuggestedQuestions)-1 {
				m.suggestion++
			}
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			m.input.SetValue(SuggestedQuestions[m.suggestion])
			m.input.CursorEnd()
			return m, nil
		}
	}

	if key.Matches(msg, m.keys.Submit) {
		if m.ctrl.IsLoading() || empty {
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the controller and starts the network call.
func (m Model) submit() (tea.Model, tea.Cmd) {
	hadCurrent := m.ctrl.CurrentID() != ""
	p, ok := m.ctrl.BeginSend(m.input.Value())
	m.input.Reset()
	m.refreshList()
	m.refreshViewport(true)

	if !ok {
		if !hadCurrent {
			return m.setNotice(noticeNewChat)
		}
		return m, nil
	}
	return m, tea.Batch(sendCmd(m.ctrl, p), m.spinner.Tick)
}

// =============================================================================
// STATE HELPERS
// =============================================================================

func (m *Model) focusOn(area focusArea) {
	m.focus = area
	if area == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) setNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	return m, expireNoticeCmd(m.noticeSeq, noticeDuration)
}

// showSuggestions reports whether the welcome screen replaces the messages.
func (m Model) showSuggestions() bool {
	if !m.cfg.UI.ShowSuggestions || m.ctrl.IsLoading() {
		return false
	}
	current, ok := m.ctrl.Current()
	return !ok || current.IsEmpty()
}

// refreshList rebuilds the sidebar items from the controller's history.
func (m *Model) refreshList() {
	currentID := m.ctrl.CurrentID()
	history := m.ctrl.History()
	m.list.SetItems(conversationItems(history, currentID, m.now()))

	if m.focus == focusInput && currentID != "" {
		if i := model.IndexOf(history, currentID); i >= 0 {
			m.list.Select(i)
		}
	}
}

// refreshViewport re-renders the current conversation.
func (m *Model) refreshViewport(toBottom bool) {
	if !m.ready || m.renderer == nil {
		return
	}
	content := ""
	if current, ok := m.ctrl.Current(); ok {
		content = m.renderer.Render(current.Messages)
	}
	m.viewport.SetContent(content)
	if toBottom {
		m.viewport.GotoBottom()
	}
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}

// Notice returns the status notice, if any.
func (m Model) Notice() string {
	return m.notice
}
