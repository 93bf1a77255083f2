// Package tui renders a client.Board in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/todoflow-labs/todo-service/internal/client"
	"github.com/todoflow-labs/todo-service/internal/dto"
)

const requestTimeout = 10 * time.Second

// listItem adapts dto.Item to bubbles/list.Item
type listItem struct{ item dto.Item }

func (i listItem) Title() string       { return i.item.TitleText() }
func (i listItem) Description() string { return i.item.DescriptionText() }
func (i listItem) FilterValue() string { return i.item.TitleText() }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(listItem)
	if !ok {
		return
	}
	it := li.item
	box := mutedStyle.Render(boxUnchecked)
	text := it.TitleText()
	if it.IsCompleted {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	if desc := it.DescriptionText(); desc != "" {
		text += " " + mutedStyle.Render("— "+desc)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+box+" "+text)
}

// Messages produced by commands.
type (
	loadedMsg struct{ err error }
	mutatedMsg struct {
		note string
		err  error
	}
)

type keyMap struct {
	Add, Toggle, Delete, Refresh, Quit key.Binding
}

var keys = keyMap{
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea model over a Board.
type Model struct {
	board *client.Board

	list   list.Model
	title  textinput.Model
	desc   textinput.Model
	focus  int // 0 title, 1 description
	status string
	err    string
	width  int
	height int
}

func New(board *client.Board) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Todos"
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding { return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Refresh} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	title := textinput.New()
	title.Prompt = "Title: "
	title.Placeholder = "required"
	title.CharLimit = 200

	desc := textinput.New()
	desc.Prompt = "Description: "
	desc.Placeholder = "optional"
	desc.CharLimit = 500

	return Model{board: board, list: l, title: title, desc: desc, width: 80, height: 24}
}

// Run starts the program on the terminal.
func Run(board *client.Board) error {
	_, err := tea.NewProgram(New(board), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load(false)
}

func (m Model) load(force bool) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if force {
			return loadedMsg{err: b.Refresh(ctx)}
		}
		return loadedMsg{err: b.Load(ctx)}
	}
}

func (m Model) mutate(note string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return mutatedMsg{note: note, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.setResult("loaded", msg.err)
		m.sync()
		return m, nil

	case mutatedMsg:
		m.setResult(msg.note, msg.err)
		m.sync()
		return m, nil

	case tea.KeyMsg:
		if m.board.PanelOpen() {
			return m.updatePanel(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Add):
		m.board.OpenPanel()
		m.err = ""
		m.title.SetValue("")
		m.desc.SetValue("")
		m.focus = 0
		m.desc.Blur()
		m.resize()
		cmd := m.title.Focus()
		return m, cmd
	case key.Matches(msg, keys.Refresh):
		return m, m.load(true)
	case key.Matches(msg, keys.Toggle):
		if it, ok := m.selected(); ok {
			id := it.ID
			return m, m.mutate("updated", func(ctx context.Context) error {
				_, err := m.board.Toggle(ctx, id)
				return err
			})
		}
		return m, nil
	case key.Matches(msg, keys.Delete):
		if it, ok := m.selected(); ok {
			id := it.ID
			return m, m.mutate("deleted", func(ctx context.Context) error {
				removed, err := m.board.Delete(ctx, id)
				if err == nil && !removed {
					return errors.New("delete unsuccessful")
				}
				return err
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updatePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.board.ClosePanel()
		m.title.Blur()
		m.desc.Blur()
		m.resize()
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		m.focus = 1 - m.focus
		var cmd tea.Cmd
		if m.focus == 0 {
			m.desc.Blur()
			cmd = m.title.Focus()
		} else {
			m.title.Blur()
			cmd = m.desc.Focus()
		}
		return m, cmd
	case tea.KeyEnter:
		title := strings.TrimSpace(m.title.Value())
		if title == "" {
			m.err = "Title is required"
			return m, nil
		}
		desc := strings.TrimSpace(m.desc.Value())
		return m, m.mutate("added", func(ctx context.Context) error {
			_, err := m.board.Create(ctx, title, desc)
			return err
		})
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m *Model) setResult(note string, err error) {
	if err != nil {
		m.err = err.Error()
		m.status = ""
		return
	}
	m.err = ""
	m.status = note
}

// sync copies the board's items into the list, keeping the cursor in range.
func (m *Model) sync() {
	items := m.board.Items()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{item: it})
	}
	m.list.SetItems(li)
	if n := len(li); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	if !m.board.PanelOpen() {
		m.title.Blur()
		m.desc.Blur()
	}
	m.list.Title = header(items)
	m.resize()
}

func (m *Model) resize() {
	h := m.height - 4
	if m.board.PanelOpen() {
		h -= 5
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) selected() (dto.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return dto.Item{}, false
	}
	return it.item, true
}

func (m Model) View() string {
	content := m.list.View()
	if m.board.PanelOpen() {
		heading := "Add new item"
		if m.err != "" {
			heading += "  " + errorStyle.Render(m.err)
		}
		form := heading + "\n" + m.title.View() + "\n" + m.desc.View() + "\n" +
			helpStyle.Render("tab switch • enter save • esc cancel")
		content += "\n" + panelStyle.Render(form)
	} else if m.err != "" {
		content += "\n" + errorStyle.Render(m.err)
	} else if m.status != "" {
		content += "\n" + mutedStyle.Render(m.status)
	}
	return panelStyle.Render(content)
}

func header(items []dto.Item) string {
	var done int
	for _, it := range items {
		if it.IsCompleted {
			done++
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		"Todos   ",
		successStyle.Render("✔"), fmt.Sprintf(" %d  ", done),
		pendingStyle.Render("•"), fmt.Sprintf(" %d  ", len(items)-done),
		accentStyle.Render("Total"), fmt.Sprintf(" %d", len(items)),
	)
}
