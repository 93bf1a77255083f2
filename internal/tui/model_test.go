package tui_test

import (
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-service/internal/client"
	"github.com/todoflow-labs/todo-service/internal/dto"
	"github.com/todoflow-labs/todo-service/internal/events"
	"github.com/todoflow-labs/todo-service/internal/handler"
	"github.com/todoflow-labs/todo-service/internal/logging"
	"github.com/todoflow-labs/todo-service/internal/store"
	"github.com/todoflow-labs/todo-service/internal/tui"
)

func setup(t *testing.T) (*store.Store, *client.Board, tea.Model) {
	st := store.New()
	r := chi.NewRouter()
	r.Mount("/api/todos", handler.Routes(st, events.Nop{}, logging.Nop()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	board := client.NewBoard(client.NewAPI(srv.URL+"/api", srv.Client()), logging.Nop())
	return st, board, tui.New(board)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds msg to m and, when the resulting command is one of ours,
// runs it and feeds its result back.
func press(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	m, cmd := m.Update(msg)
	return m, cmd
}

func settle(m tea.Model, cmd tea.Cmd) tea.Model {
	if cmd == nil {
		return m
	}
	m, _ = m.Update(cmd())
	return m
}

func TestInitLoadsItems(t *testing.T) {
	st, board, m := setup(t)
	st.Insert(dto.NewItem(dto.NewItemDto{Title: dto.StringPtr("Buy milk")}))

	m = settle(m, m.Init())

	assert.True(t, board.Fetched())
	assert.Contains(t, m.View(), "Buy milk")
}

func TestAddFlow(t *testing.T) {
	st, board, m := setup(t)
	m = settle(m, m.Init())

	m, _ = press(t, m, runes("a"))
	require.True(t, board.PanelOpen())
	assert.Contains(t, m.View(), "Add new item")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Title is required")
	assert.Equal(t, 0, st.Len())

	m, _ = press(t, m, runes("Buy milk"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, runes("two litres"))
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = settle(m, cmd)

	assert.False(t, board.PanelOpen())
	require.Equal(t, 1, st.Len())
	stored := st.GetAll()[0]
	assert.Equal(t, "Buy milk", stored.TitleText())
	assert.Equal(t, "two litres", stored.DescriptionText())
	assert.Contains(t, m.View(), "Buy milk")
}

func TestEscClosesPanel(t *testing.T) {
	_, board, m := setup(t)
	m, _ = press(t, m, runes("a"))
	require.True(t, board.PanelOpen())

	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, board.PanelOpen())
}

func TestToggleAndDelete(t *testing.T) {
	st, board, m := setup(t)
	it := dto.NewItem(dto.NewItemDto{Title: dto.StringPtr("Buy milk")})
	st.Insert(it)
	m = settle(m, m.Init())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	m = settle(m, cmd)
	stored, err := st.Get(it.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.True(t, board.Items()[0].IsCompleted)

	m, cmd = press(t, m, runes("d"))
	require.NotNil(t, cmd)
	m = settle(m, cmd)
	assert.Equal(t, 0, st.Len())
	assert.Empty(t, board.Items())
	assert.NotContains(t, m.View(), "Buy milk")
}

func TestDeleteFailureShowsError(t *testing.T) {
	st, board, m := setup(t)
	it := dto.NewItem(dto.NewItemDto{Title: dto.StringPtr("Buy milk")})
	st.Insert(it)
	m = settle(m, m.Init())

	// removed behind the client's back
	st.Remove(it.ID)

	m, cmd := press(t, m, runes("d"))
	m = settle(m, cmd)
	assert.Contains(t, m.View(), "Item not found")
	assert.Empty(t, board.Items())
}

func TestQuit(t *testing.T) {
	_, _, m := setup(t)
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
