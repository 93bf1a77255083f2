package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-service/internal/client"
	"github.com/todoflow-labs/todo-service/internal/dto"
	"github.com/todoflow-labs/todo-service/internal/events"
	"github.com/todoflow-labs/todo-service/internal/handler"
	"github.com/todoflow-labs/todo-service/internal/logging"
	"github.com/todoflow-labs/todo-service/internal/store"
)

// newAPI runs the real todo endpoints and returns a client pointed at them.
func newAPI(t *testing.T) (*client.API, *store.Store) {
	st := store.New()
	r := chi.NewRouter()
	r.Mount("/api/todos", handler.Routes(st, events.Nop{}, logging.Nop()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return client.NewAPI(srv.URL+"/api/", srv.Client()), st
}

func TestAPIRoundTrip(t *testing.T) {
	api, st := newAPI(t)
	ctx := context.Background()

	items, err := api.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	created, err := api.Create(ctx, dto.NewItemDto{Title: dto.StringPtr("Buy milk")})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.TitleText())
	assert.Equal(t, 1, st.Len())

	got, err := api.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	created.IsCompleted = true
	updated, err := api.Update(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	ok, err := api.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAPIErrors(t *testing.T) {
	api, _ := newAPI(t)
	ctx := context.Background()

	_, err := api.Get(ctx, "nonexistent")
	assert.ErrorIs(t, err, client.ErrNotFound)
	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, handler.MsgNotFound, se.Reason)

	_, err = api.Create(ctx, dto.NewItemDto{Description: dto.StringPtr("no title")})
	assert.ErrorIs(t, err, client.ErrValidation)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, handler.MsgMissingTitle, se.Reason)

	_, err = api.Delete(ctx, "nonexistent")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestAPITransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client.NewAPI(url, nil).List(context.Background())
	require.Error(t, err)
	var se *client.StatusError
	assert.False(t, errors.As(err, &se))
}
