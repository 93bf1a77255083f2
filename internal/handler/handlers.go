package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todoflow-labs/todo-service/internal/dto"
	"github.com/todoflow-labs/todo-service/internal/events"
	"github.com/todoflow-labs/todo-service/internal/logging"
	"github.com/todoflow-labs/todo-service/internal/metrics"
	"github.com/todoflow-labs/todo-service/internal/store"
)

// Plain-text reasons returned with 4xx responses.
const (
	MsgNotFound       = "Item not found"
	MsgMissingTitle   = "Missing title"
	MsgInvalidPayload = "invalid payload"
)

func ListTodos(st *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := st.GetAll()
		logger.Debug().Int("count", len(items)).Msg("listing todos")
		metrics.TodoRequests.WithLabelValues("list", metrics.Success).Inc()
		writeJSON(w, http.StatusOK, items)
	}
}

func GetTodo(st *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		item, err := st.Get(id)
		if err != nil {
			notFound(w, logger, "get", id)
			return
		}
		metrics.TodoRequests.WithLabelValues("get", metrics.Success).Inc()
		writeJSON(w, http.StatusOK, item)
	}
}

func CreateTodo(st *store.Store, pub events.Publisher, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Msg("handling create todo")

		var in dto.NewItemDto
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn().Err(err).Msg("invalid create payload")
			http.Error(w, MsgInvalidPayload, http.StatusBadRequest)
			metrics.TodoRequests.WithLabelValues("create", metrics.Invalid).Inc()
			return
		}
		if !in.HasTitle() {
			logger.Warn().Msg("create rejected: missing title")
			http.Error(w, MsgMissingTitle, http.StatusBadRequest)
			metrics.TodoRequests.WithLabelValues("create", metrics.Invalid).Inc()
			return
		}

		item := dto.NewItem(in)
		st.Insert(item)
		metrics.StoredItems.Set(float64(st.Len()))

		publish(r.Context(), pub, logger, events.New(dto.ItemCreated, item))
		logger.Debug().Str("id", item.ID).Msg("todo created")
		metrics.TodoRequests.WithLabelValues("create", metrics.Success).Inc()
		writeJSON(w, http.StatusOK, item)
	}
}

// UpdateTodo overwrites title, description and completion of an existing item.
// The id in the path always wins over one in the body.
func UpdateTodo(st *store.Store, pub events.Publisher, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Msg("handling update todo")
		id := chi.URLParam(r, "id")

		stored, err := st.Get(id)
		if err != nil {
			notFound(w, logger, "update", id)
			return
		}

		var in dto.Item
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("invalid update payload")
			http.Error(w, MsgInvalidPayload, http.StatusBadRequest)
			metrics.TodoRequests.WithLabelValues("update", metrics.Invalid).Inc()
			return
		}

		dto.ApplyUpdate(&stored, in)
		if err := st.Replace(id, stored); err != nil {
			// removed between the read and the write
			notFound(w, logger, "update", id)
			return
		}

		publish(r.Context(), pub, logger, events.New(dto.ItemUpdated, stored))
		logger.Debug().Str("id", id).Msg("todo updated")
		metrics.TodoRequests.WithLabelValues("update", metrics.Success).Inc()
		writeJSON(w, http.StatusOK, stored)
	}
}

func DeleteTodo(st *store.Store, pub events.Publisher, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Msg("handling delete todo")
		id := chi.URLParam(r, "id")

		item, err := st.Get(id)
		if err != nil {
			notFound(w, logger, "delete", id)
			return
		}

		removed := st.Remove(id)
		metrics.StoredItems.Set(float64(st.Len()))
		if removed {
			publish(r.Context(), pub, logger, events.New(dto.ItemDeleted, item))
		}

		logger.Debug().Str("id", id).Bool("removed", removed).Msg("todo deleted")
		metrics.TodoRequests.WithLabelValues("delete", metrics.Success).Inc()
		writeJSON(w, http.StatusOK, removed)
	}
}

func notFound(w http.ResponseWriter, logger *logging.Logger, op, id string) {
	logger.Warn().Str("id", id).Str("op", op).Msg("todo not found")
	metrics.TodoRequests.WithLabelValues(op, metrics.NotFound).Inc()
	http.Error(w, MsgNotFound, http.StatusNotFound)
}

// publish is best effort: the store is authoritative, so a failed publish is
// logged and counted but never fails the request.
func publish(ctx context.Context, pub events.Publisher, logger *logging.Logger, ev dto.Event) {
	if err := pub.Publish(ctx, ev); err != nil {
		logger.Error().Err(err).Str("id", ev.Item.ID).Msgf("failed to publish %s event", ev.Type)
		metrics.EventsPublished.WithLabelValues(string(ev.Type), metrics.Error).Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type), metrics.Success).Inc()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
