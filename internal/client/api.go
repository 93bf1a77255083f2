// Package client talks to the todo API and keeps a local view of its items.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/todoflow-labs/todo-service/internal/dto"
)

var (
	ErrNotFound   = errors.New("item not found")
	ErrValidation = errors.New("validation failed")
)

// StatusError is a non-2xx response. Reason is the server's plain-text body.
type StatusError struct {
	Status int
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("todo api: %d %s", e.Status, e.Reason)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrValidation
	}
	return nil
}

// API is a typed client for /todos under a base URL such as
// http://localhost:8080/api.
type API struct {
	base string
	http *http.Client
}

func NewAPI(baseURL string, hc *http.Client) *API {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{base: strings.TrimRight(baseURL, "/"), http: hc}
}

func (a *API) List(ctx context.Context) ([]dto.Item, error) {
	var items []dto.Item
	if err := a.do(ctx, http.MethodGet, "/todos", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []dto.Item{}
	}
	return items, nil
}

func (a *API) Get(ctx context.Context, id string) (dto.Item, error) {
	var it dto.Item
	err := a.do(ctx, http.MethodGet, "/todos/"+url.PathEscape(id), nil, &it)
	return it, err
}

func (a *API) Create(ctx context.Context, in dto.NewItemDto) (dto.Item, error) {
	var it dto.Item
	err := a.do(ctx, http.MethodPost, "/todos", in, &it)
	return it, err
}

func (a *API) Update(ctx context.Context, item dto.Item) (dto.Item, error) {
	var it dto.Item
	err := a.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(item.ID), item, &it)
	return it, err
}

// Delete returns the server's removal result.
func (a *API) Delete(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := a.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, &ok)
	return ok, err
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Reason: strings.TrimSpace(string(reason))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
