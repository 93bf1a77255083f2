package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/todoflow-labs/todo-service/internal/dto"
	"github.com/todoflow-labs/todo-service/internal/logging"
)

var ErrTitleRequired = errors.New("title is required")

// Service is the subset of the API a Board needs.
type Service interface {
	List(ctx context.Context) ([]dto.Item, error)
	Create(ctx context.Context, in dto.NewItemDto) (dto.Item, error)
	Update(ctx context.Context, item dto.Item) (dto.Item, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Board is the client's copy of the server's items plus the state of the
// creation panel. Local items may go stale between fetches.
//
// When an update or delete fails the Board re-fetches the list, so the local
// view converges on the server's instead of keeping a half-applied change.
type Board struct {
	svc    Service
	logger *logging.Logger

	mu        sync.Mutex
	items     []dto.Item
	fetched   bool
	panelOpen bool
}

func NewBoard(svc Service, logger *logging.Logger) *Board {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Board{svc: svc, logger: logger}
}

// Items returns a snapshot of the local list.
func (b *Board) Items() []dto.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]dto.Item, len(b.items))
	for i, it := range b.items {
		out[i] = it.Clone()
	}
	return out
}

func (b *Board) Fetched() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetched
}

// Load fetches the list unless a fetch has already succeeded. An empty
// server list counts as fetched.
func (b *Board) Load(ctx context.Context) error {
	if b.Fetched() {
		return nil
	}
	return b.Refresh(ctx)
}

// Refresh replaces the local list with the server's.
func (b *Board) Refresh(ctx context.Context) error {
	b.logger.Debug().Msg("loading items")
	items, err := b.svc.List(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to load items")
		return err
	}
	b.mu.Lock()
	b.items = items
	b.fetched = true
	b.mu.Unlock()
	return nil
}

func (b *Board) OpenPanel() {
	b.mu.Lock()
	b.panelOpen = true
	b.mu.Unlock()
}

func (b *Board) ClosePanel() {
	b.mu.Lock()
	b.panelOpen = false
	b.mu.Unlock()
}

func (b *Board) PanelOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.panelOpen
}

// Create submits a new item. On success the item is appended and the panel
// closes; on failure nothing changes locally.
func (b *Board) Create(ctx context.Context, title, description string) (dto.Item, error) {
	if strings.TrimSpace(title) == "" {
		return dto.Item{}, ErrTitleRequired
	}
	in := dto.NewItemDto{Title: dto.StringPtr(title)}
	if description != "" {
		in.Description = dto.StringPtr(description)
	}

	created, err := b.svc.Create(ctx, in)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to create item")
		return dto.Item{}, err
	}

	b.mu.Lock()
	b.items = append(b.items, created)
	b.panelOpen = false
	b.mu.Unlock()
	return created, nil
}

// Toggle flips completion of the local item id and stores the server's answer.
func (b *Board) Toggle(ctx context.Context, id string) (dto.Item, error) {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return dto.Item{}, ErrNotFound
	}
	req := b.items[idx].Clone()
	b.mu.Unlock()

	req.IsCompleted = !req.IsCompleted
	updated, err := b.svc.Update(ctx, req)
	if err != nil {
		b.logger.Error().Err(err).Str("id", id).Msg("failed to update item")
		b.resync(ctx)
		return dto.Item{}, err
	}

	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.items[i] = updated
	}
	b.mu.Unlock()
	return updated, nil
}

// Delete removes id locally only when the server reports it removed.
func (b *Board) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := b.svc.Delete(ctx, id)
	if err != nil {
		b.logger.Error().Err(err).Str("id", id).Msg("failed to delete item")
		b.resync(ctx)
		return false, err
	}
	if !ok {
		b.logger.Warn().Str("id", id).Msg("delete unsuccessful")
		return false, nil
	}

	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.items = append(b.items[:i], b.items[i+1:]...)
	}
	b.mu.Unlock()
	b.logger.Debug().Str("id", id).Msg("successfully deleted")
	return true, nil
}

func (b *Board) resync(ctx context.Context) {
	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("resync after failed mutation did not complete")
	}
}

// indexOf must be called with mu held.
func (b *Board) indexOf(id string) int {
	for i, it := range b.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
