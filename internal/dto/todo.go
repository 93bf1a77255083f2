// internal/dto/todo.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// Item is a todo entry as stored and as sent over the wire.
// Title and Description are nullable on the wire.
type Item struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"isCompleted"`
}

// NewItemDto is the creation payload. It carries no id and no completion flag.
type NewItemDto struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// HasTitle reports whether the payload carries a non-empty title.
func (d NewItemDto) HasTitle() bool {
	return d.Title != nil && *d.Title != ""
}

// NewItem builds a fresh, incomplete Item with a server-assigned id.
func NewItem(d NewItemDto) Item {
	return Item{
		ID:          uuid.NewString(),
		Title:       cloneString(d.Title),
		Description: cloneString(d.Description),
	}
}

// ApplyUpdate copies the mutable fields of src onto dst. dst.ID is never touched.
func ApplyUpdate(dst *Item, src Item) {
	dst.Title = cloneString(src.Title)
	dst.Description = cloneString(src.Description)
	dst.IsCompleted = src.IsCompleted
}

// Clone returns a deep copy of it.
func (it Item) Clone() Item {
	it.Title = cloneString(it.Title)
	it.Description = cloneString(it.Description)
	return it
}

// TitleText returns the title or "" when null.
func (it Item) TitleText() string {
	if it.Title == nil {
		return ""
	}
	return *it.Title
}

// DescriptionText returns the description or "" when null.
func (it Item) DescriptionText() string {
	if it.Description == nil {
		return ""
	}
	return *it.Description
}

// StringPtr is a convenience for building payloads.
func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type EventType string

const (
	ItemCreated EventType = "item.created"
	ItemUpdated EventType = "item.updated"
	ItemDeleted EventType = "item.deleted"
)

// Event describes a lifecycle change of an Item.
type Event struct {
	Type       EventType `json:"type"`
	Item       Item      `json:"item"`
	OccurredAt time.Time `json:"occurredAt"`
}
