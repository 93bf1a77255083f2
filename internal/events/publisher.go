// Package events publishes item lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/todoflow-labs/todo-service/internal/dto"
)

const (
	StreamName = "todo_events"
	Subject    = "todo.events"
)

// Publisher delivers events to whoever listens. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev dto.Event) error
	Ready() bool
	Close()
}

// New builds an Event stamped with the current time.
func New(t dto.EventType, item dto.Item) dto.Event {
	return dto.Event{Type: t, Item: item.Clone(), OccurredAt: time.Now().UTC()}
}

// Nop drops every event. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, dto.Event) error { return nil }
func (Nop) Ready() bool                              { return true }
func (Nop) Close()                                   {}

// JetStreamPublisher writes events to a JetStream stream.
type JetStreamPublisher struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// Connect dials url and makes sure the events stream exists.
func Connect(url string, opts ...nats.Option) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p, err := NewJetStreamPublisher(nc)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

// NewJetStreamPublisher wraps an open connection. Close closes nc.
func NewJetStreamPublisher(nc *nats.Conn) (*JetStreamPublisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("init JetStream: %w", err)
	}
	if err := EnsureStream(js); err != nil {
		return nil, err
	}
	return &JetStreamPublisher{nc: nc, js: js}, nil
}

// EnsureStream creates the events stream unless it already exists.
func EnsureStream(js nats.JetStreamContext) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{Subject},
	})
	if err == nil || errors.Is(err, nats.ErrStreamNameAlreadyInUse) || strings.Contains(err.Error(), "file already in use") {
		return nil
	}
	return fmt.Errorf("create JetStream stream: %w", err)
}

func (p *JetStreamPublisher) Publish(ctx context.Context, ev dto.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := p.js.Publish(Subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *JetStreamPublisher) Ready() bool {
	return p.nc.IsConnected()
}

func (p *JetStreamPublisher) Close() {
	p.nc.Close()
}
