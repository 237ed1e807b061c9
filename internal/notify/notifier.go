// Package notify delivers one-shot roster broadcasts to the shared event
// channel. Delivery mechanics live here so the roster engine can stay a
// pure decision-maker: it returns a notification, the daemon hands it to
// a Notifier.
package notify

import (
	"context"

	"git.home.luguber.info/inful/rosterd/internal/roster"
)

// Notifier delivers a broadcast to the shared channel.
type Notifier interface {
	Broadcast(ctx context.Context, n roster.Notification) error
	Close() error
}

// Noop is a Notifier that drops broadcasts (default when no transport is
// configured).
type Noop struct{}

func (Noop) Broadcast(context.Context, roster.Notification) error { return nil }
func (Noop) Close() error                                         { return nil }
