package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/rosterd/internal/logfields"
	"git.home.luguber.info/inful/rosterd/internal/roster"
)

// NATSNotifier publishes roster broadcasts on a NATS subject. Transport
// adapters (the chat bridge) subscribe to the subject and render the
// message into the group channel.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// broadcastMessage is the wire payload for a roster broadcast.
type broadcastMessage struct {
	Threshold int       `json:"threshold"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNATSNotifier connects to NATS and returns a notifier publishing on
// the given subject.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		return nil, fmt.Errorf("broadcast subject is required")
	}

	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS notifier initialized", "url", url, logfields.Subject(subject))

	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Broadcast publishes the notification and flushes the connection so the
// caller knows the message left the process.
func (n *NATSNotifier) Broadcast(ctx context.Context, notification roster.Notification) error {
	msg := broadcastMessage{
		Threshold: notification.Threshold,
		Text:      notification.Text,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish broadcast: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush broadcast: %w", err)
	}

	slog.Debug("published roster broadcast",
		logfields.Subject(n.subject),
		logfields.Threshold(notification.Threshold))

	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
