package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them. Used when no
// provider key is configured.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs msg and keeps it for inspection.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("mail_event", "event", "noop_send", "to", msg.To, "subject", msg.Subject)
	return Receipt{MessageID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// SendEach sends every message in order.
func (s *NoopSender) SendEach(ctx context.Context, msgs []Message) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(msgs))
	for _, msg := range msgs {
		r, _ := s.Send(ctx, msg)
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// Sent returns a copy of every message logged so far.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
