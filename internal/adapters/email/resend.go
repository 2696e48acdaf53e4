package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the provider's per-call batch cap.
const resendBatchLimit = 100

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a ResendSender with a default from address.
// PRE: apiKey is a Resend API key
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) request(msg Message) *resend.SendEmailRequest {
	from := msg.From
	if from == "" {
		from = s.from
	}
	return &resend.SendEmailRequest{From: from, To: msg.To, Subject: msg.Subject, Html: msg.HTML}
}

// Send delivers one message.
// POST: message accepted by the provider, or error
func (s *ResendSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.request(msg))
	if err != nil {
		slog.Error("mail_event", "event", "send_failed", "error", err, "subject", msg.Subject)
		return Receipt{}, fmt.Errorf("resend send: %w", err)
	}
	slog.Info("mail_event", "event", "sent", "message_id", sent.Id, "subject", msg.Subject)
	return Receipt{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendEach delivers msgs through the batch endpoint in chunks.
// POST: receipts follow request order; on error the receipts so far are returned
func (s *ResendSender) SendEach(ctx context.Context, msgs []Message) ([]Receipt, error) {
	var receipts []Receipt
	for start := 0; start < len(msgs); start += resendBatchLimit {
		end := min(start+resendBatchLimit, len(msgs))

		batch := make([]*resend.SendEmailRequest, 0, end-start)
		for _, msg := range msgs[start:end] {
			batch = append(batch, s.request(msg))
		}
		resp, err := s.client.Batch.SendWithContext(ctx, batch)
		if err != nil {
			slog.Error("mail_event", "event", "batch_failed", "error", err, "size", len(batch))
			return receipts, fmt.Errorf("resend batch: %w", err)
		}
		for _, item := range resp.Data {
			receipts = append(receipts, Receipt{MessageID: item.Id, SentAt: time.Now()})
		}
	}
	slog.Info("mail_event", "event", "batch_sent", "count", len(receipts))
	return receipts, nil
}
