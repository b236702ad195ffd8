package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	tele "gopkg.in/telebot.v3"
)

// ErrNotConfigured is returned when Telegram credentials are absent. The
// caller logs and skips; it is not a delivery failure and nothing was sent.
var ErrNotConfigured = errors.New("telegram credentials not configured")

// DeliveryError is any non-success response from Telegram other than a
// flood wait. It is never retried here: the poll loop's backoff policy
// governs another attempt on the next cycle.
type DeliveryError struct {
	Code        int
	Description string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("telegram delivery failed (%d): %s", e.Code, e.Description)
}

// Sender is the telebot surface the notifier needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

const floodRetryMargin = 250 * time.Millisecond

// TelegramNotifier delivers rendered event messages to one chat. Sending is
// an externally visible, non-idempotent action: deduplication is entirely
// the caller's responsibility.
type TelegramNotifier struct {
	sender Sender
	chat   tele.ChatID
}

func NewTelegramNotifier(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chat: tele.ChatID(chatID)}
}

// Notify sends text to the configured chat. A Telegram flood wait is
// honored exactly once, sleeping the suggested delay plus a small margin;
// any failure after that surfaces as a DeliveryError.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if n.sender == nil || n.chat == 0 {
		return ErrNotConfigured
	}

	_, err := n.sender.Send(n.chat, text)
	if err == nil {
		return nil
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		wait := time.Duration(flood.RetryAfter)*time.Second + floodRetryMargin
		log.Printf("Telegram flood wait, retrying in %v", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if _, err = n.sender.Send(n.chat, text); err == nil {
			return nil
		}
	}
	return asDeliveryError(err)
}

func asDeliveryError(err error) error {
	// FloodError wraps its *Error in an unexported field, so it has to be
	// matched as a concrete value before the generic API error case.
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return &DeliveryError{
			Code:        http.StatusTooManyRequests,
			Description: fmt.Sprintf("flood wait of %ds still in effect", flood.RetryAfter),
		}
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return &DeliveryError{Code: apiErr.Code, Description: apiErr.Description}
	}
	return &DeliveryError{Description: err.Error()}
}
