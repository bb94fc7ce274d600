// Package notification delivers payment lifecycle notifications to the
// in-app store, connected websocket clients and the event bus.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, recipientID int64, templateID domain.NotificationType, data map[string]any) error
}

// Multi sends to every sink in order. A failing sink does not stop the
// others; their errors are joined.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, recipientID int64, templateID domain.NotificationType, data map[string]any) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, recipientID, templateID, data); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", n, err))
		}
	}
	return errors.Join(errs...)
}

// Event is the payload pushed to websocket clients and published to Kafka.
type Event struct {
	Type        domain.NotificationType `json:"type"`
	RecipientID int64                   `json:"recipient_id"`
	Data        map[string]any          `json:"data,omitempty"`
}
