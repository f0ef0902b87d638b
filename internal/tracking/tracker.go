package tracking

import (
	"context"
	"time"

	"glowcart/internal/domain"
	"glowcart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ingestTimeout = 5 * time.Second

// Tracker ingests analytics events. Ingestion is best-effort and
// fire-and-forget: callers never wait for the write, and failures are
// logged and swallowed so tracking can never affect a user-facing
// response.
type Tracker struct {
	history repository.HistoryRepository
	logger  *zap.Logger
}

func NewTracker(history repository.HistoryRepository, logger *zap.Logger) *Tracker {
	return &Tracker{history: history, logger: logger}
}

// Track records an event asynchronously. The write runs detached from
// the request lifecycle with its own timeout so slow storage cannot pin
// request goroutines.
func (t *Tracker) Track(userID, productID string, eventType domain.EventType, source string) {
	event := &domain.UserEvent{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Type:      eventType,
		Source:    source,
		CreatedAt: time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()

		if err := t.history.RecordEvent(ctx, event); err != nil {
			t.logger.Warn("Failed to record tracking event",
				zap.String("user_id", userID),
				zap.String("product_id", productID),
				zap.String("event_type", string(eventType)),
				zap.Error(err),
			)
		}
	}()
}
