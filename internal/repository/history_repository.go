package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"glowcart/internal/domain"
)

// HistoryRepository defines access to recorded user interactions and
// declared personalization signals.
type HistoryRepository interface {
	RecentViews(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error)
	RecentPurchases(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error)
	SkinType(ctx context.Context, userID string) (string, error)
	RecordEvent(ctx context.Context, event *domain.UserEvent) error
	InteractionCounts(ctx context.Context, since time.Time) (map[string]int, error)
	CoPurchased(ctx context.Context, productID string, limit int) (map[string]int, error)
}

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new instance of HistoryRepository
func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// RecentViews retrieves the user's most recent view events, newest first.
func (r *historyRepository) RecentViews(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error) {
	return r.recentEvents(ctx, userID, domain.EventView, limit)
}

// RecentPurchases retrieves the user's most recent purchase events, newest first.
func (r *historyRepository) RecentPurchases(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error) {
	return r.recentEvents(ctx, userID, domain.EventPurchase, limit)
}

func (r *historyRepository) recentEvents(ctx context.Context, userID string, eventType domain.EventType, limit int) ([]domain.UserEvent, error) {
	query := `
		SELECT id, user_id, product_id, event_type, source, created_at
		FROM user_events
		WHERE user_id = $1 AND event_type = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user events: %w", err)
	}
	defer rows.Close()

	events := []domain.UserEvent{}
	for rows.Next() {
		event := domain.UserEvent{}
		var source sql.NullString
		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.ProductID,
			&event.Type,
			&source,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user event: %w", err)
		}
		event.Source = source.String
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user events: %w", err)
	}

	return events, nil
}

// SkinType returns the user's declared skin type, or "" when the user
// has no profile or never declared one.
func (r *historyRepository) SkinType(ctx context.Context, userID string) (string, error) {
	query := `SELECT skin_type FROM user_profiles WHERE user_id = $1`

	var skinType string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&skinType)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up skin type: %w", err)
	}

	return skinType, nil
}

// RecordEvent inserts a tracking event using parameterized queries.
func (r *historyRepository) RecordEvent(ctx context.Context, event *domain.UserEvent) error {
	query := `
		INSERT INTO user_events (id, user_id, product_id, event_type, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.UserID,
		event.ProductID,
		event.Type,
		event.Source,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	return nil
}

// InteractionCounts returns per-product interaction totals since the
// given time. Feeds trending velocity scoring.
func (r *historyRepository) InteractionCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT product_id, COUNT(*)
		FROM user_events
		WHERE created_at >= $1
		GROUP BY product_id
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var productID string
		var count int
		if err := rows.Scan(&productID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan interaction count: %w", err)
		}
		counts[productID] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction counts: %w", err)
	}

	return counts, nil
}

// CoPurchased returns products bought by users who also bought the given
// product, with co-occurrence counts.
func (r *historyRepository) CoPurchased(ctx context.Context, productID string, limit int) (map[string]int, error) {
	query := `
		SELECT other.product_id, COUNT(*)
		FROM user_events anchor
		JOIN user_events other
		  ON other.user_id = anchor.user_id
		 AND other.event_type = anchor.event_type
		 AND other.product_id <> anchor.product_id
		WHERE anchor.product_id = $1 AND anchor.event_type = $2
		GROUP BY other.product_id
		ORDER BY COUNT(*) DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, productID, domain.EventPurchase, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to count co-purchases: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var otherID string
		var count int
		if err := rows.Scan(&otherID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan co-purchase count: %w", err)
		}
		counts[otherID] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating co-purchase counts: %w", err)
	}

	return counts, nil
}
