// Package archive keeps a write-only audit trail of delivered reviews in
// PostgreSQL. Conversation state is never restored from it.
package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/reviewbot/review"
)

const (
	insertReviewQuery = `INSERT INTO reviews (id, user_id, phone, items, item_count)
VALUES (:id, :user_id, :phone, :items, :item_count)
ON CONFLICT (id) DO NOTHING`

	updateBonusQuery = `UPDATE reviews SET bonus = :bonus, bonus_at = now() WHERE id = :id`
)

type reviewRow struct {
	ID     string `db:"id"`
	UserID int64  `db:"user_id"`
	Phone  string `db:"phone"`
	// Items is JSON text; lib/pq would send []byte as bytea.
	Items     string `db:"items"`
	ItemCount int    `db:"item_count"`
}

type bonusRow struct {
	ID    string `db:"id"`
	Bonus string `db:"bonus"`
}

// itemRecord is the JSON shape of one stored item.
type itemRecord struct {
	Kind    review.Kind `json:"kind"`
	Text    string      `json:"text,omitempty"`
	FileID  string      `json:"file_id,omitempty"`
	Caption string      `json:"caption,omitempty"`
}

func encodeItems(items []review.Item) ([]byte, error) {
	records := make([]itemRecord, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case review.Text:
			records = append(records, itemRecord{Kind: v.Kind(), Text: v.Body})
		case review.Photo:
			records = append(records, itemRecord{Kind: v.Kind(), FileID: v.FileID, Caption: v.Caption})
		case review.Video:
			records = append(records, itemRecord{Kind: v.Kind(), FileID: v.FileID, Caption: v.Caption})
		case review.VideoNote:
			records = append(records, itemRecord{Kind: v.Kind(), FileID: v.FileID})
		}
	}
	return json.Marshal(records)
}

// Store persists archive rows.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// SaveReview inserts the confirmed batch. Saving the same review twice is a no-op.
func (s *Store) SaveReview(ctx context.Context, b review.Batch) error {
	items, err := encodeItems(b.Items)
	if err != nil {
		return fmt.Errorf("archive: encode items: %w", err)
	}
	row := reviewRow{
		ID:        b.ReviewID,
		UserID:    b.User,
		Phone:     b.Phone,
		Items:     string(items),
		ItemCount: len(b.Items),
	}
	if _, err := s.db.NamedExecContext(ctx, insertReviewQuery, row); err != nil {
		return fmt.Errorf("archive: insert review %s: %w", b.ReviewID, err)
	}
	return nil
}

// SaveBonus records the bonus chosen for a stored review.
func (s *Store) SaveBonus(ctx context.Context, n review.BonusNotice) error {
	res, err := s.db.NamedExecContext(ctx, updateBonusQuery, bonusRow{ID: n.ReviewID, Bonus: n.Label})
	if err != nil {
		return fmt.Errorf("archive: update bonus %s: %w", n.ReviewID, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("archive: review %s: %w", n.ReviewID, ErrReviewNotFound)
	}
	return nil
}
