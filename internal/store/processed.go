package store

import (
	"context"
	"fmt"
	"time"

	"github.com/frag-eval/frag-poll/internal/store/model"
	"github.com/frag-eval/frag-poll/internal/submission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Processed is the processed-set tracker: the only memory shared between
// polling passes.
type Processed interface {
	IsProcessed(ctx context.Context, obj submission.RemoteObject, confidence submission.Confidence) (bool, error)
	Confirm(ctx context.Context, obj submission.RemoteObject, confidence submission.Confidence) error
}

type ProcessedStore struct {
	db     *gorm.DB
	poller string
}

// Make sure we conform to Processed interface
var _ Processed = (*ProcessedStore)(nil)

func NewProcessedStore(db *gorm.DB, poller string) Processed {
	return &ProcessedStore{db: db, poller: poller}
}

// IsProcessed reports whether obj was confirmed at confidence or any higher
// level.
func (p *ProcessedStore) IsProcessed(ctx context.Context, obj submission.RemoteObject, confidence submission.Confidence) (bool, error) {
	var count int64
	err := getDB(ctx, p.db).
		Model(&model.Processed{}).
		Joins("JOIN poll_identities ON poll_identities.id = poll_processed.identity_id").
		Where("poll_identities.poller = ? AND poll_identities.path = ?", p.poller, obj.Identity()).
		Where("poll_processed.author = ? AND poll_processed.changed_at = ?", obj.Author(), normalizeTime(obj.ChangedAt())).
		Where("poll_processed.confidence >= ?", int(confidence)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Confirm records obj at confidence. Confirming an already recorded fact is
// a no-op.
func (p *ProcessedStore) Confirm(ctx context.Context, obj submission.RemoteObject, confidence submission.Confidence) error {
	if !confidence.Valid() {
		return fmt.Errorf("invalid confidence %d", int(confidence))
	}
	db := getDB(ctx, p.db)

	identity := model.Identity{Poller: p.poller, Path: obj.Identity()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&identity).Error; err != nil {
		return fmt.Errorf("failed to record identity %s: %w", obj.Identity(), err)
	}
	if err := db.Where("poller = ? AND path = ?", p.poller, obj.Identity()).First(&identity).Error; err != nil {
		return fmt.Errorf("failed to read identity %s: %w", obj.Identity(), err)
	}

	fact := model.Processed{
		IdentityID: identity.ID,
		Author:     obj.Author(),
		ChangedAt:  normalizeTime(obj.ChangedAt()),
		Confidence: int(confidence),
	}
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&fact).Error; err != nil {
		return fmt.Errorf("failed to confirm %s at %s: %w", obj.Identity(), confidence, err)
	}
	return nil
}

// normalizeTime keeps the precision PostgreSQL timestamps can store so that
// equality lookups match what was written.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
