package repository

import (
	"context"
	"errors"
	"time"

	"simplegest/internal/model"
	"simplegest/internal/session"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository stores browser sessions in the session_records table. It satisfies session.Store.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Get(ctx context.Context, id string) ([]byte, error) {
	var rec model.SessionRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ? AND expires_at > ?", id, time.Now()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return rec.Data, nil
}

func (r *SessionRepository) Save(ctx context.Context, id string, payload []byte, expiresAt time.Time) error {
	rec := model.SessionRecord{ID: id, Data: payload, ExpiresAt: expiresAt}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(&rec).Error
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.SessionRecord{}, "id = ?", id).Error
}

// DeleteExpired removes every expired session and returns the count
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&model.SessionRecord{})
	return res.RowsAffected, res.Error
}
