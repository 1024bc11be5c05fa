package repository

import (
	"context"

	"github.com/damoang/opinion-backend/internal/domain"
	"gorm.io/gorm"
)

// HistoryRepository handles opinion response history
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record creates a history entry for a response
func (r *HistoryRepository) Record(ctx context.Context, history *domain.OpinionHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// ListByOpinion retrieves history for an opinion, newest first
func (r *HistoryRepository) ListByOpinion(ctx context.Context, opinionID uint64) ([]domain.OpinionHistory, error) {
	var history []domain.OpinionHistory
	err := r.db.WithContext(ctx).
		Where("opinion_id = ?", opinionID).
		Order("id DESC").
		Find(&history).Error
	return history, err
}
