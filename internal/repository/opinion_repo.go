package repository

import (
	"context"
	"errors"
	"time"

	"github.com/damoang/opinion-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seqInsertAttempts = 3

// OpinionQuery store-level filter; zero values are ignored
type OpinionQuery struct {
	From   time.Time
	To     time.Time
	Status string
	UserID string
}

// StatusCount status → count row
type StatusCount struct {
	Status string
	Count  int64
}

// IDCount lookup id → count row
type IDCount struct {
	ID    uint64
	Count int64
}

// OpinionRepository opinion table access
type OpinionRepository interface {
	Create(ctx context.Context, opinion *domain.Opinion) error
	FindByID(ctx context.Context, id uint64) (*domain.Opinion, error)
	FindByFilter(ctx context.Context, q OpinionQuery) ([]domain.Opinion, error)
	Count(ctx context.Context, q OpinionQuery) (int64, error)
	ApplyResponse(ctx context.Context, id uint64, resp *domain.Response) (prevStatus string, applied bool, err error)
	CountByStatus(ctx context.Context, q OpinionQuery) ([]StatusCount, error)
	CountByCategory(ctx context.Context, q OpinionQuery) ([]IDCount, error)
	CountByCompany(ctx context.Context, q OpinionQuery) ([]IDCount, error)
	CountBlinded(ctx context.Context, q OpinionQuery, threshold int) (int64, error)
	CountSubmitters(ctx context.Context, q OpinionQuery) (int64, error)
}

type opinionRepository struct {
	db *gorm.DB
}

// NewOpinionRepository creates a new OpinionRepository
func NewOpinionRepository(db *gorm.DB) OpinionRepository {
	return &opinionRepository{db: db}
}

// Create inserts the opinion and assigns the next display sequence.
// seq is unique; a concurrent insert that grabbed the same number is retried.
func (r *opinionRepository) Create(ctx context.Context, opinion *domain.Opinion) error {
	var err error
	for attempt := 0; attempt < seqInsertAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var maxSeq uint64
			if err := tx.Model(&domain.Opinion{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
				return err
			}
			opinion.ID = 0
			opinion.Seq = maxSeq + 1
			return tx.Create(opinion).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

// FindByID retrieves one opinion
func (r *opinionRepository) FindByID(ctx context.Context, id uint64) (*domain.Opinion, error) {
	var opinion domain.Opinion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&opinion).Error; err != nil {
		return nil, err
	}
	return &opinion, nil
}

// FindByFilter retrieves opinions in the window, newest first
func (r *opinionRepository) FindByFilter(ctx context.Context, q OpinionQuery) ([]domain.Opinion, error) {
	var opinions []domain.Opinion
	err := r.scoped(ctx, q).Order("id DESC").Find(&opinions).Error
	return opinions, err
}

// Count counts opinions matching the filter
func (r *opinionRepository) Count(ctx context.Context, q OpinionQuery) (int64, error) {
	var count int64
	err := r.scoped(ctx, q).Count(&count).Error
	return count, err
}

// ApplyResponse writes status, proc_desc, proc_id, proc_name and updated_at as one
// UPDATE statement and records the history row in the same transaction.
// The row is locked first; a response identical to the stored one changes nothing
// and reports applied=false. negative_score is never part of the update set.
func (r *opinionRepository) ApplyResponse(ctx context.Context, id uint64, resp *domain.Response) (string, bool, error) {
	var prevStatus string
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.Opinion
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&current).Error; err != nil {
			return err
		}
		prevStatus = current.Status
		if resp.SameAs(&current) {
			return nil
		}

		result := tx.Model(&domain.Opinion{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     resp.Status,
				"proc_desc":  resp.ProcDesc,
				"proc_id":    resp.ProcID,
				"proc_name":  resp.ProcName,
				"updated_at": resp.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		desc := ""
		if resp.ProcDesc != nil {
			desc = *resp.ProcDesc
		}
		if err := NewHistoryRepository(tx).Record(ctx, &domain.OpinionHistory{
			OpinionID:  id,
			PrevStatus: prevStatus,
			NewStatus:  resp.Status,
			ProcID:     resp.ProcID,
			ProcName:   resp.ProcName,
			ProcDesc:   desc,
			CreatedAt:  resp.UpdatedAt,
		}); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return prevStatus, applied, nil
}

// CountByStatus counts opinions grouped by status
func (r *opinionRepository) CountByStatus(ctx context.Context, q OpinionQuery) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.scoped(ctx, q).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// CountByCategory counts opinions grouped by category_id
func (r *opinionRepository) CountByCategory(ctx context.Context, q OpinionQuery) ([]IDCount, error) {
	var rows []IDCount
	err := r.scoped(ctx, q).
		Select("category_id as id, COUNT(*) as count").
		Group("category_id").
		Scan(&rows).Error
	return rows, err
}

// CountByCompany counts opinions grouped by company_affiliate_id
func (r *opinionRepository) CountByCompany(ctx context.Context, q OpinionQuery) ([]IDCount, error) {
	var rows []IDCount
	err := r.scoped(ctx, q).
		Select("company_affiliate_id as id, COUNT(*) as count").
		Group("company_affiliate_id").
		Scan(&rows).Error
	return rows, err
}

// CountBlinded counts opinions at or above the blind threshold
func (r *opinionRepository) CountBlinded(ctx context.Context, q OpinionQuery, threshold int) (int64, error) {
	var count int64
	err := r.scoped(ctx, q).Where("negative_score >= ?", threshold).Count(&count).Error
	return count, err
}

// CountSubmitters counts distinct submitters
func (r *opinionRepository) CountSubmitters(ctx context.Context, q OpinionQuery) (int64, error) {
	var count int64
	err := r.scoped(ctx, q).Distinct("user_id").Count(&count).Error
	return count, err
}

func (r *opinionRepository) scoped(ctx context.Context, q OpinionQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&domain.Opinion{})
	if !q.From.IsZero() {
		tx = tx.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("created_at <= ?", q.To)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	return tx
}
