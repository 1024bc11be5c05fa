package repository

import (
	"context"

	"github.com/damoang/opinion-backend/internal/domain"
	"gorm.io/gorm"
)

// LookupRepository category / company_affiliate 기준정보 조회
type LookupRepository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	ListCompanies(ctx context.Context, activeOnly bool) ([]domain.CompanyAffiliate, error)
}

type lookupRepository struct {
	db *gorm.DB
}

// NewLookupRepository creates a new LookupRepository
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	var categories []domain.Category
	query := r.db.WithContext(ctx).Model(&domain.Category{})
	if activeOnly {
		query = query.Where("status = ?", domain.LookupActive)
	}
	err := query.Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *lookupRepository) ListCompanies(ctx context.Context, activeOnly bool) ([]domain.CompanyAffiliate, error) {
	var companies []domain.CompanyAffiliate
	query := r.db.WithContext(ctx).Model(&domain.CompanyAffiliate{})
	if activeOnly {
		query = query.Where("status = ?", domain.LookupActive)
	}
	err := query.Order("id ASC").Find(&companies).Error
	return companies, err
}
