package service

import (
	"context"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
)

// LookupService 제출 화면 드롭다운용 기준정보 (active 만)
type LookupService struct {
	repo repository.LookupRepository
}

// NewLookupService creates a new LookupService
func NewLookupService(repo repository.LookupRepository) *LookupService {
	return &LookupService{repo: repo}
}

// Categories returns active categories
func (s *LookupService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, common.NewQueryError("category list", err)
	}
	return categories, nil
}

// Companies returns active company affiliates
func (s *LookupService) Companies(ctx context.Context) ([]domain.CompanyAffiliate, error) {
	companies, err := s.repo.ListCompanies(ctx, true)
	if err != nil {
		return nil, common.NewQueryError("company list", err)
	}
	return companies, nil
}
