package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/pkg/cache"
	"github.com/damoang/opinion-backend/pkg/logger"
)

// cachedLookupRepository 기준정보 조회 결과를 캐시에 보관한다
type cachedLookupRepository struct {
	repo  LookupRepository
	cache cache.Service
	ttl   time.Duration
}

// NewCachedLookupRepository wraps repo with a read-through cache.
// cacheService 가 nil 이면 repo 를 그대로 반환한다.
func NewCachedLookupRepository(repo LookupRepository, cacheService cache.Service, ttl time.Duration) LookupRepository {
	if cacheService == nil || !cacheService.IsAvailable() {
		return repo
	}
	if ttl <= 0 {
		ttl = cache.TTLLookup
	}
	return &cachedLookupRepository{repo: repo, cache: cacheService, ttl: ttl}
}

func (r *cachedLookupRepository) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	key := lookupKey("category", activeOnly)
	var categories []domain.Category
	if err := r.cache.Get(ctx, key, &categories); err == nil {
		return categories, nil
	}

	categories, err := r.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, categories)
	return categories, nil
}

func (r *cachedLookupRepository) ListCompanies(ctx context.Context, activeOnly bool) ([]domain.CompanyAffiliate, error) {
	key := lookupKey("company", activeOnly)
	var companies []domain.CompanyAffiliate
	if err := r.cache.Get(ctx, key, &companies); err == nil {
		return companies, nil
	}

	companies, err := r.repo.ListCompanies(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, companies)
	return companies, nil
}

func (r *cachedLookupRepository) store(ctx context.Context, key string, value any) {
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		logger.Warn("lookup cache set failed (%s): %v", key, err)
	}
}

func lookupKey(kind string, activeOnly bool) string {
	scope := "all"
	if activeOnly {
		scope = "active"
	}
	return fmt.Sprintf("%s%s:%s", cache.PrefixLookup, kind, scope)
}
