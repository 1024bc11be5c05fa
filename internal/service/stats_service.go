package service

import (
	"context"
	"sort"
	"strings"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

// StatsService 대시보드 통계 (조회 창은 관리자 목록과 동일)
type StatsService struct {
	query    *OpinionQueryService
	opinions repository.OpinionRepository
	lookups  repository.LookupRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(query *OpinionQueryService, opinions repository.OpinionRepository, lookups repository.LookupRepository) *StatsService {
	return &StatsService{query: query, opinions: opinions, lookups: lookups}
}

// Stats counts opinions in the window. Only year/quarter/from/to apply.
func (s *StatsService) Stats(ctx context.Context, actor *domain.Actor, f *domain.ListFilter) (*domain.Stats, error) {
	if !actor.IsAdmin() {
		return nil, common.ErrForbidden
	}
	window, err := s.query.ResolveWindow(f)
	if err != nil {
		return nil, err
	}
	from, to, err := window.Bounds(s.query.loc)
	if err != nil {
		return nil, common.NewValidationError("from", err.Error())
	}
	q := repository.OpinionQuery{From: from, To: to}

	var (
		byStatus   []repository.StatusCount
		byCategory []repository.IDCount
		byCompany  []repository.IDCount
		blinded    int64
		submitters int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = s.opinions.CountByStatus(gctx, q)
		return wrapQuery("status count", err)
	})
	g.Go(func() (err error) {
		byCategory, err = s.opinions.CountByCategory(gctx, q)
		return wrapQuery("category count", err)
	})
	g.Go(func() (err error) {
		byCompany, err = s.opinions.CountByCompany(gctx, q)
		return wrapQuery("company count", err)
	})
	g.Go(func() (err error) {
		blinded, err = s.opinions.CountBlinded(gctx, q, s.query.Threshold())
		return wrapQuery("blinded count", err)
	})
	g.Go(func() (err error) {
		submitters, err = s.opinions.CountSubmitters(gctx, q)
		return wrapQuery("submitter count", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		Window:           window,
		Blinded:          blinded,
		UniqueSubmitters: submitters,
		ByStatus:         make(map[string]int64, len(domain.Statuses())),
	}
	for _, st := range domain.Statuses() {
		stats.ByStatus[st] = 0
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] += row.Count
		stats.Total += row.Count
	}
	stats.Answered = stats.ByStatus[domain.StatusAnswered]

	stats.ByCategory = named(byCategory, s.query.categoryNames(ctx))
	stats.ByCompany = named(byCompany, s.query.companyNames(ctx))
	return stats, nil
}

// named resolves ids to display names; unknown ids keep an empty name
func named(rows []repository.IDCount, names map[uint64]string) []domain.NamedCount {
	out := make([]domain.NamedCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.NamedCount{Name: names[row.ID], Count: row.Count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out
}

func wrapQuery(op string, err error) error {
	if err != nil {
		return common.NewQueryError(op, err)
	}
	return nil
}
