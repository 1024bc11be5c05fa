package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/damoang/opinion-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// filterAll UI 의 "전체" 선택값
const filterAll = "all"

// OpinionQueryService 의견 + 기준정보 + 사용자 부서를 조합한 조회 모델 생성
type OpinionQueryService struct {
	opinions  repository.OpinionRepository
	lookups   repository.LookupRepository
	users     repository.UserRepository
	threshold int
	loc       *time.Location
	now       func() time.Time
}

// NewOpinionQueryService creates a new OpinionQueryService
func NewOpinionQueryService(
	opinions repository.OpinionRepository,
	lookups repository.LookupRepository,
	users repository.UserRepository,
	threshold int,
	loc *time.Location,
) *OpinionQueryService {
	if threshold <= 0 {
		threshold = domain.DefaultBlindThreshold
	}
	if loc == nil {
		loc = time.Local
	}
	return &OpinionQueryService{
		opinions:  opinions,
		lookups:   lookups,
		users:     users,
		threshold: threshold,
		loc:       loc,
		now:       time.Now,
	}
}

// SetClock overrides the wall clock (tests)
func (s *OpinionQueryService) SetClock(now func() time.Time) {
	s.now = now
}

// Threshold returns the blind threshold in effect
func (s *OpinionQueryService) Threshold() int {
	return s.threshold
}

// ResolveWindow turns year/quarter (or a from/to override) into a date range.
// An empty year means the current year and an unrecognized quarter the whole
// year; a from/to override replaces the quarter
// window and a missing side falls back to that window's edge.
func (s *OpinionQueryService) ResolveWindow(f *domain.ListFilter) (domain.DateRange, error) {
	year := strings.TrimSpace(f.Year)
	if year == "" {
		year = strconv.Itoa(s.now().In(s.loc).Year())
	}
	if !domain.ValidYear(year) {
		return domain.DateRange{}, common.NewValidationError("year", "연도는 YYYY 형식이어야 합니다")
	}

	// Q1..Q4 외의 값(all 포함)은 연간 범위
	window := domain.QuarterDateRange(year, strings.ToUpper(strings.TrimSpace(f.Quarter)))

	if from := strings.TrimSpace(f.From); from != "" {
		if !domain.ValidDate(from) {
			return domain.DateRange{}, common.NewValidationError("from", "날짜는 YYYY-MM-DD 형식이어야 합니다")
		}
		window.Start = from
	}
	if to := strings.TrimSpace(f.To); to != "" {
		if !domain.ValidDate(to) {
			return domain.DateRange{}, common.NewValidationError("to", "날짜는 YYYY-MM-DD 형식이어야 합니다")
		}
		window.End = to
	}
	if window.Start > window.End {
		return domain.DateRange{}, common.NewValidationError("from", "시작일이 종료일보다 늦습니다")
	}
	return window, nil
}

// List returns the admin view: filtered, newest first, blinded rows obscured
func (s *OpinionQueryService) List(ctx context.Context, actor *domain.Actor, f *domain.ListFilter) ([]domain.OpinionView, error) {
	if !actor.IsAdmin() {
		return nil, common.ErrForbidden
	}
	views, err := s.Aggregate(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i] = views[i].Obscured()
	}
	return views, nil
}

// ListMine returns the actor's own opinions, newest first
func (s *OpinionQueryService) ListMine(ctx context.Context, actor *domain.Actor) ([]domain.OpinionView, error) {
	if actor == nil || actor.EmployeeID == "" {
		return nil, common.ErrUnauthorized
	}
	opinions, err := s.opinions.FindByFilter(ctx, repository.OpinionQuery{UserID: actor.EmployeeID})
	if err != nil {
		return nil, common.NewQueryError("opinion list", err)
	}
	views := s.enrich(ctx, opinions)
	for i := range views {
		views[i] = views[i].Obscured()
	}
	return views, nil
}

// Get returns one opinion; submitters may only read their own
func (s *OpinionQueryService) Get(ctx context.Context, actor *domain.Actor, id uint64) (*domain.OpinionView, error) {
	if actor == nil {
		return nil, common.ErrUnauthorized
	}
	o, err := s.opinions.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrOpinionNotFound
	}
	if err != nil {
		return nil, common.NewQueryError("opinion get", err)
	}
	if !actor.IsAdmin() && o.UserID != actor.EmployeeID {
		// 타인의 의견은 존재 여부도 노출하지 않는다
		return nil, common.ErrOpinionNotFound
	}
	views := s.enrich(ctx, []domain.Opinion{*o})
	view := views[0].Obscured()
	return &view, nil
}

// Aggregate fetches opinions in the window, joins lookups and applies the
// post-join filters. Views are returned unobscured with Blinded set.
func (s *OpinionQueryService) Aggregate(ctx context.Context, f *domain.ListFilter) ([]domain.OpinionView, error) {
	window, err := s.ResolveWindow(f)
	if err != nil {
		return nil, err
	}
	from, to, err := window.Bounds(s.loc)
	if err != nil {
		return nil, common.NewValidationError("from", err.Error())
	}

	q := repository.OpinionQuery{From: from, To: to}
	if status := strings.TrimSpace(f.Status); status != "" && status != filterAll {
		if !domain.IsValidStatus(status) {
			return nil, common.NewValidationError("status", "유효하지 않은 처리 상태입니다")
		}
		q.Status = status
	}

	var (
		opinions   []domain.Opinion
		categories map[uint64]string
		companies  map[uint64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opinions, err = s.opinions.FindByFilter(gctx, q)
		if err != nil {
			return common.NewQueryError("opinion list", err)
		}
		return nil
	})
	g.Go(func() error {
		categories = s.categoryNames(gctx)
		return nil
	})
	g.Go(func() error {
		companies = s.companyNames(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := s.join(opinions, categories, companies, s.deptsFor(ctx, opinions))
	return applyPostJoinFilters(views, f), nil
}

// enrich joins lookups for an already fetched set
func (s *OpinionQueryService) enrich(ctx context.Context, opinions []domain.Opinion) []domain.OpinionView {
	var categories, companies map[uint64]string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories = s.categoryNames(gctx)
		return nil
	})
	g.Go(func() error {
		companies = s.companyNames(gctx)
		return nil
	})
	_ = g.Wait()
	return s.join(opinions, categories, companies, s.deptsFor(ctx, opinions))
}

func (s *OpinionQueryService) join(opinions []domain.Opinion, categories, companies map[uint64]string, depts map[string]string) []domain.OpinionView {
	views := make([]domain.OpinionView, 0, len(opinions))
	for i := range opinions {
		o := &opinions[i]
		v := domain.NewOpinionView(o, s.threshold)
		v.Category = categories[o.CategoryID]
		v.Company = companies[o.CompanyAffiliateID]
		v.Dept = depts[o.UserID]
		if o.ProcID != nil {
			v.ProcDept = depts[*o.ProcID]
		}
		views = append(views, v)
	}
	return views
}

// lookup 실패는 빈 문자열로 degrade (nil map 조회는 "" 반환)
func (s *OpinionQueryService) categoryNames(ctx context.Context) map[uint64]string {
	categories, err := s.lookups.ListCategories(ctx, false)
	if err != nil {
		s.degraded("category", err)
		return nil
	}
	m := make(map[uint64]string, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Name
	}
	return m
}

func (s *OpinionQueryService) companyNames(ctx context.Context) map[uint64]string {
	companies, err := s.lookups.ListCompanies(ctx, false)
	if err != nil {
		s.degraded("company", err)
		return nil
	}
	m := make(map[uint64]string, len(companies))
	for _, c := range companies {
		m[c.ID] = c.Name
	}
	return m
}

// deptsFor loads submitter and responder departments in one batch
func (s *OpinionQueryService) deptsFor(ctx context.Context, opinions []domain.Opinion) map[string]string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for i := range opinions {
		add(opinions[i].UserID)
		if opinions[i].ProcID != nil {
			add(*opinions[i].ProcID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	depts, err := s.users.FindDeptsByEmployeeIDs(ctx, ids)
	if err != nil {
		s.degraded("users", err)
		return nil
	}
	return depts
}

func (s *OpinionQueryService) degraded(lookup string, err error) {
	lookupDegradedTotal.WithLabelValues(lookup).Inc()
	logger.GetLogger().Warn().Err(err).Str("lookup", lookup).Msg("lookup join failed, fields left empty")
}

func applyPostJoinFilters(views []domain.OpinionView, f *domain.ListFilter) []domain.OpinionView {
	category := strings.TrimSpace(f.Category)
	company := strings.TrimSpace(f.Company)
	term := strings.ToLower(strings.TrimSpace(f.Search))

	out := views[:0]
	for _, v := range views {
		if category != "" && category != filterAll && v.Category != category {
			continue
		}
		if company != "" && company != filterAll && v.Company != company {
			continue
		}
		if term != "" && !matchesTerm(&v, term) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// matchesTerm 사번, 의견 ID, 제목, 제안 내용 대상 대소문자 무시 부분 일치
func matchesTerm(v *domain.OpinionView, term string) bool {
	return strings.Contains(strings.ToLower(v.UserID), term) ||
		strings.Contains(strconv.FormatUint(v.ID, 10), term) ||
		strings.Contains(strings.ToLower(v.Title), term) ||
		strings.Contains(strings.ToLower(v.Tobe), term)
}
