package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/damoang/opinion-backend/pkg/logger"
	"gorm.io/gorm"
)

// OpinionService 의견 제출/답변 (상태 전이는 Respond 한 곳에서만)
type OpinionService struct {
	repo      repository.OpinionRepository
	history   *repository.HistoryRepository
	lookups   repository.LookupRepository
	scorer    ModerationScorer
	threshold int
	loc       *time.Location
	now       func() time.Time
}

// NewOpinionService creates a new OpinionService
func NewOpinionService(
	repo repository.OpinionRepository,
	history *repository.HistoryRepository,
	lookups repository.LookupRepository,
	scorer ModerationScorer,
	threshold int,
	loc *time.Location,
) *OpinionService {
	if scorer == nil {
		scorer = DisabledScorer{}
	}
	if threshold <= 0 {
		threshold = domain.DefaultBlindThreshold
	}
	if loc == nil {
		loc = time.Local
	}
	return &OpinionService{
		repo:      repo,
		history:   history,
		lookups:   lookups,
		scorer:    scorer,
		threshold: threshold,
		loc:       loc,
		now:       time.Now,
	}
}

// SetClock overrides the wall clock (tests)
func (s *OpinionService) SetClock(now func() time.Time) {
	s.now = now
}

// Submit validates and stores a new opinion. Status starts at 접수 and the
// quarter comes from the server clock. A moderation failure never blocks the
// insert: the opinion is stored with score 0 and empty generated text.
func (s *OpinionService) Submit(ctx context.Context, actor *domain.Actor, req *domain.SubmitOpinionRequest) (*domain.Opinion, error) {
	if actor == nil || actor.EmployeeID == "" {
		return nil, common.ErrUnauthorized
	}
	// 요청을 버린 클라이언트가 있어도 점수 산정과 저장은 끝까지 진행한다
	ctx = context.WithoutCancel(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.NewValidationError("title", "제목을 입력해주세요")
	}
	tobe := strings.TrimSpace(req.Tobe)
	if tobe == "" {
		return nil, common.NewValidationError("tobe", "개선 제안 내용을 입력해주세요")
	}
	if err := s.checkLookups(ctx, req.CategoryID, req.CompanyAffiliateID); err != nil {
		return nil, err
	}

	moderation := s.moderate(ctx, title, req.Asis, tobe)

	now := s.now().In(s.loc)
	opinion := &domain.Opinion{
		Title:              title,
		Asis:               domain.StrPtr(req.Asis),
		Tobe:               tobe,
		Effect:             moderation.Effect,
		CaseStudy:          moderation.Case,
		CategoryID:         req.CategoryID,
		CompanyAffiliateID: req.CompanyAffiliateID,
		UserID:             actor.EmployeeID,
		Quarter:            domain.QuarterOf(now),
		Status:             domain.StatusReceived,
		NegativeScore:      moderation.NegativeScore,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, opinion); err != nil {
		return nil, fmt.Errorf("의견 저장 실패: %w", err)
	}

	blinded := opinion.IsBlinded(s.threshold)
	opinionsSubmittedTotal.WithLabelValues(fmt.Sprintf("%t", blinded)).Inc()
	l := logger.WithOpinion(opinion.ID)
	l.Info().
		Str("user_id", opinion.UserID).
		Str("quarter", opinion.Quarter).
		Int("negative_score", opinion.NegativeScore).
		Bool("blinded", blinded).
		Msg("opinion submitted")
	return opinion, nil
}

// Respond applies an admin response. status, proc_desc, proc_id, proc_name
// and updated_at change in one write together with a history row. Repeating
// the current response is a no-op.
func (s *OpinionService) Respond(ctx context.Context, actor *domain.Actor, id uint64, status, procDesc string) (*domain.Opinion, error) {
	if !actor.IsAdmin() {
		return nil, common.ErrForbidden
	}
	status = strings.TrimSpace(status)
	if !domain.IsValidStatus(status) {
		return nil, common.NewValidationError("status", "유효하지 않은 처리 상태입니다")
	}
	if status == domain.StatusAnswered && strings.TrimSpace(procDesc) == "" {
		return nil, common.NewValidationError("proc_desc", "답변완료 처리 시 답변 내용은 필수입니다")
	}

	ctx = context.WithoutCancel(ctx)
	resp := &domain.Response{
		Status:    status,
		ProcDesc:  domain.StrPtr(procDesc),
		ProcID:    actor.EmployeeID,
		ProcName:  actor.Name,
		UpdatedAt: s.now().In(s.loc),
	}
	prevStatus, applied, err := s.repo.ApplyResponse(ctx, id, resp)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrOpinionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("답변 저장 실패: %w", err)
	}
	if !applied {
		return s.find(ctx, id)
	}

	responsesTotal.WithLabelValues(status).Inc()
	l := logger.WithOpinion(id)
	l.Info().
		Str("prev_status", prevStatus).
		Str("status", status).
		Str("proc_id", actor.EmployeeID).
		Msg("opinion responded")

	return s.find(ctx, id)
}

// History lists response history for an opinion (admin only)
func (s *OpinionService) History(ctx context.Context, actor *domain.Actor, id uint64) ([]domain.OpinionHistory, error) {
	if !actor.IsAdmin() {
		return nil, common.ErrForbidden
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.history.ListByOpinion(ctx, id)
	if err != nil {
		return nil, common.NewQueryError("opinion history", err)
	}
	return history, nil
}

func (s *OpinionService) find(ctx context.Context, id uint64) (*domain.Opinion, error) {
	o, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrOpinionNotFound
	}
	if err != nil {
		return nil, common.NewQueryError("opinion get", err)
	}
	return o, nil
}

// checkLookups category/company 는 존재하고 active 여야 한다
func (s *OpinionService) checkLookups(ctx context.Context, categoryID, companyID uint64) error {
	if categoryID == 0 {
		return common.NewValidationError("category_id", "카테고리를 선택해주세요")
	}
	if companyID == 0 {
		return common.NewValidationError("company_affiliate_id", "계열사를 선택해주세요")
	}

	categories, err := s.lookups.ListCategories(ctx, true)
	if err != nil {
		return common.NewQueryError("category list", err)
	}
	if !containsCategory(categories, categoryID) {
		return common.NewValidationError("category_id", "카테고리 정보를 찾을 수 없습니다")
	}

	companies, err := s.lookups.ListCompanies(ctx, true)
	if err != nil {
		return common.NewQueryError("company list", err)
	}
	if !containsCompany(companies, companyID) {
		return common.NewValidationError("company_affiliate_id", "계열사 정보를 찾을 수 없습니다")
	}
	return nil
}

// moderate calls the scorer once; any failure degrades to the zero result
func (s *OpinionService) moderate(ctx context.Context, title, asis, tobe string) domain.ModerationResult {
	parts := []string{"제목: " + title}
	if a := strings.TrimSpace(asis); a != "" {
		parts = append(parts, "현재 상황:\n"+a)
	}
	parts = append(parts, "개선 제안:\n"+tobe)

	start := time.Now()
	result, err := s.scorer.Analyze(ctx, strings.Join(parts, "\n\n"))
	moderationDuration.Observe(time.Since(start).Seconds())
	if err != nil || result == nil {
		moderationFailuresTotal.Inc()
		logger.GetLogger().Warn().Err(err).Msg("moderation unavailable, storing opinion with score 0")
		return domain.ModerationResult{}
	}
	if result.NegativeScore < 0 {
		result.NegativeScore = 0
	}
	return *result
}

func containsCategory(list []domain.Category, id uint64) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

func containsCompany(list []domain.CompanyAffiliate, id uint64) bool {
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}
