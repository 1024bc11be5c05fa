package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/damoang/opinion-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var kst = time.FixedZone("KST", 9*60*60)

// 2025-05-10 10:00 KST (Q2)
var fixedNow = time.Date(2025, 5, 10, 10, 0, 0, 0, kst)

func TestMain(m *testing.M) {
	logger.SetLogger(zerolog.Nop())
	os.Exit(m.Run())
}

// --- Mock ModerationScorer ---

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Analyze(ctx context.Context, text string) (*domain.ModerationResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModerationResult), args.Error(1)
}

func (m *mockScorer) willScore(score int, effect, caseStudy string) {
	m.On("Analyze", mock.Anything, mock.Anything).
		Return(&domain.ModerationResult{NegativeScore: score, Effect: effect, Case: caseStudy}, nil).Once()
}

var (
	adminActor = &domain.Actor{EmployeeID: "A001", Name: "Kim", Role: domain.RoleAdmin}
	userActor  = &domain.Actor{EmployeeID: "E001", Name: "김철수", Role: domain.RoleUser}
	otherActor = &domain.Actor{EmployeeID: "E002", Name: "이영희", Role: domain.RoleUser}
)

type fixture struct {
	db       *gorm.DB
	repo     repository.OpinionRepository
	scorer   *mockScorer
	opinions *OpinionService
	query    *OpinionQueryService
	export   *ExportService
	stats    *StatsService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	seedTestDB(t, db)
	return db
}

// setupFileDB opens a WAL sqlite file so readers and a writer run on separate connections
func setupFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "opinion.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	seedTestDB(t, db)
	return db
}

func seedTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.AutoMigrate(
		&domain.Opinion{}, &domain.OpinionHistory{}, &domain.User{},
		&domain.Category{}, &domain.CompanyAffiliate{},
	))

	require.NoError(t, db.Create(&[]domain.Category{
		{ID: 1, Name: "업무개선", Status: domain.LookupActive},
		{ID: 2, Name: "복리후생", Status: domain.LookupActive},
		{ID: 3, Name: "폐지된 분류", Status: domain.LookupInactive},
	}).Error)
	require.NoError(t, db.Create(&[]domain.CompanyAffiliate{
		{ID: 1, Name: "본사", Status: domain.LookupActive},
		{ID: 2, Name: "계열A", Status: domain.LookupActive},
		{ID: 3, Name: "매각사", Status: domain.LookupInactive},
	}).Error)
	require.NoError(t, db.Create(&[]domain.User{
		{EmployeeID: "E001", Name: "김철수", Dept: "인사팀", Role: domain.RoleUser, Status: domain.UserStatusActive},
		{EmployeeID: "E002", Name: "이영희", Dept: "재무팀", Role: domain.RoleUser, Status: domain.UserStatusActive},
		{EmployeeID: "A001", Name: "Kim", Dept: "경영지원팀", Role: domain.RoleAdmin, Status: domain.UserStatusActive},
	}).Error)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	return newFixtureWith(t, db,
		repository.NewOpinionRepository(db),
		repository.NewLookupRepository(db),
		repository.NewUserRepository(db),
	)
}

func newFixtureWith(t *testing.T, db *gorm.DB, opinions repository.OpinionRepository, lookups repository.LookupRepository, users repository.UserRepository) *fixture {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	scorer := &mockScorer{}

	opinionSvc := NewOpinionService(opinions, repository.NewHistoryRepository(db), repository.NewLookupRepository(db), scorer, domain.DefaultBlindThreshold, kst)
	opinionSvc.SetClock(clock)
	querySvc := NewOpinionQueryService(opinions, lookups, users, domain.DefaultBlindThreshold, kst)
	querySvc.SetClock(clock)
	exportSvc := NewExportService(querySvc, "의견목록", "의견목록", kst)
	exportSvc.SetClock(clock)

	return &fixture{
		db:       db,
		repo:     opinions,
		scorer:   scorer,
		opinions: opinionSvc,
		query:    querySvc,
		export:   exportSvc,
		stats:    NewStatsService(querySvc, opinions, lookups),
	}
}

// submit stores an opinion scored at score by the mock scorer
func (f *fixture) submit(t *testing.T, actor *domain.Actor, title, tobe string, score int) *domain.Opinion {
	t.Helper()
	f.scorer.willScore(score, "", "")
	o, err := f.opinions.Submit(context.Background(), actor, &domain.SubmitOpinionRequest{
		Title:              title,
		Tobe:               tobe,
		CategoryID:         1,
		CompanyAffiliateID: 1,
	})
	require.NoError(t, err)
	return o
}

// insertAt stores an opinion directly with a given creation time
func (f *fixture) insertAt(t *testing.T, userID string, at time.Time, score int) *domain.Opinion {
	t.Helper()
	o := &domain.Opinion{
		Title: "제목", Tobe: "개선안", CategoryID: 1, CompanyAffiliateID: 1,
		UserID: userID, Quarter: domain.QuarterOf(at), Status: domain.StatusReceived,
		NegativeScore: score, CreatedAt: at, UpdatedAt: at,
	}
	require.NoError(t, f.repo.Create(context.Background(), o))
	return o
}
