package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("connection refused")

type failingLookupRepo struct{}

func (failingLookupRepo) ListCategories(context.Context, bool) ([]domain.Category, error) {
	return nil, errStore
}

func (failingLookupRepo) ListCompanies(context.Context, bool) ([]domain.CompanyAffiliate, error) {
	return nil, errStore
}

type failingUserRepo struct {
	repository.UserRepository
}

func (failingUserRepo) FindDeptsByEmployeeIDs(context.Context, []string) (map[string]string, error) {
	return nil, errStore
}

type failingOpinionRepo struct {
	repository.OpinionRepository
}

func (failingOpinionRepo) FindByFilter(context.Context, repository.OpinionQuery) ([]domain.Opinion, error) {
	return nil, errStore
}

func TestResolveWindow(t *testing.T) {
	q := NewOpinionQueryService(nil, nil, nil, 0, kst)
	q.SetClock(func() time.Time { return fixedNow })

	tests := []struct {
		name   string
		filter domain.ListFilter
		want   domain.DateRange
	}{
		{"Q2", domain.ListFilter{Year: "2025", Quarter: "Q2"}, domain.DateRange{Start: "2025-04-01", End: "2025-06-30"}},
		{"Q4", domain.ListFilter{Year: "2025", Quarter: "Q4"}, domain.DateRange{Start: "2025-10-01", End: "2025-12-31"}},
		{"all quarters", domain.ListFilter{Year: "2025", Quarter: "all"}, domain.DateRange{Start: "2025-01-01", End: "2025-12-31"}},
		{"lower case quarter", domain.ListFilter{Year: "2024", Quarter: "q1"}, domain.DateRange{Start: "2024-01-01", End: "2024-03-31"}},
		{"empty year uses current", domain.ListFilter{Quarter: "Q3"}, domain.DateRange{Start: "2025-07-01", End: "2025-09-30"}},
		{"unknown quarter is whole year", domain.ListFilter{Year: "2025", Quarter: "Q5"}, domain.DateRange{Start: "2025-01-01", End: "2025-12-31"}},
		{"override both", domain.ListFilter{Year: "2025", Quarter: "Q1", From: "2025-02-01", To: "2025-02-28"}, domain.DateRange{Start: "2025-02-01", End: "2025-02-28"}},
		{"override from only", domain.ListFilter{Year: "2025", Quarter: "Q1", From: "2025-03-15"}, domain.DateRange{Start: "2025-03-15", End: "2025-03-31"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := q.ResolveWindow(&tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []struct {
		filter domain.ListFilter
		field  string
	}{
		{domain.ListFilter{Year: "25"}, "year"},
		{domain.ListFilter{Year: "2025", From: "2025/01/01"}, "from"},
		{domain.ListFilter{Year: "2025", From: "2025-05-01", To: "2025-04-01"}, "from"},
	}
	for _, tt := range invalid {
		_, err := q.ResolveWindow(&tt.filter)
		var ve *common.ValidationError
		require.True(t, errors.As(err, &ve), "filter %+v", tt.filter)
		assert.Equal(t, tt.field, ve.Field)
	}
}

func TestAggregate_WindowAndOrder(t *testing.T) {
	f := newFixture(t)
	inQ1 := f.insertAt(t, "E001", time.Date(2025, 3, 31, 23, 30, 0, 0, kst), 0)
	inQ1b := f.insertAt(t, "E002", time.Date(2025, 1, 1, 0, 0, 0, 0, kst), 0)
	f.insertAt(t, "E001", time.Date(2025, 4, 1, 0, 0, 1, 0, kst), 0)

	views, err := f.query.Aggregate(context.Background(), &domain.ListFilter{Year: "2025", Quarter: "Q1"})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, inQ1b.ID, views[0].ID, "descending id")
	assert.Equal(t, inQ1.ID, views[1].ID)
}

func TestAggregate_JoinsBothDepartments(t *testing.T) {
	f := newFixture(t)
	o := f.submit(t, userActor, "제안", "내용", 0)
	_, err := f.opinions.Respond(context.Background(), adminActor, o.ID, domain.StatusAnswered, "반영")
	require.NoError(t, err)

	views, err := f.query.Aggregate(context.Background(), &domain.ListFilter{Year: "2025"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "인사팀", views[0].Dept, "submitter department")
	assert.Equal(t, "경영지원팀", views[0].ProcDept, "responder department")
	assert.Equal(t, "업무개선", views[0].Category)
	assert.Equal(t, "본사", views[0].Company)
}

func TestAggregate_MissingJoinTargetsAreEmpty(t *testing.T) {
	f := newFixture(t)
	o := f.insertAt(t, "GHOST", fixedNow, 0)
	require.NoError(t, f.db.Model(&domain.Opinion{}).Where("id = ?", o.ID).
		Updates(map[string]any{"category_id": 77, "company_affiliate_id": 88}).Error)

	views, err := f.query.Aggregate(context.Background(), &domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "", views[0].Dept)
	assert.Equal(t, "", views[0].ProcDept)
	assert.Equal(t, "", views[0].Category)
	assert.Equal(t, "", views[0].Company)
}

func TestAggregate_Filters(t *testing.T) {
	f := newFixture(t)
	budget := f.submit(t, userActor, "Q3 Budget Review", "예산 검토", 0)
	f.submit(t, otherActor, "사내 식당", "메뉴 다양화", 0)
	welfare := f.insertAt(t, "E002", fixedNow, 0)
	require.NoError(t, f.db.Model(&domain.Opinion{}).Where("id = ?", welfare.ID).
		Updates(map[string]any{"category_id": 2, "company_affiliate_id": 2}).Error)
	_, err := f.opinions.Respond(context.Background(), adminActor, budget.ID, domain.StatusHeld, "")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("case-insensitive search", func(t *testing.T) {
		views, err := f.query.Aggregate(ctx, &domain.ListFilter{Search: "budget"})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, budget.ID, views[0].ID)
	})

	t.Run("search by submitter", func(t *testing.T) {
		views, err := f.query.Aggregate(ctx, &domain.ListFilter{Search: "e002"})
		require.NoError(t, err)
		assert.Len(t, views, 2)
	})

	t.Run("search by proposal text", func(t *testing.T) {
		views, err := f.query.Aggregate(ctx, &domain.ListFilter{Search: "메뉴"})
		require.NoError(t, err)
		assert.Len(t, views, 1)
	})

	t.Run("status", func(t *testing.T) {
		views, err := f.query.Aggregate(ctx, &domain.ListFilter{Status: domain.StatusHeld})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, budget.ID, views[0].ID)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := f.query.Aggregate(ctx, &domain.ListFilter{Status: "done"})
		assert.True(t, common.IsValidation(err))
	})

	t.Run("category and company names", func(t *testing.T) {
		views, err := f.query.Aggregate(ctx, &domain.ListFilter{Category: "복리후생", Company: "계열A"})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, welfare.ID, views[0].ID)

		all, err := f.query.Aggregate(ctx, &domain.ListFilter{Category: "all", Company: "all", Status: "all"})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestAggregate_LookupFailureDegrades(t *testing.T) {
	db := setupTestDB(t)
	opinions := repository.NewOpinionRepository(db)
	f := newFixtureWith(t, db, opinions, failingLookupRepo{}, failingUserRepo{repository.NewUserRepository(db)})
	f.insertAt(t, "E001", fixedNow, 0)

	views, err := f.query.Aggregate(context.Background(), &domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "", views[0].Category)
	assert.Equal(t, "", views[0].Company)
	assert.Equal(t, "", views[0].Dept)
	assert.Equal(t, "제목", views[0].Title)

	// category filter still applies against the (empty) joined name
	filtered, err := f.query.Aggregate(context.Background(), &domain.ListFilter{Category: "업무개선"})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestAggregate_BaseQueryFailure(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtureWith(t, db, failingOpinionRepo{repository.NewOpinionRepository(db)},
		repository.NewLookupRepository(db), repository.NewUserRepository(db))

	views, err := f.query.Aggregate(context.Background(), &domain.ListFilter{})
	assert.Nil(t, views)
	assert.True(t, common.IsQuery(err))
	assert.ErrorIs(t, err, errStore)
}

func TestList_ObscuresBlinded(t *testing.T) {
	f := newFixture(t)
	f.submit(t, userActor, "정상 제안", "내용", 0)
	f.submit(t, userActor, "욕설 제안", "부적절한 내용", 4)

	views, err := f.query.List(context.Background(), adminActor, &domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, views, 2)

	blinded := views[0]
	assert.True(t, blinded.Blinded)
	assert.Equal(t, "욕****", blinded.Title)
	assert.Equal(t, "본*", blinded.Company)
	assert.Equal(t, "E***", blinded.UserID)
	assert.Equal(t, domain.ModerationNotice, blinded.Tobe)
	assert.Equal(t, domain.ModerationNotice, blinded.Notice)

	plain := views[1]
	assert.False(t, plain.Blinded)
	assert.Equal(t, "정상 제안", plain.Title)
	assert.Empty(t, plain.Notice)

	_, err = f.query.List(context.Background(), userActor, &domain.ListFilter{})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestGetAndListMine(t *testing.T) {
	f := newFixture(t)
	mine := f.submit(t, userActor, "내 제안", "내용", 0)
	theirs := f.submit(t, otherActor, "남의 제안", "내용", 0)
	ctx := context.Background()

	list, err := f.query.ListMine(ctx, userActor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	got, err := f.query.Get(ctx, userActor, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "내 제안", got.Title)
	assert.Equal(t, "인사팀", got.Dept)

	_, err = f.query.Get(ctx, userActor, theirs.ID)
	assert.ErrorIs(t, err, common.ErrOpinionNotFound)

	adminView, err := f.query.Get(ctx, adminActor, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "재무팀", adminView.Dept)

	_, err = f.query.Get(ctx, adminActor, 12345)
	assert.ErrorIs(t, err, common.ErrOpinionNotFound)
}
