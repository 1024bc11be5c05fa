package service

import (
	"context"
	"testing"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.submit(t, userActor, "a", "a", 0)
	f.submit(t, userActor, "b", "b", 5)
	c := f.insertAt(t, "E002", fixedNow, 1)
	require.NoError(t, f.db.Model(&domain.Opinion{}).Where("id = ?", c.ID).Update("category_id", 2).Error)
	f.insertAt(t, "E002", time.Date(2024, 12, 31, 12, 0, 0, 0, kst), 0)

	_, err := f.opinions.Respond(ctx, adminActor, a.ID, domain.StatusAnswered, "완료")
	require.NoError(t, err)

	stats, err := f.stats.Stats(ctx, adminActor, &domain.ListFilter{Year: "2025"})
	require.NoError(t, err)

	assert.Equal(t, domain.DateRange{Start: "2025-01-01", End: "2025-12-31"}, stats.Window)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Answered)
	assert.Equal(t, int64(1), stats.Blinded)
	assert.Equal(t, int64(2), stats.UniqueSubmitters)
	assert.Equal(t, int64(2), stats.ByStatus[domain.StatusReceived])
	assert.Equal(t, int64(0), stats.ByStatus[domain.StatusRejected])
	assert.Len(t, stats.ByStatus, 6)

	assert.Equal(t, []domain.NamedCount{{Name: "업무개선", Count: 2}, {Name: "복리후생", Count: 1}}, stats.ByCategory)
	assert.Equal(t, []domain.NamedCount{{Name: "본사", Count: 3}}, stats.ByCompany)
}

func TestStats_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.stats.Stats(context.Background(), userActor, &domain.ListFilter{})
	assert.ErrorIs(t, err, common.ErrForbidden)
}
