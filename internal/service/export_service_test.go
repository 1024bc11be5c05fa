package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readSheet(t *testing.T, content []byte) [][]string {
	t.Helper()
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("의견목록")
	require.NoError(t, err)
	return rows
}

func TestExport_DropsBlindedAndRenumbers(t *testing.T) {
	f := newFixture(t)
	first := f.submit(t, userActor, "첫 제안", "첫 내용", 0)
	f.submit(t, userActor, "차단 제안", "부적절", 3)
	f.submit(t, otherActor, "셋째 제안", "셋째 내용", 2)
	f.submit(t, otherActor, "차단 둘", "부적절", 9)
	_, err := f.opinions.Respond(context.Background(), adminActor, first.ID, domain.StatusAnswered, "Implemented in Q3")
	require.NoError(t, err)

	result, err := f.export.Export(context.Background(), adminActor, &domain.ListFilter{Year: "2025", Quarter: "Q2"})
	require.NoError(t, err)

	assert.Equal(t, "의견목록_2025-05-10.xlsx", result.Filename)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.ExcludedCount)

	rows := readSheet(t, result.Content)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"No", "업무주관부서", "안건구분", "안건상세", "안건요청부서", "상세내용", "답변"}, rows[0])

	// newest first, numbered 1..N regardless of seq
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "셋째 제안", rows[1][3])
	assert.Equal(t, "재무팀", rows[1][4])

	assert.Equal(t, []string{"2", "경영지원팀", "업무개선", "첫 제안", "인사팀", "첫 내용", "Implemented in Q3"}, rows[2])
}

func TestExport_ColumnWidths(t *testing.T) {
	f := newFixture(t)
	f.submit(t, userActor, "제안", "내용", 0)

	result, err := f.export.Export(context.Background(), adminActor, &domain.ListFilter{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer wb.Close()
	for i, col := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		w, err := wb.GetColWidth("의견목록", col)
		require.NoError(t, err)
		assert.Equal(t, exportColumns[i].Width, w, "column %s", col)
	}
}

func TestExport_LongLabel(t *testing.T) {
	f := newFixture(t)
	f.submit(t, userActor, "제안", "내용", 0)
	label := strings.Repeat("분기별 임직원 제안 목록 ", 4)
	exportSvc := NewExportService(f.query, label, "", kst)
	exportSvc.SetClock(func() time.Time { return fixedNow })

	result, err := exportSvc.Export(context.Background(), adminActor, &domain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)

	wb, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer wb.Close()
	sheets := wb.GetSheetList()
	require.Len(t, sheets, 1)
	assert.Len(t, []rune(sheets[0]), 31)
}

func TestExport_NoExportableData(t *testing.T) {
	f := newFixture(t)
	f.submit(t, userActor, "차단", "부적절", 4)

	result, err := f.export.Export(context.Background(), adminActor, &domain.ListFilter{})
	assert.Nil(t, result)
	require.ErrorIs(t, err, common.ErrNoExportableData)

	var ne *common.NoExportableDataError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, 1, ne.ExcludedCount)

	_, err = f.export.Export(context.Background(), adminActor, &domain.ListFilter{Year: "2020"})
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, 0, ne.ExcludedCount)
}

func TestExport_BlindedAbsentForEveryFilter(t *testing.T) {
	f := newFixture(t)
	blinded := f.submit(t, userActor, "차단 budget", "부적절", 3)
	f.submit(t, userActor, "정상 budget", "내용", 0)
	_, err := f.opinions.Respond(context.Background(), adminActor, blinded.ID, domain.StatusAnswered, "답변함")
	require.NoError(t, err)

	filters := []domain.ListFilter{
		{},
		{Year: "2025", Quarter: "Q2"},
		{Status: domain.StatusAnswered},
		{Search: "budget"},
		{Category: "업무개선", Company: "본사"},
		{From: "2025-05-01", To: "2025-05-31"},
	}
	for _, filter := range filters {
		result, err := f.export.Export(context.Background(), adminActor, &filter)
		if err != nil {
			require.ErrorIs(t, err, common.ErrNoExportableData)
			continue
		}
		for _, row := range readSheet(t, result.Content)[1:] {
			assert.NotContains(t, row[3], "차단", "filter %+v", filter)
		}
		assert.GreaterOrEqual(t, result.ExcludedCount, 1)
	}
}

func TestExport_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.export.Export(context.Background(), userActor, &domain.ListFilter{})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

// submit scored 4 → listed obscured, never exported
func TestScenario_BlindedSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.submit(t, userActor, "Angry rant", "bad words", 4)
	f.submit(t, otherActor, "Fine idea", "good words", 0)

	assert.Equal(t, domain.StatusReceived, o.Status)
	assert.Equal(t, 4, o.NegativeScore)

	views, err := f.query.List(ctx, adminActor, &domain.ListFilter{})
	require.NoError(t, err)
	var found *domain.OpinionView
	for i := range views {
		if views[i].ID == o.ID {
			found = &views[i]
		}
	}
	require.NotNil(t, found)
	assert.NotEqual(t, "Angry rant", found.Title)
	assert.NotEqual(t, "본사", found.Company)

	result, err := f.export.Export(ctx, adminActor, &domain.ListFilter{Year: "2025"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ExcludedCount, 1)
	assert.Equal(t, 1, result.Rows)
}

// answered opinion shows up in list and export with its response
func TestScenario_RespondThenExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.submit(t, userActor, "Faster builds", "cache deps", 0)

	_, err := f.opinions.Respond(ctx, adminActor, o.ID, domain.StatusAnswered, "Implemented in Q3")
	require.NoError(t, err)

	views, err := f.query.List(ctx, adminActor, &domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.StatusAnswered, views[0].Status)
	assert.Equal(t, "Implemented in Q3", views[0].ProcDesc)

	result, err := f.export.Export(ctx, adminActor, &domain.ListFilter{})
	require.NoError(t, err)
	rows := readSheet(t, result.Content)
	require.Len(t, rows, 2)
	assert.Equal(t, "Implemented in Q3", rows[1][6])
}
