package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/pkg/logger"
	"github.com/damoang/opinion-backend/pkg/spreadsheet"
)

// exportColumns 7개 컬럼, 순서 고정
var exportColumns = []spreadsheet.Column{
	{Header: "No", Width: 5},
	{Header: "업무주관부서", Width: 15},
	{Header: "안건구분", Width: 20},
	{Header: "안건상세", Width: 30},
	{Header: "안건요청부서", Width: 15},
	{Header: "상세내용", Width: 50},
	{Header: "답변", Width: 50},
}

// ExportResult 내보내기 결과
type ExportResult struct {
	Filename      string
	Content       []byte
	Rows          int
	ExcludedCount int
}

// ExportService 조회 결과를 엑셀로 변환 (블라인드 의견 제외)
type ExportService struct {
	query     *OpinionQueryService
	label     string
	sheetName string
	loc       *time.Location
	now       func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(query *OpinionQueryService, label, sheetName string, loc *time.Location) *ExportService {
	if label == "" {
		label = "의견목록"
	}
	if sheetName == "" {
		sheetName = label
	}
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{query: query, label: label, sheetName: sheetName, loc: loc, now: time.Now}
}

// SetClock overrides the wall clock (tests)
func (s *ExportService) SetClock(now func() time.Time) {
	s.now = now
}

// Export aggregates with the same filters as the admin list, drops blinded
// rows and renders the remainder. Rows are numbered 1..N after the drop.
func (s *ExportService) Export(ctx context.Context, actor *domain.Actor, f *domain.ListFilter) (*ExportResult, error) {
	if !actor.IsAdmin() {
		return nil, common.ErrForbidden
	}

	views, err := s.query.Aggregate(ctx, f)
	if err != nil {
		return nil, err
	}

	exportable, excluded := dropBlinded(views)
	if excluded > 0 {
		exportExcludedTotal.Add(float64(excluded))
	}
	if len(exportable) == 0 {
		return nil, &common.NoExportableDataError{ExcludedCount: excluded}
	}

	content, err := spreadsheet.Render(spreadsheet.Sheet{
		Name:    s.sheetName,
		Columns: exportColumns,
		Rows:    exportRows(exportable),
	})
	if err != nil {
		return nil, fmt.Errorf("엑셀 생성 실패: %w", err)
	}

	result := &ExportResult{
		Filename:      fmt.Sprintf("%s_%s.xlsx", s.label, s.now().In(s.loc).Format("2006-01-02")),
		Content:       content,
		Rows:          len(exportable),
		ExcludedCount: excluded,
	}
	logger.GetLogger().Info().
		Str("actor", actor.EmployeeID).
		Int("rows", result.Rows).
		Int("excluded", excluded).
		Msg("opinions exported")
	return result, nil
}

func dropBlinded(views []domain.OpinionView) ([]domain.OpinionView, int) {
	kept := make([]domain.OpinionView, 0, len(views))
	for _, v := range views {
		if v.Blinded {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(views) - len(kept)
}

// exportRows No, 업무주관부서, 안건구분, 안건상세, 안건요청부서, 상세내용, 답변
func exportRows(views []domain.OpinionView) [][]any {
	rows := make([][]any, 0, len(views))
	for i, v := range views {
		rows = append(rows, []any{
			i + 1,
			v.ProcDept,
			v.Category,
			v.Title,
			v.Dept,
			v.Tobe,
			v.ProcDesc,
		})
	}
	return rows
}
