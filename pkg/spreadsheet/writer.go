// Package spreadsheet renders tabular data into an xlsx workbook.
package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column header + width hint (characters)
type Column struct {
	Header string
	Width  float64
}

// Sheet one worksheet: a header row followed by data rows
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// maxSheetNameLen excel 시트 이름 최대 길이 (문자 수)
const maxSheetNameLen = 31

// Render writes the sheet as the only worksheet of a new workbook
func Render(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(sheet.Name)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, fmt.Errorf("시트 이름 설정 실패: %w", err)
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return nil, fmt.Errorf("stream writer 생성 실패: %w", err)
	}

	for i, col := range sheet.Columns {
		if col.Width <= 0 {
			continue
		}
		if err := sw.SetColWidth(i+1, i+1, col.Width); err != nil {
			return nil, fmt.Errorf("컬럼 너비 설정 실패: %w", err)
		}
	}

	header := make([]any, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col.Header
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}

	for i, row := range sheet.Rows {
		if len(row) != len(sheet.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i+1, len(row), len(sheet.Columns))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("엑셀 파일 생성 실패: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Sheet1"
	}
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	return name
}
