package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRender_HeaderAndRows(t *testing.T) {
	data, err := Render(Sheet{
		Name:    "의견목록",
		Columns: []Column{{Header: "No", Width: 5}, {Header: "답변", Width: 50}},
		Rows:    [][]any{{1, "완료"}, {2, ""}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("의견목록")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"No", "답변"}, rows[0])
	assert.Equal(t, []string{"1", "완료"}, rows[1])
	assert.Equal(t, "2", rows[2][0])

	width, err := f.GetColWidth("의견목록", "B")
	require.NoError(t, err)
	assert.Equal(t, 50.0, width)
}

func TestRender_LongSheetNameTruncated(t *testing.T) {
	long := strings.Repeat("의견", 20)
	data, err := Render(Sheet{
		Name:    long,
		Columns: []Column{{Header: "No"}},
		Rows:    [][]any{{1}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	want := string([]rune(long)[:31])
	assert.Equal(t, []string{want}, f.GetSheetList())
	rows, err := f.GetRows(want)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRender_RowWidthMismatch(t *testing.T) {
	_, err := Render(Sheet{
		Columns: []Column{{Header: "A"}, {Header: "B"}},
		Rows:    [][]any{{1}},
	})
	assert.Error(t, err)
}
