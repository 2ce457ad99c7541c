package export

import (
	"bytes"
	"testing"

	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteRefunds(t *testing.T) {
	amount, img := 12.5, "http://s/receipts/refund_req1.png"
	var b bytes.Buffer

	err := WriteRefunds(&b, []*persistence.RefundRequest{
		{ID: 1, Name: "Jonas", Amount: &amount, ImageURL: &img},
		{ID: 2, Name: "Ona"},
	})

	require.Nil(t, err)
	f, err := excelize.OpenReader(&b)
	require.Nil(t, err)
	defer f.Close()
	get := func(cell string) string {
		v, err := f.GetCellValue(Sheet, cell)
		require.Nil(t, err)
		return v
	}
	assert.Equal(t, "ID", get("A1"))
	assert.Equal(t, "Audio URL", get("E1"))
	assert.Equal(t, "1", get("A2"))
	assert.Equal(t, "Jonas", get("B2"))
	assert.Equal(t, "12.5", get("C2"))
	assert.Equal(t, img, get("D2"))
	assert.Equal(t, "Ona", get("B3"))
	assert.Equal(t, "", get("C3"))
	assert.Equal(t, "", get("E3"))
}

func TestWriteRefunds_Empty(t *testing.T) {
	var b bytes.Buffer

	require.Nil(t, WriteRefunds(&b, nil))

	f, err := excelize.OpenReader(&b)
	require.Nil(t, err)
	defer f.Close()
	rows, err := f.GetRows(Sheet)
	require.Nil(t, err)
	assert.Len(t, rows, 1)
}
