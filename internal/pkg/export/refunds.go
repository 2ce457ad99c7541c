package export

import (
	"fmt"
	"io"

	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/xuri/excelize/v2"
)

// Sheet is the refund sheet name
const Sheet = "Refunds"

var headers = []string{"ID", "Name", "Amount", "Image URL", "Audio URL"}

// WriteRefunds writes refund requests as xlsx workbook
func WriteRefunds(w io.Writer, refunds []*persistence.RefundRequest) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return fmt.Errorf("can't rename sheet: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(Sheet, cell, h); err != nil {
			return fmt.Errorf("can't write header: %w", err)
		}
	}
	for i, r := range refunds {
		row := i + 2
		write := func(col int, v interface{}) error {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			return f.SetCellValue(Sheet, cell, v)
		}
		for col, v := range []interface{}{r.ID, r.Name, floatOrEmpty(r.Amount), strOrEmpty(r.ImageURL), strOrEmpty(r.AudioURL)} {
			if err := write(col+1, v); err != nil {
				return fmt.Errorf("can't write row %d: %w", row, err)
			}
		}
	}
	_ = f.SetColWidth(Sheet, "B", "B", 24)
	_ = f.SetColWidth(Sheet, "D", "E", 48)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("can't write xlsx: %w", err)
	}
	return nil
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
