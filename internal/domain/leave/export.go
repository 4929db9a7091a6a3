package leave

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "請假紀錄"

var exportHeaders = []string{"單號", "假別", "起始日期", "結束日期", "起始時間", "結束時間", "事由", "時數", "狀態", "建立時間"}

// ExportXLSX renders the rows of a query view as a single-sheet workbook.
func ExportXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			row.ID.String(),
			row.Type.String(),
			row.StartDate.String(),
			row.EndDate.String(),
			row.StartTime.String(),
			row.EndTime.String(),
			row.Reason.String(),
			row.Hours.Float64(),
			row.Status.String(),
			row.CreatedAt.String(),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "A", 20); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "G", "G", 30); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
