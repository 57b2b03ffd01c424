package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/medcart/internal/domain/inventory"
)

// StockReport рендерит текущее состояние склада в xlsx.
// Колонка qty — фактический остаток партии на момент выгрузки.
func StockReport(batches []inventory.Batch) ([]byte, string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"inventory_id",
		"medication_id",
		"batch_number",
		"qty",
		"unit",
		"location",
		"expiration_date",
		"min_stock",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", err
	}

	row := 2
	for _, b := range batches {
		excelRow := []interface{}{
			b.ID,
			b.MedicationID,
			b.BatchNumber,
			b.Amount,
			b.Unit,
			b.Location,
			b.ExpirationDate.Format("2006-01-02"),
			b.MinStock,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, "", err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, "", err
	}

	fileName := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), fileName, nil
}
