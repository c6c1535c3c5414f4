package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/RachanaRJadav/arecanut-ai/internal/model"

	"github.com/xuri/excelize/v2"
)

const historySheet = "Grading History"

var historyHeader = []string{
	"Batch ID",
	"Grade",
	"Confidence",
	"Quality Score",
	"Market Price (Rs/kg)",
	"Moisture (%)",
	"Size",
	"Color",
	"Defects",
	"Location",
	"Notes",
	"Graded At",
}

// HistoryWorkbook renders an owner's grading history as an xlsx
// workbook, one row per result in the order given.
func HistoryWorkbook(results []model.GradingResult) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(historySheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}

	for col, title := range historyHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(historySheet, cell, title); err != nil {
			return nil, err
		}
	}

	for row, r := range results {
		values := []interface{}{
			r.BatchID,
			string(r.Grade),
			r.Confidence,
			r.QualityScore,
			r.MarketPrice,
			r.MoistureContent,
			r.Size,
			r.Color,
			strings.Join(r.Defects, "; "),
			r.Location,
			r.Notes,
			r.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(historySheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
