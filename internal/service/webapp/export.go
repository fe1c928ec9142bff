package webapp

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"uelco_jobs/internal/model"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// handleExport streams the whole job table as an Excel workbook, the shape
// the sheet had back when it lived in a local file.
func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessionFor(r)
	if err != nil {
		a.fail(w, http.StatusBadGateway, "could not load job table", err)
		return
	}
	snap := sess.Snapshot()

	f, err := buildWorkbook(snap.Records)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, "could not build export", err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("uelco_jobs_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := f.Write(w); err != nil {
		a.logger.Error("error streaming export", zap.Error(err))
	}
}

func buildWorkbook(records []model.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheetName = "Jobs"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})

	cols := model.Columns()
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx := range records {
		for colIdx, col := range cols {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheetName, cell, records[rowIdx].Value(col))
		}
	}
	return f, nil
}

// sanitizeFilename keeps filenames safe for the relay and download headers.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '&':
			b.WriteRune('_')
		}
	}
	return b.String()
}
