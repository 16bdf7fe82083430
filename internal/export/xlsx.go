// Package export renders job listings as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/jobboard/internal/core"
)

// SheetName is the worksheet holding the exported jobs.
const SheetName = "Jobs"

// Headers are the column titles of the exported sheet, in order.
var Headers = []string{
	"Title",
	"Company",
	"Location",
	"Type",
	"Level",
	"Salary Min",
	"Salary Max",
	"Remote",
	"Featured",
	"Tags",
	"Posted",
	"Apply URL",
}

// maxCellLen is the cell length limit Excel enforces.
const maxCellLen = 32767

// Writer produces XLSX workbooks.
type Writer struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewWriter creates a Writer. A nil logger falls back to slog.Default.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger, now: time.Now}
}

// WriteXLSX writes jobs as a single-sheet workbook to w, one row per job.
func (x *Writer) WriteXLSX(w io.Writer, jobs []core.Job) error {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	now := x.now()
	for i, j := range jobs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, truncate(j.Title))
		write(2, truncate(j.Company))
		write(3, truncate(j.Location))
		write(4, string(j.Type))
		write(5, string(j.Level))
		if j.SalaryMin != nil {
			write(6, *j.SalaryMin)
		}
		if j.SalaryMax != nil {
			write(7, *j.SalaryMax)
		}
		write(8, yesNo(j.RemoteFriendly))
		write(9, yesNo(j.Featured))
		write(10, truncate(strings.Join(j.Tags, ", ")))
		write(11, j.PostedTime(now).Format("2006-01-02"))
		write(12, j.ApplyURL)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, bold)
	}
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	_ = f.SetColWidth(SheetName, "A", "A", 36) // title
	_ = f.SetColWidth(SheetName, "B", "C", 24) // company, location
	_ = f.SetColWidth(SheetName, "D", "E", 12)
	_ = f.SetColWidth(SheetName, "F", "G", 12) // salaries
	_ = f.SetColWidth(SheetName, "H", "I", 10)
	_ = f.SetColWidth(SheetName, "J", "J", 32) // tags
	_ = f.SetColWidth(SheetName, "K", "K", 12)
	_ = f.SetColWidth(SheetName, "L", "L", 48) // url

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	x.logger.Info("export.xlsx.ok",
		"rows", len(jobs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellLen {
		return s
	}
	return string(r[:maxCellLen-1]) + "…"
}
