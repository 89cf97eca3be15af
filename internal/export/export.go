// Package export renders booking lists as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

var statusColors = map[models.BookingStatus]string{
	models.StatusWaiting:  "#FFF2CC",
	models.StatusApproved: "#E2EFDA",
	models.StatusRejected: "#F8CBAD",
}

type BookingExporter struct {
	sheetName string
	logger    *zerolog.Logger
}

func NewBookingExporter(sheetName string, logger *zerolog.Logger) *BookingExporter {
	if sheetName == "" {
		sheetName = models.DefaultExportSheetName
	}
	return &BookingExporter{sheetName: sheetName, logger: logger}
}

// FileName builds the attachment name for a role/state export made at the given time.
func FileName(role models.Role, state models.BookingState, at time.Time) string {
	return fmt.Sprintf("bookings_%s_%s_%s.xlsx", role, state, at.UTC().Format("20060102T150405"))
}

// Write renders bookings into a single-sheet workbook, keeping their order.
func (e *BookingExporter) Write(w io.Writer, title string, bookings []*models.Booking) error {
	// Создаем новый Excel файл
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(e.sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if e.sheetName != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	if err := e.writeTitle(f, title); err != nil {
		return err
	}
	if err := e.writeHeaders(f); err != nil {
		return err
	}
	if err := e.writeRows(f, bookings); err != nil {
		return err
	}

	_ = f.SetColWidth(e.sheetName, "A", "C", 10)
	_ = f.SetColWidth(e.sheetName, "D", "E", 22)
	_ = f.SetColWidth(e.sheetName, "F", "F", 12)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}

	e.logger.Debug().Int("rows", len(bookings)).Str("sheet", e.sheetName).Msg("booking export written")
	return nil
}

func (e *BookingExporter) writeTitle(f *excelize.File, title string) error {
	if err := f.SetCellValue(e.sheetName, "A1", title); err != nil {
		return fmt.Errorf("error writing title: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(e.sheetName, "A1", lastCol+"1")

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}
	return f.SetCellStyle(e.sheetName, "A1", "A1", style)
}

func (e *BookingExporter) writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(e.sheetName, cell, h); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(headers), 2)
	return f.SetCellStyle(e.sheetName, "A2", lastCell, style)
}

func (e *BookingExporter) writeRows(f *excelize.File, bookings []*models.Booking) error {
	styles := make(map[models.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = id
	}

	for i, b := range bookings {
		row := i + 3
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			b.ID,
			b.ItemID,
			b.BookerID,
			b.Start.UTC().Format(time.RFC3339),
			b.End.UTC().Format(time.RFC3339),
			string(b.Status),
		}
		if err := f.SetSheetRow(e.sheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}

		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(e.sheetName, statusCell, statusCell, style)
		}
	}
	return nil
}
