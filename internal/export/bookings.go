package export

import (
	"fmt"
	"io"
	"time"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Bookings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"ID", "Item", "Booker", "Email", "Start", "End", "Status"}

// statusFill returns the cell fill for a booking status.
func statusFill(status models.BookingStatus) string {
	switch status {
	case models.StatusApproved:
		return "#C6EFCE"
	case models.StatusRejected:
		return "#FFC7CE"
	default:
		return "#FFEB9C"
	}
}

// OwnerBookings builds a workbook with one row per booking.
func OwnerBookings(views []*models.BookingView, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(SheetName, "A1", fmt.Sprintf("Generated: %s", generated.UTC().Format(time.RFC3339)))
	_ = f.MergeCell(SheetName, "A1", "G1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(SheetName, cell, h)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	styles := make(map[models.BookingStatus]int)
	for i, v := range views {
		row := i + 3
		values := []any{
			v.ID,
			v.Item.Name,
			v.Booker.Name,
			v.Booker.Email,
			v.Start.UTC().Format("02.01.2006 15:04"),
			v.End.UTC().Format("02.01.2006 15:04"),
			string(v.Status),
		}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(SheetName, cell, val)
		}

		style, ok := styles[v.Status]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{statusFill(v.Status)}, Pattern: 1},
			})
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to create style: %w", err)
			}
			styles[v.Status] = style
		}
		cell := fmt.Sprintf("G%d", row)
		_ = f.SetCellStyle(SheetName, cell, cell, style)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", "D", 25)
	_ = f.SetColWidth(SheetName, "E", "F", 18)
	_ = f.SetColWidth(SheetName, "G", "G", 12)

	return f, nil
}

// WriteOwnerBookings streams the workbook to w.
func WriteOwnerBookings(w io.Writer, views []*models.BookingView, generated time.Time) error {
	f, err := OwnerBookings(views, generated)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
