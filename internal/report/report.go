package report

import (
	"fmt"

	"github.com/andresmejia3/rollcall/internal/attendance"
	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet is the worksheet the table is written to.
const Sheet = "Sheet1"

// Header is the first row of every export.
var Header = []string{"Name", "Time"}

// Export converts the text log at txtPath into a spreadsheet at xlsxPath.
// It returns attendance.ErrMissingLog (wrapped) without writing anything
// when the text log does not exist.
func Export(txtPath, xlsxPath string) ([]types.AttendanceEntry, error) {
	entries, err := attendance.ReadEntries(txtPath)
	if err != nil {
		return nil, err
	}
	if err := Write(xlsxPath, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Write renders entries as a two-column table, preserving order.
func Write(xlsxPath string, entries []types.AttendanceEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	for col, title := range Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(Sheet, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, e := range entries {
		row := i + 2
		// Cells are written as strings so "09:00:00" is not reinterpreted as a time value.
		if err := f.SetCellStr(Sheet, fmt.Sprintf("A%d", row), e.Identity); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if err := f.SetCellStr(Sheet, fmt.Sprintf("B%d", row), e.Time); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if err := f.SaveAs(xlsxPath); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}
