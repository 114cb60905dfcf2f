package catalog

import (
	"fmt"
	"io"

	"github.com/itplace/locator-backend-go/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportSheet is the sheet name used by WriteXLSX
const ExportSheet = "Stores"

// WriteXLSX writes stores to w as a workbook that LoadXLSX can read back
func WriteXLSX(w io.Writer, stores []models.Store) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ExportSheet)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(ExportSheet)
	if err != nil {
		return err
	}

	headers := []interface{}{"id", "name", "benefit", "lat", "lng", "geohash"}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, s := range stores {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.ID, s.Name, s.Benefit,
			s.Location.Latitude, s.Location.Longitude,
			s.Geohash,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	_, err = f.WriteTo(w)
	return err
}
