package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kbvlyon/visitsync/internal/model"
)

// Sheet names of the planning workbook.
const (
	SheetPlanning = "Planning"
	SheetArchive  = "Archives"
)

// PlanningHeader is the header row of both workbook sheets.
var PlanningHeader = []string{
	"Date",
	"Heure",
	"Orateur",
	"Congrégation",
	"N°",
	"Thème",
	"Accueil",
	"Hébergement",
	"Repas",
	"Lieu",
	"Statut",
}

var columnWidths = []float64{12, 8, 24, 22, 6, 40, 22, 18, 18, 10, 12}

func planningRow(v model.Visit) []any {
	return []any{
		v.VisitDate,
		v.VisitTime,
		v.Nom,
		v.Congregation,
		v.TalkNoOrType,
		v.TalkTheme,
		v.Host,
		v.Accommodation,
		v.Meals,
		string(v.LocationType),
		string(v.Status),
	}
}

// WriteXLSX writes the active and archived visits of s as a workbook.
func WriteXLSX(w io.Writer, s *model.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetPlanning); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSheet(f, SheetPlanning, s.Visits, headerStyle); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetArchive); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeSheet(f, SheetArchive, s.ArchivedVisits, headerStyle); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, visits []model.Visit, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &PlanningHeader); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(PlanningHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("%s column width: %w", sheet, err)
		}
	}

	for i, v := range visits {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := planningRow(v)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
