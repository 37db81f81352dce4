package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"estimate-backend/internal/service/rollup"
	"estimate-backend/internal/storage"
)

type GenerateExcelStorage interface {
	GetProject(ctx context.Context, id int64) (*storage.Project, error)
	GetRevisionWithPositions(ctx context.Context, id int64) (*storage.Revision, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

var headers = []string{
	"No", "Name", "Unit", "Quantity", "Labor / unit", "Material / unit", "Markup %", "Net", "Total",
}

// ExportRevision renders one revision as a workbook: a row per position, its
// components indented below it, and the revision totals at the bottom.
func (g *GenerateExcelService) ExportRevision(ctx context.Context, revisionID int64) ([]byte, string, error) {
	const op = "service.generate_excel.ExportRevision"

	rev, err := g.storage.GetRevisionWithPositions(ctx, revisionID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	project, err := g.storage.GetProject(ctx, rev.ProjectID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	cost := rollup.Revision(*rev)

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Estimate"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	componentStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Color: "666666"},
		Alignment: &excelize.Alignment{Indent: 1},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s, revision %d", project.Name, rev.Number))
	f.SetCellValue(sheet, "A2", project.Client)

	const headerRow = 4
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, headerRow), name)
	}
	f.SetCellStyle(sheet, cellName(1, headerRow), cellName(len(headers), headerRow), headerStyle)

	row := headerRow + 1
	for i, p := range rev.Positions {
		c := cost.Positions[i]

		f.SetCellValue(sheet, cellName(1, row), i+1)
		f.SetCellValue(sheet, cellName(2, row), p.Name)
		f.SetCellValue(sheet, cellName(3, row), p.Unit)
		f.SetCellValue(sheet, cellName(4, row), p.Quantity.InexactFloat64())
		f.SetCellValue(sheet, cellName(5, row), c.LaborUnit.InexactFloat64())
		f.SetCellValue(sheet, cellName(6, row), c.MaterialUnit.InexactFloat64())
		f.SetCellValue(sheet, cellName(7, row), p.MarkupPercent.InexactFloat64())
		f.SetCellValue(sheet, cellName(8, row), c.Net.InexactFloat64())
		f.SetCellValue(sheet, cellName(9, row), c.Total.InexactFloat64())
		row++

		first := row
		for _, l := range p.Labor {
			f.SetCellValue(sheet, cellName(2, row), l.Description)
			f.SetCellValue(sheet, cellName(3, row), l.Unit)
			f.SetCellValue(sheet, cellName(4, row), l.Norm.InexactFloat64())
			f.SetCellValue(sheet, cellName(5, row), l.Rate.InexactFloat64())
			row++
		}
		for _, m := range p.Materials {
			f.SetCellValue(sheet, cellName(2, row), m.Name)
			f.SetCellValue(sheet, cellName(3, row), m.Unit)
			f.SetCellValue(sheet, cellName(4, row), m.Norm.InexactFloat64())
			f.SetCellValue(sheet, cellName(6, row), m.UnitPrice.InexactFloat64())
			row++
		}
		if row > first {
			f.SetCellStyle(sheet, cellName(2, first), cellName(6, row-1), componentStyle)
		}
	}

	row++
	f.SetCellValue(sheet, cellName(2, row), "Labor")
	f.SetCellValue(sheet, cellName(9, row), cost.Labor.InexactFloat64())
	row++
	f.SetCellValue(sheet, cellName(2, row), "Material")
	f.SetCellValue(sheet, cellName(9, row), cost.Material.InexactFloat64())
	row++
	f.SetCellValue(sheet, cellName(2, row), "Total")
	f.SetCellValue(sheet, cellName(9, row), cost.Total.InexactFloat64())
	f.SetCellStyle(sheet, cellName(2, row), cellName(9, row), headerStyle)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cellName(1, headerRow+1),
	})
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "C", "I", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	fileName := fmt.Sprintf("estimate_%d_rev%d.xlsx", project.ID, rev.Number)
	return buf.Bytes(), fileName, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
