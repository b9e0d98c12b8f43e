package exporter

import (
	"fmt"

	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/pivot"
	"github.com/russofranco86hot/Wirebi/internal/series"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Forecast"

// Options 导出选项
type Options struct {
	ClientName string
	SkuName    string
}

// Exporter 把当前透视网格渲染为 Excel 工作簿
type Exporter struct {
	cat *catalog.Catalog
}

// NewExporter 创建导出器
func NewExporter(cat *catalog.Catalog) *Exporter {
	return &Exporter{cat: cat}
}

// Export 生成工作簿：第一行期间分组表头（合并单元格），
// 第二行指标表头，之后每个实体一行，数值带千分位格式
func (e *Exporter) Export(res series.Result, opts Options) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	columns := pivot.BuildColumns(res, e.cat)
	leaves := pivot.Leaves(columns)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	numStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: strPtr("#,##0.00"),
	})
	if err != nil {
		return nil, fmt.Errorf("create number style: %w", err)
	}

	// 固定前导列
	if err := f.SetCellValue(sheetName, "A1", "Client"); err != nil {
		return nil, err
	}
	f.SetCellValue(sheetName, "B1", "SKU")
	f.MergeCell(sheetName, "A1", "A2")
	f.MergeCell(sheetName, "B1", "B2")
	f.SetColWidth(sheetName, "A", "B", 24)

	// 期间分组表头 + 指标子表头
	colIdx := 3
	for _, group := range columns {
		if len(group.Children) == 0 {
			continue
		}
		startCell, _ := excelize.CoordinatesToCellName(colIdx, 1)
		endCell, _ := excelize.CoordinatesToCellName(colIdx+len(group.Children)-1, 1)
		f.SetCellValue(sheetName, startCell, group.HeaderName)
		if startCell != endCell {
			f.MergeCell(sheetName, startCell, endCell)
		}
		for i, child := range group.Children {
			cell, _ := excelize.CoordinatesToCellName(colIdx+i, 2)
			f.SetCellValue(sheetName, cell, child.HeaderName)
		}
		colIdx += len(group.Children)
	}

	headerEnd, _ := excelize.CoordinatesToCellName(colIdx-1, 2)
	f.SetCellStyle(sheetName, "A1", headerEnd, headerStyle)

	// 数据行
	for i, row := range res.Rows {
		rowIdx := 3 + i
		aCell, _ := excelize.CoordinatesToCellName(1, rowIdx)
		f.SetCellValue(sheetName, aCell, opts.ClientName)
		bCell, _ := excelize.CoordinatesToCellName(2, rowIdx)
		f.SetCellValue(sheetName, bCell, opts.SkuName)

		for j, leaf := range leaves {
			p, kfID, err := pivot.ParseCellID(leaf.ColID)
			if err != nil {
				continue
			}
			v, ok := row.Value(p, kfID)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(3+j, rowIdx)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
			f.SetCellStyle(sheetName, cell, cell, numStyle)
		}
	}

	return f, nil
}

func strPtr(s string) *string { return &s }
