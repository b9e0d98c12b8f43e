package pivot

import (
	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/series"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Column 网格列定义，Children 非空时为期间分组列
type Column struct {
	HeaderName string   `json:"headerName"`
	Field      string   `json:"field,omitempty"`
	ColID      string   `json:"colId,omitempty"`
	Pinned     string   `json:"pinned,omitempty"`
	Editable   bool     `json:"editable"`
	Type       string   `json:"type,omitempty"`
	Children   []Column `json:"children,omitempty"`
}

// BuildColumns 从合并结果推导动态列树
//
// 两个固定前导列（实体展示名，不可编辑）之后，每个期间一个分组，
// 组内每个适用指标一个叶子列。适用性规则与合并引擎一致；没有任何
// 适用指标的期间不产生分组。叶子列的可编辑性 = 目录 editable 标志
// 且指标属于覆盖白名单。
func BuildColumns(res series.Result, cat *catalog.Catalog) []Column {
	columns := []Column{
		{HeaderName: "Client", Field: "clientName", ColID: "clientName", Pinned: "left"},
		{HeaderName: "SKU", Field: "skuName", ColID: "skuName", Pinned: "left"},
	}

	for _, p := range res.Periods {
		var children []Column
		for _, kf := range res.KeyFigures {
			if !catalog.AppliesToPeriod(kf, p, res.Boundary) {
				continue
			}
			id := CellID(p, kf.KeyFigureID)
			children = append(children, Column{
				HeaderName: kf.Name,
				Field:      id,
				ColID:      id,
				Editable:   cat.OverrideEligible(kf.KeyFigureID),
				Type:       "numericColumn",
			})
		}
		if len(children) == 0 {
			continue
		}
		columns = append(columns, Column{
			HeaderName: p.Label(),
			Children:   children,
		})
	}
	return columns
}

// 数值格式：千分位分隔，最多两位小数
var printer = message.NewPrinter(language.English)

// FormatValue 单元格值的展示格式
func FormatValue(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Leaves 展平列树，只返回单元格叶子列（跳过固定列）
func Leaves(columns []Column) []Column {
	var out []Column
	for _, c := range columns {
		if len(c.Children) > 0 {
			out = append(out, Leaves(c.Children)...)
			continue
		}
		if IsCellID(c.ColID) {
			out = append(out, c)
		}
	}
	return out
}

// ColumnFor 在列树中查找指定 (期间, 指标) 的叶子列
func ColumnFor(columns []Column, p model.Period, keyFigureID int) (Column, bool) {
	want := CellID(p, keyFigureID)
	for _, c := range Leaves(columns) {
		if c.ColID == want {
			return c, true
		}
	}
	return Column{}, false
}
