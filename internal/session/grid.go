package session

import (
	"github.com/russofranco86hot/Wirebi/internal/pivot"
)

// Grid 网格载荷：行、列树和预测起点
type Grid struct {
	Rows          []map[string]any `json:"rows"`
	Columns       []pivot.Column   `json:"columns"`
	ForecastStart string           `json:"forecastStart,omitempty"`
}

// Trace 图表的一条曲线：统一期间轴上的逐点值，缺数据为 null
type Trace struct {
	KeyFigureID int        `json:"keyFigureId"`
	Name        string     `json:"name"`
	X           []string   `json:"x"`
	Y           []*float64 `json:"y"`
}

// Grid 把合并结果装配为网格载荷
//
// 每个实体一行；单元格字段键为列标识，另带 "<colId>_hasComment"
// 装饰字段。行内缺席的 (期间, 指标) 组合不生成字段，渲染为空白。
func (s *Session) Grid(clientName, skuName string) Grid {
	s.mu.Lock()
	merged := s.merged
	presence := s.presence
	s.mu.Unlock()

	columns := pivot.BuildColumns(merged, s.cat)
	leaves := pivot.Leaves(columns)

	rows := make([]map[string]any, 0, len(merged.Rows))
	for _, r := range merged.Rows {
		row := map[string]any{
			"client_id":       r.Entity.ClientID,
			"sku_id":          r.Entity.SkuID,
			"client_final_id": r.Entity.ClientFinalID,
			"clientName":      clientName,
			"skuName":         skuName,
		}
		for _, col := range leaves {
			p, kfID, err := pivot.ParseCellID(col.ColID)
			if err != nil {
				continue
			}
			if v, ok := r.Value(p, kfID); ok {
				row[col.ColID] = v
			}
			if presence.Has(r.Entity, p, kfID) {
				row[col.ColID+"_hasComment"] = true
			}
		}
		rows = append(rows, row)
	}

	g := Grid{Rows: rows, Columns: columns}
	if merged.Boundary != nil {
		g.ForecastStart = merged.Boundary.Key()
	}
	return g
}

// Chart 每个指标一条曲线，x 轴为统一的期间序列
func (s *Session) Chart() []Trace {
	s.mu.Lock()
	merged := s.merged
	s.mu.Unlock()

	x := make([]string, 0, len(merged.Periods))
	for _, p := range merged.Periods {
		x = append(x, p.Key())
	}

	traces := make([]Trace, 0, len(merged.KeyFigures))
	for _, kf := range merged.KeyFigures {
		y := make([]*float64, len(merged.Periods))
		for i, p := range merged.Periods {
			for _, r := range merged.Rows {
				if v, ok := r.Value(p, kf.KeyFigureID); ok {
					val := v
					y[i] = &val
					break
				}
			}
		}
		traces = append(traces, Trace{
			KeyFigureID: kf.KeyFigureID,
			Name:        kf.Name,
			X:           x,
			Y:           y,
		})
	}
	return traces
}
