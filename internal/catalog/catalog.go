package catalog

import (
	"sort"

	"github.com/russofranco86hot/Wirebi/internal/model"
)

// 指标 ID 常量，与数据服务的主数据一致
const (
	KeyFigureSalesID              = 1
	KeyFigureSmoothedSalesID      = 2
	KeyFigureOrdersID             = 3
	KeyFigureSmoothedOrdersID     = 4
	KeyFigureManualInputID        = 5
	KeyFigureStatForecastSalesID  = 6
	KeyFigureStatForecastOrdersID = 7
	KeyFigureFinalForecastID      = 8
)

// 调整类型 ID 常量
const (
	AdjustmentTypeQtyID      = 1
	AdjustmentTypePctID      = 2
	AdjustmentTypeOverrideID = 3
)

// overrideEligible 允许直接编辑提交覆盖调整的指标集合
// 产品决策：Manual input、两个统计预测和 Final Forecast 可覆盖，
// 原始历史与平滑历史永远只读（见 DESIGN.md）
var overrideEligible = map[int]bool{
	KeyFigureManualInputID:        true,
	KeyFigureStatForecastSalesID:  true,
	KeyFigureStatForecastOrdersID: true,
	KeyFigureFinalForecastID:      true,
}

// Catalog 不可变的指标目录，按数字 ID 索引
// 启动时加载一次，显式传给所有需要它的组件
type Catalog struct {
	byID    map[int]model.KeyFigure
	ordered []model.KeyFigure
}

// New 从指标列表构建目录
// 重复 ID 后出现者覆盖先出现者；排序按 Order，其次按 ID
func New(figures []model.KeyFigure) *Catalog {
	byID := make(map[int]model.KeyFigure, len(figures))
	for _, kf := range figures {
		byID[kf.KeyFigureID] = kf
	}
	ordered := make([]model.KeyFigure, 0, len(byID))
	for _, kf := range byID {
		ordered = append(ordered, kf)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].KeyFigureID < ordered[j].KeyFigureID
	})
	return &Catalog{byID: byID, ordered: ordered}
}

// Default 内置目录，数据服务不可用时兜底
func Default() *Catalog {
	return New([]model.KeyFigure{
		{KeyFigureID: KeyFigureSalesID, Name: "Sales", AppliesTo: model.AppliesHistorical, Editable: false, Order: 1},
		{KeyFigureID: KeyFigureOrdersID, Name: "Orders", AppliesTo: model.AppliesHistorical, Editable: false, Order: 2},
		{KeyFigureID: KeyFigureSmoothedSalesID, Name: "Smoothed Sales", AppliesTo: model.AppliesHistorical, Editable: false, Order: 3},
		{KeyFigureID: KeyFigureSmoothedOrdersID, Name: "Smoothed Orders", AppliesTo: model.AppliesHistorical, Editable: false, Order: 4},
		{KeyFigureID: KeyFigureManualInputID, Name: "Manual input", AppliesTo: model.AppliesHistorical, Editable: true, Order: 5},
		{KeyFigureID: KeyFigureStatForecastSalesID, Name: "Statistical forecast Sales", AppliesTo: model.AppliesForecast, Editable: true, Order: 6},
		{KeyFigureID: KeyFigureStatForecastOrdersID, Name: "Statistical forecast Orders", AppliesTo: model.AppliesForecast, Editable: true, Order: 7},
		{KeyFigureID: KeyFigureFinalForecastID, Name: "Final Forecast", AppliesTo: model.AppliesForecast, Editable: true, Order: 8},
	})
}

// Get 按 ID 查找指标
func (c *Catalog) Get(id int) (model.KeyFigure, bool) {
	kf, ok := c.byID[id]
	return kf, ok
}

// Ordered 按固定优先级排序的全部指标
func (c *Catalog) Ordered() []model.KeyFigure {
	out := make([]model.KeyFigure, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len 目录条目数
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// OverrideEligible 指标是否允许用户直接编辑提交覆盖
// 需同时满足目录 editable 标志和覆盖白名单
func (c *Catalog) OverrideEligible(id int) bool {
	kf, ok := c.byID[id]
	if !ok {
		return false
	}
	return kf.Editable && overrideEligible[id]
}

// AppliesToPeriod 指标域与期间所处的历史/预测区是否匹配
// boundary 为 nil 时全部期间按历史区处理
func AppliesToPeriod(kf model.KeyFigure, p model.Period, boundary *model.Period) bool {
	historical := boundary == nil || p.Before(*boundary)
	if historical {
		return kf.AppliesTo == model.AppliesHistorical
	}
	return kf.AppliesTo == model.AppliesForecast
}
