package model

// AppliesTo 指标适用的期间域：历史区或预测区
type AppliesTo string

const (
	AppliesHistorical AppliesTo = "historical"
	AppliesForecast   AppliesTo = "forecast"
)

// KeyFigure 指标（Key Figure）目录条目
// ID 是唯一的关联键；Name 仅做展示，任何查找都不得依赖它
type KeyFigure struct {
	KeyFigureID int       `json:"key_figure_id"`
	Name        string    `json:"name"`
	AppliesTo   AppliesTo `json:"applies_to"`
	Editable    bool      `json:"editable"`
	Order       int       `json:"order"`
}

// Client 客户维度
type Client struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
}

// SKU 物料维度
type SKU struct {
	SkuID    string `json:"sku_id"`
	SkuName  string `json:"sku_name"`
	ClientID string `json:"client_id,omitempty"`
}

// AdjustmentType 调整类型维度（数量增量/百分比/覆盖）
type AdjustmentType struct {
	AdjustmentTypeID int    `json:"adjustment_type_id"`
	Name             string `json:"name"`
}
