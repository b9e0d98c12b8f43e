package model

import "time"

// EntityKey 需求计划行的实体键
// client_final_id 为次级维度，区分最终消费实体与下单客户，
// 所有记录原样携带，不参与合并逻辑
type EntityKey struct {
	ClientID      string `json:"client_id"`
	SkuID         string `json:"sku_id"`
	ClientFinalID string `json:"client_final_id"`
}

// Key 实体键的字符串形式，作为 map 键使用
func (e EntityKey) Key() string {
	return e.ClientID + "|" + e.SkuID + "|" + e.ClientFinalID
}

// Fact 一条观测或计算出的数值记录
// Source 仅对原始历史（sales/order/shipments）有意义，计算指标为空
// Value 为空表示无数据，单元格留白，绝不按 0 处理
type Fact struct {
	EntityKey
	Period      Period   `json:"period"`
	KeyFigureID int      `json:"key_figure_id"`
	Source      string   `json:"source,omitempty"`
	Value       *float64 `json:"value"`
	ModelUsed   string   `json:"model_used,omitempty"`
}

// Adjustment 用户对某单元格的覆盖请求，服务端按键 upsert
type Adjustment struct {
	EntityKey
	Period           Period  `json:"period"`
	KeyFigureID      int     `json:"key_figure_id"`
	AdjustmentTypeID int     `json:"adjustment_type_id"`
	Value            float64 `json:"value"`
	UserID           string  `json:"user_id"`
}

// Comment 附着在单个单元格上的注释，创建后不可变
type Comment struct {
	EntityKey
	Period      Period    `json:"period"`
	KeyFigureID int       `json:"key_figure_id"`
	Comment     string    `json:"comment"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ForecastVersion 预测快照：命名的生成参数指针，服务端据此复现历史状态
type ForecastVersion struct {
	VersionID               string    `json:"version_id,omitempty"`
	ClientID                string    `json:"client_id"`
	UserID                  string    `json:"user_id"`
	VersionName             string    `json:"version_name"`
	HistorySourceUsed       string    `json:"history_source_used"`
	SmoothingParameterUsed  float64   `json:"smoothing_parameter_used"`
	StatisticalModelApplied string    `json:"statistical_model_applied"`
	Notes                   string    `json:"notes,omitempty"`
	CreationDate            time.Time `json:"creation_date,omitempty"`
}
