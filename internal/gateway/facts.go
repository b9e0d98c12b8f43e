package gateway

import (
	"context"
	"net/url"
	"strconv"

	"github.com/russofranco86hot/Wirebi/internal/model"
)

// HistoryQuery 原始历史的多值过滤查询，键可重复传递
type HistoryQuery struct {
	ClientIDs    []string
	SkuIDs       []string
	StartPeriod  model.Period
	EndPeriod    model.Period
	KeyFigureIDs []int
	Sources      []string
}

// FactQuery 单实体的事实序列查询
type FactQuery struct {
	Entity      model.EntityKey
	StartPeriod model.Period
	EndPeriod   model.Period
}

func (q HistoryQuery) values() url.Values {
	params := url.Values{}
	for _, id := range q.ClientIDs {
		params.Add("client_ids", id)
	}
	for _, id := range q.SkuIDs {
		params.Add("sku_ids", id)
	}
	for _, id := range q.KeyFigureIDs {
		params.Add("key_figure_ids", strconv.Itoa(id))
	}
	for _, s := range q.Sources {
		params.Add("sources", s)
	}
	if !q.StartPeriod.IsZero() {
		params.Set("start_period", q.StartPeriod.Key())
	}
	if !q.EndPeriod.IsZero() {
		params.Set("end_period", q.EndPeriod.Key())
	}
	return params
}

func (q FactQuery) values() url.Values {
	params := url.Values{}
	params.Set("client_id", q.Entity.ClientID)
	params.Set("sku_id", q.Entity.SkuID)
	params.Set("client_final_id", q.Entity.ClientFinalID)
	if !q.StartPeriod.IsZero() {
		params.Set("start_period", q.StartPeriod.Key())
	}
	if !q.EndPeriod.IsZero() {
		params.Set("end_period", q.EndPeriod.Key())
	}
	return params
}

// facts 事实查询的公共路径：空结果归一为空切片，绝不报错
func (g *Gateway) facts(ctx context.Context, path string, params url.Values) ([]model.Fact, error) {
	var out []model.Fact
	if err := g.get(ctx, path, params, &out); err != nil {
		if IsEmptyResult(err) {
			return []model.Fact{}, nil
		}
		return nil, err
	}
	if out == nil {
		out = []model.Fact{}
	}
	return out, nil
}

// History 原始历史（sales/order/shipments）
// GET /data/history/
func (g *Gateway) History(ctx context.Context, q HistoryQuery) ([]model.Fact, error) {
	return g.facts(ctx, "/data/history/", q.values())
}

// CleanHistory 平滑/清洗历史
// GET /data/clean_history/
func (g *Gateway) CleanHistory(ctx context.Context, q FactQuery) ([]model.Fact, error) {
	return g.facts(ctx, "/data/clean_history/", q.values())
}

// ForecastStat 统计预测
// GET /data/forecast_stat/
func (g *Gateway) ForecastStat(ctx context.Context, q FactQuery) ([]model.Fact, error) {
	return g.facts(ctx, "/data/forecast_stat/", q.values())
}

// FinalForecast 最终预测（服务端已合成所有调整）
// GET /data/final_forecast/
func (g *Gateway) FinalForecast(ctx context.Context, q FactQuery) ([]model.Fact, error) {
	return g.facts(ctx, "/data/final_forecast/", q.values())
}

// VersionedForecast 指定版本快照下的预测序列
// GET /data/forecast/versioned/
func (g *Gateway) VersionedForecast(ctx context.Context, versionIDs []string, q HistoryQuery) ([]model.Fact, error) {
	params := q.values()
	for _, id := range versionIDs {
		params.Add("version_ids", id)
	}
	return g.facts(ctx, "/data/forecast/versioned/", params)
}
