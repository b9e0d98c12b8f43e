package gateway

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"github.com/russofranco86hot/Wirebi/internal/model"
)

// SaveAdjustment 提交调整记录，服务端按键 upsert
// POST /data/adjustments/
func (g *Gateway) SaveAdjustment(ctx context.Context, adj model.Adjustment) (model.Adjustment, error) {
	var out model.Adjustment
	if err := g.post(ctx, "/data/adjustments/", nil, adj, &out); err != nil {
		return model.Adjustment{}, err
	}
	return out, nil
}

// GenerateParams 触发服务端异步预测计算的参数
type GenerateParams struct {
	ClientID        string
	SkuID           string
	HistorySource   string
	SmoothingAlpha  float64
	ModelName       string
	ForecastHorizon int
}

// GenerateForecast 触发统计预测生成，返回服务端的状态消息
// POST /data/forecast/generate/
func (g *Gateway) GenerateForecast(ctx context.Context, p GenerateParams) (string, error) {
	params := url.Values{}
	params.Set("client_id", p.ClientID)
	params.Set("sku_id", p.SkuID)
	params.Set("history_source", p.HistorySource)
	params.Set("smoothing_alpha", strconv.FormatFloat(p.SmoothingAlpha, 'f', -1, 64))
	params.Set("model_name", p.ModelName)
	params.Set("forecast_horizon", strconv.Itoa(p.ForecastHorizon))

	var out struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := g.post(ctx, "/data/forecast/generate/", params, nil, &out); err != nil {
		return "", err
	}
	if out.Message != "" {
		return out.Message, nil
	}
	return out.Detail, nil
}

// CommentQuery 注释查询，期间相等过滤通过 start=end 表达
type CommentQuery struct {
	ClientIDs    []string
	SkuIDs       []string
	StartPeriod  model.Period
	EndPeriod    model.Period
	KeyFigureIDs []int
}

// Comments 查询注释，按创建时间升序返回
// GET /data/comments/
func (g *Gateway) Comments(ctx context.Context, q CommentQuery) ([]model.Comment, error) {
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
	if !q.StartPeriod.IsZero() {
		params.Set("start_period", q.StartPeriod.Key())
	}
	if !q.EndPeriod.IsZero() {
		params.Set("end_period", q.EndPeriod.Key())
	}

	var out []model.Comment
	if err := g.get(ctx, "/data/comments/", params, &out); err != nil {
		if IsEmptyResult(err) {
			return []model.Comment{}, nil
		}
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SaveComment 创建注释，注释创建后不可变
// POST /data/comments/
func (g *Gateway) SaveComment(ctx context.Context, c model.Comment) (model.Comment, error) {
	var out model.Comment
	if err := g.post(ctx, "/data/comments/", nil, c, &out); err != nil {
		return model.Comment{}, err
	}
	return out, nil
}

// Versions 客户的预测版本列表
// GET /data/forecast/versions?client_id=
func (g *Gateway) Versions(ctx context.Context, clientID string) ([]model.ForecastVersion, error) {
	params := url.Values{}
	if clientID != "" {
		params.Set("client_id", clientID)
	}
	var out []model.ForecastVersion
	if err := g.get(ctx, "/data/forecast/versions", params, &out); err != nil {
		if IsEmptyResult(err) {
			return []model.ForecastVersion{}, nil
		}
		return nil, err
	}
	return out, nil
}

// SaveVersion 保存当前预测为命名快照
// POST /data/forecast/versions
func (g *Gateway) SaveVersion(ctx context.Context, v model.ForecastVersion) (model.ForecastVersion, error) {
	var out model.ForecastVersion
	if err := g.post(ctx, "/data/forecast/versions", nil, v, &out); err != nil {
		return model.ForecastVersion{}, err
	}
	return out, nil
}

// SmoothingParameter 服务端记录的平滑参数配置
type SmoothingParameter struct {
	ClientID       string  `json:"client_id"`
	SkuID          string  `json:"sku_id,omitempty"`
	SmoothingAlpha float64 `json:"smoothing_alpha"`
	ModelName      string  `json:"model_name,omitempty"`
}

// SmoothingParameters 查询平滑参数
// GET /data/smoothing_parameters/
func (g *Gateway) SmoothingParameters(ctx context.Context, clientID string) ([]SmoothingParameter, error) {
	params := url.Values{}
	if clientID != "" {
		params.Set("client_id", clientID)
	}
	var out []SmoothingParameter
	if err := g.get(ctx, "/data/smoothing_parameters/", params, &out); err != nil {
		if IsEmptyResult(err) {
			return []SmoothingParameter{}, nil
		}
		return nil, err
	}
	return out, nil
}
