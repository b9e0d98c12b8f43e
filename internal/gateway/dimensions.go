package gateway

import (
	"context"
	"net/url"

	"github.com/russofranco86hot/Wirebi/internal/model"
)

// Clients 客户维度
// GET /clients/
func (g *Gateway) Clients(ctx context.Context) ([]model.Client, error) {
	var out []model.Client
	if err := g.get(ctx, "/clients/", nil, &out); err != nil {
		if IsEmptyResult(err) {
			return []model.Client{}, nil
		}
		return nil, err
	}
	return out, nil
}

// SKUs 物料维度，可按客户过滤
// GET /skus/?client_id=
func (g *Gateway) SKUs(ctx context.Context, clientID string) ([]model.SKU, error) {
	params := url.Values{}
	if clientID != "" {
		params.Set("client_id", clientID)
	}
	var out []model.SKU
	if err := g.get(ctx, "/skus/", params, &out); err != nil {
		if IsEmptyResult(err) {
			return []model.SKU{}, nil
		}
		return nil, err
	}
	return out, nil
}

// KeyFigures 指标目录
// GET /keyfigures/
func (g *Gateway) KeyFigures(ctx context.Context) ([]model.KeyFigure, error) {
	var out []model.KeyFigure
	if err := g.get(ctx, "/keyfigures/", nil, &out); err != nil {
		if IsEmptyResult(err) {
			return []model.KeyFigure{}, nil
		}
		return nil, err
	}
	return out, nil
}

// AdjustmentTypes 调整类型维度
// GET /data/adjustment_types/
func (g *Gateway) AdjustmentTypes(ctx context.Context) ([]model.AdjustmentType, error) {
	var out []model.AdjustmentType
	if err := g.get(ctx, "/data/adjustment_types/", nil, &out); err != nil {
		if IsEmptyResult(err) {
			return []model.AdjustmentType{}, nil
		}
		return nil, err
	}
	return out, nil
}
