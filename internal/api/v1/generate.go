package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
)

// ListSmoothingParameters 客户已保存的平滑参数，用于预填生成对话框
// GET /api/smoothing?client_id=
func (h *Handler) ListSmoothingParameters(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = h.session.Filters().Entity.ClientID
	}
	params, err := h.gw.SmoothingParameters(c.Request.Context(), clientID)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": params})
}

// generateRequest 预测生成请求
type generateRequest struct {
	ClientID        string  `json:"client_id"`
	SkuID           string  `json:"sku_id"`
	HistorySource   string  `json:"history_source" binding:"required"`
	SmoothingAlpha  float64 `json:"smoothing_alpha"`
	ModelName       string  `json:"model_name" binding:"required"`
	ForecastHorizon int     `json:"forecast_horizon" binding:"required,min=1"`
}

// GenerateForecast 触发统计预测生成并刷新网格
// POST /api/forecast/generate
func (h *Handler) GenerateForecast(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	f := h.session.Filters()
	if req.ClientID == "" {
		req.ClientID = f.Entity.ClientID
	}
	if req.SkuID == "" {
		req.SkuID = f.Entity.SkuID
	}
	if req.ClientID == "" || req.SkuID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 client_id 或 sku_id"})
		return
	}

	message, err := h.session.Generate(c.Request.Context(), gateway.GenerateParams{
		ClientID:        req.ClientID,
		SkuID:           req.SkuID,
		HistorySource:   req.HistorySource,
		SmoothingAlpha:  req.SmoothingAlpha,
		ModelName:       req.ModelName,
		ForecastHorizon: req.ForecastHorizon,
	})
	if err != nil {
		if apiErr, ok := unwrapGatewayError(err); ok && apiErr.Kind == gateway.KindValidation {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	// 生成完成后重新加载，把新的统计预测拉进网格
	if err := h.session.Reload(c.Request.Context()); err != nil {
		h.log.WithError(err).Warn("reload after generate failed")
	}
	grid := h.session.Grid(h.clientName(f.Entity.ClientID), h.skuName(f.Entity.ClientID, f.Entity.SkuID))
	c.JSON(http.StatusOK, gin.H{"message": message, "grid": grid})
}
