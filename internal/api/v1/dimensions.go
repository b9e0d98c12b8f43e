package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/russofranco86hot/Wirebi/internal/model"
)

// StatusResponse 系统状态
type StatusResponse struct {
	Loading    bool              `json:"loading"`
	Generating bool              `json:"generating"`
	Filters    any               `json:"filters"`
	DimErrors  map[string]string `json:"dimensionErrors,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	h.dimMu.Lock()
	dimErrors := make(map[string]string, len(h.dimErrors))
	for k, v := range h.dimErrors {
		dimErrors[k] = v
	}
	h.dimMu.Unlock()

	c.JSON(http.StatusOK, StatusResponse{
		Loading:    h.session.Loading(),
		Generating: h.session.Generating(),
		Filters:    h.session.Filters(),
		DimErrors:  dimErrors,
	})
}

// loadDimensions 按需加载一次维度缓存
// 单个维度失败记入 dimErrors，对应过滤控件禁用，页面整体可用
func (h *Handler) loadDimensions(c *gin.Context) {
	h.dimMu.Lock()
	defer h.dimMu.Unlock()
	if h.dimLoaded {
		return
	}

	ctx := c.Request.Context()
	if clients, err := h.gw.Clients(ctx); err != nil {
		h.dimErrors["clients"] = err.Error()
	} else {
		h.clients = clients
		delete(h.dimErrors, "clients")
	}
	if adjTypes, err := h.gw.AdjustmentTypes(ctx); err != nil {
		h.dimErrors["adjustment_types"] = err.Error()
	} else {
		h.adjTypes = adjTypes
		delete(h.dimErrors, "adjustment_types")
	}

	// 全部成功才算加载完成，失败的下次请求重试
	h.dimLoaded = len(h.dimErrors) == 0
}

// dimensionsResponse 维度响应
type dimensionsResponse struct {
	Clients         []model.Client         `json:"clients"`
	KeyFigures      []model.KeyFigure      `json:"keyFigures"`
	AdjustmentTypes []model.AdjustmentType `json:"adjustmentTypes"`
	Errors          map[string]string      `json:"errors,omitempty"`
}

// GetDimensions 获取过滤控件需要的维度
// GET /api/dimensions
func (h *Handler) GetDimensions(c *gin.Context) {
	h.loadDimensions(c)

	h.dimMu.Lock()
	resp := dimensionsResponse{
		Clients:         h.clients,
		KeyFigures:      h.cat.Ordered(),
		AdjustmentTypes: h.adjTypes,
	}
	if len(h.dimErrors) > 0 {
		resp.Errors = make(map[string]string, len(h.dimErrors))
		for k, v := range h.dimErrors {
			resp.Errors[k] = v
		}
	}
	h.dimMu.Unlock()

	c.JSON(http.StatusOK, resp)
}

// ListSKUs 按客户查询 SKU
// GET /api/skus?client_id=
func (h *Handler) ListSKUs(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 client_id"})
		return
	}

	h.dimMu.Lock()
	cached, ok := h.skuCache[clientID]
	h.dimMu.Unlock()
	if ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	skus, err := h.gw.SKUs(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.dimMu.Lock()
	h.skuCache[clientID] = skus
	h.dimMu.Unlock()
	c.JSON(http.StatusOK, skus)
}

// clientName 客户展示名（缓存未命中时回退为 ID）
func (h *Handler) clientName(clientID string) string {
	h.dimMu.Lock()
	defer h.dimMu.Unlock()
	for _, cl := range h.clients {
		if cl.ClientID == clientID {
			return cl.ClientName
		}
	}
	return clientID
}

// skuName SKU 展示名（缓存未命中时回退为 ID）
func (h *Handler) skuName(clientID, skuID string) string {
	h.dimMu.Lock()
	defer h.dimMu.Unlock()
	for _, sku := range h.skuCache[clientID] {
		if sku.SkuID == skuID {
			return sku.SkuName
		}
	}
	return skuID
}
