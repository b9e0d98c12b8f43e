package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/russofranco86hot/Wirebi/internal/exporter"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/session"
	"github.com/russofranco86hot/Wirebi/internal/store"
)

// loadGridRequest 网格加载请求
type loadGridRequest struct {
	ClientID      string   `json:"client_id" binding:"required"`
	SkuID         string   `json:"sku_id" binding:"required"`
	ClientFinalID string   `json:"client_final_id"`
	StartPeriod   string   `json:"start_period" binding:"required"`
	EndPeriod     string   `json:"end_period" binding:"required"`
	Sources       []string `json:"sources"`
}

// LoadGrid 设置过滤条件并加载网格
// POST /api/grid/load
func (h *Handler) LoadGrid(c *gin.Context) {
	var req loadGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	if req.ClientFinalID == "" {
		// 未单独指定最终消费实体时与下单客户一致
		req.ClientFinalID = req.ClientID
	}

	start, err := model.ParsePeriod(req.StartPeriod)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法起始期间"})
		return
	}
	end, err := model.ParsePeriod(req.EndPeriod)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法结束期间"})
		return
	}

	filters := session.Filters{
		Entity: model.EntityKey{
			ClientID:      req.ClientID,
			SkuID:         req.SkuID,
			ClientFinalID: req.ClientFinalID,
		},
		Start:   start,
		End:     end,
		Sources: req.Sources,
	}
	if err := h.session.Load(c.Request.Context(), filters); err != nil {
		h.respondLoadError(c, err)
		return
	}

	// 记住这次选择，重启后恢复
	if err := h.store.SaveSelection(store.Selection{
		ClientID:      req.ClientID,
		SkuID:         req.SkuID,
		ClientFinalID: req.ClientFinalID,
		StartPeriod:   req.StartPeriod,
		EndPeriod:     req.EndPeriod,
		Sources:       req.Sources,
	}); err != nil {
		h.log.WithError(err).Warn("save selection failed")
	}

	h.respondGrid(c)
}

// ReloadGrid 按当前过滤条件重新加载
// POST /api/grid/reload
func (h *Handler) ReloadGrid(c *gin.Context) {
	if err := h.session.Reload(c.Request.Context()); err != nil {
		h.respondLoadError(c, err)
		return
	}
	h.respondGrid(c)
}

// GetGrid 获取当前网格（不触发加载）
// GET /api/grid
func (h *Handler) GetGrid(c *gin.Context) {
	h.respondGrid(c)
}

func (h *Handler) respondGrid(c *gin.Context) {
	f := h.session.Filters()
	grid := h.session.Grid(h.clientName(f.Entity.ClientID), h.skuName(f.Entity.ClientID, f.Entity.SkuID))
	c.JSON(http.StatusOK, grid)
}

// respondLoadError 把网关错误归类映射为 API 响应
func (h *Handler) respondLoadError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	retryable := false
	if apiErr, ok := unwrapGatewayError(err); ok {
		retryable = apiErr.Retryable()
		if apiErr.Kind == gateway.KindValidation {
			status = http.StatusBadRequest
		}
	} else {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error(), "retryable": retryable})
}

// GetChart 图表曲线
// GET /api/chart
func (h *Handler) GetChart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"traces": h.session.Chart()})
}

// Export 导出当前网格为 Excel
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	f := h.session.Filters()
	merged := h.session.Merged()
	if len(merged.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "当前没有可导出的数据"})
		return
	}

	file, err := h.Exporter().Export(merged, exporter.Options{
		ClientName: h.clientName(f.Entity.ClientID),
		SkuName:    h.skuName(f.Entity.ClientID, f.Entity.SkuID),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("forecast-%s-%s.xlsx", f.Entity.ClientID, f.Entity.SkuID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入文件失败"})
		return
	}
}
