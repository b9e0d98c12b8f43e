package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/russofranco86hot/Wirebi/internal/editor"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/pivot"
	"github.com/russofranco86hot/Wirebi/internal/store"
)

// updateCellRequest 单元格编辑请求
// ColID 携带 (期间, 指标) 地址；实体键由行数据回传
type updateCellRequest struct {
	ClientID      string   `json:"client_id" binding:"required"`
	SkuID         string   `json:"sku_id" binding:"required"`
	ClientFinalID string   `json:"client_final_id"`
	ColID         string   `json:"col_id" binding:"required"`
	OldValue      *float64 `json:"old_value"`
	NewValue      any      `json:"new_value"`
}

// UpdateCell 提交单元格编辑
// PATCH /api/cells
func (h *Handler) UpdateCell(c *gin.Context) {
	var req updateCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	if req.ClientFinalID == "" {
		req.ClientFinalID = req.ClientID
	}

	entity := model.EntityKey{
		ClientID:      req.ClientID,
		SkuID:         req.SkuID,
		ClientFinalID: req.ClientFinalID,
	}
	result := h.editor.Commit(c.Request.Context(), editor.Request{
		Entity:   entity,
		ColID:    req.ColID,
		OldValue: req.OldValue,
		NewValue: req.NewValue,
	})

	switch result.State {
	case editor.StateSkipped:
		c.JSON(http.StatusOK, gin.H{"state": result.State.String()})
	case editor.StateRejected:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"state": result.State.String(),
			"error": result.Err.Error(),
		})
	case editor.StateRolledBack:
		status := http.StatusBadGateway
		if apiErr, ok := unwrapGatewayError(result.Err); ok && apiErr.Kind == gateway.KindValidation {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"state": result.State.String(),
			"error": result.Err.Error(),
		})
	case editor.StateCommitted:
		h.auditCommit(entity, req.ColID, req.OldValue, result.Value)
		// 对账加载：取回服务端重算的下游指标；过期令牌自动丢弃
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := h.session.Reload(ctx); err != nil {
				h.log.WithError(err).Warn("reconciling reload failed")
			}
		}()
		c.JSON(http.StatusOK, gin.H{
			"state": result.State.String(),
			"value": result.Value,
		})
	}
}

// auditCommit 提交成功后的本地审计
func (h *Handler) auditCommit(entity model.EntityKey, colID string, oldValue *float64, newValue float64) {
	period, kfID, err := pivot.ParseCellID(colID)
	if err != nil {
		return
	}
	if err := h.store.AppendAdjustmentLog(store.AdjustmentLogEntry{
		ClientID:      entity.ClientID,
		SkuID:         entity.SkuID,
		ClientFinalID: entity.ClientFinalID,
		Period:        period.Key(),
		KeyFigureID:   kfID,
		OldValue:      oldValue,
		NewValue:      newValue,
		UserID:        h.userID,
	}); err != nil {
		h.log.WithError(err).Warn("append adjustment log failed")
	}
}

// ListAdjustmentLog 本地调整审计日志
// GET /api/adjustments/log?limit=
func (h *Handler) ListAdjustmentLog(c *gin.Context) {
	limit := parseIntWithDefault(c.Query("limit"), 50)
	entries, err := h.store.RecentAdjustments(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []store.AdjustmentLogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// unwrapGatewayError 取出链条里的网关错误
func unwrapGatewayError(err error) (*gateway.Error, bool) {
	var apiErr *gateway.Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// respondGatewayError 按网关错误类别选择响应状态码
func respondGatewayError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	if apiErr, ok := unwrapGatewayError(err); ok && apiErr.Kind == gateway.KindValidation {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
