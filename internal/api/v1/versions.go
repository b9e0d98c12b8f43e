package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/series"
)

// ListVersions 客户的预测版本列表
// GET /api/versions?client_id=
func (h *Handler) ListVersions(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = h.session.Filters().Entity.ClientID
	}
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 client_id"})
		return
	}
	versions, err := h.gw.Versions(c.Request.Context(), clientID)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": versions})
}

// saveVersionRequest 保存版本快照请求
type saveVersionRequest struct {
	ClientID                string  `json:"client_id"`
	VersionName             string  `json:"version_name" binding:"required"`
	HistorySourceUsed       string  `json:"history_source_used" binding:"required"`
	SmoothingParameterUsed  float64 `json:"smoothing_parameter_used"`
	StatisticalModelApplied string  `json:"statistical_model_applied" binding:"required"`
	Notes                   string  `json:"notes"`
}

// SaveVersion 保存当前预测为命名快照
// POST /api/versions
func (h *Handler) SaveVersion(c *gin.Context) {
	var req saveVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	if req.ClientID == "" {
		req.ClientID = h.session.Filters().Entity.ClientID
	}
	if req.ClientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 client_id"})
		return
	}

	saved, err := h.gw.SaveVersion(c.Request.Context(), model.ForecastVersion{
		ClientID:                req.ClientID,
		UserID:                  h.userID,
		VersionName:             req.VersionName,
		HistorySourceUsed:       req.HistorySourceUsed,
		SmoothingParameterUsed:  req.SmoothingParameterUsed,
		StatisticalModelApplied: req.StatisticalModelApplied,
		Notes:                   req.Notes,
	})
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// GetVersionedData 指定版本快照的预测数据，按当前目录合并成行
// GET /api/versions/data?version_id=&client_id=&sku_id=&start=&end=
func (h *Handler) GetVersionedData(c *gin.Context) {
	versionID := c.Query("version_id")
	if versionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 version_id"})
		return
	}
	f := h.session.Filters()
	q := gateway.HistoryQuery{
		ClientIDs: []string{c.DefaultQuery("client_id", f.Entity.ClientID)},
		SkuIDs:    []string{c.DefaultQuery("sku_id", f.Entity.SkuID)},
	}
	if s := c.Query("start"); s != "" {
		p, err := model.ParsePeriod(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start 格式错误: " + err.Error()})
			return
		}
		q.StartPeriod = p
	} else {
		q.StartPeriod = f.Start
	}
	if s := c.Query("end"); s != "" {
		p, err := model.ParsePeriod(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end 格式错误: " + err.Error()})
			return
		}
		q.EndPeriod = p
	} else {
		q.EndPeriod = f.End
	}

	facts, err := h.gw.VersionedForecast(c.Request.Context(), []string{versionID}, q)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	// 版本数据全部属于预测口径, 预测边界取自数据本身的最小周期
	merged := series.Merge(series.Input{ForecastStat: facts}, h.cat)
	c.JSON(http.StatusOK, gin.H{
		"periods": merged.Periods,
		"rows":    merged.Rows,
	})
}
