package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/pivot"
)

// ListComments 单元格注释线程
// GET /api/comments?client_id=&sku_id=&col_id=
func (h *Handler) ListComments(c *gin.Context) {
	clientID := c.Query("client_id")
	skuID := c.Query("sku_id")
	if clientID == "" || skuID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 client_id 或 sku_id"})
		return
	}
	entity := model.EntityKey{
		ClientID:      clientID,
		SkuID:         skuID,
		ClientFinalID: c.DefaultQuery("client_final_id", clientID),
	}

	var period model.Period
	var keyFigureID int
	if colID := c.Query("col_id"); colID != "" {
		p, kfID, err := pivot.ParseCellID(colID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "col_id 格式错误: " + err.Error()})
			return
		}
		period, keyFigureID = p, kfID
	}

	comments, err := h.ann.List(c.Request.Context(), entity, period, keyFigureID)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"items": comments})
}

// addCommentRequest 追加注释请求
type addCommentRequest struct {
	ClientID      string `json:"client_id" binding:"required"`
	SkuID         string `json:"sku_id" binding:"required"`
	ClientFinalID string `json:"client_final_id"`
	ColID         string `json:"col_id" binding:"required"`
	Comment       string `json:"comment" binding:"required"`
}

// AddComment 向单元格追加注释
// POST /api/comments
func (h *Handler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}
	if req.ClientFinalID == "" {
		req.ClientFinalID = req.ClientID
	}
	period, keyFigureID, err := pivot.ParseCellID(req.ColID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "col_id 格式错误: " + err.Error()})
		return
	}

	entity := model.EntityKey{
		ClientID:      req.ClientID,
		SkuID:         req.SkuID,
		ClientFinalID: req.ClientFinalID,
	}
	saved, err := h.ann.Add(c.Request.Context(), entity, period, keyFigureID, req.Comment, h.userID)
	if err != nil {
		respondGatewayError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// parseIntWithDefault 解析整数查询参数，空或非法时回退默认值
func parseIntWithDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
