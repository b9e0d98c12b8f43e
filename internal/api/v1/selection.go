package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSelection 上次保存的过滤条件，前端启动时恢复
// GET /api/selection
func (h *Handler) GetSelection(c *gin.Context) {
	sel, found, err := h.store.GetSelection()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": found, "selection": sel})
}
