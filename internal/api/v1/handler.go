package v1

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/russofranco86hot/Wirebi/internal/annotations"
	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/editor"
	"github.com/russofranco86hot/Wirebi/internal/exporter"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/session"
	"github.com/russofranco86hot/Wirebi/internal/store"
	"github.com/sirupsen/logrus"
)

// Handler V1 API 处理器
type Handler struct {
	gw      *gateway.Gateway
	session *session.Session
	editor  *editor.Controller
	ann     *annotations.Service
	store   *store.Store
	cat     *catalog.Catalog
	userID  string
	log     *logrus.Logger

	// 维度缓存：启动后按需加载一次；单个维度失败只禁用
	// 对应的过滤控件，不拖垮整个页面
	dimMu     sync.Mutex
	dimLoaded bool
	clients   []model.Client
	adjTypes  []model.AdjustmentType
	dimErrors map[string]string
	skuCache  map[string][]model.SKU
}

// NewHandler 创建 V1 API 处理器
func NewHandler(gw *gateway.Gateway, sess *session.Session, st *store.Store, cat *catalog.Catalog, userID string, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ann := annotations.NewService(gw, log)
	h := &Handler{
		gw:        gw,
		session:   sess,
		ann:       ann,
		store:     st,
		cat:       cat,
		userID:    userID,
		log:       log,
		dimErrors: map[string]string{},
		skuCache:  map[string][]model.SKU{},
	}
	h.editor = editor.New(gw, cat, sess, userID, log)
	return h
}

// Exporter 网格导出器（用 Handler 的目录）
func (h *Handler) Exporter() *exporter.Exporter {
	return exporter.NewExporter(h.cat)
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 维度与选择
	router.GET("/dimensions", h.GetDimensions)
	router.GET("/skus", h.ListSKUs)
	router.GET("/selection", h.GetSelection)

	// 网格
	router.POST("/grid/load", h.LoadGrid)
	router.POST("/grid/reload", h.ReloadGrid)
	router.GET("/grid", h.GetGrid)
	router.GET("/chart", h.GetChart)

	// 单元格编辑
	router.PATCH("/cells", h.UpdateCell)
	router.GET("/adjustments/log", h.ListAdjustmentLog)

	// 注释
	router.GET("/comments", h.ListComments)
	router.POST("/comments", h.AddComment)

	// 预测生成与版本
	router.GET("/smoothing", h.ListSmoothingParameters)
	router.POST("/forecast/generate", h.GenerateForecast)
	router.GET("/versions", h.ListVersions)
	router.POST("/versions", h.SaveVersion)
	router.GET("/versions/data", h.GetVersionedData)

	// 导出
	router.POST("/export", h.Export)
}
