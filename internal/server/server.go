package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/russofranco86hot/Wirebi/internal/annotations"
	v1 "github.com/russofranco86hot/Wirebi/internal/api/v1"
	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/config"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/session"
	"github.com/russofranco86hot/Wirebi/internal/store"
)

//go:embed all:dist
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v1     *v1.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, log *logrus.Logger) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "wirebi.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}

	// 首次启动时用配置的网格默认值预置选择
	if _, found, err := sqliteStore.GetSelection(); err == nil && !found {
		_ = sqliteStore.SaveSelection(store.Selection{
			StartPeriod: cfg.Grid.DefaultStartPeriod,
			EndPeriod:   cfg.Grid.DefaultEndPeriod,
			Sources:     cfg.Grid.DefaultSources,
		})
	}

	gw := gateway.New(cfg.Service.BaseURL, time.Duration(cfg.Service.TimeoutSeconds)*time.Second, log)
	cat := bootstrapCatalog(gw, log)
	sess := session.New(gw, cat, annotations.NewService(gw, log), log)
	v1Handler := v1.NewHandler(gw, sess, sqliteStore, cat, cfg.Service.UserID, log)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		v1:     v1Handler,
	}

	s.setupRoutes(devMode)

	return s, nil
}

// bootstrapCatalog 从预测服务拉取指标目录，拉不到时用内置目录兜底
func bootstrapCatalog(gw *gateway.Gateway, log *logrus.Logger) *catalog.Catalog {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	figures, err := gw.KeyFigures(ctx)
	if err != nil || len(figures) == 0 {
		if err != nil {
			log.WithError(err).Warn("key figure catalog unavailable, using built-in catalog")
		}
		return catalog.Default()
	}
	return catalog.New(figures)
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// V1 API 路由
	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	// 静态资源
	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
	} else {
		// 生产模式：使用embed的静态资源
		sub, _ := fs.Sub(staticFiles, "dist")

		// 首页
		s.router.GET("/", func(c *gin.Context) {
			data, _ := fs.ReadFile(sub, "index.html")
			c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		})

		// SPA 路由 fallback
		s.router.NoRoute(func(c *gin.Context) {
			data, _ := fs.ReadFile(sub, "index.html")
			c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		})
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放服务器持有的资源
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
