package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/russofranco86hot/Wirebi/internal/annotations"
	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/series"
	"github.com/sirupsen/logrus"
)

// Filters 当前网格加载的过滤条件
type Filters struct {
	Entity  model.EntityKey `json:"entity"`
	Start   model.Period    `json:"start_period"`
	End     model.Period    `json:"end_period"`
	Sources []string        `json:"sources"`
}

// Valid 过滤条件是否足以发起加载
func (f Filters) Valid() bool {
	return f.Entity.ClientID != "" && f.Entity.SkuID != "" && f.Entity.ClientFinalID != ""
}

// factGateway 会话需要的网关能力
type factGateway interface {
	History(ctx context.Context, q gateway.HistoryQuery) ([]model.Fact, error)
	CleanHistory(ctx context.Context, q gateway.FactQuery) ([]model.Fact, error)
	ForecastStat(ctx context.Context, q gateway.FactQuery) ([]model.Fact, error)
	FinalForecast(ctx context.Context, q gateway.FactQuery) ([]model.Fact, error)
	GenerateForecast(ctx context.Context, p gateway.GenerateParams) (string, error)
}

// Session 面板会话：持有过滤条件、合并状态和注释存在表
//
// 合并状态只通过整体赋值更新；每次加载持有一个请求令牌，
// 令牌已过期的慢响应被整体丢弃，旧数据不会覆盖新数据
type Session struct {
	gw  factGateway
	cat *catalog.Catalog
	ann *annotations.Service
	log *logrus.Logger

	mu         sync.Mutex
	filters    Filters
	merged     series.Result
	presence   annotations.PresenceMap
	loadToken  string
	cancelLoad context.CancelFunc
	loading    bool
	generating bool
}

// New 创建会话
func New(gw factGateway, cat *catalog.Catalog, ann *annotations.Service, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{gw: gw, cat: cat, ann: ann, log: log, presence: annotations.PresenceMap{}}
}

// Catalog 会话使用的指标目录
func (s *Session) Catalog() *catalog.Catalog {
	return s.cat
}

// Filters 当前过滤条件
func (s *Session) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Loading 是否有加载在途
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Generating 是否有预测生成请求在途（期间禁用生成按钮）
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// Load 设置过滤条件并重新加载四条序列与注释
//
// 新加载会取消上一个在途加载；即使取消不及时，过期令牌的响应
// 也会在赋值前被丢弃
func (s *Session) Load(ctx context.Context, f Filters) error {
	if !f.Valid() {
		return fmt.Errorf("client, sku and client final id are required")
	}
	sources := f.Sources
	if len(sources) == 0 {
		sources = []string{"sales", "order", "shipments"}
		f.Sources = sources
	}

	token := uuid.NewString()
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.filters = f
	s.loadToken = token
	s.cancelLoad = cancel
	s.loading = true
	s.mu.Unlock()

	merged, presence, err := s.fetch(loadCtx, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadToken != token {
		// 已有更新的加载接管，丢弃本次结果
		s.log.WithField("token", token).Debug("stale load response discarded")
		return nil
	}
	s.loading = false
	s.cancelLoad = nil
	if err != nil {
		return err
	}
	// 整体赋值，读者不会看到半更新的透视状态
	s.merged = merged
	s.presence = presence
	return nil
}

// Reload 按当前过滤条件重新加载（提交后的对账加载）
// 重载取到的权威数据覆盖此前的乐观补丁
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	f := s.filters
	s.mu.Unlock()
	if !f.Valid() {
		return fmt.Errorf("nothing loaded yet")
	}
	return s.Load(ctx, f)
}

func (s *Session) fetch(ctx context.Context, f Filters) (series.Result, annotations.PresenceMap, error) {
	history, err := s.gw.History(ctx, gateway.HistoryQuery{
		ClientIDs:   []string{f.Entity.ClientID},
		SkuIDs:      []string{f.Entity.SkuID},
		StartPeriod: f.Start,
		EndPeriod:   f.End,
		KeyFigureIDs: []int{
			catalog.KeyFigureSalesID, catalog.KeyFigureSmoothedSalesID,
			catalog.KeyFigureOrdersID, catalog.KeyFigureSmoothedOrdersID,
		},
		Sources: f.Sources,
	})
	if err != nil {
		return series.Result{}, nil, fmt.Errorf("load history: %w", err)
	}

	fq := gateway.FactQuery{Entity: f.Entity, StartPeriod: f.Start, EndPeriod: f.End}
	clean, err := s.gw.CleanHistory(ctx, fq)
	if err != nil {
		return series.Result{}, nil, fmt.Errorf("load clean history: %w", err)
	}
	stat, err := s.gw.ForecastStat(ctx, fq)
	if err != nil {
		return series.Result{}, nil, fmt.Errorf("load statistical forecast: %w", err)
	}
	final, err := s.gw.FinalForecast(ctx, fq)
	if err != nil {
		return series.Result{}, nil, fmt.Errorf("load final forecast: %w", err)
	}

	merged := series.Merge(series.Input{
		History:       history,
		CleanHistory:  clean,
		ForecastStat:  stat,
		FinalForecast: final,
	}, s.cat)

	// 注释只是装饰，拉取失败不影响网格
	presence := annotations.PresenceMap{}
	if s.ann != nil {
		if pm, err := s.ann.PresenceFor(ctx, f.Entity, f.Start, f.End); err == nil {
			presence = pm
		} else {
			s.log.WithError(err).Warn("comment presence load failed, decorations skipped")
		}
	}
	return merged, presence, nil
}

// Merged 当前合并结果的快照
func (s *Session) Merged() series.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merged
}

// Presence 当前注释存在表
func (s *Session) Presence() annotations.PresenceMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presence
}

// Generate 触发服务端预测生成；同一时刻只允许一个在途请求
func (s *Session) Generate(ctx context.Context, p gateway.GenerateParams) (string, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return "", fmt.Errorf("forecast generation already in progress")
	}
	s.generating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.generating = false
		s.mu.Unlock()
	}()
	return s.gw.GenerateForecast(ctx, p)
}

// PatchCell 编辑提交成功后的乐观更新（editor.RowPatcher）
func (s *Session) PatchCell(e model.EntityKey, p model.Period, keyFigureID int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.merged.Rows {
		if s.merged.Rows[i].Entity != e {
			continue
		}
		byKF := s.merged.Rows[i].Values[p.Key()]
		if byKF == nil {
			byKF = map[int]float64{}
			s.merged.Rows[i].Values[p.Key()] = byKF
		}
		byKF[keyFigureID] = value
		return
	}
}

// RestoreCell 编辑失败后的回滚（editor.RowPatcher）
// old 为 nil 表示原本无数据，恢复为空白
func (s *Session) RestoreCell(e model.EntityKey, p model.Period, keyFigureID int, old *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.merged.Rows {
		if s.merged.Rows[i].Entity != e {
			continue
		}
		byKF := s.merged.Rows[i].Values[p.Key()]
		if byKF == nil {
			return
		}
		if old == nil {
			delete(byKF, keyFigureID)
		} else {
			byKF[keyFigureID] = *old
		}
		return
	}
}
