package editor

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/pivot"
	"github.com/sirupsen/logrus"
)

// State 单次编辑的终态
type State int

const (
	// StateSkipped 新旧值相同，未产生任何网络调用
	StateSkipped State = iota
	// StateRejected 校验失败，单元格恢复旧值，未产生任何网络调用
	StateRejected
	// StateCommitted 已持久化并完成本地乐观更新
	StateCommitted
	// StateRolledBack 网关失败，单元格恢复旧值
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateRejected:
		return "rejected"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// adjustmentGateway 提交路径需要的网关能力
type adjustmentGateway interface {
	SaveAdjustment(ctx context.Context, adj model.Adjustment) (model.Adjustment, error)
}

// RowPatcher 控制器对内存中合并状态的回写口
// 提交成功后打补丁使可见值立即一致；失败时恢复旧值
type RowPatcher interface {
	PatchCell(e model.EntityKey, p model.Period, keyFigureID int, value float64)
	RestoreCell(e model.EntityKey, p model.Period, keyFigureID int, old *float64)
}

// Request 一次单元格编辑
// ColID 是网格列标识，地址信息只从它解码
type Request struct {
	Entity   model.EntityKey
	ColID    string
	OldValue *float64
	NewValue any
}

// Result 编辑结果
type Result struct {
	State State
	// Value 提交成功后的单元格值
	Value float64
	Err   error
}

// Controller 编辑-提交控制器
//
// 状态机：Idle → Validating → Persisting → {Committed | RolledBack}。
// 同一单元格的并发编辑按到达顺序串行化（序列化后末值生效）；
// 不同单元格互不影响。
type Controller struct {
	gw      adjustmentGateway
	cat     *catalog.Catalog
	patcher RowPatcher
	userID  string
	log     *logrus.Logger

	mu    sync.Mutex
	cells map[string]*sync.Mutex
}

// New 创建控制器
func New(gw adjustmentGateway, cat *catalog.Catalog, patcher RowPatcher, userID string, log *logrus.Logger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{
		gw:      gw,
		cat:     cat,
		patcher: patcher,
		userID:  userID,
		log:     log,
		cells:   map[string]*sync.Mutex{},
	}
}

func (c *Controller) cellLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.cells[key]
	if !ok {
		l = &sync.Mutex{}
		c.cells[key] = l
	}
	return l
}

// Commit 处理一次编辑：校验、构建覆盖调整、持久化、回写本地状态
//
// 校验失败（列不可编辑、列标识无法解析、新值非数值）在任何网络
// 调用之前拒绝。新旧值相同直接跳过，避免冗余提交。网关失败时恢复
// 旧值，不保留部分状态。
func (c *Controller) Commit(ctx context.Context, req Request) Result {
	// Validating
	period, kfID, err := pivot.ParseCellID(req.ColID)
	if err != nil {
		return c.reject(req, fmt.Errorf("unresolvable column id: %w", err))
	}
	kf, ok := c.cat.Get(kfID)
	if !ok {
		return c.reject(req, fmt.Errorf("unknown key figure %d", kfID))
	}
	if !c.cat.OverrideEligible(kfID) {
		return c.reject(req, fmt.Errorf("key figure %q is not editable", kf.Name))
	}
	value, err := parseNumeric(req.NewValue)
	if err != nil {
		return c.reject(req, err)
	}
	if req.OldValue != nil && *req.OldValue == value {
		return Result{State: StateSkipped, Value: value}
	}

	// 同一单元格的第二次编辑在此排队，直到前一次 Persisting 结束
	lock := c.cellLock(req.Entity.Key() + "|" + req.ColID)
	lock.Lock()
	defer lock.Unlock()

	// Persisting：直接编辑永远以覆盖方式提交
	adj := model.Adjustment{
		EntityKey:        req.Entity,
		Period:           period,
		KeyFigureID:      kfID,
		AdjustmentTypeID: catalog.AdjustmentTypeOverrideID,
		Value:            value,
		UserID:           c.userID,
	}
	if _, err := c.gw.SaveAdjustment(ctx, adj); err != nil {
		if c.patcher != nil {
			c.patcher.RestoreCell(req.Entity, period, kfID, req.OldValue)
		}
		c.log.WithFields(logrus.Fields{
			"col_id": req.ColID,
			"value":  value,
		}).WithError(err).Error("adjustment rejected, cell rolled back")
		return Result{State: StateRolledBack, Err: err}
	}

	// Committed：乐观更新，可见值无需等待整页重载
	if c.patcher != nil {
		c.patcher.PatchCell(req.Entity, period, kfID, value)
	}
	c.log.WithFields(logrus.Fields{
		"col_id":        req.ColID,
		"key_figure_id": kfID,
		"value":         value,
	}).Info("adjustment committed")
	return Result{State: StateCommitted, Value: value}
}

func (c *Controller) reject(req Request, err error) Result {
	if c.patcher != nil {
		if period, kfID, perr := pivot.ParseCellID(req.ColID); perr == nil {
			c.patcher.RestoreCell(req.Entity, period, kfID, req.OldValue)
		}
	}
	c.log.WithField("col_id", req.ColID).WithError(err).Warn("edit rejected before submit")
	return Result{State: StateRejected, Err: err}
}

// parseNumeric 接受数值或数字字符串，其余一律拒绝
func parseNumeric(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", t)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("value is empty")
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}
