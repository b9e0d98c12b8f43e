package annotations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/sirupsen/logrus"
)

// PresenceMap 单元格是否有注释的快速查找表
// 键为 (实体, 期间, 指标ID)；只是装饰信息，绝不阻塞编辑
type PresenceMap map[string]bool

func presenceKey(e model.EntityKey, p model.Period, keyFigureID int) string {
	return strings.Join([]string{e.Key(), p.Key(), fmt.Sprint(keyFigureID)}, "|")
}

// Has 指定单元格是否存在注释
func (m PresenceMap) Has(e model.EntityKey, p model.Period, keyFigureID int) bool {
	return m[presenceKey(e, p, keyFigureID)]
}

// BuildPresence 按单元格键分组最近一次拉取的注释列表
func BuildPresence(comments []model.Comment) PresenceMap {
	m := make(PresenceMap, len(comments))
	for _, c := range comments {
		m[presenceKey(c.EntityKey, c.Period, c.KeyFigureID)] = true
	}
	return m
}

// commentGateway 注释子系统需要的网关能力
type commentGateway interface {
	Comments(ctx context.Context, q gateway.CommentQuery) ([]model.Comment, error)
	SaveComment(ctx context.Context, c model.Comment) (model.Comment, error)
}

// Service 注释子系统：单元格注释线程的查询与追加
type Service struct {
	gw  commentGateway
	log *logrus.Logger
}

// NewService 创建注释服务
func NewService(gw commentGateway, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{gw: gw, log: log}
}

// List 某单元格的注释线程，按创建时间升序
// period 零值或 keyFigureID 为 0 时放宽对应过滤条件
func (s *Service) List(ctx context.Context, e model.EntityKey, p model.Period, keyFigureID int) ([]model.Comment, error) {
	q := gateway.CommentQuery{
		ClientIDs: []string{e.ClientID},
		SkuIDs:    []string{e.SkuID},
	}
	if !p.IsZero() {
		q.StartPeriod = p
		q.EndPeriod = p
	}
	if keyFigureID != 0 {
		q.KeyFigureIDs = []int{keyFigureID}
	}
	comments, err := s.gw.Comments(ctx, q)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

// Add 向单元格追加一条注释
func (s *Service) Add(ctx context.Context, e model.EntityKey, p model.Period, keyFigureID int, text, userID string) (model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return model.Comment{}, fmt.Errorf("comment text is empty")
	}
	saved, err := s.gw.SaveComment(ctx, model.Comment{
		EntityKey:   e,
		Period:      p,
		KeyFigureID: keyFigureID,
		Comment:     text,
		UserID:      userID,
	})
	if err != nil {
		return model.Comment{}, err
	}
	s.log.WithFields(logrus.Fields{
		"client_id":     e.ClientID,
		"sku_id":        e.SkuID,
		"period":        p.Key(),
		"key_figure_id": keyFigureID,
	}).Info("comment saved")
	return saved, nil
}

// PresenceFor 拉取实体在期间范围内的注释并构建存在表
func (s *Service) PresenceFor(ctx context.Context, e model.EntityKey, start, end model.Period) (PresenceMap, error) {
	comments, err := s.gw.Comments(ctx, gateway.CommentQuery{
		ClientIDs:   []string{e.ClientID},
		SkuIDs:      []string{e.SkuID},
		StartPeriod: start,
		EndPeriod:   end,
	})
	if err != nil {
		return nil, err
	}
	return BuildPresence(comments), nil
}
