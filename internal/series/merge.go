package series

import (
	"sort"

	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/model"
)

// Input 四条独立获取的事实序列，任一可为空
// 合并按声明顺序进行，同 (实体, 期间, 指标) 冲突时后写者胜
type Input struct {
	History       []model.Fact
	CleanHistory  []model.Fact
	ForecastStat  []model.Fact
	FinalForecast []model.Fact
}

// Row 一个实体的合并行
// Values 第一层键是期间 Key，第二层键是指标 ID；缺席条目渲染为空白
type Row struct {
	Entity model.EntityKey
	Values map[string]map[int]float64
}

// Value 读取单元格值，第二返回值表示是否有数据
func (r Row) Value(p model.Period, keyFigureID int) (float64, bool) {
	byKF, ok := r.Values[p.Key()]
	if !ok {
		return 0, false
	}
	v, ok := byKF[keyFigureID]
	return v, ok
}

// Result 合并结果，整体赋值给界面状态，避免读到半更新的数据
type Result struct {
	// Boundary 预测起点：统计预测序列的最早期间；无预测时为 nil，
	// 此时全部期间按历史区处理
	Boundary *model.Period
	// Periods 四条序列合并后的全部期间，升序
	Periods []model.Period
	// KeyFigures 合并数据中出现的指标，按目录固定优先级排序
	KeyFigures []model.KeyFigure
	// Rows 每个实体键一行，按实体键排序
	Rows []Row
}

// Merge 把独立获取的序列合并为单一的行模型
//
// 每个值只在指标域与期间所处历史/预测区匹配时记录；不匹配的组合
// 被丢弃而非隐藏，边界移动后不会有旧域数据泄漏。Value 为 nil 的
// 记录视为无数据。空输入返回空行集和 nil 边界，不报错。
func Merge(in Input, cat *catalog.Catalog) Result {
	boundary := forecastBoundary(in.ForecastStat)

	ordered := make([]model.Fact, 0, len(in.History)+len(in.CleanHistory)+len(in.ForecastStat)+len(in.FinalForecast))
	ordered = append(ordered, in.History...)
	ordered = append(ordered, in.CleanHistory...)
	ordered = append(ordered, in.ForecastStat...)
	ordered = append(ordered, in.FinalForecast...)

	periodSet := map[string]model.Period{}
	kfSeen := map[int]bool{}
	rowsByEntity := map[string]*Row{}

	for _, f := range ordered {
		periodSet[f.Period.Key()] = f.Period

		if f.Value == nil {
			continue
		}
		kf, ok := cat.Get(f.KeyFigureID)
		if !ok {
			continue
		}
		if !catalog.AppliesToPeriod(kf, f.Period, boundary) {
			continue
		}

		row, ok := rowsByEntity[f.EntityKey.Key()]
		if !ok {
			row = &Row{Entity: f.EntityKey, Values: map[string]map[int]float64{}}
			rowsByEntity[f.EntityKey.Key()] = row
		}
		byKF := row.Values[f.Period.Key()]
		if byKF == nil {
			byKF = map[int]float64{}
			row.Values[f.Period.Key()] = byKF
		}
		byKF[kf.KeyFigureID] = *f.Value
		kfSeen[kf.KeyFigureID] = true
	}

	periods := make([]model.Period, 0, len(periodSet))
	for _, p := range periodSet {
		periods = append(periods, p)
	}
	model.SortPeriods(periods)

	keyFigures := make([]model.KeyFigure, 0, len(kfSeen))
	for _, kf := range cat.Ordered() {
		if kfSeen[kf.KeyFigureID] {
			keyFigures = append(keyFigures, kf)
		}
	}

	entityKeys := make([]string, 0, len(rowsByEntity))
	for k := range rowsByEntity {
		entityKeys = append(entityKeys, k)
	}
	sort.Strings(entityKeys)
	rows := make([]Row, 0, len(entityKeys))
	for _, k := range entityKeys {
		rows = append(rows, *rowsByEntity[k])
	}

	return Result{
		Boundary:   boundary,
		Periods:    periods,
		KeyFigures: keyFigures,
		Rows:       rows,
	}
}

// forecastBoundary 统计预测序列的最早期间；序列为空时无边界
func forecastBoundary(forecastStat []model.Fact) *model.Period {
	var min *model.Period
	for _, f := range forecastStat {
		if f.Period.IsZero() {
			continue
		}
		if min == nil || f.Period.Before(*min) {
			p := f.Period
			min = &p
		}
	}
	return min
}
