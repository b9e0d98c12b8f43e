package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// 期间日期的线格式，数据服务按 ISO 日期字符串传输
const periodLayout = "2006-01-02"

// Period 日历月期间，规范化为当月第一天
// 相等性按 ISO 日期字符串判断，排序按时间先后
type Period struct {
	t time.Time
}

// NewPeriod 创建指定年月的期间
func NewPeriod(year int, month time.Month) Period {
	return Period{t: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// PeriodOf 把任意时间规范化为所属月份的期间
func PeriodOf(t time.Time) Period {
	return NewPeriod(t.Year(), t.Month())
}

// ParsePeriod 解析 ISO 日期字符串（YYYY-MM-DD）为期间
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// Key ISO 日期字符串，作为期间的唯一键
func (p Period) Key() string {
	return p.t.Format(periodLayout)
}

// Label 表头展示格式（如 "Jan 2024"）
func (p Period) Label() string {
	return p.t.Format("Jan 2006")
}

// Time 期间对应的时间（当月第一天 UTC）
func (p Period) Time() time.Time {
	return p.t
}

// IsZero 是否未设置
func (p Period) IsZero() bool {
	return p.t.IsZero()
}

// Before 时间先后比较
func (p Period) Before(q Period) bool {
	return p.t.Before(q.t)
}

// Equal 按键相等
func (p Period) Equal(q Period) bool {
	return p.Key() == q.Key()
}

// AddMonths 偏移指定月数
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.t.AddDate(0, n, 0))
}

// MarshalJSON 按 ISO 日期字符串输出
func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.Key() + `"`), nil
}

// UnmarshalJSON 接受 ISO 日期字符串，兼容带时间部分的格式
func (p *Period) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*p = Period{}
		return nil
	}
	// 数据服务偶尔返回完整时间戳，截取日期部分
	if len(s) > len(periodLayout) {
		s = s[:len(periodLayout)]
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SortPeriods 升序排序（原地）
func SortPeriods(periods []Period) {
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
}
