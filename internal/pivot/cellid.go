package pivot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/russofranco86hot/Wirebi/internal/model"
)

// 列标识编码 (期间, 指标ID)，形如 "date_2024-02-01_kf8"。
// 这是网格找回单元格地址的唯一机制：编辑提交和注释打开都只解析
// 这个标识，绝不解析展示名（展示名在格式化后可能冲突）
const (
	cellIDPrefix    = "date_"
	cellIDSeparator = "_kf"
)

// CellID 编码列标识，与 ParseCellID 构成可逆对
func CellID(p model.Period, keyFigureID int) string {
	return cellIDPrefix + p.Key() + cellIDSeparator + strconv.Itoa(keyFigureID)
}

// ParseCellID 解码列标识为 (期间, 指标ID)
func ParseCellID(id string) (model.Period, int, error) {
	if !strings.HasPrefix(id, cellIDPrefix) {
		return model.Period{}, 0, fmt.Errorf("not a cell column id: %q", id)
	}
	rest := strings.TrimPrefix(id, cellIDPrefix)
	idx := strings.LastIndex(rest, cellIDSeparator)
	if idx < 0 {
		return model.Period{}, 0, fmt.Errorf("cell column id %q missing key figure part", id)
	}
	period, err := model.ParsePeriod(rest[:idx])
	if err != nil {
		return model.Period{}, 0, err
	}
	kfID, err := strconv.Atoi(rest[idx+len(cellIDSeparator):])
	if err != nil {
		return model.Period{}, 0, fmt.Errorf("cell column id %q: bad key figure id: %w", id, err)
	}
	return period, kfID, nil
}

// IsCellID 是否为单元格列标识（区别于实体固定列）
func IsCellID(id string) bool {
	return strings.HasPrefix(id, cellIDPrefix)
}
