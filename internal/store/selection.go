package store

import (
	"database/sql"
	"strings"
)

// Selection 上次使用的过滤条件，重启后恢复
type Selection struct {
	ClientID      string   `json:"client_id"`
	SkuID         string   `json:"sku_id"`
	ClientFinalID string   `json:"client_final_id"`
	StartPeriod   string   `json:"start_period"`
	EndPeriod     string   `json:"end_period"`
	Sources       []string `json:"sources"`
}

// SaveSelection 保存当前选择（覆盖单行）
func (s *Store) SaveSelection(sel Selection) error {
	return s.Exec(`
		INSERT INTO selection (id, client_id, sku_id, client_final_id, start_period, end_period, sources, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			client_id = excluded.client_id,
			sku_id = excluded.sku_id,
			client_final_id = excluded.client_final_id,
			start_period = excluded.start_period,
			end_period = excluded.end_period,
			sources = excluded.sources,
			updated_at = CURRENT_TIMESTAMP
	`, sel.ClientID, sel.SkuID, sel.ClientFinalID, sel.StartPeriod, sel.EndPeriod, strings.Join(sel.Sources, ","))
}

// GetSelection 读取上次选择，未保存过时返回 (zero, false)
func (s *Store) GetSelection() (Selection, bool, error) {
	var sel Selection
	var sources string
	err := s.QueryRow(`
		SELECT client_id, sku_id, client_final_id, start_period, end_period, sources
		FROM selection WHERE id = 1
	`).Scan(&sel.ClientID, &sel.SkuID, &sel.ClientFinalID, &sel.StartPeriod, &sel.EndPeriod, &sources)
	if err == sql.ErrNoRows {
		return Selection{}, false, nil
	}
	if err != nil {
		return Selection{}, false, err
	}
	if sources != "" {
		sel.Sources = strings.Split(sources, ",")
	}
	return sel, true, nil
}
