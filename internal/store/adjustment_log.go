package store

import (
	"time"
)

// AdjustmentLogEntry 一次成功提交的本地审计记录
type AdjustmentLogEntry struct {
	ID            int64    `json:"id"`
	ClientID      string   `json:"client_id"`
	SkuID         string   `json:"sku_id"`
	ClientFinalID string   `json:"client_final_id"`
	Period        string   `json:"period"`
	KeyFigureID   int      `json:"key_figure_id"`
	OldValue      *float64 `json:"old_value"`
	NewValue      float64  `json:"new_value"`
	UserID        string   `json:"user_id"`
	CreatedAt     string   `json:"created_at"`
}

// AppendAdjustmentLog 追加一条审计记录
func (s *Store) AppendAdjustmentLog(e AdjustmentLogEntry) error {
	return s.Exec(`
		INSERT INTO adjustment_log (
			client_id, sku_id, client_final_id, period, key_figure_id,
			old_value, new_value, user_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ClientID, e.SkuID, e.ClientFinalID, e.Period, e.KeyFigureID,
		e.OldValue, e.NewValue, e.UserID, time.Now().UTC().Format(time.RFC3339))
}

// RecentAdjustments 最近的审计记录，按时间倒序
func (s *Store) RecentAdjustments(limit int) ([]AdjustmentLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Query(`
		SELECT id, client_id, sku_id, client_final_id, period, key_figure_id,
		       old_value, new_value, user_id, created_at
		FROM adjustment_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdjustmentLogEntry
	for rows.Next() {
		var e AdjustmentLogEntry
		if err := rows.Scan(
			&e.ID, &e.ClientID, &e.SkuID, &e.ClientFinalID, &e.Period, &e.KeyFigureID,
			&e.OldValue, &e.NewValue, &e.UserID, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
