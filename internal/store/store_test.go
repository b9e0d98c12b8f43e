package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "wirebi.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSelectionRoundTrip(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	if _, found, err := st.GetSelection(); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v, want false nil", found, err)
	}

	sel := Selection{
		ClientID:      "C1",
		SkuID:         "SKU1",
		ClientFinalID: "C1",
		StartPeriod:   "2024-01-01",
		EndPeriod:     "2024-06-01",
		Sources:       []string{"sales", "order"},
	}
	if err := st.SaveSelection(sel); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := st.GetSelection()
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.ClientID != "C1" || got.SkuID != "SKU1" || got.StartPeriod != "2024-01-01" {
		t.Fatalf("selection = %+v", got)
	}
	if len(got.Sources) != 2 || got.Sources[0] != "sales" {
		t.Fatalf("sources = %v", got.Sources)
	}

	// 覆盖单行
	sel.SkuID = "SKU2"
	sel.Sources = nil
	if err := st.SaveSelection(sel); err != nil {
		t.Fatalf("save second: %v", err)
	}
	got, _, err = st.GetSelection()
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if got.SkuID != "SKU2" {
		t.Fatalf("sku = %q, want SKU2", got.SkuID)
	}
	if got.Sources != nil {
		t.Fatalf("sources = %v, want nil", got.Sources)
	}
}

func TestAdjustmentLog(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)

	old := 100.0
	entries := []AdjustmentLogEntry{
		{ClientID: "C1", SkuID: "SKU1", ClientFinalID: "C1", Period: "2024-03-01", KeyFigureID: 8, OldValue: &old, NewValue: 140, UserID: "tester"},
		{ClientID: "C1", SkuID: "SKU1", ClientFinalID: "C1", Period: "2024-04-01", KeyFigureID: 8, NewValue: 150, UserID: "tester"},
	}
	for _, e := range entries {
		if err := st.AppendAdjustmentLog(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := st.RecentAdjustments(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	// 倒序：最新在前
	if got[0].Period != "2024-04-01" {
		t.Fatalf("first entry period = %q, want 2024-04-01", got[0].Period)
	}
	if got[0].OldValue != nil {
		t.Fatalf("old value = %v, want nil", *got[0].OldValue)
	}
	if got[1].OldValue == nil || *got[1].OldValue != 100 {
		t.Fatalf("old value = %v, want 100", got[1].OldValue)
	}

	// limit 限制条数
	got, err = st.RecentAdjustments(1)
	if err != nil {
		t.Fatalf("recent with limit: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
}
