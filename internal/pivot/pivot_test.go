package pivot

import (
	"testing"
	"time"

	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/series"
)

func TestCellIDRoundTrip(t *testing.T) {
	t.Parallel()

	p := model.NewPeriod(2024, time.February)
	id := CellID(p, 8)
	if id != "date_2024-02-01_kf8" {
		t.Fatalf("id = %q, want date_2024-02-01_kf8", id)
	}

	gotP, gotKF, err := ParseCellID(id)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !gotP.Equal(p) || gotKF != 8 {
		t.Fatalf("parse = (%s, %d), want (%s, 8)", gotP.Key(), gotKF, p.Key())
	}
}

func TestParseCellIDErrors(t *testing.T) {
	t.Parallel()

	cases := []string{
		"clientName",
		"date_2024-02-01",
		"date_notadate_kf8",
		"date_2024-02-01_kfx",
		"",
	}
	for _, id := range cases {
		if _, _, err := ParseCellID(id); err == nil {
			t.Fatalf("ParseCellID(%q) should fail", id)
		}
	}

	if IsCellID("clientName") {
		t.Fatal("clientName is not a cell id")
	}
	if !IsCellID("date_2024-02-01_kf8") {
		t.Fatal("date_2024-02-01_kf8 is a cell id")
	}
}

func gridResult() series.Result {
	jan := model.NewPeriod(2024, time.January)
	feb := model.NewPeriod(2024, time.February)
	cat := catalog.Default()

	entity := model.EntityKey{ClientID: "C1", SkuID: "SKU1", ClientFinalID: "C1"}
	v1, v2 := 100.0, 130.0
	return series.Merge(series.Input{
		History: []model.Fact{
			{EntityKey: entity, Period: jan, KeyFigureID: catalog.KeyFigureSalesID, Value: &v1},
		},
		ForecastStat: []model.Fact{
			{EntityKey: entity, Period: feb, KeyFigureID: catalog.KeyFigureStatForecastSalesID, Value: &v2},
		},
	}, cat)
}

func TestBuildColumns(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	columns := BuildColumns(gridResult(), cat)

	// 两个固定列 + 每个有适用指标的期间一个分组
	if len(columns) < 3 {
		t.Fatalf("columns = %d, want at least 3", len(columns))
	}
	if columns[0].ColID != "clientName" || columns[0].Pinned != "left" {
		t.Fatalf("first column = %+v, want pinned clientName", columns[0])
	}
	if columns[1].ColID != "skuName" || columns[1].Pinned != "left" {
		t.Fatalf("second column = %+v, want pinned skuName", columns[1])
	}

	jan := model.NewPeriod(2024, time.January)
	feb := model.NewPeriod(2024, time.February)

	// 历史期间只有历史指标的叶子
	if _, ok := ColumnFor(columns, jan, catalog.KeyFigureSalesID); !ok {
		t.Fatal("jan sales column missing")
	}
	if _, ok := ColumnFor(columns, jan, catalog.KeyFigureStatForecastSalesID); ok {
		t.Fatal("forecast metric should not appear under a historical period")
	}
	// 预测期间只有预测指标的叶子
	if _, ok := ColumnFor(columns, feb, catalog.KeyFigureStatForecastSalesID); !ok {
		t.Fatal("feb stat forecast column missing")
	}
	if _, ok := ColumnFor(columns, feb, catalog.KeyFigureSalesID); ok {
		t.Fatal("historical metric should not appear under a forecast period")
	}

	// 可编辑性来自覆盖资格
	col, _ := ColumnFor(columns, feb, catalog.KeyFigureStatForecastSalesID)
	if !col.Editable {
		t.Fatal("stat forecast column should be editable")
	}
	col, _ = ColumnFor(columns, jan, catalog.KeyFigureSalesID)
	if col.Editable {
		t.Fatal("sales column should be read-only")
	}
}

// 没有任何适用指标的期间不产生分组列。
func TestBuildColumnsSkipsEmptyGroups(t *testing.T) {
	t.Parallel()

	jan := model.NewPeriod(2024, time.January)
	feb := model.NewPeriod(2024, time.February)
	mar := model.NewPeriod(2024, time.March)
	cat := catalog.Default()

	entity := model.EntityKey{ClientID: "C1", SkuID: "SKU1", ClientFinalID: "C1"}
	v := 100.0
	// 预测区只有空值记录：mar、feb 进期间轴，但出现过的指标只有
	// 历史域的 Sales，预测区期间没有任何适用指标
	res := series.Merge(series.Input{
		History: []model.Fact{
			{EntityKey: entity, Period: jan, KeyFigureID: catalog.KeyFigureSalesID, Value: &v},
			{EntityKey: entity, Period: mar, KeyFigureID: catalog.KeyFigureSalesID, Value: nil},
		},
		ForecastStat: []model.Fact{
			{EntityKey: entity, Period: feb, KeyFigureID: catalog.KeyFigureStatForecastSalesID, Value: nil},
		},
	}, cat)

	columns := BuildColumns(res, cat)
	for _, c := range columns {
		if c.HeaderName == feb.Label() || c.HeaderName == mar.Label() {
			t.Fatalf("period group without applicable metrics should be omitted, got %+v", c)
		}
	}
	if _, ok := ColumnFor(columns, jan, catalog.KeyFigureSalesID); !ok {
		t.Fatal("jan sales column missing")
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{1234567.891, "1,234,567.89"},
		{1000, "1,000"},
		{0.5, "0.5"},
		{0, "0"},
	}
	for _, c := range cases {
		if got := FormatValue(c.in); got != c.want {
			t.Fatalf("FormatValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
