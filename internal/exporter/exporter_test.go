package exporter

import (
	"testing"
	"time"

	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/model"
	"github.com/russofranco86hot/Wirebi/internal/series"
	"github.com/xuri/excelize/v2"
)

func TestExport(t *testing.T) {
	t.Parallel()

	jan := model.NewPeriod(2024, time.January)
	mar := model.NewPeriod(2024, time.March)
	entity := model.EntityKey{ClientID: "C1", SkuID: "SKU1", ClientFinalID: "C1"}
	sales, forecast := 1234.5, 130.0

	cat := catalog.Default()
	res := series.Merge(series.Input{
		History: []model.Fact{
			{EntityKey: entity, Period: jan, KeyFigureID: catalog.KeyFigureSalesID, Value: &sales},
		},
		ForecastStat: []model.Fact{
			{EntityKey: entity, Period: mar, KeyFigureID: catalog.KeyFigureStatForecastSalesID, Value: &forecast},
		},
	}, cat)

	f, err := NewExporter(cat).Export(res, Options{ClientName: "Acme", SkuName: "Widget"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex("Forecast"); err != nil || idx < 0 {
		t.Fatalf("sheet Forecast missing: idx=%d err=%v", idx, err)
	}

	// 固定表头
	if v, _ := f.GetCellValue("Forecast", "A1"); v != "Client" {
		t.Fatalf("A1 = %q, want Client", v)
	}
	if v, _ := f.GetCellValue("Forecast", "B1"); v != "SKU" {
		t.Fatalf("B1 = %q, want SKU", v)
	}

	// 期间分组表头和指标子表头
	if v, _ := f.GetCellValue("Forecast", "C1"); v != "Jan 2024" {
		t.Fatalf("C1 = %q, want Jan 2024", v)
	}
	if v, _ := f.GetCellValue("Forecast", "D1"); v != "Mar 2024" {
		t.Fatalf("D1 = %q, want Mar 2024", v)
	}
	if v, _ := f.GetCellValue("Forecast", "C2"); v != "Sales" {
		t.Fatalf("C2 = %q, want Sales", v)
	}

	// 数据行
	if v, _ := f.GetCellValue("Forecast", "A3"); v != "Acme" {
		t.Fatalf("A3 = %q, want Acme", v)
	}
	if v, _ := f.GetCellValue("Forecast", "B3"); v != "Widget" {
		t.Fatalf("B3 = %q, want Widget", v)
	}
	// 数值单元格带格式样式，取原始值比较
	raw := excelize.Options{RawCellValue: true}
	if v, _ := f.GetCellValue("Forecast", "C3", raw); v != "1234.5" {
		t.Fatalf("C3 = %q, want 1234.5", v)
	}
	if v, _ := f.GetCellValue("Forecast", "D3", raw); v != "130" {
		t.Fatalf("D3 = %q, want 130", v)
	}
}
