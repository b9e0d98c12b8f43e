package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/russofranco86hot/Wirebi/internal/catalog"
	"github.com/russofranco86hot/Wirebi/internal/gateway"
	"github.com/russofranco86hot/Wirebi/internal/model"
)

// fakeGateway 可编程的内存网关
type fakeGateway struct {
	mu           sync.Mutex
	history      []model.Fact
	clean        []model.Fact
	stat         []model.Fact
	final        []model.Fact
	historyDelay time.Duration
	generated    int
	generateWait chan struct{}
	lastCtx      context.Context
}

func (f *fakeGateway) History(ctx context.Context, _ gateway.HistoryQuery) ([]model.Fact, error) {
	f.mu.Lock()
	f.lastCtx = ctx
	delay := f.historyDelay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history, nil
}

func (f *fakeGateway) CleanHistory(context.Context, gateway.FactQuery) ([]model.Fact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clean, nil
}

func (f *fakeGateway) ForecastStat(context.Context, gateway.FactQuery) ([]model.Fact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stat, nil
}

func (f *fakeGateway) FinalForecast(context.Context, gateway.FactQuery) ([]model.Fact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.final, nil
}

func (f *fakeGateway) GenerateForecast(context.Context, gateway.GenerateParams) (string, error) {
	if f.generateWait != nil {
		<-f.generateWait
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated++
	return "ok", nil
}

var sessionEntity = model.EntityKey{ClientID: "C1", SkuID: "SKU1", ClientFinalID: "C1"}

func fact(p model.Period, keyFigureID int, v float64) model.Fact {
	return model.Fact{EntityKey: sessionEntity, Period: p, KeyFigureID: keyFigureID, Value: &v}
}

func testFilters() Filters {
	return Filters{
		Entity: sessionEntity,
		Start:  model.NewPeriod(2024, time.January),
		End:    model.NewPeriod(2024, time.June),
	}
}

func TestLoadPopulatesMergedState(t *testing.T) {
	t.Parallel()

	jan := model.NewPeriod(2024, time.January)
	mar := model.NewPeriod(2024, time.March)
	gw := &fakeGateway{
		history: []model.Fact{fact(jan, catalog.KeyFigureSalesID, 100)},
		stat:    []model.Fact{fact(mar, catalog.KeyFigureStatForecastSalesID, 130)},
	}
	s := New(gw, catalog.Default(), nil, nil)

	if err := s.Load(context.Background(), testFilters()); err != nil {
		t.Fatalf("load: %v", err)
	}

	merged := s.Merged()
	if len(merged.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(merged.Rows))
	}
	if merged.Boundary == nil || merged.Boundary.Key() != "2024-03-01" {
		t.Fatalf("boundary = %v, want 2024-03-01", merged.Boundary)
	}
	if s.Loading() {
		t.Fatal("loading should be false after load returns")
	}

	// 未指定来源时使用默认来源集合
	if got := s.Filters().Sources; len(got) != 3 {
		t.Fatalf("sources = %v, want 3 defaults", got)
	}
}

func TestLoadRequiresEntity(t *testing.T) {
	t.Parallel()

	s := New(&fakeGateway{}, catalog.Default(), nil, nil)
	if err := s.Load(context.Background(), Filters{}); err == nil {
		t.Fatal("expected validation error")
	}
}

// 慢的旧加载晚于新加载返回时，旧结果必须被丢弃。
func TestLoadDiscardsStaleResponse(t *testing.T) {
	t.Parallel()

	jan := model.NewPeriod(2024, time.January)
	slow := &fakeGateway{
		history:      []model.Fact{fact(jan, catalog.KeyFigureSalesID, 1)},
		historyDelay: 200 * time.Millisecond,
	}
	s := New(slow, catalog.Default(), nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// 旧加载：慢响应，且会被新加载取消
		_ = s.Load(context.Background(), testFilters())
	}()

	time.Sleep(20 * time.Millisecond)

	// 新加载接管令牌
	slow.mu.Lock()
	slow.history = []model.Fact{fact(jan, catalog.KeyFigureSalesID, 999)}
	slow.historyDelay = 0
	slow.mu.Unlock()
	if err := s.Load(context.Background(), testFilters()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	wg.Wait()

	merged := s.Merged()
	if len(merged.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(merged.Rows))
	}
	v, ok := merged.Rows[0].Value(jan, catalog.KeyFigureSalesID)
	if !ok || v != 999 {
		t.Fatalf("value = %v %v, want 999 from the newer load", v, ok)
	}
}

// 加载结束后派生上下文必须释放，成功路径也不例外。
func TestLoadReleasesDerivedContext(t *testing.T) {
	t.Parallel()

	jan := model.NewPeriod(2024, time.January)
	gw := &fakeGateway{history: []model.Fact{fact(jan, catalog.KeyFigureSalesID, 100)}}
	s := New(gw, catalog.Default(), nil, nil)

	if err := s.Load(context.Background(), testFilters()); err != nil {
		t.Fatalf("load: %v", err)
	}

	gw.mu.Lock()
	loadCtx := gw.lastCtx
	gw.mu.Unlock()
	if loadCtx == nil {
		t.Fatal("gateway never saw the load context")
	}
	select {
	case <-loadCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("load context still live after load returned")
	}
}

func TestReloadRequiresPriorLoad(t *testing.T) {
	t.Parallel()

	s := New(&fakeGateway{}, catalog.Default(), nil, nil)
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("reload without a prior load should fail")
	}
}

// 同一时刻只允许一个生成请求在途。
func TestGenerateGuard(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{generateWait: make(chan struct{})}
	s := New(gw, catalog.Default(), nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Generate(context.Background(), gateway.GenerateParams{})
	}()

	// 等第一个请求进入在途状态
	deadline := time.Now().Add(time.Second)
	for !s.Generating() {
		if time.Now().After(deadline) {
			t.Fatal("first generate never became in-flight")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Generate(context.Background(), gateway.GenerateParams{}); err == nil {
		t.Fatal("second generate should be refused while one is in flight")
	}

	close(gw.generateWait)
	wg.Wait()
	if s.Generating() {
		t.Fatal("generating flag should clear after completion")
	}
}

func TestPatchAndRestoreCell(t *testing.T) {
	t.Parallel()

	mar := model.NewPeriod(2024, time.March)
	apr := model.NewPeriod(2024, time.April)
	gw := &fakeGateway{
		stat:  []model.Fact{fact(mar, catalog.KeyFigureStatForecastSalesID, 130)},
		final: []model.Fact{fact(mar, catalog.KeyFigureFinalForecastID, 130)},
	}
	s := New(gw, catalog.Default(), nil, nil)
	if err := s.Load(context.Background(), testFilters()); err != nil {
		t.Fatalf("load: %v", err)
	}

	s.PatchCell(sessionEntity, mar, catalog.KeyFigureFinalForecastID, 150)
	if v, ok := s.Merged().Rows[0].Value(mar, catalog.KeyFigureFinalForecastID); !ok || v != 150 {
		t.Fatalf("patched value = %v %v, want 150", v, ok)
	}

	old := 130.0
	s.RestoreCell(sessionEntity, mar, catalog.KeyFigureFinalForecastID, &old)
	if v, _ := s.Merged().Rows[0].Value(mar, catalog.KeyFigureFinalForecastID); v != 130 {
		t.Fatalf("restored value = %v, want 130", v)
	}

	// 原本无数据的单元格：补丁后回滚应恢复为空白
	s.PatchCell(sessionEntity, apr, catalog.KeyFigureFinalForecastID, 170)
	s.RestoreCell(sessionEntity, apr, catalog.KeyFigureFinalForecastID, nil)
	if _, ok := s.Merged().Rows[0].Value(apr, catalog.KeyFigureFinalForecastID); ok {
		t.Fatal("restore with nil old value should leave the cell blank")
	}
}

func TestGridPayload(t *testing.T) {
	t.Parallel()

	jan := model.NewPeriod(2024, time.January)
	mar := model.NewPeriod(2024, time.March)
	gw := &fakeGateway{
		history: []model.Fact{fact(jan, catalog.KeyFigureSalesID, 100)},
		stat:    []model.Fact{fact(mar, catalog.KeyFigureStatForecastSalesID, 130)},
	}
	s := New(gw, catalog.Default(), nil, nil)
	if err := s.Load(context.Background(), testFilters()); err != nil {
		t.Fatalf("load: %v", err)
	}

	grid := s.Grid("Acme", "Widget")
	if len(grid.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(grid.Rows))
	}
	row := grid.Rows[0]
	if row["clientName"] != "Acme" || row["skuName"] != "Widget" {
		t.Fatalf("display names = %v / %v", row["clientName"], row["skuName"])
	}
	if grid.ForecastStart != "2024-03-01" {
		t.Fatalf("forecastStart = %q, want 2024-03-01", grid.ForecastStart)
	}

	janSales := "date_2024-01-01_kf1"
	if row[janSales] != 100.0 {
		t.Fatalf("row[%s] = %v, want 100", janSales, row[janSales])
	}
	// 缺席的组合不生成字段
	if _, ok := row["date_2024-03-01_kf1"]; ok {
		t.Fatal("dropped combination should not appear in the row")
	}
}

func TestChartTraces(t *testing.T) {
	t.Parallel()

	jan := model.NewPeriod(2024, time.January)
	mar := model.NewPeriod(2024, time.March)
	gw := &fakeGateway{
		history: []model.Fact{fact(jan, catalog.KeyFigureSalesID, 100)},
		stat:    []model.Fact{fact(mar, catalog.KeyFigureStatForecastSalesID, 130)},
	}
	s := New(gw, catalog.Default(), nil, nil)
	if err := s.Load(context.Background(), testFilters()); err != nil {
		t.Fatalf("load: %v", err)
	}

	traces := s.Chart()
	if len(traces) != 2 {
		t.Fatalf("traces = %d, want 2", len(traces))
	}
	sales := traces[0]
	if sales.KeyFigureID != catalog.KeyFigureSalesID {
		t.Fatalf("first trace = %d, want sales", sales.KeyFigureID)
	}
	if len(sales.X) != 2 || len(sales.Y) != 2 {
		t.Fatalf("trace axis = %d/%d, want 2/2", len(sales.X), len(sales.Y))
	}
	if sales.Y[0] == nil || *sales.Y[0] != 100 {
		t.Fatalf("sales jan = %v, want 100", sales.Y[0])
	}
	if sales.Y[1] != nil {
		t.Fatalf("sales mar = %v, want null", *sales.Y[1])
	}
}
