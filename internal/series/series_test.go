package series

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/trendloom-cli/internal/table"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func mustTable(t *testing.T, name, csv string) *table.Table {
	t.Helper()
	tbl, err := table.Read(strings.NewReader(csv), name, table.Options{})
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return tbl
}

func TestResolveDisasterDamage(t *testing.T) {
	header := []string{"Year", "ISO3_Code", "DamagesGDP"}
	got, err := Resolve("damages.csv", header, IntentValue, "disaster-damage")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "DamagesGDP" {
		t.Fatalf("value column = %q, want DamagesGDP", got)
	}
	if got, _ := Resolve("damages.csv", header, IntentCode, ""); got != "ISO3_Code" {
		t.Fatalf("code column = %q, want ISO3_Code", got)
	}
	if got, _ := Resolve("damages.csv", header, IntentYear, ""); got != "Year" {
		t.Fatalf("year column = %q, want Year", got)
	}
}

func TestResolveSchemaMismatch(t *testing.T) {
	header := []string{"Year", "Code", "Losses"}
	_, err := Resolve("damages.csv", header, IntentValue, "disaster-damage")
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	var sm *SchemaMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected *SchemaMismatchError, got %T", err)
	}
	want := `schema mismatch in damages.csv: no value column (hint "disaster-damage"); found columns: Year, Code, Losses`
	if err.Error() != want {
		t.Fatalf("message = %q\nwant      %q", err.Error(), want)
	}
}

func TestResolvePriority(t *testing.T) {
	wb := []string{"Country Name", "Indicator Code", "Country Code", "2000"}
	if got, _ := Resolve("wb.csv", wb, IntentCode, ""); got != "Country Code" {
		t.Fatalf("code column = %q, want Country Code before Indicator Code", got)
	}
	if got, _ := Resolve("wb.csv", wb, IntentEntity, ""); got != "Country Name" {
		t.Fatalf("entity column = %q", got)
	}
	temp := []string{"Entity", "Code", "Day", "Temperature anomaly"}
	if got, _ := Resolve("temp.csv", temp, IntentYear, "day"); got != "Day" {
		t.Fatalf("year column with hint = %q", got)
	}
	if _, err := Resolve("temp.csv", temp, IntentYear, ""); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected mismatch without hint, got %v", err)
	}
	if got, _ := Resolve("temp.csv", temp, IntentValue, "temperature anomaly"); got != "Temperature anomaly" {
		t.Fatalf("value column = %q", got)
	}
	wheat := []string{"Entity", "Code", "Year", "Wheat | 00000015 || Yield | 005419 || tonnes per hectare"}
	if got, _ := Resolve("wheat.csv", wheat, IntentValue, "wheat-yield"); got != wheat[3] {
		t.Fatalf("wheat value column = %q", got)
	}
}

func TestObserveWideDropsNonNumeric(t *testing.T) {
	tbl := &table.Table{
		Name:   "food.csv",
		Header: []string{"Country Code", "2000", "2001"},
		Rows:   []table.Row{{"Country Code": "USA", "2000": "1.2", "2001": "abc"}},
	}
	obs, st, err := Observe(tbl, Layout{Strategy: StrategyWide, Key: KeyCode})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	got := Select(obs, MatchCode("USA"))
	if len(got) != 1 || got[0] != (Point{Year: 2000, Value: 1.2}) {
		t.Fatalf("series = %v, want [(2000,1.2)]", got)
	}
	if st.Skipped != 1 || st.Observed != 1 || st.Rows != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestObserveWideEntityFilter(t *testing.T) {
	tbl := mustTable(t, "gdp.csv", "Country Name,Country Code,1999,2000\nAruba,ABW,1,2\nUnited States,USA,3,\n")
	obs, _, err := Observe(tbl, Layout{Strategy: StrategyWide, Key: KeyCode, EntityColumn: "Country Code"})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	usa := Select(obs, MatchCode("usa"))
	if len(usa) != 1 || usa[0].Year != 1999 || usa[0].Value != 3 {
		t.Fatalf("usa = %v", usa)
	}
	if all := Select(obs, MatchAll); len(all) != 3 {
		t.Fatalf("all = %v", all)
	}

	noYears := mustTable(t, "bad.csv", "Country Code,Value\nUSA,1\n")
	if _, _, err := Observe(noYears, Layout{Strategy: StrategyWide, Key: KeyCode}); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected mismatch for wide table without year columns, got %v", err)
	}
}

func TestObserveLongThenAggregate(t *testing.T) {
	tbl := &table.Table{
		Name:   "temperature.csv",
		Header: []string{"Day", "value"},
		Rows: []table.Row{
			{"Day": "2000-03", "value": "0.1"},
			{"Day": "2000-07", "value": "0.3"},
		},
	}
	obs, _, err := Observe(tbl, Layout{Strategy: StrategyLong, YearColumn: "Day", ValueColumn: "value", Key: KeyNone})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	got := Aggregate(Select(obs, MatchAll))
	if len(got) != 1 || got[0].Year != 2000 || !almostEqual(got[0].Value, 0.2, 1e-12) {
		t.Fatalf("aggregate = %v, want [(2000,0.2)]", got)
	}
}

func TestObserveLongSkipsBadRowsAndMissingColumns(t *testing.T) {
	tbl := mustTable(t, "wheat.csv", "Entity,Year,Wheat yield\nFrance,2000,7.1\nFrance,x,7.0\nFrance,2001,\nFrance,2002,NaN\n")
	obs, st, err := Observe(tbl, Layout{Strategy: StrategyLong, ValueColumn: "wheat-yield", Key: KeyName})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if len(obs) != 1 || obs[0].Entity != "France" || obs[0].Year != 2000 {
		t.Fatalf("obs = %+v", obs)
	}
	if st.Skipped != 3 {
		t.Fatalf("skipped = %d, want 3", st.Skipped)
	}

	_, _, err = Observe(tbl, Layout{Strategy: StrategyLong, ValueColumn: "rainfall", Key: KeyName})
	if !errors.Is(err, ErrSchemaMismatch) || !strings.Contains(err.Error(), "found columns: Entity, Year, Wheat yield") {
		t.Fatalf("expected schema mismatch naming columns, got %v", err)
	}
	_, _, err = Observe(tbl, Layout{Strategy: "diagonal"})
	if err == nil || !strings.Contains(err.Error(), "unknown strategy") {
		t.Fatalf("expected unknown strategy error, got %v", err)
	}
}

func TestMatchFolded(t *testing.T) {
	m := MatchFolded("france", strings.ToLower)
	if !m("FRANCE") || m("Spain") {
		t.Fatalf("folded matcher mismatch")
	}
	if MatchFolded("", strings.ToLower)("") {
		t.Fatalf("empty key must not match")
	}
}

func TestGrowthRate(t *testing.T) {
	levels := Series{{2000, 100}, {2001, 110}, {2002, 90}}
	got := GrowthRate(levels)
	if len(got) != 2 {
		t.Fatalf("growth = %v", got)
	}
	if got[0].Year != 2001 || !almostEqual(got[0].Value, 10.0, 1e-9) {
		t.Fatalf("2001 growth = %v", got[0])
	}
	if got[1].Year != 2002 || !almostEqual(got[1].Value, -18.181818181818, 1e-9) {
		t.Fatalf("2002 growth = %v", got[1])
	}
}

func TestGrowthRateSkipsGapsAndZeroBase(t *testing.T) {
	levels := Series{{2003, 50}, {2000, 0}, {2001, 10}, {2004, 55}}
	got := GrowthRate(levels)
	// 2001: prev is 0 -> Inf, skipped; 2003: 2002 missing, skipped; 2004 from 2003.
	if len(got) != 1 || got[0].Year != 2004 || !almostEqual(got[0].Value, 10, 1e-9) {
		t.Fatalf("growth = %v", got)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	s := Series{{2001, 1}, {2000, 2}, {2001, 3}, {2000, 4}, {2002, -1}}
	once := Aggregate(s)
	twice := Aggregate(once)
	if len(once) != 3 {
		t.Fatalf("aggregate = %v", once)
	}
	if once[0] != (Point{2001, 2}) || once[1] != (Point{2000, 3}) {
		t.Fatalf("aggregate order or means wrong: %v", once)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("aggregate not idempotent: %v vs %v", once, twice)
		}
	}
}

func TestNormalizeBounds(t *testing.T) {
	s := Series{{2000, 3.5}, {2001, -2}, {2002, 10}, {2003, 0.1}}
	got := Normalize(s)
	for _, p := range got {
		if p.Value < 0 || p.Value > 1 {
			t.Fatalf("value out of range: %v", p)
		}
	}
	if got[1].Value != 0 {
		t.Fatalf("minimum = %v, want exactly 0", got[1].Value)
	}
	if got[2].Value != 1 {
		t.Fatalf("maximum = %v, want exactly 1", got[2].Value)
	}
	if got[0].Year != 2000 || got[3].Year != 2003 {
		t.Fatalf("years changed: %v", got)
	}
}

func TestNormalizeConstantAndEmpty(t *testing.T) {
	got := Normalize(Series{{2000, 4}, {2001, 4}})
	for _, p := range got {
		if p.Value != ConstantFallback {
			t.Fatalf("constant series value = %v, want %v", p.Value, ConstantFallback)
		}
	}
	if got := NormalizeWith(Series{{2000, 7}}, 0); got[0].Value != 0 {
		t.Fatalf("custom fallback ignored: %v", got)
	}
	if got := Normalize(nil); len(got) != 0 {
		t.Fatalf("empty normalize = %v", got)
	}
}

func TestAlign(t *testing.T) {
	a := Series{{2003, 3}, {2001, 1}, {2002, 2}, {2001, 9}}
	b := Series{{2002, 20}, {2003, 30}, {2004, 40}, {2002, 99}}
	got := Align(a, b)
	want := []AlignedPoint{{2002, 2, 20}, {2003, 3, 30}}
	if len(got) != len(want) {
		t.Fatalf("align = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("align[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	distinctA, distinctB := len(a.Years()), len(b.Years())
	if len(got) > min(distinctA, distinctB) {
		t.Fatalf("align longer than distinct years")
	}
	if got := Align(a, nil); len(got) != 0 {
		t.Fatalf("align with empty = %v", got)
	}
}

func TestYearRange(t *testing.T) {
	r := YearRange{From: 2000, To: 2022}
	if !r.Contains(2000) || !r.Contains(2022) || r.Contains(1999) || r.Contains(2023) {
		t.Fatalf("closed range bounds wrong")
	}
	open := YearRange{From: 1960}
	if !open.Contains(2100) || open.String() != "1960+" {
		t.Fatalf("open range wrong: %v", open)
	}
	n := r.Narrow(YearRange{From: 2005})
	if n.From != 2005 || n.To != 2022 {
		t.Fatalf("narrow = %v", n)
	}
	n = open.Narrow(YearRange{To: 2010})
	if n.From != 1960 || n.To != 2010 || n.String() != "1960-2010" {
		t.Fatalf("narrow open = %v", n)
	}
	got := FilterYears(Series{{1999, 1}, {2000, 2}, {2023, 3}}, r)
	if len(got) != 1 || got[0].Year != 2000 {
		t.Fatalf("filter = %v", got)
	}
	sorted := Sort(Series{{2002, 1}, {2000, 2}, {2001, 3}})
	if sorted[0].Year != 2000 || sorted[2].Year != 2002 {
		t.Fatalf("sort = %v", sorted)
	}
}
