package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

const worldBankHeader = "\"Data Source\",\"World Development Indicators\",\n\n" +
	"\"Last Updated Date\",\"2024-06-28\",\n\n" +
	"\"Country Name\",\"Country Code\",\"Indicator Name\",\"Indicator Code\",\"1999\",\"2000\",\"2001\",\n"

// writeFixtures lays out a minimal data directory covering the country and world views.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"countryNameToCode.json": `{"United States": "USA", "France": "FRA"}`,
		"monthly-temperature-anomalies.csv": "Entity,Code,Day,Temperature anomaly\n" +
			"United States,USA,2000-03-15,0.1\n" +
			"United States,USA,2000-07-15,0.3\n" +
			"United States,USA,2001-01-15,0.5\n" +
			"France,FRA,2000-01-15,0.9\n",
		"wheat-yield.csv": "Entity,Code,Year,Wheat yield (tonnes per hectare)\n" +
			"United States,USA,2000,2.8\n" +
			"france,,2000,7.1\n" +
			"France,,2001,7.0\n",
		"API_NY.GDP.MKTP.KD_DS2_en_csv_v2.csv": worldBankHeader +
			`"United States","USA","GDP","NY.GDP.MKTP.KD","90","100","110",` + "\n",
		"API_NY.GDP.MKTP.KD.ZG_DS2_en_csv_v2_85160.csv": worldBankHeader +
			`"United States","USA","GDP growth","NY.GDP.MKTP.KD.ZG","4.8","4.1","1.0",` + "\n" +
			`"France","FRA","GDP growth","NY.GDP.MKTP.KD.ZG","3.4","3.9","",` + "\n",
		"API_FP.CPI.TOTL.ZG_DS2_en_csv_v2_85166.csv": worldBankHeader +
			`"United States","USA","Inflation","FP.CPI.TOTL.ZG","2.2","3.4","2.8",` + "\n",
		"GDP_Dollar.csv": worldBankHeader +
			`"United States","USA","GDP (current US$)","NY.GDP.MKTP.CD","9.6e12","1.02e13","1.06e13",` + "\n",
		"economic-damages-from-natural-disasters-as-a-share-of-gdp.csv": "Entity,Code,Year,Total economic damages from disasters as a share of GDP\n" +
			"United States,USA,2000,0.05\n" +
			"United States,USA,2001,0.12\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	return dir
}

// resetFlags clears values and Changed state that persist across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns what it printed to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func TestCLI_CatalogList(t *testing.T) {
	out := mustRun(t, "catalog", "list", "--view", "world")
	if !strings.Contains(out, "world  years 2000-2022") || !strings.Contains(out, "food_inflation") {
		t.Fatalf("unexpected catalog list:\n%s", out)
	}
	if strings.Contains(out, "gdp_usd") {
		t.Fatalf("auxiliary variable listed without --all:\n%s", out)
	}
	out = mustRun(t, "catalog", "list", "--view", "world", "--all")
	if !strings.Contains(out, "gdp_usd") {
		t.Fatalf("--all should list auxiliary variables:\n%s", out)
	}
	if _, err := runCmd(t, "catalog", "list", "--view", "moon"); err == nil {
		t.Fatalf("expected unknown view error")
	}
}

func TestCLI_CatalogDumpValidates(t *testing.T) {
	dump := mustRun(t, "catalog", "dump")
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}
	out := mustRun(t, "catalog", "validate", path)
	if !strings.Contains(out, "3 views") {
		t.Fatalf("validate output = %q", out)
	}
}

func TestCLI_CompareDefaultsCSV(t *testing.T) {
	data := writeFixtures(t)
	out := mustRun(t, "--data-dir", data, "compare", "--entity", "USA", "--format", "csv")
	want := "year,temperature,gdp\n2000,0,1\n2001,1,0\n"
	if out != want {
		t.Fatalf("compare csv = %q, want %q", out, want)
	}
}

func TestCLI_CompareWritesArtifacts(t *testing.T) {
	data := writeFixtures(t)
	outDir := t.TempDir()
	chartPath := filepath.Join(outDir, "charts", "usa.png")
	bookPath := filepath.Join(outDir, "usa.xlsx")
	mdPath := filepath.Join(outDir, "usa.md")
	out := mustRun(t, "--data-dir", data, "compare", "temperature", "food", "-e", "United States",
		"--stats", "--chart", chartPath, "--xlsx", bookPath, "-o", mdPath)
	for _, want := range []string{"✓ Wrote chart", "✓ Wrote workbook", "✓ Wrote comparison"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if fi, err := os.Stat(chartPath); err != nil || fi.Size() == 0 {
		t.Fatalf("chart not written: %v", err)
	}
	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "[CORRELATION]") {
		t.Fatalf("stats missing from report:\n%s", md)
	}
	f, err := excelize.OpenFile(bookPath)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) == 0 || sheets[0] != "Aligned" {
		t.Fatalf("sheets = %v", sheets)
	}
}

func TestCLI_CompareErrors(t *testing.T) {
	data := writeFixtures(t)
	if _, err := runCmd(t, "--data-dir", data, "compare", "temperature", "rainfall", "-e", "USA"); err == nil ||
		!strings.Contains(err.Error(), "unknown variable") {
		t.Fatalf("expected unknown variable error, got %v", err)
	}
	if _, err := runCmd(t, "--data-dir", t.TempDir(), "compare", "-e", "USA"); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestCLI_SeriesByName(t *testing.T) {
	data := writeFixtures(t)
	out := mustRun(t, "--data-dir", data, "series", "wheat", "--entity", "France", "--format", "json")
	if !strings.Contains(out, `"id": "wheat"`) || !strings.Contains(out, `"entity": "FRA"`) {
		t.Fatalf("unexpected series json:\n%s", out)
	}
	out = mustRun(t, "--data-dir", data, "series", "wheat", "-e", "FRA", "--from", "2001", "-f", "csv")
	if out != "year,wheat\n2001,7\n" {
		t.Fatalf("series csv = %q", out)
	}
}

func TestCLI_Map(t *testing.T) {
	data := writeFixtures(t)
	out := mustRun(t, "--data-dir", data, "map", "gdp", "--year", "2000", "--format", "csv")
	if !strings.Contains(out, "USA,United States,4.1,10.20 Trillion USD") {
		t.Fatalf("map csv missing USA row:\n%s", out)
	}
	if !strings.Contains(out, "FRA,France,3.9,") {
		t.Fatalf("map csv missing FRA row:\n%s", out)
	}
	out = mustRun(t, "--data-dir", data, "map", "wheat", "--year", "2001", "--code", "fra")
	if strings.TrimSpace(out) != "FRA wheat 2001: 7" {
		t.Fatalf("map --code = %q", out)
	}
	if _, err := runCmd(t, "--data-dir", data, "map", "gdp", "--year", "1990"); err == nil {
		t.Fatalf("expected out-of-range year error")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	mustRun(t, "--config", path, "config", "set", "default_entity", "FRA")
	out := mustRun(t, "--config", path, "config", "show")
	if !strings.Contains(out, "default_entity: FRA") || !strings.Contains(out, "default_view: country") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := runCmd(t, "--config", path, "config", "set", "constant_fallback", "2"); err == nil {
		t.Fatalf("expected invalid constant_fallback error")
	}
}
