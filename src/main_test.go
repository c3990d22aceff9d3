package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const dayCSV = `dateday,year,season,casual,registered,count_cr
2011-01-01,2011,Musim Dingin,331,654,985
2011-06-01,2011,Musim Panas,1000,3000,4000
2012-06-01,2012,Musim Panas,1500,4500,6000
`

const hourCSV = `dateday,year,hour,count_cr
2011-01-01,2011,0,16
2011-06-01,2011,17,400
2012-06-01,2012,17,600
`

// setup 在临时目录写入配置和数据文件
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(dataDir, "day_clean.csv"):  dayCSV,
		filepath.Join(dataDir, "hour_clean.csv"): hourCSV,
		filepath.Join(dir, "config.json"):        fmt.Sprintf(`{"data_dir": %q, "log_name": %q}`, dataDir, filepath.Join(dir, "app.log")),
		filepath.Join(dir, "dataconfig.json"):    `{"season_labels": {"Musim Panas": "Summer", "Musim Dingin": "Winter"}}`,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// 标志是包级变量，每次执行前复位
	startDate, endDate, exportOut, exportPNGDir = "", "", "summary.xlsx", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	dir := setup(t)
	out, err := execute(t, "summary", "--config-dir", dir, "--start", "2011-01-01", "--end", "2011-12-31")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"区间: 2011-01-01 ~ 2011-12-31",
		"Winter    2011           985",
		"Summer    2011          4000",
		"Total: 4985 (casual 1331, registered 3654)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2012") {
		t.Errorf("2012 rows leaked into range:\n%s", out)
	}
}

func TestSummaryCommandReversedRange(t *testing.T) {
	dir := setup(t)
	if _, err := execute(t, "summary", "--config-dir", dir, "--start", "2012-01-01", "--end", "2011-01-01"); err == nil {
		t.Fatal("expected error for reversed range")
	}
}

func TestExportCommand(t *testing.T) {
	dir := setup(t)
	xlsxPath := filepath.Join(dir, "out.xlsx")
	pngDir := filepath.Join(dir, "png")

	if _, err := execute(t, "export", "--config-dir", dir, "--out", xlsxPath, "--png", pngDir); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("casual_registered")
	if err != nil {
		t.Fatal(err)
	}
	// 标题行 + 2011 + 2012
	if len(rows) != 3 || rows[2][0] != "2012" || rows[2][1] != "1500" {
		t.Errorf("rows = %v", rows)
	}

	entries, err := os.ReadDir(pngDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("png files = %d", len(entries))
	}
}

func TestMissingConfig(t *testing.T) {
	if _, err := execute(t, "summary", "--config-dir", t.TempDir()); err == nil {
		t.Fatal("expected error for missing config")
	}
}
