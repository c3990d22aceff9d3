package dashboard

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/datasource/file"
	"BikeSharingDashboard/src/storage"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const dayCSV = `dateday,year,season,casual,registered,count_cr
2011-01-01,2011,Winter,331,654,985
2011-06-01,2011,Summer,1000,3000,4000
2012-06-01,2012,Summer,1500,4500,6000
`

const hourCSV = `dateday,year,hour,count_cr
2011-01-01,2011,0,16
2011-06-01,2011,17,400
2012-06-01,2012,17,600
`

func testEnv(t *testing.T) (*config.Config, *config.DataConfig, *storage.Logger) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{"day_clean.csv": dayCSV, "hour_clean.csv": hourCSV} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := &config.Config{DataDir: dir}
	cfg.ApplyDefaults()
	dcfg := &config.DataConfig{}
	dcfg.ApplyDefaults()
	return cfg, dcfg, storage.NewWriterLogger(&bytes.Buffer{})
}

func TestSessionRefresh(t *testing.T) {
	s, err := Open(testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Bounds().String(); got != "2011-01-01 ~ 2012-06-01" {
		t.Errorf("bounds = %s", got)
	}

	v, err := s.Refresh(s.Bounds())
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Sections) != config.SectionCount {
		t.Fatalf("sections = %d", len(v.Sections))
	}
	if v.Sections[0].Heading != "Tren Pengguna Baru vs. Kasual" || !strings.Contains(string(v.Sections[0].Insight), "<li>") {
		t.Errorf("section 0 = %+v", v.Sections[0])
	}
	if v.Totals.Total != 10985 || v.Totals.Casual != 2831 {
		t.Errorf("totals = %+v", v.Totals)
	}

	r, err := ResolveRange("2012-01-01", "", s.Bounds())
	if err != nil {
		t.Fatal(err)
	}
	v2, err := s.Refresh(r)
	if err != nil {
		t.Fatal(err)
	}
	if v2.Totals.Total != 6000 || len(v2.Summaries.ByYear) != 1 {
		t.Errorf("2012 only: %+v", v2.Summaries)
	}
	// 旧的View不受影响
	if v.Totals.Total != 10985 {
		t.Error("previous view was mutated")
	}
}

func TestResolveRange(t *testing.T) {
	s, err := Open(testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	b := s.Bounds()

	r, err := ResolveRange("", "", b)
	if err != nil || r != b {
		t.Errorf("default = %s, %v", r, err)
	}
	r, err = ResolveRange("2000-01-01", "2030-01-01", b)
	if err != nil || r != b {
		t.Errorf("clamped = %s, %v", r, err)
	}
	if _, err := ResolveRange("2012-01-01", "2011-01-01", b); !errors.Is(err, ErrReversedRange) {
		t.Errorf("reversed err = %v", err)
	}
	if _, err := ResolveRange("01/01/2011", "", b); err == nil {
		t.Error("expected parse error")
	}
}

func TestWritePage(t *testing.T) {
	s, err := Open(testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	v, err := s.Refresh(s.Bounds())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WritePage(&buf, v); err != nil {
		t.Fatal(err)
	}
	page := buf.String()
	for _, want := range []string{
		"<title>Dashboard Insight Penyewaan Sepeda (2011-2012)</title>",
		`name="start" value="2011-01-01" min="2011-01-01" max="2012-06-01"`,
		`id="casual-registered"`,
		`id="hourly-pattern"`,
		`id="seasonal-totals"`,
		"Kesimpulan",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestStoreReloadKeepsOldSessionOnError(t *testing.T) {
	cfg, dcfg, logger := testEnv(t)
	s, err := Open(cfg, dcfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	st := NewStore(s)

	if err := os.WriteFile(cfg.DailyPath(), []byte("dateday,year\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err = st.Reload(cfg, dcfg, logger)
	var le *file.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v", err)
	}
	if st.Get() != s {
		t.Error("failed reload replaced the session")
	}

	if err := os.WriteFile(cfg.DailyPath(), []byte(dayCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if err := st.Reload(cfg, dcfg, logger); err != nil {
		t.Fatal(err)
	}
	if st.Get() == s {
		t.Error("reload did not install a new session")
	}
}
