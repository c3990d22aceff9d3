package render

import (
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/schema"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
)

func TestRenderCasualVsRegistered(t *testing.T) {
	bar := RenderCasualVsRegistered([]processor.YearUsage{{Year: 2011, Casual: 100, Registered: 400}, {Year: 2012, Casual: 150, Registered: 900}})
	bar.Validate()

	if got := bar.XAxisList[0].Data; !reflect.DeepEqual(got, []string{"2011", "2012"}) {
		t.Errorf("x axis = %v", got)
	}
	if len(bar.MultiSeries) != 2 {
		t.Fatalf("series = %d", len(bar.MultiSeries))
	}
	casual := bar.MultiSeries[0]
	if casual.Name != "Casual" || casual.Label == nil || !casual.Label.Show || casual.Label.Position != "top" {
		t.Errorf("casual series = %+v", casual)
	}
	data := bar.MultiSeries[1].Data.([]opts.BarData)
	if data[1].Value != 900 {
		t.Errorf("registered 2012 = %v", data[1].Value)
	}
}

func TestRenderHourlyPatternAlwaysShows24Hours(t *testing.T) {
	line := RenderHourlyPattern([]processor.HourlyUsage{
		{Hour: 4, Year: 2011, Count: 10},
		{Hour: 17, Year: 2011, Count: 500},
		{Hour: 17, Year: 2012, Count: 700},
	})
	line.Validate()

	axis, ok := line.XAxisList[0].Data.([]string)
	if !ok || len(axis) != 24 || axis[0] != "0" || axis[23] != "23" {
		t.Fatalf("x axis = %v", line.XAxisList[0].Data)
	}
	if len(line.MultiSeries) != 2 || line.MultiSeries[0].Name != "2011" || line.MultiSeries[1].Name != "2012" {
		t.Fatalf("series = %+v", line.MultiSeries)
	}
	data := line.MultiSeries[0].Data.([]opts.LineData)
	if len(data) != 24 || data[17].Value != 500 || data[4].Value != 10 || data[0].Value != "-" {
		t.Errorf("2011 data = %v", data)
	}
	if data[17].Symbol != "circle" {
		t.Errorf("points should be marked, got %q", data[17].Symbol)
	}
}

func TestRenderSeasonalTotalsCanonicalOrder(t *testing.T) {
	bar := RenderSeasonalTotals([]processor.SeasonalUsage{
		{Season: schema.Fall, Year: 2011, Total: 30},
		{Season: schema.Spring, Year: 2012, Total: 40},
		{Season: "Dry", Year: 2011, Total: 1},
	})
	bar.Validate()

	want := []string{"Spring", "Summer", "Fall", "Winter", "Dry"}
	if got := bar.XAxisList[0].Data; !reflect.DeepEqual(got, want) {
		t.Errorf("x axis = %v, want %v", got, want)
	}
	if len(bar.MultiSeries) != 2 {
		t.Fatalf("series = %d", len(bar.MultiSeries))
	}
	y2011 := bar.MultiSeries[0].Data.([]opts.BarData)
	if y2011[2].Value != 30 || y2011[0].Value != 0 || y2011[4].Value != 1 {
		t.Errorf("2011 bars = %v", y2011)
	}
}

func TestEmptySummariesRenderValidCharts(t *testing.T) {
	empty := &processor.Summaries{
		ByYear:   []processor.YearUsage{},
		Hourly:   []processor.HourlyUsage{},
		Seasonal: []processor.SeasonalUsage{},
	}

	seasonal := RenderSeasonalTotals(empty.Seasonal)
	seasonal.Validate()
	if len(seasonal.MultiSeries) != 0 {
		t.Errorf("expected no series, got %d", len(seasonal.MultiSeries))
	}

	snippets, err := Charts(empty)
	if err != nil {
		t.Fatal(err)
	}
	if len(snippets) != 3 {
		t.Fatalf("snippets = %d", len(snippets))
	}
	for i, sn := range snippets {
		if sn.ID != Names[i] {
			t.Errorf("snippet %d id = %s", i, sn.ID)
		}
		if !strings.Contains(string(sn.Div), `id="`+sn.ID+`"`) || !strings.Contains(string(sn.Script), "echarts.init") {
			t.Errorf("snippet %s malformed: %s", sn.ID, sn.HTML)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	rows := []processor.SeasonalUsage{{Season: schema.Winter, Year: 2011, Total: 5}, {Season: schema.Winter, Year: 2012, Total: 6}}
	a, err := Snippet("x", "x", RenderSeasonalTotals(rows))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Snippet("x", "x", RenderSeasonalTotals(rows))
	if err != nil {
		t.Fatal(err)
	}
	if a.Script != b.Script {
		t.Error("same summary produced different chart options")
	}
}

func TestWritePNG(t *testing.T) {
	s := &processor.Summaries{
		ByYear:   []processor.YearUsage{{Year: 2011, Casual: 100, Registered: 400}, {Year: 2012, Casual: 150, Registered: 900}},
		Hourly:   []processor.HourlyUsage{{Hour: 4, Year: 2011, Count: 10}, {Hour: 17, Year: 2011, Count: 500}, {Hour: 17, Year: 2012, Count: 300}},
		Seasonal: []processor.SeasonalUsage{{Season: schema.Spring, Year: 2011, Total: 500}, {Season: schema.Spring, Year: 2012, Total: 1050}},
	}
	for _, name := range Names {
		var buf bytes.Buffer
		if err := WritePNG(name, s, &buf); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
			t.Errorf("%s: not a png", name)
		}
	}

	if err := WritePNG("pie", s, &bytes.Buffer{}); !errors.Is(err, ErrUnknownChart) {
		t.Errorf("unknown chart err = %v", err)
	}
	if err := WritePNG(HourlyPattern, &processor.Summaries{}, &bytes.Buffer{}); !errors.Is(err, ErrNoData) {
		t.Errorf("empty err = %v", err)
	}
}

func TestSavePNGsSkipsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "png")
	s := &processor.Summaries{ByYear: []processor.YearUsage{{Year: 2011, Casual: 1, Registered: 2}}}

	files, err := SavePNGs(dir, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != CasualRegistered+".png" {
		t.Fatalf("files = %v", files)
	}
	if _, err := os.Stat(filepath.Join(dir, HourlyPattern+".png")); !os.IsNotExist(err) {
		t.Errorf("empty chart file should be removed, stat err = %v", err)
	}
}
