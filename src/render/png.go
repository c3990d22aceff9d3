package render

import (
	"BikeSharingDashboard/src/processor"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrNoData       = errors.New("no data in range")
	ErrUnknownChart = errors.New("unknown chart")
)

// 年份配色，超过后循环使用
var yearColors = []drawing.Color{
	{R: 51, G: 102, B: 204, A: 255},
	{R: 255, G: 107, B: 53, A: 255},
	{R: 78, G: 205, B: 196, A: 255},
	{R: 153, G: 102, B: 204, A: 255},
}

var (
	casualColor     = drawing.Color{R: 255, G: 159, B: 64, A: 255}
	registeredColor = drawing.Color{R: 54, G: 162, B: 235, A: 255}
)

func colorOf(i int) drawing.Color {
	return yearColors[i%len(yearColors)]
}

// WritePNG 把指定图表画成PNG写入w，区间内没有数据时返回ErrNoData
func WritePNG(name string, s *processor.Summaries, w io.Writer) error {
	switch name {
	case CasualRegistered:
		return casualRegisteredPNG(s.ByYear, w)
	case HourlyPattern:
		return hourlyPatternPNG(s.Hourly, w)
	case SeasonalTotals:
		return seasonalTotalsPNG(s.Seasonal, w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}
}

// SavePNGs 三张图保存到目录，返回生成的文件；没有数据的图表跳过
func SavePNGs(dir string, s *processor.Summaries) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	var files []string
	for _, name := range Names {
		filename := filepath.Join(dir, name+".png")
		f, err := os.Create(filename)
		if err != nil {
			return files, fmt.Errorf("failed to create chart file: %w", err)
		}
		err = WritePNG(name, s, f)
		f.Close()
		if errors.Is(err, ErrNoData) {
			os.Remove(filename)
			continue
		}
		if err != nil {
			return files, fmt.Errorf("failed to render %s chart: %w", name, err)
		}
		files = append(files, filename)
	}
	return files, nil
}

func yRange(top int) *chart.ContinuousRange {
	if top <= 0 {
		top = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: float64(top) * 1.1}
}

func barChart(title string, bars []chart.Value, top int) chart.BarChart {
	width := 200 + len(bars)*70
	if width < 600 {
		width = 600
	}
	return chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 16, FontColor: drawing.ColorBlack},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Height:     400,
		Width:      width,
		BarWidth:   40,
		BarSpacing: 20,
		XAxis:      chart.Style{FontSize: 9},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10},
			Range: yRange(top),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.Itoa(int(f))
				}
				return ""
			},
		},
		Bars: bars,
	}
}

func casualRegisteredPNG(rows []processor.YearUsage, w io.Writer) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	var bars []chart.Value
	top := 0
	for _, r := range rows {
		bars = append(bars,
			chart.Value{
				Label: fmt.Sprintf("%d casual %d", r.Year, r.Casual),
				Value: float64(r.Casual),
				Style: chart.Style{FillColor: casualColor, StrokeColor: casualColor},
			},
			chart.Value{
				Label: fmt.Sprintf("%d registered %d", r.Year, r.Registered),
				Value: float64(r.Registered),
				Style: chart.Style{FillColor: registeredColor, StrokeColor: registeredColor},
			},
		)
		if r.Casual > top {
			top = r.Casual
		}
		if r.Registered > top {
			top = r.Registered
		}
	}
	graph := barChart(Title(CasualRegistered), bars, top)
	return graph.Render(chart.PNG, w)
}

func seasonalTotalsPNG(rows []processor.SeasonalUsage, w io.Writer) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	years := processor.Years(rows)
	yearIndex := map[int]int{}
	for i, y := range years {
		yearIndex[y] = i
	}

	var bars []chart.Value
	top := 0
	for _, r := range rows {
		c := colorOf(yearIndex[r.Year])
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s %d", r.Season, r.Year),
			Value: float64(r.Total),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		})
		if r.Total > top {
			top = r.Total
		}
	}
	graph := barChart(Title(SeasonalTotals), bars, top)
	return graph.Render(chart.PNG, w)
}

func hourlyPatternPNG(rows []processor.HourlyUsage, w io.Writer) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	var series []chart.Series
	top := 0
	for i, year := range processor.Years(rows) {
		var xs, ys []float64
		for _, r := range rows {
			if r.Year != year {
				continue
			}
			xs = append(xs, float64(r.Hour))
			ys = append(ys, float64(r.Count))
			if r.Count > top {
				top = r.Count
			}
		}
		c := colorOf(i)
		series = append(series, chart.ContinuousSeries{
			Name: strconv.Itoa(year),
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 2,
				DotColor:    c,
				DotWidth:    4,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	ticks := make([]chart.Tick, 0, len(HoursOfDay))
	for h, label := range HoursOfDay {
		ticks = append(ticks, chart.Tick{Value: float64(h), Label: label})
	}

	graph := chart.Chart{
		Title:      Title(HourlyPattern),
		TitleStyle: chart.Style{FontSize: 16, FontColor: drawing.ColorBlack},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 70, Right: 20, Bottom: 40},
		},
		Height: 400,
		Width:  900,
		XAxis: chart.XAxis{
			Name:  "Hour",
			Style: chart.Style{FontSize: 9},
			Range: &chart.ContinuousRange{Min: 0, Max: 23},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Rentals",
			Style: chart.Style{FontSize: 10},
			Range: yRange(top),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}
