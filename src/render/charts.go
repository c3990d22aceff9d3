package render

import (
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/schema"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// 图表标识，页面、PNG导出共用
const (
	CasualRegistered = "casual-registered"
	HourlyPattern    = "hourly-pattern"
	SeasonalTotals   = "seasonal-totals"
)

// Names 三张图表的固定顺序
var Names = []string{CasualRegistered, HourlyPattern, SeasonalTotals}

// HoursOfDay x轴固定为0-23，没有数据的小时也显示刻度
var HoursOfDay = func() []string {
	hours := make([]string, 24)
	for h := range hours {
		hours[h] = strconv.Itoa(h)
	}
	return hours
}()

func initOpts(id string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   "100%",
		Height:  "420px",
	})
}

// RenderCasualVsRegistered 每年一组柱子(散客、注册用户)，柱顶标注数值
func RenderCasualVsRegistered(rows []processor.YearUsage) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(CasualRegistered),
		charts.WithTitleOpts(opts.Title{Title: "Casual vs Registered"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rentals"}),
	)

	years := make([]string, 0, len(rows))
	casual := make([]opts.BarData, 0, len(rows))
	registered := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		years = append(years, strconv.Itoa(r.Year))
		casual = append(casual, opts.BarData{Name: strconv.Itoa(r.Year), Value: r.Casual})
		registered = append(registered, opts.BarData{Name: strconv.Itoa(r.Year), Value: r.Registered})
	}

	label := charts.WithLabelOpts(opts.Label{Show: true, Position: "top"})
	bar.SetXAxis(years).
		AddSeries("Casual", casual, label).
		AddSeries("Registered", registered, label)
	return bar
}

// RenderHourlyPattern 每年一条折线，x轴固定24小时，点用圆圈标记
func RenderHourlyPattern(rows []processor.HourlyUsage) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(HourlyPattern),
		charts.WithTitleOpts(opts.Title{Title: "Hourly rental pattern"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Hour",
			AxisLabel: &opts.AxisLabel{Show: true, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rentals"}),
	)
	line.SetXAxis(HoursOfDay)

	counts := map[int]map[int]int{}
	for _, r := range rows {
		if counts[r.Year] == nil {
			counts[r.Year] = map[int]int{}
		}
		counts[r.Year][r.Hour] += r.Count
	}

	for _, year := range processor.Years(rows) {
		data := make([]opts.LineData, len(HoursOfDay))
		for h := range data {
			v, ok := counts[year][h]
			if !ok {
				// echarts中"-"表示缺失点
				data[h] = opts.LineData{Value: "-"}
				continue
			}
			data[h] = opts.LineData{Value: v, Symbol: "circle", SymbolSize: 6}
		}
		line.AddSeries(strconv.Itoa(year), data)
	}
	return line
}

// RenderSeasonalTotals x轴为季节(固定顺序)，每个季节内每年一根柱子
func RenderSeasonalTotals(rows []processor.SeasonalUsage) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(SeasonalTotals),
		charts.WithTitleOpts(opts.Title{Title: "Rentals by season"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Season"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rentals"}),
	)

	seasons := seasonAxis(rows)
	labels := make([]string, len(seasons))
	for i, s := range seasons {
		labels[i] = string(s)
	}
	bar.SetXAxis(labels)

	totals := map[int]map[schema.Season]int{}
	for _, r := range rows {
		if totals[r.Year] == nil {
			totals[r.Year] = map[schema.Season]int{}
		}
		totals[r.Year][r.Season] += r.Total
	}

	for _, year := range processor.Years(rows) {
		data := make([]opts.BarData, len(seasons))
		for i, s := range seasons {
			data[i] = opts.BarData{Name: string(s), Value: totals[year][s]}
		}
		bar.AddSeries(strconv.Itoa(year), data)
	}
	return bar
}

// seasonAxis 四个标准季节总是显示，数据中出现的未知季节追加在后面
func seasonAxis(rows []processor.SeasonalUsage) []schema.Season {
	if len(rows) == 0 {
		return nil
	}
	axis := append([]schema.Season(nil), schema.Seasons...)
	seen := map[schema.Season]bool{}
	for _, s := range axis {
		seen[s] = true
	}
	var extra []schema.Season
	for _, r := range rows {
		if !seen[r.Season] {
			seen[r.Season] = true
			extra = append(extra, r.Season)
		}
	}
	schema.SortSeasons(extra)
	return append(axis, extra...)
}

// Title 图表标识对应的标题
func Title(name string) string {
	switch name {
	case CasualRegistered:
		return "Casual vs Registered"
	case HourlyPattern:
		return "Hourly rental pattern"
	case SeasonalTotals:
		return "Rentals by season"
	default:
		return fmt.Sprintf("unknown chart %s", name)
	}
}
