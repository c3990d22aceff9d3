// aggregate.go
package processor

import (
	"BikeSharingDashboard/src/schema"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// YearUsage 某一年散客与注册用户的租赁量
type YearUsage struct {
	Year       int `json:"year"`
	Casual     int `json:"casual"`
	Registered int `json:"registered"`
}

// HourlyUsage 某年某小时的租赁量
type HourlyUsage struct {
	Hour  int `json:"hour"`
	Year  int `json:"year"`
	Count int `json:"count"`
}

// SeasonalUsage 某年某季节的租赁总量
type SeasonalUsage struct {
	Season schema.Season `json:"season"`
	Year   int           `json:"year"`
	Total  int           `json:"total"`
}

// CasualVsRegisteredByYear 按年份汇总散客与注册用户，年份升序，没有数据的年份不补零
func CasualVsRegisteredByYear(day dataframe.DataFrame) []YearUsage {
	out := []YearUsage{}
	if day.Nrow() == 0 {
		return out
	}

	for _, group := range groupRows(day, schema.ColYear) {
		out = append(out, YearUsage{
			Year:       firstInt(group, schema.ColYear),
			Casual:     sumInt(group, schema.ColCasual),
			Registered: sumInt(group, schema.ColRegistered),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// HourlyPatternByHourYear 按(小时, 年份)汇总租赁量，小时升序再年份升序
func HourlyPatternByHourYear(hour dataframe.DataFrame) []HourlyUsage {
	out := []HourlyUsage{}
	if hour.Nrow() == 0 {
		return out
	}

	for _, group := range groupRows(hour, schema.ColHour, schema.ColYear) {
		out = append(out, HourlyUsage{
			Hour:  firstInt(group, schema.ColHour),
			Year:  firstInt(group, schema.ColYear),
			Count: sumInt(group, schema.ColCount),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// SeasonalTotalsBySeasonYear 按(季节, 年份)汇总总量，季节按固定顺序，未知季节排最后
func SeasonalTotalsBySeasonYear(day dataframe.DataFrame) []SeasonalUsage {
	out := []SeasonalUsage{}
	if day.Nrow() == 0 {
		return out
	}

	for _, group := range groupRows(day, schema.ColSeason, schema.ColYear) {
		out = append(out, SeasonalUsage{
			Season: schema.Season(group.Col(schema.ColSeason).Elem(0).String()),
			Year:   firstInt(group, schema.ColYear),
			Total:  sumInt(group, schema.ColTotal),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return schema.SeasonLess(out[i].Season, out[j].Season)
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// Years 汇总中出现的年份，升序去重
func Years[T YearUsage | HourlyUsage | SeasonalUsage](rows []T) []int {
	seen := map[int]struct{}{}
	var years []int
	for _, row := range rows {
		var y int
		switch v := any(row).(type) {
		case YearUsage:
			y = v.Year
		case HourlyUsage:
			y = v.Year
		case SeasonalUsage:
			y = v.Year
		}
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// YearFrame 汇总表转成DataFrame，用于导出
func YearFrame(rows []YearUsage) dataframe.DataFrame {
	years := make([]int, len(rows))
	casual := make([]int, len(rows))
	registered := make([]int, len(rows))
	for i, r := range rows {
		years[i], casual[i], registered[i] = r.Year, r.Casual, r.Registered
	}
	return dataframe.New(
		series.New(years, series.Int, schema.ColYear),
		series.New(casual, series.Int, schema.ColCasual),
		series.New(registered, series.Int, schema.ColRegistered),
	)
}

func HourlyFrame(rows []HourlyUsage) dataframe.DataFrame {
	hours := make([]int, len(rows))
	years := make([]int, len(rows))
	counts := make([]int, len(rows))
	for i, r := range rows {
		hours[i], years[i], counts[i] = r.Hour, r.Year, r.Count
	}
	return dataframe.New(
		series.New(hours, series.Int, schema.ColHour),
		series.New(years, series.Int, schema.ColYear),
		series.New(counts, series.Int, schema.ColCount),
	)
}

func SeasonalFrame(rows []SeasonalUsage) dataframe.DataFrame {
	seasons := make([]string, len(rows))
	years := make([]int, len(rows))
	totals := make([]int, len(rows))
	for i, r := range rows {
		seasons[i], years[i], totals[i] = string(r.Season), r.Year, r.Total
	}
	return dataframe.New(
		series.New(seasons, series.String, schema.ColSeason),
		series.New(years, series.Int, schema.ColYear),
		series.New(totals, series.Int, schema.ColTotal),
	)
}

// groupRows 按列分组。GroupBy出错时(例如分组列中有NA元素)按单元格文本重新分组，
// 保证每一行都进入某个组
func groupRows(df dataframe.DataFrame, cols ...string) map[string]dataframe.DataFrame {
	g := df.GroupBy(cols...)
	if g.Err == nil {
		return g.GetGroups()
	}

	values := make([][]string, len(cols))
	for i, col := range cols {
		values[i] = df.Col(col).Records()
	}
	index := map[string][]int{}
	for row := 0; row < df.Nrow(); row++ {
		parts := make([]string, len(cols))
		for i := range cols {
			parts[i] = values[i][row]
		}
		key := strings.Join(parts, "_")
		index[key] = append(index[key], row)
	}

	groups := make(map[string]dataframe.DataFrame, len(index))
	for key, rows := range index {
		groups[key] = df.Subset(rows)
	}
	return groups
}

func firstInt(df dataframe.DataFrame, col string) int {
	v, err := strconv.Atoi(df.Col(col).Elem(0).String())
	if err != nil {
		return int(math.Round(df.Col(col).Elem(0).Float()))
	}
	return v
}

func sumInt(df dataframe.DataFrame, col string) int {
	return int(math.Round(df.Col(col).Sum()))
}
