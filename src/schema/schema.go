package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// 统一后的列名，加载器会把源文件的列名映射到这些名字上
const (
	ColDate       = "date"
	ColYear       = "year"
	ColSeason     = "season"
	ColCasual     = "casual"
	ColRegistered = "registered"
	ColTotal      = "total"
	ColHour       = "hour"
	ColCount      = "count"
)

// DateLayout 日期列统一使用的格式，字符串比较即等价于时间先后比较
const DateLayout = "2006-01-02"

// DailyColumns 日数据必须包含的列
var DailyColumns = []string{ColDate, ColYear, ColSeason, ColCasual, ColRegistered, ColTotal}

// HourlyColumns 小时数据必须包含的列
var HourlyColumns = []string{ColDate, ColYear, ColHour, ColCount}

// Season 季节
type Season string

const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
	Winter Season = "Winter"
)

// Unknown 缺失季节标签统一使用的名字，排在四个标准季节之后
const Unknown Season = "Unknown"

// Seasons 固定的季节顺序，图表x轴按这个顺序排列
var Seasons = []Season{Spring, Summer, Fall, Winter}

// ParseSeason 把季节标签或数字编码(1-4)转成标准季节，无法识别的标签原样保留
// 空标签与NA/NaN返回Unknown
func ParseSeason(label string) Season {
	s := strings.TrimSpace(label)
	if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "NaN") {
		return Unknown
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(Seasons) {
		return Seasons[n-1]
	}
	for _, season := range Seasons {
		if strings.EqualFold(s, string(season)) {
			return season
		}
	}
	if strings.EqualFold(s, "autumn") {
		return Fall
	}
	return Season(s)
}

// Rank 季节在固定顺序中的位置，未知季节排在最后
func (s Season) Rank() int {
	for i, season := range Seasons {
		if s == season {
			return i
		}
	}
	return len(Seasons)
}

// SeasonLess 季节排序：先按固定顺序，未知季节之间按字母顺序
func SeasonLess(a, b Season) bool {
	ra, rb := a.Rank(), b.Rank()
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// SortSeasons 对季节切片就地排序
func SortSeasons(seasons []Season) {
	sort.SliceStable(seasons, func(i, j int) bool { return SeasonLess(seasons[i], seasons[j]) })
}

// DailyRecord 一天的租赁汇总
type DailyRecord struct {
	Date       time.Time
	Year       int
	Season     Season
	Casual     int
	Registered int
	Total      int
}

// HourlyRecord 某天某小时的租赁汇总
type HourlyRecord struct {
	Date  time.Time
	Hour  int
	Year  int
	Count int
}

// DailyRecords 把日数据DataFrame转成结构体切片，顺序与DataFrame一致
func DailyRecords(df dataframe.DataFrame) ([]DailyRecord, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Nrow() == 0 {
		return nil, nil
	}
	dates, err := dateColumn(df)
	if err != nil {
		return nil, err
	}
	years, err := intColumn(df, ColYear)
	if err != nil {
		return nil, err
	}
	casual, err := intColumn(df, ColCasual)
	if err != nil {
		return nil, err
	}
	registered, err := intColumn(df, ColRegistered)
	if err != nil {
		return nil, err
	}
	total, err := intColumn(df, ColTotal)
	if err != nil {
		return nil, err
	}
	seasons := df.Col(ColSeason).Records()

	records := make([]DailyRecord, df.Nrow())
	for i := range records {
		records[i] = DailyRecord{
			Date:       dates[i],
			Year:       years[i],
			Season:     ParseSeason(seasons[i]),
			Casual:     casual[i],
			Registered: registered[i],
			Total:      total[i],
		}
	}
	return records, nil
}

// HourlyRecords 把小时数据DataFrame转成结构体切片，顺序与DataFrame一致
func HourlyRecords(df dataframe.DataFrame) ([]HourlyRecord, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Nrow() == 0 {
		return nil, nil
	}
	dates, err := dateColumn(df)
	if err != nil {
		return nil, err
	}
	hours, err := intColumn(df, ColHour)
	if err != nil {
		return nil, err
	}
	years, err := intColumn(df, ColYear)
	if err != nil {
		return nil, err
	}
	counts, err := intColumn(df, ColCount)
	if err != nil {
		return nil, err
	}

	records := make([]HourlyRecord, df.Nrow())
	for i := range records {
		records[i] = HourlyRecord{Date: dates[i], Hour: hours[i], Year: years[i], Count: counts[i]}
	}
	return records, nil
}

func dateColumn(df dataframe.DataFrame) ([]time.Time, error) {
	raw := df.Col(ColDate).Records()
	dates := make([]time.Time, len(raw))
	for i, s := range raw {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("第%d行日期格式错误 %q: %w", i+1, s, err)
		}
		dates[i] = t
	}
	return dates, nil
}

func intColumn(df dataframe.DataFrame, name string) ([]int, error) {
	raw := df.Col(name).Records()
	values := make([]int, len(raw))
	for i, s := range raw {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("列%s第%d行不是整数 %q: %w", name, i+1, s, err)
		}
		values[i] = v
	}
	return values, nil
}
