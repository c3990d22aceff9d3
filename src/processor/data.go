// data.go
package processor

import (
	"BikeSharingDashboard/src/datasource/file"
	"BikeSharingDashboard/src/utils"
	"time"
)

// Summaries 一次区间选择得到的三张汇总表，每次重新计算都生成新的实例
type Summaries struct {
	Range       DateRange       `json:"range"`
	ByYear      []YearUsage     `json:"by_year"`
	Hourly      []HourlyUsage   `json:"hourly"`
	Seasonal    []SeasonalUsage `json:"seasonal"`
	DayRows     int             `json:"day_rows"`
	HourRows    int             `json:"hour_rows"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Totals 区间内的总体数量
type Totals struct {
	Casual     int `json:"casual"`
	Registered int `json:"registered"`
	Total      int `json:"total"`
}

// DataProcessor 持有加载后的只读数据集，对任意区间执行 过滤 -> 汇总
type DataProcessor struct {
	ds *file.Dataset
}

func NewDataProcessor(ds *file.Dataset) *DataProcessor {
	return &DataProcessor{ds: ds}
}

// DefaultRange 默认区间为小时数据的日期范围
func (p *DataProcessor) DefaultRange() (DateRange, error) {
	return Bounds(p.ds.Hour)
}

// Run 过滤两份数据后计算三张汇总表
func (p *DataProcessor) Run(r DateRange) *Summaries {
	return Run(p.ds, r)
}

// Run 无状态版本，数据集与区间都显式传入
func Run(ds *file.Dataset, r DateRange) *Summaries {
	day := FilterRange(ds.Day, r)
	hour := FilterRange(ds.Hour, r)

	return &Summaries{
		Range:       r,
		ByYear:      CasualVsRegisteredByYear(day),
		Hourly:      HourlyPatternByHourYear(hour),
		Seasonal:    SeasonalTotalsBySeasonYear(day),
		DayRows:     day.Nrow(),
		HourRows:    hour.Nrow(),
		GeneratedAt: time.Now(),
	}
}

// Totals 汇总全部年份的散客、注册用户与合计
func (s *Summaries) Totals() Totals {
	var t Totals
	for _, y := range s.ByYear {
		t.Casual += y.Casual
		t.Registered += y.Registered
	}
	for _, st := range s.Seasonal {
		t.Total += st.Total
	}
	return t
}

// Empty 区间内没有任何数据
func (s *Summaries) Empty() bool {
	return s.DayRows == 0 && s.HourRows == 0
}

// CalculateMetrics 推送摘要使用的指标
func (s *Summaries) CalculateMetrics() map[string]interface{} {
	t := s.Totals()
	metrics := map[string]interface{}{
		"range":       s.Range.String(),
		"days":        s.DayRows,
		"casual":      t.Casual,
		"registered":  t.Registered,
		"total":       t.Total,
		"last_update": s.GeneratedAt.Format("2006-01-02 15:04:05"),
	}
	if t.Casual+t.Registered > 0 {
		metrics["registered_share"] = float64(t.Registered) / float64(t.Casual+t.Registered)
	}

	// 各年合计最高的小时
	byHour := map[int]int{}
	peak, peakCount := -1, -1
	for _, h := range s.Hourly {
		byHour[h.Hour] += h.Count
		if byHour[h.Hour] > peakCount {
			peak, peakCount = h.Hour, byHour[h.Hour]
		}
	}
	metrics["peak_hour"] = peak
	return metrics
}

// Sheets 三张汇总表按工作表导出
func (s *Summaries) Sheets() []utils.NamedFrame {
	return []utils.NamedFrame{
		{Sheet: "casual_registered", Frame: YearFrame(s.ByYear)},
		{Sheet: "hourly_pattern", Frame: HourlyFrame(s.Hourly)},
		{Sheet: "seasonal_totals", Frame: SeasonalFrame(s.Seasonal)},
	}
}
