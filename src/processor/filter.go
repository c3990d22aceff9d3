// filter.go
package processor

import (
	"BikeSharingDashboard/src/schema"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DateRange 闭区间 [Start, End]，只比较日期部分
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange 按 2006-01-02 解析起止日期
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(schema.DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("开始日期格式错误 %q: %w", start, err)
	}
	e, err := time.Parse(schema.DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("结束日期格式错误 %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// Reversed 开始日期晚于结束日期
func (r DateRange) Reversed() bool {
	return r.startKey() > r.endKey()
}

// Contains 日期是否落在区间内(含两端)
func (r DateRange) Contains(t time.Time) bool {
	k := t.Format(schema.DateLayout)
	return r.startKey() <= k && k <= r.endKey()
}

// Clamp 把区间限制在bounds之内，完全落在bounds之外时结果为颠倒的空区间
func (r DateRange) Clamp(bounds DateRange) DateRange {
	out := r
	if out.startKey() < bounds.startKey() {
		out.Start = bounds.Start
	}
	if out.endKey() > bounds.endKey() {
		out.End = bounds.End
	}
	return out
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s ~ %s", r.startKey(), r.endKey())
}

func (r DateRange) startKey() string { return r.Start.Format(schema.DateLayout) }
func (r DateRange) endKey() string   { return r.End.Format(schema.DateLayout) }

// FilterRange 返回日期落在区间内的行，保持原有顺序
// 区间颠倒时返回空表，不报错
func FilterRange(df dataframe.DataFrame, r DateRange) dataframe.DataFrame {
	if r.Reversed() || df.Nrow() == 0 {
		return df.Subset([]int{})
	}

	// 日期列已统一成 2006-01-02 字符串，字符串比较即时间先后比较
	return df.FilterAggregation(
		dataframe.And,
		dataframe.F{Colname: schema.ColDate, Comparator: series.GreaterEq, Comparando: r.startKey()},
		dataframe.F{Colname: schema.ColDate, Comparator: series.LessEq, Comparando: r.endKey()},
	)
}

// Bounds 数据集日期列的最小值与最大值
func Bounds(df dataframe.DataFrame) (DateRange, error) {
	if df.Nrow() == 0 {
		return DateRange{}, fmt.Errorf("数据为空，无法确定日期范围")
	}

	dates := df.Col(schema.ColDate).Records()
	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return NewDateRange(lo, hi)
}
