// session.go
package dashboard

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/datasource/file"
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/render"
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Session 一次会话：加载后的只读数据集、默认区间与页面文案
// 选择的区间不保存在会话里，每次显式传给Refresh
type Session struct {
	ds     *file.Dataset
	proc   *processor.DataProcessor
	bounds processor.DateRange

	title     string
	headings  []string
	insights  []template.HTML
	summary   template.HTML
	summaryHd string
}

// SectionView 页面中的一个图表区块
type SectionView struct {
	Heading string
	Chart   render.ChartSnippet
	Insight template.HTML
}

// View 一次区间选择对应的完整页面数据，每次重新生成
type View struct {
	Title          string
	Range          processor.DateRange
	Bounds         processor.DateRange
	Sections       []SectionView
	SummaryHeading string
	Summary        template.HTML
	Summaries      *processor.Summaries
	Totals         processor.Totals
	LoadedAt       time.Time
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown 文案markdown转HTML
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// NewSession 默认区间取小时数据的最早到最晚日期
func NewSession(ds *file.Dataset, narrative config.Narrative) (*Session, error) {
	proc := processor.NewDataProcessor(ds)
	bounds, err := proc.DefaultRange()
	if err != nil {
		return nil, fmt.Errorf("确定默认区间失败: %w", err)
	}

	s := &Session{
		ds:        ds,
		proc:      proc,
		bounds:    bounds,
		title:     narrative.Title,
		summaryHd: narrative.Summary.Heading,
	}
	for _, sec := range narrative.Sections {
		insight, err := Markdown(sec.Insight)
		if err != nil {
			return nil, err
		}
		s.headings = append(s.headings, sec.Heading)
		s.insights = append(s.insights, insight)
	}
	if s.summary, err = Markdown(narrative.Summary.Insight); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Bounds() processor.DateRange { return s.bounds }

func (s *Session) Dataset() *file.Dataset { return s.ds }

// Summaries 只做 过滤 -> 汇总，API与导出使用
func (s *Session) Summaries(r processor.DateRange) *processor.Summaries {
	return s.proc.Run(r)
}

// Refresh 区间变化时调用：过滤 -> 汇总 -> 渲染，返回新的View
func (s *Session) Refresh(r processor.DateRange) (*View, error) {
	sums := s.proc.Run(r)
	snippets, err := render.Charts(sums)
	if err != nil {
		return nil, err
	}

	v := &View{
		Title:          s.title,
		Range:          r,
		Bounds:         s.bounds,
		SummaryHeading: s.summaryHd,
		Summary:        s.summary,
		Summaries:      sums,
		Totals:         sums.Totals(),
		LoadedAt:       s.ds.LoadedAt,
	}
	for i, sn := range snippets {
		sec := SectionView{Heading: sn.Title, Chart: sn}
		if i < len(s.headings) {
			sec.Heading = s.headings[i]
			sec.Insight = s.insights[i]
		}
		v.Sections = append(v.Sections, sec)
	}
	return v, nil
}
