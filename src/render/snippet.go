package render

import (
	"BikeSharingDashboard/src/processor"
	"encoding/json"
	"fmt"
	"html/template"
)

// EChartsCDN 页面引用的echarts脚本
const EChartsCDN = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"

// ChartSnippet 可以嵌入页面的图表片段
// Div 只包含一个根节点 <div id="..."></div>
// Script 在该节点上初始化图表
// HTML 为 Div + Script，直接放进模板
type ChartSnippet struct {
	ID     string
	Title  string
	Div    template.HTML
	Script template.HTML
	HTML   template.HTML
}

// echartsChart go-echarts的Bar、Line都满足
type echartsChart interface {
	Validate()
	JSON() map[string]interface{}
}

// Snippet 把图表配置序列化成页面片段
func Snippet(id, title string, c echartsChart) (ChartSnippet, error) {
	c.Validate()
	optJSON, err := json.Marshal(c.JSON())
	if err != nil {
		return ChartSnippet{}, fmt.Errorf("序列化图表%s失败: %w", id, err)
	}

	div := fmt.Sprintf(`<div id="%s" class="chart" style="width:100%%;height:420px;"></div>`, id)
	script := fmt.Sprintf(`<script>(function(){var el=document.getElementById('%s');if(!el)return;var c=echarts.init(el);var option=%s;c.setOption(option);window.addEventListener('resize',function(){c.resize();});})();</script>`, id, string(optJSON))

	return ChartSnippet{
		ID:     id,
		Title:  title,
		Div:    template.HTML(div),
		Script: template.HTML(script),
		HTML:   template.HTML(div + "\n" + script),
	}, nil
}

// Charts 三张汇总表对应的三个图表片段，顺序与Names一致
func Charts(s *processor.Summaries) ([]ChartSnippet, error) {
	builders := []struct {
		id    string
		chart echartsChart
	}{
		{CasualRegistered, RenderCasualVsRegistered(s.ByYear)},
		{HourlyPattern, RenderHourlyPattern(s.Hourly)},
		{SeasonalTotals, RenderSeasonalTotals(s.Seasonal)},
	}

	snippets := make([]ChartSnippet, 0, len(builders))
	for _, b := range builders {
		sn, err := Snippet(b.id, Title(b.id), b.chart)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, sn)
	}
	return snippets, nil
}
