// page.go
package dashboard

import (
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/render"
	"BikeSharingDashboard/src/schema"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// ErrReversedRange 开始日期晚于结束日期，由页面层拒绝
var ErrReversedRange = errors.New("start date is after end date")

// ResolveRange 解析页面提交的区间：缺省取bounds，颠倒时报错，超出范围时截到bounds内
func ResolveRange(start, end string, bounds processor.DateRange) (processor.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" {
		start = bounds.Start.Format(schema.DateLayout)
	}
	if end == "" {
		end = bounds.End.Format(schema.DateLayout)
	}

	r, err := processor.NewDateRange(start, end)
	if err != nil {
		return processor.DateRange{}, err
	}
	if r.Reversed() {
		return processor.DateRange{}, fmt.Errorf("%w: %s", ErrReversedRange, r)
	}
	return r.Clamp(bounds), nil
}

var funcs = template.FuncMap{
	"date": func(r processor.DateRange, end bool) string {
		if end {
			return r.End.Format(schema.DateLayout)
		}
		return r.Start.Format(schema.DateLayout)
	},
	"echarts": func() string { return render.EChartsCDN },
}

var pageTmpl = template.Must(template.New("page").Funcs(funcs).Parse(pageHTML))

// WritePage 渲染完整页面
func WritePage(w io.Writer, v *View) error {
	if err := pageTmpl.Execute(w, v); err != nil {
		return fmt.Errorf("渲染页面失败: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{echarts}}"></script>
<style>
body{font-family:sans-serif;max-width:1100px;margin:0 auto;padding:16px;color:#222}
form{margin:16px 0;padding:12px;background:#f5f5f5;border-radius:6px}
section{margin:32px 0}
.insight{background:#fafafa;border-left:4px solid #3366cc;padding:8px 16px}
.totals span{margin-right:24px}
footer{color:#888;font-size:12px}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form method="get" action="/">
<label>Start <input type="date" name="start" value="{{date .Range false}}" min="{{date .Bounds false}}" max="{{date .Bounds true}}"></label>
<label>End <input type="date" name="end" value="{{date .Range true}}" min="{{date .Bounds false}}" max="{{date .Bounds true}}"></label>
<button type="submit">Apply</button>
<a href="/export.xlsx?start={{date .Range false}}&end={{date .Range true}}">Download xlsx</a>
</form>
<div class="totals">
<span>Casual: {{.Totals.Casual}}</span>
<span>Registered: {{.Totals.Registered}}</span>
<span>Total: {{.Totals.Total}}</span>
</div>
{{range .Sections}}
<section>
<h2>{{.Heading}}</h2>
{{.Chart.HTML}}
{{if .Insight}}<div class="insight"><h3>Insight</h3>{{.Insight}}</div>{{end}}
</section>
{{end}}
{{if .Summary}}
<section>
<h2>{{.SummaryHeading}}</h2>
<div class="insight">{{.Summary}}</div>
</section>
{{end}}
<footer>Data loaded {{.LoadedAt.Format "2006-01-02 15:04:05"}}</footer>
</body>
</html>
`
