package datapush

import (
	"BikeSharingDashboard/src/processor"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// 常量定义
const (
	RETRY_TIMES    = 5
	RETRY_INTERVAL = 2 * time.Second
)

// 钉钉机器人响应结构体
type DingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// markdownMessage 机器人markdown消息
type markdownMessage struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"markdown"`
}

// WebhookPusher 把快照摘要推送到群机器人webhook
type WebhookPusher struct {
	client *resty.Client
	url    string
}

func NewWebhookPusher(url string, retryTimes int) *WebhookPusher {
	if retryTimes <= 0 {
		retryTimes = RETRY_TIMES
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(retryTimes - 1)
	client.SetRetryWaitTime(RETRY_INTERVAL)
	client.SetRetryMaxWaitTime(4 * RETRY_INTERVAL)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		if r.StatusCode() >= 500 {
			return true
		}
		res, ok := r.Result().(*DingTalkResponse)
		return ok && res.ErrCode != 0
	})

	return &WebhookPusher{client: client, url: url}
}

// SetRetryWait 调整重试间隔
func (p *WebhookPusher) SetRetryWait(d time.Duration) {
	p.client.SetRetryWaitTime(d)
	p.client.SetRetryMaxWaitTime(d)
}

// Push 发送markdown消息，重试后仍失败返回错误
func (p *WebhookPusher) Push(ctx context.Context, title, text string) error {
	if p.url == "" {
		return fmt.Errorf("webhook地址未配置")
	}

	var msg markdownMessage
	msg.MsgType = "markdown"
	msg.Markdown.Title = title
	msg.Markdown.Text = text

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		SetResult(&DingTalkResponse{}).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook返回状态 %d", resp.StatusCode())
	}
	if res, ok := resp.Result().(*DingTalkResponse); ok && res.ErrCode != 0 {
		return fmt.Errorf("发送消息失败: %s", res.ErrMsg)
	}
	return nil
}

// Digest 生成快照摘要的markdown
func Digest(s *processor.Summaries) (title, text string) {
	title = fmt.Sprintf("单车租赁快照 %s", s.Range)

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", title)
	if s.Empty() {
		b.WriteString("区间内没有数据。\n")
		return title, b.String()
	}

	t := s.Totals()
	fmt.Fprintf(&b, "- 天数: %d\n- 散客: %d\n- 注册用户: %d\n- 合计: %d\n", s.DayRows, t.Casual, t.Registered, t.Total)

	b.WriteString("\n**按年份**\n\n")
	for _, y := range s.ByYear {
		fmt.Fprintf(&b, "- %d: 散客 %d / 注册 %d\n", y.Year, y.Casual, y.Registered)
	}

	if peak, ok := s.CalculateMetrics()["peak_hour"].(int); ok && peak >= 0 {
		fmt.Fprintf(&b, "\n高峰时段: %02d:00\n", peak)
	}

	b.WriteString("\n**按季节**\n\n")
	for _, st := range s.Seasonal {
		fmt.Fprintf(&b, "- %s %d: %d\n", st.Season, st.Year, st.Total)
	}
	fmt.Fprintf(&b, "\n> 生成时间 %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	return title, b.String()
}
