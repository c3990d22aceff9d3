package datapush

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/schema"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jordan-wright/email"
)

func TestWebhookPushRetries(t *testing.T) {
	var calls int32
	msgs := make(chan markdownMessage, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var m markdownMessage
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("decode: %v", err)
		}
		msgs <- m
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer srv.Close()

	p := NewWebhookPusher(srv.URL, 3)
	p.SetRetryWait(time.Millisecond)
	if err := p.Push(context.Background(), "title", "### body"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d", n)
	}
	got := <-msgs
	if got.MsgType != "markdown" || got.Markdown.Title != "title" || got.Markdown.Text != "### body" {
		t.Errorf("message = %+v", got)
	}
}

func TestWebhookPushErrCode(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":310000,"errmsg":"keywords not in content"}`))
	}))
	defer srv.Close()

	p := NewWebhookPusher(srv.URL, 2)
	p.SetRetryWait(time.Millisecond)
	err := p.Push(context.Background(), "t", "x")
	if err == nil || !strings.Contains(err.Error(), "keywords not in content") {
		t.Fatalf("err = %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d", n)
	}

	if err := NewWebhookPusher("", 1).Push(context.Background(), "t", "x"); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestDigest(t *testing.T) {
	r, _ := processor.NewDateRange("2011-01-01", "2012-12-31")
	s := &processor.Summaries{
		Range:    r,
		ByYear:   []processor.YearUsage{{Year: 2011, Casual: 100, Registered: 400}},
		Hourly:   []processor.HourlyUsage{{Hour: 17, Year: 2011, Count: 50}, {Hour: 8, Year: 2011, Count: 20}},
		Seasonal: []processor.SeasonalUsage{{Season: schema.Spring, Year: 2011, Total: 500}},
		DayRows:  2,
		HourRows: 2,
	}
	title, text := Digest(s)
	if !strings.Contains(title, "2011-01-01 ~ 2012-12-31") {
		t.Errorf("title = %q", title)
	}
	for _, want := range []string{"合计: 500", "2011: 散客 100 / 注册 400", "高峰时段: 17:00", "Spring 2011: 500"} {
		if !strings.Contains(text, want) {
			t.Errorf("digest missing %q:\n%s", want, text)
		}
	}

	_, text = Digest(&processor.Summaries{Range: r})
	if !strings.Contains(text, "没有数据") {
		t.Errorf("empty digest = %q", text)
	}
}

func TestMailerSend(t *testing.T) {
	cfg := &config.Config{}
	cfg.SendEmail.Server = "smtp.example.com"
	cfg.SendEmail.Username = "dash@example.com"
	cfg.SendEmail.To = []string{"ops@example.com"}
	cfg.ApplyDefaults()

	attachment := filepath.Join(t.TempDir(), "snapshot.xlsx")
	if err := os.WriteFile(attachment, []byte("xlsx"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewMailer(cfg)
	var sentTo string
	var sent *email.Email
	m.send = func(e *email.Email, addr string, a smtp.Auth, tc *tls.Config) error {
		sentTo, sent = addr, e
		if tc.ServerName != "smtp.example.com" {
			t.Errorf("ServerName = %s", tc.ServerName)
		}
		return nil
	}

	if err := m.Send("", "body", attachment); err != nil {
		t.Fatal(err)
	}
	if sentTo != "smtp.example.com:465" {
		t.Errorf("addr = %s", sentTo)
	}
	if sent.Subject != "Bike sharing snapshot" || len(sent.Attachments) != 1 || sent.Attachments[0].Filename != "snapshot.xlsx" {
		t.Errorf("message = %+v", sent)
	}

	if err := m.Send("s", "body", filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Error("expected error for missing attachment")
	}
}
