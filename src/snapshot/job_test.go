package snapshot

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/dashboard"
	"BikeSharingDashboard/src/storage"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron"
	"github.com/xuri/excelize/v2"
)

type fakePusher struct {
	title, text string
	err         error
}

func (f *fakePusher) Push(ctx context.Context, title, text string) error {
	f.title, f.text = title, text
	return f.err
}

type fakeSender struct {
	attachments []string
}

func (f *fakeSender) Send(subject, body string, attachments ...string) error {
	f.attachments = attachments
	return nil
}

func testStore(t *testing.T) (*config.Config, *dashboard.Store, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"day_clean.csv":  "dateday,year,season,casual,registered,count_cr\n2011-01-01,2011,Winter,1,2,3\n2012-07-01,2012,Summer,4,5,9\n",
		"hour_clean.csv": "dateday,year,hour,count_cr\n2011-01-01,2011,8,3\n2012-07-01,2012,17,9\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := &config.Config{DataDir: dir}
	cfg.Snapshot.OutputDir = filepath.Join(dir, "out")
	cfg.ApplyDefaults()
	dcfg := &config.DataConfig{}
	dcfg.ApplyDefaults()

	var buf bytes.Buffer
	s, err := dashboard.Open(cfg, dcfg, storage.NewWriterLogger(&buf))
	if err != nil {
		t.Fatal(err)
	}
	return cfg, dashboard.NewStore(s), &buf
}

func TestJobRun(t *testing.T) {
	cfg, store, logs := testStore(t)
	pusher := &fakePusher{}
	sender := &fakeSender{}

	j := NewJob(cfg, store, storage.NewWriterLogger(logs)).WithPNG(true)
	j.pusher, j.mailer = pusher, sender
	j.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	path, err := j.Run()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "snapshot-20240506-070809.xlsx" {
		t.Errorf("path = %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 3 || sheets[0] != "casual_registered" {
		t.Errorf("sheets = %v", sheets)
	}
	rows, _ := f.GetRows("seasonal_totals")
	if len(rows) != 3 || rows[1][0] != "Summer" {
		t.Errorf("seasonal rows = %v", rows)
	}

	if len(sender.attachments) != 4 {
		t.Errorf("attachments = %v", sender.attachments)
	}
	if !strings.Contains(pusher.text, "合计: 12") {
		t.Errorf("digest = %s", pusher.text)
	}
}

func TestJobRunPushFailureIsLogged(t *testing.T) {
	cfg, store, logs := testStore(t)
	j := NewJob(cfg, store, storage.NewWriterLogger(logs))
	j.pusher = &fakePusher{err: errors.New("boom")}

	if _, err := j.Run(); err != nil {
		t.Fatalf("push failure should not fail the job: %v", err)
	}
	if !strings.Contains(logs.String(), "webhook推送失败: boom") {
		t.Errorf("logs = %s", logs.String())
	}
}

func TestSchedule(t *testing.T) {
	cfg, store, logs := testStore(t)
	j := NewJob(cfg, store, storage.NewWriterLogger(logs))
	c := cron.New()

	if err := Schedule(c, 0, j); err != nil {
		t.Fatal(err)
	}
	if len(c.Entries()) != 0 {
		t.Error("zero interval should not schedule")
	}
	if err := Schedule(c, time.Hour, j); err != nil {
		t.Fatal(err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d", len(c.Entries()))
	}
}
