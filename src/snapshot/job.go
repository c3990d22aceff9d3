// job.go
package snapshot

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/dashboard"
	"BikeSharingDashboard/src/datapush"
	"BikeSharingDashboard/src/processor"
	"BikeSharingDashboard/src/render"
	"BikeSharingDashboard/src/storage"
	"BikeSharingDashboard/src/utils"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron"
)

// Pusher 快照生成后的推送渠道
type Pusher interface {
	Push(ctx context.Context, title, text string) error
}

// Sender 邮件发送
type Sender interface {
	Send(subject, body string, attachments ...string) error
}

// Job 定时导出全区间汇总，并按配置发邮件、推送webhook
type Job struct {
	store     *dashboard.Store
	outputDir string
	withPNG   bool
	logger    *storage.Logger
	mailer    Sender
	pusher    Pusher
	now       func() time.Time
}

func NewJob(cfg *config.Config, store *dashboard.Store, logger *storage.Logger) *Job {
	j := &Job{
		store:     store,
		outputDir: cfg.Snapshot.OutputDir,
		logger:    logger,
		now:       time.Now,
	}
	if cfg.SendEmail.Enabled {
		j.mailer = datapush.NewMailer(cfg)
	}
	if cfg.Webhook.Enabled {
		j.pusher = datapush.NewWebhookPusher(cfg.Webhook.URL, cfg.Webhook.RetryTimes)
	}
	return j
}

// WithPNG 同时导出三张图表的PNG
func (j *Job) WithPNG(on bool) *Job {
	j.withPNG = on
	return j
}

// Run 执行一次快照，返回生成的xlsx路径；推送失败只记录日志
func (j *Job) Run() (string, error) {
	session := j.store.Get()
	if session == nil {
		return "", fmt.Errorf("会话未初始化")
	}
	sums := session.Summaries(session.Bounds())

	path, err := Export(sums, j.outputDir, j.now())
	if err != nil {
		j.logger.Error(fmt.Sprintf("快照导出失败: %v", err))
		return "", err
	}
	j.logger.Info(fmt.Sprintf("快照已导出: %s", path))

	attachments := []string{path}
	if j.withPNG {
		pngDir := strings.TrimSuffix(path, filepath.Ext(path))
		files, err := render.SavePNGs(pngDir, sums)
		if err != nil {
			j.logger.Warning(fmt.Sprintf("导出图表失败: %v", err))
		}
		attachments = append(attachments, files...)
	}

	title, text := datapush.Digest(sums)
	if j.mailer != nil {
		if err := j.mailer.Send(title, text, attachments...); err != nil {
			j.logger.Error(fmt.Sprintf("快照邮件发送失败: %v", err))
		} else {
			j.logger.Info("快照邮件发送成功")
		}
	}
	if j.pusher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := j.pusher.Push(ctx, title, text); err != nil {
			j.logger.Error(fmt.Sprintf("webhook推送失败: %v", err))
		} else {
			j.logger.Info("webhook推送成功")
		}
	}
	return path, nil
}

// Export 把汇总表写成 snapshot-<时间>.xlsx
func Export(sums *processor.Summaries, dir string, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建目录失败: %v", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("snapshot-%s.xlsx", at.Format("20060102-150405")))
	if err := utils.SaveToExcel(sums.Sheets(), path); err != nil {
		return "", err
	}
	return path, nil
}

// Schedule 按间隔注册定时任务，间隔为0时不注册
func Schedule(c *cron.Cron, interval time.Duration, j *Job) error {
	if interval <= 0 {
		return nil
	}
	return c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if _, err := j.Run(); err != nil {
			j.logger.Error(fmt.Sprintf("定时快照失败: %v", err))
		}
	})
}
