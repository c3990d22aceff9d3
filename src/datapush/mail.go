package datapush

import (
	"BikeSharingDashboard/src/config"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"
)

type sendFunc func(e *email.Email, addr string, a smtp.Auth, t *tls.Config) error

// Mailer 通过SMTP(显式TLS)发送快照
type Mailer struct {
	server   string
	username string
	password string
	to       []string
	subject  string
	send     sendFunc
}

func NewMailer(c *config.Config) *Mailer {
	// 确保服务器地址包含端口
	smtpAddr := c.SendEmail.Server
	if smtpAddr != "" && !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465" // 默认 SSL 端口
	}
	return &Mailer{
		server:   smtpAddr,
		username: c.SendEmail.Username,
		password: c.SendEmail.Password,
		to:       c.SendEmail.To,
		subject:  c.SendEmail.Subject,
		send: func(e *email.Email, addr string, a smtp.Auth, t *tls.Config) error {
			return e.SendWithTLS(addr, a, t)
		},
	}
}

// BuildMessage 组装邮件，附件不存在时返回错误
func (m *Mailer) BuildMessage(subject, body string, attachments ...string) (*email.Email, error) {
	if len(m.to) == 0 {
		return nil, fmt.Errorf("没有配置收件人")
	}
	if subject == "" {
		subject = m.subject
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("Bike Dashboard <%s>", m.username)
	e.To = m.to
	e.Subject = subject
	e.Text = []byte(body)

	// 添加附件
	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("附件文件不存在: %s", path)
		}
		if _, err := e.AttachFile(path); err != nil {
			return nil, fmt.Errorf("附件添加失败: %w", err)
		}
	}
	return e, nil
}

// Send 发送邮件(显式 TLS)
func (m *Mailer) Send(subject, body string, attachments ...string) error {
	if m.server == "" {
		return fmt.Errorf("SMTP服务器未配置")
	}
	e, err := m.BuildMessage(subject, body, attachments...)
	if err != nil {
		return err
	}

	host := strings.Split(m.server, ":")[0]
	if err := m.send(e, m.server, smtp.PlainAuth("", m.username, m.password, host), &tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("邮件发送失败: %w (Server: %s)", err, m.server)
	}
	return nil
}
