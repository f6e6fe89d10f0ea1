package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/go-mail/mail"

	"github.com/hitoshi/dropzone/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var welcomeTemplate = template.Must(template.ParseFS(templatesFS, "templates/welcome.html"))

// Sender はメッセージ送信のインターフェース。*mail.Dialerが実装する。
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// MailerConfig はSMTP接続設定。
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// Mailer はSMTPでウェルカムメールを送信するWelcomeNotifier。
type Mailer struct {
	sender Sender
	from   string
}

// NewMailer はSMTPダイアラーを使うMailerを生成する。
func NewMailer(cfg MailerConfig) *Mailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	return NewMailerWithSender(d, cfg.From)
}

// NewMailerWithSender は任意のSenderを使うMailerを生成する。
func NewMailerWithSender(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

// NotifyWelcome はHTMLのウェルカムメールを送信する。
// メールアドレス未登録のユーザーには何も送らない。
func (m *Mailer) NotifyWelcome(ctx context.Context, user *model.User) error {
	if user.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.buildWelcome(user)
	if err != nil {
		return err
	}

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send welcome email to user %s: %w", user.ID, err)
	}
	return nil
}

func (m *Mailer) buildWelcome(user *model.User) (*mail.Message, error) {
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, struct{ Username string }{user.Username}); err != nil {
		return nil, fmt.Errorf("failed to render welcome email: %w", err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", WelcomeSubject)
	msg.SetBody("text/html", body.String())
	return msg, nil
}

var _ WelcomeNotifier = (*Mailer)(nil)
