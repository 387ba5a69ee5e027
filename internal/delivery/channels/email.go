package channels

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// RenderedTemplate là nội dung thông báo đã được render
type RenderedTemplate struct {
	Subject string
	Content string
	CTAs    []RenderedCTA
}

// RenderedCTA là một nút bấm trong email
type RenderedCTA struct {
	Label  string
	Action string // URL đích
	Style  string // Chỉ để styling
}

// SMTPConfig là cấu hình máy chủ gửi mail
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailSender gửi email qua SMTP
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailSender tạo EmailSender. Trả về nil khi chưa cấu hình SMTP host.
func NewEmailSender(cfg SMTPConfig) *EmailSender {
	if cfg.Host == "" {
		return nil
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

// RenderHTML ghép nội dung và các CTA thành HTML
func RenderHTML(template *RenderedTemplate) string {
	ctaHTML := ""
	for _, cta := range template.CTAs {
		styleClass := "btn-primary"
		if cta.Style != "" {
			styleClass = "btn-" + cta.Style
		}
		ctaHTML += fmt.Sprintf(`<a href="%s" class="btn %s" style="display:inline-block;padding:10px 20px;margin:5px;text-decoration:none;border-radius:5px;background-color:#007bff;color:#fff;">%s</a>`,
			html.EscapeString(cta.Action), styleClass, html.EscapeString(cta.Label))
	}

	htmlContent := template.Content
	if ctaHTML != "" {
		htmlContent += "<div style='margin-top:20px;'>" + ctaHTML + "</div>"
	}
	return htmlContent
}

// Send gửi email tới recipient
func (s *EmailSender) Send(ctx context.Context, recipient string, template *RenderedTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", template.Subject)
	msg.SetBody("text/html", RenderHTML(template))
	return s.dialer.DialAndSend(msg)
}
