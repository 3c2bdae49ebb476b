package mailqueue

import (
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

var ErrUnsupportedMailType = errors.New("不支持的邮件类型")

type mailTemplate struct {
	file    string
	subject string
}

var mailTemplates = map[string]mailTemplate{
	domain.MailTypeCreateUser:             {"new_account_email.html", "账户信息"},
	domain.MailTypeResetPassword:          {"reset_password_otp_email.html", "重置密码"},
	domain.MailTypeChangeEmail:            {"change_email_email.html", "修改邮箱"},
	domain.MailTypeAppointmentScheduled:   {"appointment_scheduled_email.html", "看房预约已提交"},
	domain.MailTypeAppointmentStatus:      {"appointment_status_email.html", "看房预约状态更新"},
	domain.MailTypeContactMessage:         {"contact_message_email.html", "新的咨询留言"},
	domain.MailTypeNewsletterSubscription: {"newsletter_subscription_email.html", "订阅成功"},
}

const subjectPrefix = "楼盘展示中心 - "

type Renderer struct {
	from        string
	templateDir string
}

func NewRenderer(from, templateDir string) *Renderer {
	return &Renderer{
		from:        from,
		templateDir: templateDir,
	}
}

// Render 根据邮件类型选择模板并构建邮件
func (r *Renderer) Render(m domain.MailMessage) (*mail.Msg, error) {
	mt, ok := mailTemplates[m.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMailType, m.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(r.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	tmpl, err := template.ParseFiles(filepath.Join(r.templateDir, mt.file))
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, m.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(subjectPrefix + mt.subject)

	return msg, nil
}
