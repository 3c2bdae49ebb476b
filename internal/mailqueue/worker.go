package mailqueue

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type Sender interface {
	DialAndSend(messages ...*mail.Msg) error
}

// Acknowledger 是 amqp.Delivery 中用到的部分
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	renderer *Renderer
	sender   Sender
	logger   *slog.Logger
}

func NewWorker(renderer *Renderer, sender Sender, logger *slog.Logger) *Worker {
	return &Worker{
		renderer: renderer,
		sender:   sender,
		logger:   logger,
	}
}

// Handle 处理一条消息：无法解析或渲染的消息直接丢弃，发送失败的消息重新入队
func (w *Worker) Handle(delivery Acknowledger, body []byte) {
	mailMessage := domain.MailMessage{}
	if err := json.Unmarshal(body, &mailMessage); err != nil {
		w.logger.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
		_ = delivery.Nack(false, false)
		return
	}

	msg, err := w.renderer.Render(mailMessage)
	if err != nil {
		if errors.Is(err, ErrUnsupportedMailType) {
			w.logger.Error("不支持的邮件类型", slog.String("type", mailMessage.Type))
		} else {
			w.logger.Error("邮件构建失败", slog.String("type", mailMessage.Type), slog.String("error", err.Error()))
		}
		_ = delivery.Nack(false, false)
		return
	}

	if err := w.sender.DialAndSend(msg); err != nil {
		w.logger.Error("邮件发送失败", slog.String("error", err.Error()))
		_ = delivery.Nack(false, true) // 将消息重新入队
		return
	}

	w.logger.Info("邮件已发送", slog.String("type", mailMessage.Type), slog.String("to", mailMessage.To))
	_ = delivery.Ack(false)
}
