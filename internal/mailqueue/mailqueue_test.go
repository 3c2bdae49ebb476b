package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

const templateDir = "../../templates"

type fakeChannel struct {
	key string
	msg amqp.Publishing
	err error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	c.key = key
	c.msg = msg
	return c.err
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "email_queue", time.Second)

	err := p.Publish(domain.MailMessage{
		Type: domain.MailTypeAppointmentScheduled,
		To:   "buyer@example.com",
		Data: domain.AppointmentMailData{FullName: "张三", Date: "2030-06-03", StartTime: "10:00", EndTime: "11:00"},
	})
	require.NoError(t, err)

	assert.Equal(t, "email_queue", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "appointment_scheduled", decoded["type"])
	assert.Equal(t, "10:00", decoded["data"].(map[string]any)["startTime"])
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := NewPublisher(ch, "email_queue", time.Second)

	assert.Error(t, p.Publish(domain.MailMessage{Type: domain.MailTypeContactMessage, To: "a@example.com"}))
}

// 所有邮件类型都必须有可以解析的模板
func TestRenderer_AllTemplates(t *testing.T) {
	r := NewRenderer("noreply@example.com", templateDir)

	for mailType := range mailTemplates {
		msg, err := r.Render(domain.MailMessage{
			Type: mailType,
			To:   "someone@example.com",
			Data: map[string]any{"fullName": "李四"},
		})
		require.NoError(t, err, mailType)

		// go-mail 按 RFC 2047 编码保存主题
		header := msg.GetGenHeader(mail.HeaderSubject)
		require.Len(t, header, 1, mailType)
		subject, err := new(mime.WordDecoder).DecodeHeader(header[0])
		require.NoError(t, err, mailType)
		assert.Equal(t, subjectPrefix+mailTemplates[mailType].subject, subject, mailType)
	}
}

func TestRenderer_Errors(t *testing.T) {
	r := NewRenderer("noreply@example.com", templateDir)

	_, err := r.Render(domain.MailMessage{Type: "unknown", To: "someone@example.com"})
	assert.ErrorIs(t, err, ErrUnsupportedMailType)

	_, err = r.Render(domain.MailMessage{Type: domain.MailTypeResetPassword, To: "not-an-address"})
	assert.Error(t, err)

	missing := NewRenderer("noreply@example.com", t.TempDir())
	_, err = missing.Render(domain.MailMessage{Type: domain.MailTypeResetPassword, To: "someone@example.com"})
	assert.Error(t, err)
}

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (s *fakeSender) DialAndSend(messages ...*mail.Msg) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

type fakeDelivery struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (d *fakeDelivery) Ack(bool) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(_ bool, requeue bool) error {
	d.nacked = true
	d.requeued = requeue
	return nil
}

func newTestWorker(sender Sender) *Worker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(NewRenderer("noreply@example.com", templateDir), sender, logger)
}

func TestWorker_Handle(t *testing.T) {
	body, err := json.Marshal(domain.MailMessage{
		Type: domain.MailTypeNewsletterSubscription,
		To:   "reader@example.com",
		Data: domain.NewsletterMailData{UnsubscribeURL: "http://localhost:3000/newsletter/unsubscribe/abc"},
	})
	require.NoError(t, err)

	t.Run("sent and acked", func(t *testing.T) {
		sender := &fakeSender{}
		d := &fakeDelivery{}
		newTestWorker(sender).Handle(d, body)

		assert.True(t, d.acked)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("send failure requeues", func(t *testing.T) {
		d := &fakeDelivery{}
		newTestWorker(&fakeSender{err: errors.New("smtp down")}).Handle(d, body)

		assert.True(t, d.nacked)
		assert.True(t, d.requeued)
	})

	t.Run("malformed body is dropped", func(t *testing.T) {
		d := &fakeDelivery{}
		newTestWorker(&fakeSender{}).Handle(d, []byte("{"))

		assert.True(t, d.nacked)
		assert.False(t, d.requeued)
	})

	t.Run("unknown type is dropped", func(t *testing.T) {
		d := &fakeDelivery{}
		newTestWorker(&fakeSender{}).Handle(d, []byte(`{"type":"fax","to":"a@example.com"}`))

		assert.True(t, d.nacked)
		assert.False(t, d.requeued)
	})
}
