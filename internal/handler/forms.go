package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/utils"
)

func (h *Handler) SubmitContactMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName  string `json:"fullName" validate:"required,max=100"`
		Email     string `json:"email" validate:"required,email"`
		Phone     string `json:"phone" validate:"omitempty,e164"`
		ProjectID *int64 `json:"projectID" validate:"omitempty,gt=0"`
		Message   string `json:"message" validate:"required,max=5000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	message := &domain.ContactMessage{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		ProjectID: req.ProjectID,
		Message:   req.Message,
	}

	if err := h.repository.CreateContactMessage(message); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "contact_messages_project_id_fkey":
			h.errorResponse(w, r, "楼盘不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 留言已经保存，通知邮件失败不影响结果
	if err := h.mailer.Publish(domain.MailMessage{
		Type: domain.MailTypeContactMessage,
		To:   h.config.Email.Notification,
		Data: domain.ContactMessageMailData{
			FullName: message.FullName,
			Email:    message.Email,
			Phone:    message.Phone,
			Message:  message.Message,
		},
	}); err != nil {
		slog.Warn("留言通知邮件投递失败", "contact_message_id", message.ID, "request_id", requestIDFrom(r), "error", err)
	}

	h.successResponse(w, r, "留言已提交，我们会尽快联系您", nil)
}

func (h *Handler) GetContactMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.repository.GetAllContactMessages()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取留言列表成功", messages)
}

func (h *Handler) DeleteContactMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		h.errorResponse(w, r, "留言ID无效")
		return
	}

	if err := h.repository.DeleteContactMessage(id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "留言不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除留言成功", nil)
}

func (h *Handler) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	token, err := utils.GenerateUnsubscribeToken()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	subscriber := &domain.NewsletterSubscriber{
		Email:            strings.ToLower(req.Email),
		UnsubscribeToken: token,
	}

	if err := h.repository.CreateNewsletterSubscriber(subscriber); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "newsletter_subscribers_email_key":
			h.errorResponse(w, r, "该邮箱已订阅")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.mailer.Publish(domain.MailMessage{
		Type: domain.MailTypeNewsletterSubscription,
		To:   subscriber.Email,
		Data: domain.NewsletterMailData{
			UnsubscribeURL: strings.TrimRight(h.config.PublicURL, "/") + "/newsletter/unsubscribe/" + token,
		},
	}); err != nil {
		slog.Warn("订阅确认邮件投递失败", "subscriber_id", subscriber.ID, "request_id", requestIDFrom(r), "error", err)
	}

	// 退订令牌只通过邮件下发
	h.successResponse(w, r, "订阅成功", map[string]any{
		"email":    subscriber.Email,
		"isActive": subscriber.IsActive,
	})
}

func (h *Handler) UnsubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.repository.UnsubscribeNewsletter(token); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "退订链接无效或已退订")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "退订成功", nil)
}

func (h *Handler) GetNewsletterSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.repository.GetAllNewsletterSubscribers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取订阅列表成功", subscribers)
}

func (h *Handler) DeleteNewsletterSubscriber(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		h.errorResponse(w, r, "订阅ID无效")
		return
	}

	if err := h.repository.DeleteNewsletterSubscriber(id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "订阅不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除订阅成功", nil)
}
