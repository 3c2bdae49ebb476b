package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/repository"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/scheduling"
)

var bookingErrorMessages = map[error]string{
	scheduling.ErrNotAuthenticated:   "请先登录后再预约",
	scheduling.ErrInvalidSelection:   "请选择预约日期和时间",
	scheduling.ErrSlotAlreadyTaken:   "该时段已被预约，请选择其他时间",
	scheduling.ErrBackendUnavailable: "预约失败，请稍后重试",
}

var transitionErrorMessages = map[error]string{
	scheduling.ErrAppointmentNotFound:     "预约不存在",
	scheduling.ErrInvalidStatusTransition: "无法变更为该状态",
	scheduling.ErrStatusChanged:           "预约状态已被修改，请刷新后重试",
}

var availabilityErrorMessages = map[error]string{
	scheduling.ErrInvalidTime:        "时间格式必须为 HH:MM",
	scheduling.ErrInvalidTimeRange:   "开放日的开始时间必须早于结束时间",
	scheduling.ErrBackendUnavailable: "保存失败，请稍后重试",
}

var appointmentStatusNames = map[domain.AppointmentStatus]string{
	domain.AppointmentStatusScheduled: "待确认",
	domain.AppointmentStatusConfirmed: "已确认",
	domain.AppointmentStatusCompleted: "已完成",
	domain.AppointmentStatusCancelled: "已取消",
}

// messageFor 用 errors.Is 查找错误对应的提示，各个错误互不包含所以与遍历顺序无关
func messageFor(messages map[error]string, err error) (string, bool) {
	for target, msg := range messages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}

func (h *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `validate:"required,day"`
	}
	req.Date = r.URL.Query().Get("date")

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := h.booking.ParseDate(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	slots, err := h.booking.AvailableSlots(date)
	if err != nil {
		h.logInternalServerError(r, err)
		h.errorResponse(w, r, "获取可预约时段失败，请稍后重试")
		return
	}

	h.successResponse(w, r, "获取可预约时段成功", map[string]any{
		"date":  req.Date,
		"slots": slots,
	})
}

// BookAppointment 不做登录校验和必填校验，这些都交给预约逻辑本身处理，以保证不会在校验失败时写入
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID *int64 `json:"projectID" validate:"omitempty,gt=0"`
		Date      string `json:"date"`
		StartTime string `json:"startTime"`
		Notes     string `json:"notes" validate:"max=1000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	bookingReq := scheduling.BookingRequest{
		UserID:    currentUserID(r),
		ProjectID: req.ProjectID,
		StartTime: req.StartTime,
		Notes:     req.Notes,
	}
	if req.Date != "" {
		if date, err := h.booking.ParseDate(req.Date); err == nil {
			bookingReq.Date = &date
		}
	}

	if bookingReq.UserID != 0 && req.ProjectID != nil {
		if _, err := h.repository.GetProjectByID(*req.ProjectID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "楼盘不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	appointment, err := h.booking.Book(bookingReq)
	if err != nil {
		msg, ok := messageFor(bookingErrorMessages, err)
		if !ok || errors.Is(err, scheduling.ErrBackendUnavailable) {
			h.logInternalServerError(r, err)
		}
		if !ok {
			msg = bookingErrorMessages[scheduling.ErrBackendUnavailable]
		}
		h.errorResponse(w, r, msg)
		return
	}

	h.notifyAppointment(r, appointment, domain.MailTypeAppointmentScheduled)

	h.successResponse(w, r, "预约成功", appointment)
}

// notifyAppointment 发送预约相关的邮件，预约已经写入，邮件发送失败只记录日志
func (h *Handler) notifyAppointment(r *http.Request, appointment *domain.Appointment, mailType string) {
	user, err := h.repository.GetUserByID(appointment.UserID)
	if err != nil {
		slog.Warn("无法获取预约用户，跳过邮件通知", "appointment_id", appointment.ID, "request_id", requestIDFrom(r), "error", err)
		return
	}

	if err := h.mailer.Publish(domain.MailMessage{
		Type: mailType,
		To:   user.Email,
		Data: domain.AppointmentMailData{
			FullName:  user.FullName,
			Date:      appointment.Date.Format(scheduling.DateLayout),
			StartTime: displayTime(appointment.StartTime),
			EndTime:   displayTime(appointment.EndTime),
			Status:    appointmentStatusNames[appointment.Status],
		},
	}); err != nil {
		slog.Warn("预约邮件投递失败", "appointment_id", appointment.ID, "request_id", requestIDFrom(r), "error", err)
	}
}

// displayTime 把 HH:MM:SS 截成 HH:MM
func displayTime(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}

func (h *Handler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var req struct {
		Date   string `validate:"omitempty,day"`
		Status string `validate:"omitempty,oneof=scheduled confirmed completed cancelled"`
	}
	req.Date = query.Get("date")
	req.Status = query.Get("status")

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	filter := repository.AppointmentFilter{
		Status: domain.AppointmentStatus(req.Status),
	}
	if req.Date != "" {
		date, err := time.Parse(scheduling.DateLayout, req.Date)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		filter.Date = &date
	}

	appointments, err := h.repository.GetAppointments(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取预约列表成功", appointments)
}

func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		h.errorResponse(w, r, "预约ID无效")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	appointment, err := h.booking.TransitionStatus(id, domain.AppointmentStatus(req.Status))
	if err != nil {
		if msg, ok := messageFor(transitionErrorMessages, err); ok {
			h.errorResponse(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.notifyAppointment(r, appointment, domain.MailTypeAppointmentStatus)

	h.successResponse(w, r, "更新预约状态成功", appointment)
}

func (h *Handler) GetAvailabilityConfig(w http.ResponseWriter, r *http.Request) {
	days, err := h.repository.GetAllDayAvailabilities()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取预约时间配置成功", days)
}

type availabilityFieldResult struct {
	Field string `json:"field"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// UpdateAvailabilityConfig 每个字段单独保存，响应中逐个字段给出结果
func (h *Handler) UpdateAvailabilityConfig(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.ParseInt(chi.URLParam(r, "day"), 10, 32)
	if err != nil || day < 0 || day > 6 {
		h.errorResponse(w, r, "星期必须在 0 到 6 之间")
		return
	}

	var req struct {
		StartTime   *string `json:"startTime" validate:"omitempty,clock"`
		EndTime     *string `json:"endTime" validate:"omitempty,clock"`
		IsAvailable *bool   `json:"isAvailable"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.StartTime == nil && req.EndTime == nil && req.IsAvailable == nil {
		h.errorResponse(w, r, "没有需要更新的字段")
		return
	}

	results, err := h.booking.EditDayAvailability(int32(day), scheduling.AvailabilityPatch{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrInvalidDay):
			h.errorResponse(w, r, "星期必须在 0 到 6 之间")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	allOK := true
	data := make([]availabilityFieldResult, 0, len(results))
	for _, res := range results {
		item := availabilityFieldResult{Field: res.Field, OK: res.OK}
		if !res.OK {
			allOK = false
			if errors.Is(res.Err(), scheduling.ErrBackendUnavailable) {
				h.logInternalServerError(r, res.Err())
			}
			msg, ok := messageFor(availabilityErrorMessages, res.Err())
			if !ok {
				msg = res.Error
			}
			item.Error = msg
		}
		data = append(data, item)
	}

	message := "更新预约时间配置成功"
	if !allOK {
		message = "部分字段更新失败"
	}

	h.writeJSON(w, r, http.StatusOK, Response{
		Success: allOK,
		Message: message,
		Data:    data,
	})
}
