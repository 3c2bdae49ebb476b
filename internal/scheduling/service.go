package scheduling

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

const DateLayout = "2006-01-02"

var (
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrInvalidSelection        = errors.New("date and slot are required")
	ErrSlotAlreadyTaken        = errors.New("slot already taken")
	ErrBackendUnavailable      = errors.New("backend unavailable")
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStatusChanged           = errors.New("appointment status changed concurrently")
	ErrInvalidDay              = errors.New("day of week must be between 0 and 6")
	ErrInvalidTime             = errors.New("time must be HH:MM or HH:MM:SS")
	ErrInvalidTimeRange        = errors.New("start time must be before end time")
)

// Ledger 是预约相关数据的存储，由 repository 实现。
// CreateAppointment 在 (date, start_time) 已被未取消的预约占用时必须返回 ErrSlotAlreadyTaken，
// UpdateAppointmentStatus 在状态不是 from 时返回 sql.ErrNoRows。
type Ledger interface {
	GetEnabledDayAvailabilities() ([]domain.DayAvailability, error)
	GetDayAvailability(day int32) (*domain.DayAvailability, error)
	GetActiveAppointmentsByDate(date time.Time) ([]domain.Appointment, error)
	CreateAppointment(appointment *domain.Appointment) error
	GetAppointmentByID(id int64) (*domain.Appointment, error)
	UpdateAppointmentStatus(id int64, from, to domain.AppointmentStatus) (*domain.Appointment, error)
	SetAvailabilityStartTime(day int32, startTime string) error
	SetAvailabilityEndTime(day int32, endTime string) error
	SetAvailabilityEnabled(day int32, enabled bool) error
}

type Service struct {
	ledger   Ledger
	location *time.Location
	now      func() time.Time
}

type Option func(*Service)

// WithClock 替换获取当前时间的函数，测试中使用
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(ledger Ledger, location *time.Location, opts ...Option) *Service {
	if location == nil {
		location = time.UTC
	}

	s := &Service{
		ledger:   ledger,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Location() *time.Location {
	return s.location
}

// ParseDate 以调度时区解析 YYYY-MM-DD
func (s *Service) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, s.location)
}

// AvailableSlots 读取一次配置和当天的预约，然后生成可预约时段
func (s *Service) AvailableSlots(date time.Time) ([]string, error) {
	date = date.In(s.location)

	days, err := s.ledger.GetEnabledDayAvailabilities()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if day, ok := FindDayAvailability(days, date); !ok || !day.IsAvailable {
		return make([]string, 0), nil
	}

	bookings, err := s.ledger.GetActiveAppointmentsByDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return GenerateSlots(date, days, bookings, s.now().In(s.location)), nil
}

type BookingRequest struct {
	UserID    int64 // 0 表示未登录
	ProjectID *int64
	Date      *time.Time
	StartTime string
	Notes     string
}

// Book 为选中的时段写入一条 scheduled 状态的预约。
// 选中的时段必须是当天配置中会生成的整点时段，并且不能早于当前时间。
// 这里不会先读预约再写，两个并发请求抢同一个时段时由数据库的唯一索引保证只有一个成功，
// 另一个得到 ErrSlotAlreadyTaken。
func (s *Service) Book(req BookingRequest) (*domain.Appointment, error) {
	if req.UserID == 0 {
		return nil, ErrNotAuthenticated
	}
	if req.Date == nil || req.StartTime == "" {
		return nil, ErrInvalidSelection
	}

	start, ok := NormalizeTime(req.StartTime)
	if !ok {
		return nil, ErrInvalidSelection
	}
	end, _ := SlotEndTime(start)

	y, m, d := req.Date.In(s.location).Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, s.location)

	if err := s.checkSelection(date, start); err != nil {
		return nil, err
	}

	appointment := &domain.Appointment{
		UserID:    req.UserID,
		ProjectID: req.ProjectID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    domain.AppointmentStatusScheduled,
		Notes:     req.Notes,
	}

	if err := s.ledger.CreateAppointment(appointment); err != nil {
		if errors.Is(err, ErrSlotAlreadyTaken) {
			return nil, ErrSlotAlreadyTaken
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return appointment, nil
}

// checkSelection 确认 start 是 date 这天不考虑已有预约时会生成的时段之一，
// 过去的日期、关闭的日子以及不在整点网格上的时间都会被拒绝
func (s *Service) checkSelection(date time.Time, start string) error {
	now := s.now().In(s.location)
	ny, nm, nd := now.Date()
	if date.Before(time.Date(ny, nm, nd, 0, 0, 0, 0, s.location)) {
		return ErrInvalidSelection
	}

	day, err := s.ledger.GetDayAvailability(int32(date.Weekday()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidSelection
		}
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	slot := start[:5]
	for _, candidate := range GenerateSlots(date, []domain.DayAvailability{*day}, nil, now) {
		if candidate == slot {
			return nil
		}
	}
	return ErrInvalidSelection
}

// TransitionStatus 把预约从当前状态改为 to，只在数据库中的状态仍然是读取到的状态时才会生效
func (s *Service) TransitionStatus(id int64, to domain.AppointmentStatus) (*domain.Appointment, error) {
	if !to.IsValid() {
		return nil, ErrInvalidStatusTransition
	}

	current, err := s.ledger.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	if !current.Status.CanTransitionTo(to) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.ledger.UpdateAppointmentStatus(id, current.Status, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusChanged
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return updated, nil
}

type AvailabilityPatch struct {
	StartTime   *string
	EndTime     *string
	IsAvailable *bool
}

type FieldResult struct {
	Field string `json:"field"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	err error
}

func (r FieldResult) Err() error {
	return r.err
}

func newFieldResult(field string, err error) FieldResult {
	if err == nil {
		return FieldResult{Field: field, OK: true}
	}
	return FieldResult{Field: field, OK: false, Error: err.Error(), err: err}
}

// EditDayAvailability 逐个字段地更新某一天的配置，每个字段单独写入并单独返回结果，
// 前面的字段写入成功后即使后面的字段失败也不会回滚。
// 每个字段都按“已保存的值叠加本次提交的全部合法字段”得到的目标状态检查，
// 目标状态是开放的日子且 start_time >= end_time 时，涉及的字段都被拒绝，与字段顺序无关。
func (s *Service) EditDayAvailability(day int32, patch AvailabilityPatch) ([]FieldResult, error) {
	if day < 0 || day > 6 {
		return nil, ErrInvalidDay
	}

	current, err := s.ledger.GetDayAvailability(day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidDay
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	target := *current
	var start, end string
	var startErr, endErr error

	if patch.StartTime != nil {
		if normalized, ok := NormalizeTime(*patch.StartTime); ok {
			start = normalized
			target.StartTime = normalized
		} else {
			startErr = ErrInvalidTime
		}
	}
	if patch.EndTime != nil {
		if normalized, ok := NormalizeTime(*patch.EndTime); ok {
			end = normalized
			target.EndTime = normalized
		} else {
			endErr = ErrInvalidTime
		}
	}
	if patch.IsAvailable != nil {
		target.IsAvailable = *patch.IsAvailable
	}

	rangeErr := checkRange(target)

	write := func(fieldErr error, set func() error) error {
		if fieldErr != nil {
			return fieldErr
		}
		if rangeErr != nil {
			return rangeErr
		}
		if err := set(); err != nil {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		return nil
	}

	writeStart := func() {
		startErr = write(startErr, func() error { return s.ledger.SetAvailabilityStartTime(day, start) })
	}
	writeEnd := func() {
		endErr = write(endErr, func() error { return s.ledger.SetAvailabilityEndTime(day, end) })
	}

	// 窗口整体后移时先写结束时间，这样两次写入之间保存的区间始终包含新旧两个区间
	if patch.StartTime != nil && patch.EndTime != nil && !startBeforeEnd(start, current.EndTime) {
		writeEnd()
		writeStart()
	} else {
		if patch.StartTime != nil {
			writeStart()
		}
		if patch.EndTime != nil {
			writeEnd()
		}
	}

	results := make([]FieldResult, 0, 3)
	if patch.StartTime != nil {
		results = append(results, newFieldResult("startTime", startErr))
	}
	if patch.EndTime != nil {
		results = append(results, newFieldResult("endTime", endErr))
	}
	if patch.IsAvailable != nil {
		err := write(nil, func() error { return s.ledger.SetAvailabilityEnabled(day, *patch.IsAvailable) })
		results = append(results, newFieldResult("isAvailable", err))
	}

	return results, nil
}

func startBeforeEnd(start, end string) bool {
	s, ok := parseClock(start)
	if !ok {
		return false
	}
	e, ok := parseClock(end)
	if !ok {
		return false
	}
	return s.before(e)
}

// checkRange 只约束开放的日子，关闭的日子可以暂时保存不完整的时间
func checkRange(day domain.DayAvailability) error {
	if !day.IsAvailable {
		return nil
	}
	start, ok := parseClock(day.StartTime)
	if !ok {
		return ErrInvalidTimeRange
	}
	end, ok := parseClock(day.EndTime)
	if !ok {
		return ErrInvalidTimeRange
	}
	if !start.before(end) {
		return ErrInvalidTimeRange
	}
	return nil
}
