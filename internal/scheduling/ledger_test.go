package scheduling

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

// memoryLedger 在内存中模拟数据库，(date, start_time) 上的唯一约束只对未取消的预约生效
type memoryLedger struct {
	mu           sync.Mutex
	days         map[int32]*domain.DayAvailability
	appointments []*domain.Appointment
	nextID       int64

	createCalls int
	failCreate  error
	failRead    error
	failSet     map[string]error
}

func newMemoryLedger(days ...domain.DayAvailability) *memoryLedger {
	l := &memoryLedger{
		days:    make(map[int32]*domain.DayAvailability),
		failSet: make(map[string]error),
	}
	for i := range days {
		day := days[i]
		l.days[day.DayOfWeek] = &day
	}
	return l
}

func (l *memoryLedger) GetEnabledDayAvailabilities() ([]domain.DayAvailability, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failRead != nil {
		return nil, l.failRead
	}

	days := make([]domain.DayAvailability, 0, len(l.days))
	for _, day := range l.days {
		if day.IsAvailable {
			days = append(days, *day)
		}
	}
	return days, nil
}

func (l *memoryLedger) GetDayAvailability(day int32) (*domain.DayAvailability, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.days[day]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *d
	return &copied, nil
}

func (l *memoryLedger) GetActiveAppointmentsByDate(date time.Time) ([]domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failRead != nil {
		return nil, l.failRead
	}

	result := make([]domain.Appointment, 0)
	for _, a := range l.appointments {
		if a.Status != domain.AppointmentStatusCancelled && a.Date.Format(DateLayout) == date.Format(DateLayout) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (l *memoryLedger) CreateAppointment(appointment *domain.Appointment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.createCalls++
	if l.failCreate != nil {
		return l.failCreate
	}

	for _, a := range l.appointments {
		if a.Status == domain.AppointmentStatusCancelled {
			continue
		}
		if a.Date.Format(DateLayout) == appointment.Date.Format(DateLayout) && a.StartTime == appointment.StartTime {
			return ErrSlotAlreadyTaken
		}
	}

	l.nextID++
	appointment.ID = l.nextID
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	copied := *appointment
	l.appointments = append(l.appointments, &copied)
	return nil
}

func (l *memoryLedger) GetAppointmentByID(id int64) (*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, a := range l.appointments {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (l *memoryLedger) UpdateAppointmentStatus(id int64, from, to domain.AppointmentStatus) (*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, a := range l.appointments {
		if a.ID == id && a.Status == from {
			a.Status = to
			a.UpdatedAt = time.Now()
			copied := *a
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (l *memoryLedger) SetAvailabilityStartTime(day int32, startTime string) error {
	return l.set(day, "startTime", func(d *domain.DayAvailability) { d.StartTime = startTime })
}

func (l *memoryLedger) SetAvailabilityEndTime(day int32, endTime string) error {
	return l.set(day, "endTime", func(d *domain.DayAvailability) { d.EndTime = endTime })
}

func (l *memoryLedger) SetAvailabilityEnabled(day int32, enabled bool) error {
	return l.set(day, "isAvailable", func(d *domain.DayAvailability) { d.IsAvailable = enabled })
}

func (l *memoryLedger) set(day int32, field string, apply func(*domain.DayAvailability)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.failSet[field]; err != nil {
		return err
	}
	d, ok := l.days[day]
	if !ok {
		return sql.ErrNoRows
	}
	apply(d)
	return nil
}

// 把已有预约直接放进账本，绕过唯一约束，用于构造测试数据
func (l *memoryLedger) seed(appointments ...domain.Appointment) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range appointments {
		a := appointments[i]
		l.nextID++
		a.ID = l.nextID
		l.appointments = append(l.appointments, &a)
	}
}

var errBoom = errors.New("connection reset by peer")
