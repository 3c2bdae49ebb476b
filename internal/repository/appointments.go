package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/scheduling"
)

const activeSlotConstraint = "appointments_active_slot_key"

const appointmentColumns = `
	id, user_id, project_id, date, start_time::text, end_time::text, status, notes, created_at, updated_at
`

type AppointmentFilter struct {
	Date   *time.Time
	Status domain.AppointmentStatus
	UserID int64
}

func scanAppointment(row interface{ Scan(dest ...any) error }) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ProjectID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return a, nil
}

func isActiveSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == activeSlotConstraint
}

// CreateAppointment 直接插入，时段冲突由部分唯一索引 appointments_active_slot_key 检测
func (r *Repository) CreateAppointment(a *domain.Appointment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO appointments (user_id, project_id, date, start_time, end_time, status, notes)
		VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7)
		RETURNING id, created_at, updated_at
	`

	args := []any{
		a.UserID,
		a.ProjectID,
		a.Date.Format(scheduling.DateLayout),
		a.StartTime,
		a.EndTime,
		a.Status,
		a.Notes,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isActiveSlotConflict(err) {
			return scheduling.ErrSlotAlreadyTaken
		}
		return err
	}

	return nil
}

func (r *Repository) GetActiveAppointmentsByDate(date time.Time) ([]domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := "SELECT " + appointmentColumns + " FROM appointments WHERE date = $1::date AND status <> 'cancelled' ORDER BY start_time"

	rows, err := r.dbpool.QueryContext(ctx, query, date.Format(scheduling.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return appointments, nil
}

func (r *Repository) GetAppointmentByID(id int64) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := "SELECT " + appointmentColumns + " FROM appointments WHERE id = $1"

	return scanAppointment(r.dbpool.QueryRowContext(ctx, query, id))
}

// UpdateAppointmentStatus 只有当前状态仍为 from 时才会更新，否则返回 sql.ErrNoRows
func (r *Repository) UpdateAppointmentStatus(id int64, from, to domain.AppointmentStatus) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + appointmentColumns

	return scanAppointment(r.dbpool.QueryRowContext(ctx, query, to, id, from))
}

func (r *Repository) GetAppointments(filter AppointmentFilter) ([]*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	conditions := make([]string, 0)
	args := make([]any, 0)

	if filter.Date != nil {
		args = append(args, filter.Date.Format(scheduling.DateLayout))
		conditions = append(conditions, fmt.Sprintf("date = $%d::date", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := "SELECT " + appointmentColumns + " FROM appointments"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, start_time"

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return appointments, nil
}
