package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

func (r *Repository) getDayAvailabilities(onlyEnabled bool) ([]domain.DayAvailability, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT day_of_week, start_time::text, end_time::text, is_available
		FROM availability_config
	`
	if onlyEnabled {
		query += " WHERE is_available = true"
	}
	query += " ORDER BY day_of_week"

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]domain.DayAvailability, 0, 7)
	for rows.Next() {
		var d domain.DayAvailability
		if err := rows.Scan(&d.DayOfWeek, &d.StartTime, &d.EndTime, &d.IsAvailable); err != nil {
			return nil, err
		}
		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

func (r *Repository) GetEnabledDayAvailabilities() ([]domain.DayAvailability, error) {
	return r.getDayAvailabilities(true)
}

func (r *Repository) GetAllDayAvailabilities() ([]domain.DayAvailability, error) {
	return r.getDayAvailabilities(false)
}

func (r *Repository) GetDayAvailability(day int32) (*domain.DayAvailability, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT day_of_week, start_time::text, end_time::text, is_available
		FROM availability_config
		WHERE day_of_week = $1
	`

	d := &domain.DayAvailability{}
	if err := r.dbpool.QueryRowContext(ctx, query, day).Scan(&d.DayOfWeek, &d.StartTime, &d.EndTime, &d.IsAvailable); err != nil {
		return nil, err
	}

	return d, nil
}

// 三个字段各自单独写入，不放在一个事务里
func (r *Repository) setAvailabilityColumn(day int32, query string, value any) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, value, day)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) SetAvailabilityStartTime(day int32, startTime string) error {
	return r.setAvailabilityColumn(day, `UPDATE availability_config SET start_time = $1::time WHERE day_of_week = $2`, startTime)
}

func (r *Repository) SetAvailabilityEndTime(day int32, endTime string) error {
	return r.setAvailabilityColumn(day, `UPDATE availability_config SET end_time = $1::time WHERE day_of_week = $2`, endTime)
}

func (r *Repository) SetAvailabilityEnabled(day int32, enabled bool) error {
	return r.setAvailabilityColumn(day, `UPDATE availability_config SET is_available = $1 WHERE day_of_week = $2`, enabled)
}

// EnsureDayAvailabilities 保证一周七天的配置都存在，默认周一到周五 09:00~18:00 开放，已有的行不会被覆盖
func (r *Repository) EnsureDayAvailabilities() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO availability_config (day_of_week, start_time, end_time, is_available)
		VALUES ($1, '09:00:00', '18:00:00', $2)
		ON CONFLICT (day_of_week) DO NOTHING
	`

	for day := int32(0); day < 7; day++ {
		if _, err := tx.ExecContext(ctx, query, day, day >= 1 && day <= 5); err != nil {
			return err
		}
	}

	return tx.Commit()
}
