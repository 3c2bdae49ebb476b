package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

func (r *Repository) CreateContactMessage(m *domain.ContactMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO contact_messages (full_name, email, phone, project_id, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return r.dbpool.QueryRowContext(ctx, query, m.FullName, m.Email, m.Phone, m.ProjectID, m.Message).Scan(&m.ID, &m.CreatedAt)
}

func (r *Repository) GetAllContactMessages() ([]*domain.ContactMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, full_name, email, phone, project_id, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.ContactMessage, 0)
	for rows.Next() {
		m := &domain.ContactMessage{}
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.Phone, &m.ProjectID, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *Repository) DeleteContactMessage(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
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

// CreateNewsletterSubscriber 邮箱重复时返回违反 newsletter_subscribers_email_key 的错误，
// 已退订的邮箱重新订阅时直接恢复
func (r *Repository) CreateNewsletterSubscriber(s *domain.NewsletterSubscriber) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	reactivate := `
		UPDATE newsletter_subscribers
		SET is_active = true, unsubscribe_token = $1
		WHERE email = $2 AND is_active = false
		RETURNING id, is_active, created_at
	`
	err := r.dbpool.QueryRowContext(ctx, reactivate, s.UnsubscribeToken, s.Email).Scan(&s.ID, &s.IsActive, &s.CreatedAt)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	query := `
		INSERT INTO newsletter_subscribers (email, unsubscribe_token)
		VALUES ($1, $2)
		RETURNING id, is_active, created_at
	`

	return r.dbpool.QueryRowContext(ctx, query, s.Email, s.UnsubscribeToken).Scan(&s.ID, &s.IsActive, &s.CreatedAt)
}

func (r *Repository) UnsubscribeNewsletter(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `UPDATE newsletter_subscribers SET is_active = false WHERE unsubscribe_token = $1 AND is_active = true`, token)
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

func (r *Repository) GetAllNewsletterSubscribers() ([]*domain.NewsletterSubscriber, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, email, unsubscribe_token, is_active, created_at
		FROM newsletter_subscribers
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := make([]*domain.NewsletterSubscriber, 0)
	for rows.Next() {
		s := &domain.NewsletterSubscriber{}
		if err := rows.Scan(&s.ID, &s.Email, &s.UnsubscribeToken, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subscribers, nil
}

func (r *Repository) DeleteNewsletterSubscriber(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id = $1`, id)
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
