package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

func (r *Repository) GetAllClients() ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, full_name, email, phone, notes, created_at, version
		FROM clients
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		c := &domain.Client{}
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.Version); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *Repository) GetClientByID(id int64) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, full_name, email, phone, notes, created_at, version
		FROM clients
		WHERE id = $1
	`

	c := &domain.Client{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.Version); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) CreateClient(c *domain.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO clients (full_name, email, phone, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	return r.dbpool.QueryRowContext(ctx, query, c.FullName, c.Email, c.Phone, c.Notes).Scan(&c.ID, &c.CreatedAt, &c.Version)
}

func (r *Repository) UpdateClient(c *domain.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE clients
		SET full_name = $1, email = $2, phone = $3, notes = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	return r.dbpool.QueryRowContext(ctx, query, c.FullName, c.Email, c.Phone, c.Notes, c.ID, c.Version).Scan(&c.Version)
}

func (r *Repository) DeleteClient(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
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
