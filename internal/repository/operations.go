package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

const operationColumns = `
	id, client_id, project_id, type, amount, currency, status, closed_at, created_at, version
`

func scanOperation(row interface{ Scan(dest ...any) error }) (*domain.Operation, error) {
	op := &domain.Operation{}
	if err := row.Scan(
		&op.ID,
		&op.ClientID,
		&op.ProjectID,
		&op.Type,
		&op.Amount,
		&op.Currency,
		&op.Status,
		&op.ClosedAt,
		&op.CreatedAt,
		&op.Version,
	); err != nil {
		return nil, err
	}
	return op, nil
}

func (r *Repository) GetAllOperations() ([]*domain.Operation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, "SELECT "+operationColumns+" FROM operations ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	operations := make([]*domain.Operation, 0)
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, op)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return operations, nil
}

func (r *Repository) GetOperationByID(id int64) (*domain.Operation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanOperation(r.dbpool.QueryRowContext(ctx, "SELECT "+operationColumns+" FROM operations WHERE id = $1", id))
}

func (r *Repository) CreateOperation(op *domain.Operation) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO operations (client_id, project_id, type, amount, currency, status, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	args := []any{op.ClientID, op.ProjectID, op.Type, op.Amount, op.Currency, op.Status, op.ClosedAt}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&op.ID, &op.CreatedAt, &op.Version)
}

func (r *Repository) UpdateOperation(op *domain.Operation) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE operations
		SET
			client_id = $1,
			project_id = $2,
			type = $3,
			amount = $4,
			currency = $5,
			status = $6,
			closed_at = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	args := []any{op.ClientID, op.ProjectID, op.Type, op.Amount, op.Currency, op.Status, op.ClosedAt, op.ID, op.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&op.Version)
}

func (r *Repository) DeleteOperation(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM operations WHERE id = $1`, id)
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
