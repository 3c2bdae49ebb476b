package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

func (r *Repository) GetFavoriteProjects(userID int64) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + projectColumnsWithAlias("p") + `
		FROM favorites f
		JOIN projects p ON p.id = f.project_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pgtype.NewMap()
	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(m, rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

// AddFavorite 重复收藏不会报错
func (r *Repository) AddFavorite(userID, projectID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO favorites (user_id, project_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, project_id) DO NOTHING
	`

	_, err := r.dbpool.ExecContext(ctx, query, userID, projectID)
	return err
}

func (r *Repository) RemoveFavorite(userID, projectID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND project_id = $2`, userID, projectID)
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
