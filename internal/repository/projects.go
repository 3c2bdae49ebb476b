package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

var projectFields = []string{
	"id", "slug", "name", "summary", "description", "city", "address", "latitude", "longitude", "status",
	"price_from", "currency", "bedrooms", "area_from", "is_featured", "cover_image", "images", "amenities",
	"created_at", "version",
}

var projectColumns = projectColumnsWithAlias("")

// projectColumnsWithAlias 在联表查询时给每一列加上表别名
func projectColumnsWithAlias(alias string) string {
	if alias == "" {
		return strings.Join(projectFields, ", ")
	}

	columns := make([]string, 0, len(projectFields))
	for _, f := range projectFields {
		columns = append(columns, alias+"."+f)
	}
	return strings.Join(columns, ", ")
}

// text[] 列需要借助 pgtype.Map 才能扫描到 []string，同一次查询的所有行共用一个 Map
func scanProject(m *pgtype.Map, row interface{ Scan(dest ...any) error }) (*domain.Project, error) {
	p := &domain.Project{}

	dst := []any{
		&p.ID,
		&p.Slug,
		&p.Name,
		&p.Summary,
		&p.Description,
		&p.City,
		&p.Address,
		&p.Latitude,
		&p.Longitude,
		&p.Status,
		&p.PriceFrom,
		&p.Currency,
		&p.Bedrooms,
		&p.AreaFrom,
		&p.IsFeatured,
		&p.CoverImage,
		m.SQLScanner(&p.Images),
		m.SQLScanner(&p.Amenities),
		&p.CreatedAt,
		&p.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if p.Images == nil {
		p.Images = make([]string, 0)
	}
	if p.Amenities == nil {
		p.Amenities = make([]string, 0)
	}

	return p, nil
}

func (r *Repository) GetProjects(filter domain.ProjectFilter) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	conditions := make([]string, 0)
	args := make([]any, 0)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conditions = append(conditions, fmt.Sprintf("lower(city) = lower($%d)", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conditions = append(conditions, fmt.Sprintf("is_featured = $%d", len(args)))
	}

	query := "SELECT " + projectColumns + " FROM projects"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY is_featured DESC, created_at DESC"

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
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

func (r *Repository) GetProjectMarkers() ([]*domain.ProjectMarker, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, slug, name, latitude, longitude, status
		FROM projects
		WHERE latitude <> 0 OR longitude <> 0
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	markers := make([]*domain.ProjectMarker, 0)
	for rows.Next() {
		m := &domain.ProjectMarker{}
		if err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.Latitude, &m.Longitude, &m.Status); err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return markers, nil
}

func (r *Repository) GetProjectByID(id int64) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := "SELECT " + projectColumns + " FROM projects WHERE id = $1"

	return scanProject(pgtype.NewMap(), r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetProjectBySlug(slug string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := "SELECT " + projectColumns + " FROM projects WHERE slug = $1"

	return scanProject(pgtype.NewMap(), r.dbpool.QueryRowContext(ctx, query, slug))
}

func (r *Repository) CreateProject(p *domain.Project) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO projects (
			slug, name, summary, description, city, address, latitude, longitude, status,
			price_from, currency, bedrooms, area_from, is_featured, cover_image, images, amenities
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, version
	`

	args := []any{
		p.Slug, p.Name, p.Summary, p.Description, p.City, p.Address, p.Latitude, p.Longitude, p.Status,
		p.PriceFrom, p.Currency, p.Bedrooms, p.AreaFrom, p.IsFeatured, p.CoverImage, p.Images, p.Amenities,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateProject(p *domain.Project) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE projects
		SET
			slug = $1,
			name = $2,
			summary = $3,
			description = $4,
			city = $5,
			address = $6,
			latitude = $7,
			longitude = $8,
			status = $9,
			price_from = $10,
			currency = $11,
			bedrooms = $12,
			area_from = $13,
			is_featured = $14,
			cover_image = $15,
			images = $16,
			amenities = $17,
			version = version + 1
		WHERE id = $18 AND version = $19
		RETURNING version
	`

	args := []any{
		p.Slug, p.Name, p.Summary, p.Description, p.City, p.Address, p.Latitude, p.Longitude, p.Status,
		p.PriceFrom, p.Currency, p.Bedrooms, p.AreaFrom, p.IsFeatured, p.CoverImage, p.Images, p.Amenities,
		p.ID, p.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteProject(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
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
