package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

func projectRows() *sqlmock.Rows {
	return sqlmock.NewRows(projectFields)
}

func addProjectRow(rows *sqlmock.Rows, id int64, slug, city, images, amenities string) *sqlmock.Rows {
	return rows.AddRow(
		id, slug, "楼盘"+slug, "", "", city, "地址", 23.1, 113.3, "ready",
		int64(100000000), "CNY", int32(3), 89.5, false, "", images, amenities,
		time.Now(), int32(1),
	)
}

func TestGetProjects_CityFilterIsExactMatch(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := projectRows()
	addProjectRow(rows, 1, "a", "Guangzhou", "{a.jpg,b.jpg}", "{pool}")
	addProjectRow(rows, 2, "b", "guangzhou", "{}", "{gym,park}")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND lower(city) = lower($2)")).
		WithArgs("ready", "%zhou").
		WillReturnRows(rows)

	projects, err := repo.GetProjects(domain.ProjectFilter{Status: domain.ProjectStatusReady, City: "%zhou"})
	require.NoError(t, err)
	require.Len(t, projects, 2)

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, projects[0].Images)
	assert.Equal(t, []string{"pool"}, projects[0].Amenities)
	assert.Equal(t, []string{}, projects[1].Images)
	assert.Equal(t, []string{"gym", "park"}, projects[1].Amenities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProjects_NoFilter(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM projects ORDER BY is_featured DESC`).
		WithoutArgs().
		WillReturnRows(projectRows())

	projects, err := repo.GetProjects(domain.ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProjectBySlug_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE slug = $1")).
		WithArgs("project-2024").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProjectBySlug("project-2024")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFavoriteProjects(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := projectRows()
	addProjectRow(rows, 3, "c", "Shenzhen", "{c.jpg}", "{}")
	addProjectRow(rows, 4, "d", "Shenzhen", "{}", "{}")

	mock.ExpectQuery(regexp.QuoteMeta("FROM favorites")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	projects, err := repo.GetFavoriteProjects(7)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, []string{"c.jpg"}, projects[0].Images)
	assert.Equal(t, int64(4), projects[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNewsletterSubscriber_Reactivates(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE newsletter_subscribers")).
		WithArgs("new-token", "a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at"}).AddRow(int64(5), true, now))

	s := &domain.NewsletterSubscriber{Email: "a@example.com", UnsubscribeToken: "new-token"}
	require.NoError(t, repo.CreateNewsletterSubscriber(s))
	assert.Equal(t, int64(5), s.ID)
	assert.True(t, s.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNewsletterSubscriber_InsertsWhenUnknown(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE newsletter_subscribers")).
		WithArgs("tok", "b@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO newsletter_subscribers")).
		WithArgs("b@example.com", "tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at"}).AddRow(int64(6), true, now))

	s := &domain.NewsletterSubscriber{Email: "b@example.com", UnsubscribeToken: "tok"}
	require.NoError(t, repo.CreateNewsletterSubscriber(s))
	assert.Equal(t, int64(6), s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsubscribeNewsletter_UnknownToken(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE newsletter_subscribers SET is_active = false")).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UnsubscribeNewsletter("nope"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
