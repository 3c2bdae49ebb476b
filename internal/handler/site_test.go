package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

var projectRowColumns = []string{
	"id", "slug", "name", "summary", "description", "city", "address", "latitude", "longitude", "status",
	"price_from", "currency", "bedrooms", "area_from", "is_featured", "cover_image", "images", "amenities",
	"created_at", "version",
}

func projectRow(id int64, slug string) *sqlmock.Rows {
	return sqlmock.NewRows(projectRowColumns).AddRow(
		id, slug, "楼盘"+slug, "", "", "Guangzhou", "天河路 1 号", 23.1, 113.3, "ready",
		int64(120000000), "CNY", int32(3), 89.5, true, "", "{a.jpg}", "{pool}",
		time.Now(), int32(1),
	)
}

// withRedis 用 miniredis 替换 nil 的 redis 客户端
func (e *testEnv) withRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e.handler.redisClient = rdb
	return mr
}

func (e *testEnv) expectUsernameLookup(username, passwordHash string, active bool) {
	rows := sqlmock.NewRows([]string{"id", "password_hash", "full_name", "email", "phone", "role", "is_active", "created_at", "version"}).
		AddRow(int64(11), passwordHash, "张三", "buyer@example.com", "", "user", active, time.Now(), int32(1))
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).WithArgs(username).WillReturnRows(rows)
}

func tokenCookie(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName {
			return c
		}
	}
	return nil
}

func differentOTP(otp string) string {
	if otp == "000000" {
		return "111111"
	}
	return "000000"
}

func TestRegister(t *testing.T) {
	t.Run("sets token cookie and hides password", func(t *testing.T) {
		env := newTestEnv(t, 10)

		env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("buyer01", sqlmock.AnyArg(), "张三", "buyer@example.com", "", "user").
			WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "version"}).AddRow(int64(11), true, time.Now(), int32(1)))

		rec, resp := env.do(t, http.MethodPost, "/auth/register", map[string]any{
			"username": "buyer01",
			"password": "correct-horse",
			"fullName": "张三",
			"email":    "buyer@example.com",
		}, nil)
		require.True(t, resp.Success, resp.Message)
		assert.NotContains(t, string(resp.Data), "correct-horse")
		assert.NotContains(t, string(resp.Data), "passwordHash")

		cookie := tokenCookie(rec)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		// 注册拿到的 cookie 可以直接访问个人信息
		env.expectUserLookup(11, "buyer@example.com")
		_, resp = env.do(t, http.MethodGet, "/my-info/", nil, cookie)
		assert.True(t, resp.Success, resp.Message)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("duplicate username", func(t *testing.T) {
		env := newTestEnv(t, 10)

		env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		rec, resp := env.do(t, http.MethodPost, "/auth/register", map[string]any{
			"username": "buyer01",
			"password": "correct-horse",
			"fullName": "张三",
			"email":    "buyer@example.com",
		}, nil)
		assert.False(t, resp.Success)
		assert.Equal(t, "用户名已存在", resp.Message)
		assert.Nil(t, tokenCookie(rec))
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUsernameLookup("buyer01", string(hash), true)

		rec, resp := env.do(t, http.MethodPost, "/auth/login", map[string]any{"username": "buyer01", "password": "correct-horse"}, nil)
		require.True(t, resp.Success, resp.Message)
		require.NotNil(t, tokenCookie(rec))

		env.expectUserLookup(11, "buyer@example.com")
		_, resp = env.do(t, http.MethodGet, "/my-info/", nil, tokenCookie(rec))
		assert.True(t, resp.Success, resp.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUsernameLookup("buyer01", string(hash), true)

		rec, resp := env.do(t, http.MethodPost, "/auth/login", map[string]any{"username": "buyer01", "password": "wrong-horse"}, nil)
		assert.False(t, resp.Success)
		assert.Equal(t, "用户名不存在或密码错误", resp.Message)
		assert.Nil(t, tokenCookie(rec))
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, resp := env.do(t, http.MethodPost, "/auth/login", map[string]any{"username": "ghost", "password": "whatever"}, nil)
		assert.Equal(t, "用户名不存在或密码错误", resp.Message)
	})

	t.Run("inactive account", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUsernameLookup("buyer01", string(hash), false)

		rec, resp := env.do(t, http.MethodPost, "/auth/login", map[string]any{"username": "buyer01", "password": "correct-horse"}, nil)
		assert.Equal(t, "账户已被停用", resp.Message)
		assert.Nil(t, tokenCookie(rec))
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, 10)

	rec, resp := env.do(t, http.MethodPost, "/auth/logout", nil, signToken(t, 11, domain.RoleUser))
	require.True(t, resp.Success)

	cookie := tokenCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestResetPassword(t *testing.T) {
	t.Run("otp is single use", func(t *testing.T) {
		env := newTestEnv(t, 10)
		mr := env.withRedis(t)

		env.expectUsernameLookup("buyer01", "old-hash", true)
		_, resp := env.do(t, http.MethodPost, "/auth/reset-password/require", map[string]any{"username": "buyer01"}, nil)
		require.True(t, resp.Success, resp.Message)

		otp, err := mr.Get("otp_buyer01_reset_password")
		require.NoError(t, err)
		require.Len(t, env.mailer.messages, 1)
		assert.Equal(t, domain.MailTypeResetPassword, env.mailer.messages[0].Type)
		assert.Equal(t, "buyer@example.com", env.mailer.messages[0].To)
		assert.Equal(t, otp, env.mailer.messages[0].Data.(domain.ResetPasswordMailData).OTP)
		assert.Equal(t, 15, env.mailer.messages[0].Data.(domain.ResetPasswordMailData).Expiration)

		_, resp = env.do(t, http.MethodPost, "/auth/reset-password/confirm", map[string]any{
			"username": "buyer01", "otp": differentOTP(otp), "password": "brand-new-pass",
		}, nil)
		assert.Equal(t, "验证码错误", resp.Message)

		env.expectUsernameLookup("buyer01", "old-hash", true)
		env.mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WithArgs(sqlmock.AnyArg(), "张三", "buyer@example.com", "", "user", true, int64(11), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"username", "created_at", "version"}).AddRow("buyer01", time.Now(), int32(2)))

		_, resp = env.do(t, http.MethodPost, "/auth/reset-password/confirm", map[string]any{
			"username": "buyer01", "otp": otp, "password": "brand-new-pass",
		}, nil)
		require.True(t, resp.Success, resp.Message)
		assert.False(t, mr.Exists("otp_buyer01_reset_password"))

		_, resp = env.do(t, http.MethodPost, "/auth/reset-password/confirm", map[string]any{
			"username": "buyer01", "otp": otp, "password": "another-pass",
		}, nil)
		assert.Equal(t, "验证码错误", resp.Message)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("unknown user still reports mail sent", func(t *testing.T) {
		env := newTestEnv(t, 10)
		mr := env.withRedis(t)

		env.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, resp := env.do(t, http.MethodPost, "/auth/reset-password/require", map[string]any{"username": "ghost"}, nil)
		assert.True(t, resp.Success)
		assert.Empty(t, env.mailer.messages)
		assert.Empty(t, mr.Keys())
	})

	t.Run("expired otp", func(t *testing.T) {
		env := newTestEnv(t, 10)
		mr := env.withRedis(t)

		require.NoError(t, mr.Set("otp_buyer01_reset_password", "123456"))
		mr.SetTTL("otp_buyer01_reset_password", time.Minute)
		mr.FastForward(2 * time.Minute)

		_, resp := env.do(t, http.MethodPost, "/auth/reset-password/confirm", map[string]any{
			"username": "buyer01", "otp": "123456", "password": "brand-new-pass",
		}, nil)
		assert.Equal(t, "验证码错误", resp.Message)
	})
}

func TestUpdateEmail(t *testing.T) {
	cookie := signToken(t, 7, domain.RoleUser)
	key := "otp_buyer_change_email_to_new@example.com"

	t.Run("confirm with the mailed otp", func(t *testing.T) {
		env := newTestEnv(t, 10)
		mr := env.withRedis(t)

		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("new@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, resp := env.do(t, http.MethodPost, "/my-info/update-email/require", map[string]any{"newEmail": "new@example.com"}, cookie)
		require.True(t, resp.Success, resp.Message)

		otp, err := mr.Get(key)
		require.NoError(t, err)
		require.Len(t, env.mailer.messages, 1)
		assert.Equal(t, "new@example.com", env.mailer.messages[0].To)

		env.expectUserLookup(7, "buyer@example.com")
		_, resp = env.do(t, http.MethodPost, "/my-info/update-email/confirm", map[string]any{"newEmail": "new@example.com", "otp": differentOTP(otp)}, cookie)
		assert.Equal(t, "验证码错误", resp.Message)

		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WithArgs("hash", "张三", "new@example.com", "", "user", true, int64(7), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"username", "created_at", "version"}).AddRow("buyer", time.Now(), int32(2)))

		_, resp = env.do(t, http.MethodPost, "/my-info/update-email/confirm", map[string]any{"newEmail": "new@example.com", "otp": otp}, cookie)
		require.True(t, resp.Success, resp.Message)
		assert.False(t, mr.Exists(key))
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("email taken before request", func(t *testing.T) {
		env := newTestEnv(t, 10)
		mr := env.withRedis(t)

		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("new@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, resp := env.do(t, http.MethodPost, "/my-info/update-email/require", map[string]any{"newEmail": "new@example.com"}, cookie)
		assert.Equal(t, "邮箱已被占用", resp.Message)
		assert.Empty(t, mr.Keys())
		assert.Empty(t, env.mailer.messages)
	})

	t.Run("email taken before confirm keeps the otp", func(t *testing.T) {
		env := newTestEnv(t, 10)
		mr := env.withRedis(t)
		require.NoError(t, mr.Set(key, "123456"))

		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, resp := env.do(t, http.MethodPost, "/my-info/update-email/confirm", map[string]any{"newEmail": "new@example.com", "otp": "123456"}, cookie)
		assert.Equal(t, "邮箱已被占用", resp.Message)
		assert.True(t, mr.Exists(key))
	})
}

func TestFavorites(t *testing.T) {
	cookie := signToken(t, 7, domain.RoleUser)

	t.Run("add", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO favorites")).WithArgs(int64(7), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, resp := env.do(t, http.MethodPut, "/my-info/favorites/3", nil, cookie)
		assert.True(t, resp.Success, resp.Message)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("add unknown project", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO favorites")).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "favorites_project_id_fkey"})

		rec, resp := env.do(t, http.MethodPut, "/my-info/favorites/999", nil, cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "楼盘不存在", resp.Message)
	})

	t.Run("invalid project id", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUserLookup(7, "buyer@example.com")

		_, resp := env.do(t, http.MethodPut, "/my-info/favorites/abc", nil, cookie)
		assert.Equal(t, "楼盘ID无效", resp.Message)
	})

	t.Run("remove", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites")).WithArgs(int64(7), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		_, resp := env.do(t, http.MethodDelete, "/my-info/favorites/3", nil, cookie)
		assert.True(t, resp.Success, resp.Message)
	})

	t.Run("remove not favorited", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM favorites")).WithArgs(int64(7), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, resp := env.do(t, http.MethodDelete, "/my-info/favorites/3", nil, cookie)
		assert.Equal(t, "未收藏该楼盘", resp.Message)
	})

	t.Run("list", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.expectUserLookup(7, "buyer@example.com")
		env.mock.ExpectQuery(regexp.QuoteMeta("FROM favorites")).WithArgs(int64(7)).WillReturnRows(projectRow(3, "sunrise"))

		_, resp := env.do(t, http.MethodGet, "/my-info/favorites/", nil, cookie)
		require.True(t, resp.Success, resp.Message)

		var projects []domain.Project
		require.NoError(t, json.Unmarshal(resp.Data, &projects))
		require.Len(t, projects, 1)
		assert.Equal(t, []string{"a.jpg"}, projects[0].Images)
	})
}

func TestGetProjects_Filters(t *testing.T) {
	t.Run("all filters", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND lower(city) = lower($2) AND is_featured = $3")).
			WithArgs("ready", "Guangzhou", true).
			WillReturnRows(projectRow(1, "sunrise"))

		_, resp := env.do(t, http.MethodGet, "/projects?status=ready&city=Guangzhou&featured=true", nil, nil)
		require.True(t, resp.Success, resp.Message)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("featured endpoint", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("WHERE is_featured = $1")).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows(projectRowColumns))

		_, resp := env.do(t, http.MethodGet, "/projects/featured", nil, nil)
		require.True(t, resp.Success, resp.Message)
		assert.JSONEq(t, `[]`, string(resp.Data))
	})

	t.Run("invalid filters do not query", func(t *testing.T) {
		env := newTestEnv(t, 10)

		for _, path := range []string{"/projects?status=demolished", "/projects?featured=maybe"} {
			_, resp := env.do(t, http.MethodGet, path, nil, nil)
			assert.False(t, resp.Success, path)
		}
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})
}

func TestGetProject_SlugOrID(t *testing.T) {
	t.Run("numeric option is an id", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE id = $1")).WithArgs(int64(2024)).WillReturnError(sql.ErrNoRows)

		_, resp := env.do(t, http.MethodGet, "/projects/2024", nil, nil)
		assert.Equal(t, "楼盘不存在", resp.Message)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("slug of a numeric name", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE slug = $1")).WithArgs("project-2024").
			WillReturnRows(projectRow(5, "project-2024"))

		_, resp := env.do(t, http.MethodGet, "/projects/project-2024", nil, nil)
		require.True(t, resp.Success, resp.Message)

		var p domain.Project
		require.NoError(t, json.Unmarshal(resp.Data, &p))
		assert.Equal(t, int64(5), p.ID)
		assert.Equal(t, "project-2024", p.Slug)
	})
}

func TestNewsletter(t *testing.T) {
	subscriberColumns := []string{"id", "is_active", "created_at"}
	unsubscribePrefix := "https://example.com/newsletter/unsubscribe/"

	t.Run("reactivates an unsubscribed email", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("UPDATE newsletter_subscribers")).
			WithArgs(sqlmock.AnyArg(), "a@example.com").
			WillReturnRows(sqlmock.NewRows(subscriberColumns).AddRow(int64(5), true, time.Now()))

		rec, resp := env.do(t, http.MethodPost, "/newsletter", map[string]any{"email": "A@Example.com"}, nil)
		require.True(t, resp.Success, resp.Message)
		assert.JSONEq(t, `{"email":"a@example.com","isActive":true}`, string(resp.Data))

		require.Len(t, env.mailer.messages, 1)
		url := env.mailer.messages[0].Data.(domain.NewsletterMailData).UnsubscribeURL
		require.True(t, strings.HasPrefix(url, unsubscribePrefix), url)
		token := strings.TrimPrefix(url, unsubscribePrefix)
		require.NotEmpty(t, token)
		assert.NotContains(t, rec.Body.String(), token)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("inserts a new email", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("UPDATE newsletter_subscribers")).
			WithArgs(sqlmock.AnyArg(), "b@example.com").
			WillReturnError(sql.ErrNoRows)
		env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO newsletter_subscribers")).
			WithArgs("b@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(subscriberColumns).AddRow(int64(6), true, time.Now()))

		rec, resp := env.do(t, http.MethodPost, "/newsletter", map[string]any{"email": "b@example.com"}, nil)
		require.True(t, resp.Success, resp.Message)
		assert.NotContains(t, rec.Body.String(), "unsubscribe")
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("already active", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectQuery(regexp.QuoteMeta("UPDATE newsletter_subscribers")).WillReturnError(sql.ErrNoRows)
		env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO newsletter_subscribers")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "newsletter_subscribers_email_key"})

		_, resp := env.do(t, http.MethodPost, "/newsletter", map[string]any{"email": "b@example.com"}, nil)
		assert.Equal(t, "该邮箱已订阅", resp.Message)
		assert.Empty(t, env.mailer.messages)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.mock.ExpectExec(regexp.QuoteMeta("UPDATE newsletter_subscribers SET is_active = false")).
			WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
		env.mock.ExpectExec(regexp.QuoteMeta("UPDATE newsletter_subscribers SET is_active = false")).
			WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 0))

		_, resp := env.do(t, http.MethodGet, "/newsletter/unsubscribe/tok", nil, nil)
		assert.True(t, resp.Success, resp.Message)

		_, resp = env.do(t, http.MethodGet, "/newsletter/unsubscribe/tok", nil, nil)
		assert.Equal(t, "退订链接无效或已退订", resp.Message)
	})
}

func TestCreateOperation_ReferenceErrors(t *testing.T) {
	cookie := signToken(t, 2, domain.RoleAgent)
	body := map[string]any{
		"clientID":  1,
		"projectID": 2,
		"type":      "sale",
		"amount":    100000000,
		"currency":  "CNY",
	}

	cases := map[string]string{
		"operations_client_id_fkey":  "客户不存在",
		"operations_project_id_fkey": "楼盘不存在",
	}
	for constraint, message := range cases {
		t.Run(constraint, func(t *testing.T) {
			env := newTestEnv(t, 10)
			env.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO operations")).
				WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: constraint})

			rec, resp := env.do(t, http.MethodPost, "/operations", body, cookie)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, message, resp.Message)
		})
	}

	t.Run("closed without closing time", func(t *testing.T) {
		env := newTestEnv(t, 10)

		closed := map[string]any{"status": "closed"}
		for k, v := range body {
			closed[k] = v
		}
		_, resp := env.do(t, http.MethodPost, "/operations", closed, cookie)
		assert.Equal(t, "已成交的交易必须填写成交时间", resp.Message)
		assert.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("buyers cannot create operations", func(t *testing.T) {
		env := newTestEnv(t, 10)

		_, resp := env.do(t, http.MethodPost, "/operations", body, signToken(t, 7, domain.RoleUser))
		assert.Equal(t, "权限不足", resp.Message)
	})
}
