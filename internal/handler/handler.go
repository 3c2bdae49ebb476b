package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/config"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/repository"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/scheduling"
)

// MailPublisher 把邮件投递到消息队列，由 mailqueue.Publisher 实现
type MailPublisher interface {
	Publish(msg domain.MailMessage) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	booking     *scheduling.Service
	translator  ut.Translator
	mailer      MailPublisher
	redisClient *redis.Client
	limiter     *ipRateLimiter

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, booking *scheduling.Service, mailer MailPublisher, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerCustomValidations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		booking:     booking,
		translator:  trans,
		mailer:      mailer,
		redisClient: rdb,
		limiter:     newIPRateLimiter(time.Minute/time.Duration(max(cfg.RateLimit.PerMinute, 1)), cfg.RateLimit.Burst),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	adminOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin})
	staffOnly := h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RoleAgent})

	h.Mux.Route("/health", func(r chi.Router) {
		r.Get("/live", h.Live)
		r.Get("/ready", h.Ready)
	})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.With(h.rateLimit).Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.With(h.rateLimit).Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 楼盘目录对所有人开放，修改需要管理员权限
	h.Mux.Route("/projects", func(r chi.Router) {
		r.Get("/", h.GetProjects)
		r.Get("/featured", h.GetFeaturedProjects)
		r.Get("/map", h.GetProjectMarkers)
		r.With(h.auth, adminOnly).Post("/", h.CreateProject)
		r.Route("/{option}", func(r chi.Router) {
			r.Use(h.projectInfo)
			r.Get("/", h.GetProject)
			r.With(h.auth, adminOnly).Patch("/", h.UpdateProject)
			r.With(h.auth, adminOnly).Delete("/", h.DeleteProject)
		})
	})

	h.Mux.Route("/appointments", func(r chi.Router) {
		r.Get("/availability", h.GetAvailableSlots)
		// 未登录也能进入，由预约逻辑本身返回“请先登录”
		r.With(h.rateLimit, h.optionalAuth).Post("/", h.BookAppointment)

		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.With(staffOnly).Get("/", h.GetAppointments)
			r.With(staffOnly).Patch("/{id}/status", h.UpdateAppointmentStatus)
			r.With(staffOnly).Get("/availability-config", h.GetAvailabilityConfig)
			r.With(adminOnly).Patch("/availability-config/{day}", h.UpdateAvailabilityConfig)
		})
	})

	// 公开表单
	h.Mux.With(h.rateLimit).Post("/contact", h.SubmitContactMessage)
	h.Mux.Route("/newsletter", func(r chi.Router) {
		r.With(h.rateLimit).Post("/", h.SubscribeNewsletter)
		r.Get("/unsubscribe/{token}", h.UnsubscribeNewsletter)
		r.With(h.auth, adminOnly).Get("/subscribers", h.GetNewsletterSubscribers)
		r.With(h.auth, adminOnly).Delete("/subscribers/{id}", h.DeleteNewsletterSubscriber)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
			r.Get("/appointments", h.GetMyAppointments)
			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", h.GetMyFavorites)
				r.Put("/{projectID}", h.AddMyFavorite)
				r.Delete("/{projectID}", h.RemoveMyFavorite)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
				r.Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.Use(staffOnly)
			r.Post("/", h.CreateClient)
			r.Get("/", h.GetAllClients)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.clientInfo)
				r.Get("/", h.GetClient)
				r.Patch("/", h.UpdateClient)
				r.With(adminOnly).Delete("/", h.DeleteClient)
			})
		})

		r.Route("/operations", func(r chi.Router) {
			r.Use(staffOnly)
			r.Post("/", h.CreateOperation)
			r.Get("/", h.GetAllOperations)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.operationInfo)
				r.Get("/", h.GetOperation)
				r.Patch("/", h.UpdateOperation)
				r.With(adminOnly).Delete("/", h.DeleteOperation)
			})
		})

		r.Route("/contact-messages", func(r chi.Router) {
			r.Use(staffOnly)
			r.Get("/", h.GetContactMessages)
			r.With(adminOnly).Delete("/{id}", h.DeleteContactMessage)
		})
	})
}
