package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/utils"
)

func (h *Handler) GetProjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var req struct {
		Status   string `validate:"omitempty,oneof=pre_sale construction ready sold_out"`
		City     string `validate:"omitempty,max=100"`
		Featured string `validate:"omitempty,boolean"`
	}
	req.Status = query.Get("status")
	req.City = query.Get("city")
	req.Featured = query.Get("featured")

	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	filter := domain.ProjectFilter{
		Status: domain.ProjectStatus(req.Status),
		City:   req.City,
	}
	if req.Featured != "" {
		featured, _ := strconv.ParseBool(req.Featured)
		filter.Featured = &featured
	}

	projects, err := h.repository.GetProjects(filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取楼盘列表成功", projects)
}

func (h *Handler) GetFeaturedProjects(w http.ResponseWriter, r *http.Request) {
	featured := true

	projects, err := h.repository.GetProjects(domain.ProjectFilter{Featured: &featured})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取精选楼盘成功", projects)
}

func (h *Handler) GetProjectMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := h.repository.GetProjectMarkers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取地图标记成功", markers)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)
	h.successResponse(w, r, "获取楼盘信息成功", project)
}

func projectConflictMessage(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "projects_slug_key" {
		return errors.New("该 slug 已被其他楼盘使用")
	}
	return nil
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name" validate:"required,max=200"`
		Slug        string   `json:"slug" validate:"omitempty,max=200"`
		Summary     string   `json:"summary" validate:"max=500"`
		Description string   `json:"description"`
		City        string   `json:"city" validate:"required"`
		Address     string   `json:"address"`
		Latitude    float64  `json:"latitude" validate:"latitude"`
		Longitude   float64  `json:"longitude" validate:"longitude"`
		Status      string   `json:"status" validate:"required,oneof=pre_sale construction ready sold_out"`
		PriceFrom   int64    `json:"priceFrom" validate:"gte=0"`
		Currency    string   `json:"currency" validate:"required,len=3,uppercase"`
		Bedrooms    int32    `json:"bedrooms" validate:"gte=0"`
		AreaFrom    float64  `json:"areaFrom" validate:"gte=0"`
		IsFeatured  bool     `json:"isFeatured"`
		CoverImage  string   `json:"coverImage" validate:"omitempty,url"`
		Images      []string `json:"images" validate:"dive,url"`
		Amenities   []string `json:"amenities" validate:"dive,required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 没有指定 slug 时根据楼盘名生成
	slug := req.Slug
	if slug == "" {
		slug = req.Name
	}

	project := &domain.Project{
		Slug:        utils.ProjectSlug(slug),
		Name:        req.Name,
		Summary:     req.Summary,
		Description: req.Description,
		City:        req.City,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      domain.ProjectStatus(req.Status),
		PriceFrom:   req.PriceFrom,
		Currency:    req.Currency,
		Bedrooms:    req.Bedrooms,
		AreaFrom:    req.AreaFrom,
		IsFeatured:  req.IsFeatured,
		CoverImage:  req.CoverImage,
		Images:      req.Images,
		Amenities:   req.Amenities,
	}
	if project.Images == nil {
		project.Images = make([]string, 0)
	}
	if project.Amenities == nil {
		project.Amenities = make([]string, 0)
	}

	if err := utils.ValidateProject(project); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateProject(project); err != nil {
		if msg := projectConflictMessage(err); msg != nil {
			h.badRequest(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建楼盘成功", project)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string   `json:"name" validate:"omitempty,max=200"`
		Slug        *string   `json:"slug" validate:"omitempty,max=200"`
		Summary     *string   `json:"summary" validate:"omitempty,max=500"`
		Description *string   `json:"description"`
		City        *string   `json:"city"`
		Address     *string   `json:"address"`
		Latitude    *float64  `json:"latitude" validate:"omitempty,latitude"`
		Longitude   *float64  `json:"longitude" validate:"omitempty,longitude"`
		Status      *string   `json:"status" validate:"omitempty,oneof=pre_sale construction ready sold_out"`
		PriceFrom   *int64    `json:"priceFrom" validate:"omitempty,gte=0"`
		Currency    *string   `json:"currency" validate:"omitempty,len=3,uppercase"`
		Bedrooms    *int32    `json:"bedrooms" validate:"omitempty,gte=0"`
		AreaFrom    *float64  `json:"areaFrom" validate:"omitempty,gte=0"`
		IsFeatured  *bool     `json:"isFeatured"`
		CoverImage  *string   `json:"coverImage" validate:"omitempty,url"`
		Images      *[]string `json:"images" validate:"omitempty,dive,url"`
		Amenities   *[]string `json:"amenities" validate:"omitempty,dive,required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	project := r.Context().Value(ProjectCtx).(*domain.Project)

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Slug != nil {
		project.Slug = utils.ProjectSlug(*req.Slug)
	}
	if req.Summary != nil {
		project.Summary = *req.Summary
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.City != nil {
		project.City = *req.City
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.Latitude != nil {
		project.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		project.Longitude = *req.Longitude
	}
	if req.Status != nil {
		project.Status = domain.ProjectStatus(*req.Status)
	}
	if req.PriceFrom != nil {
		project.PriceFrom = *req.PriceFrom
	}
	if req.Currency != nil {
		project.Currency = *req.Currency
	}
	if req.Bedrooms != nil {
		project.Bedrooms = *req.Bedrooms
	}
	if req.AreaFrom != nil {
		project.AreaFrom = *req.AreaFrom
	}
	if req.IsFeatured != nil {
		project.IsFeatured = *req.IsFeatured
	}
	if req.CoverImage != nil {
		project.CoverImage = *req.CoverImage
	}
	if req.Images != nil {
		project.Images = *req.Images
	}
	if req.Amenities != nil {
		project.Amenities = *req.Amenities
	}

	if err := utils.ValidateProject(project); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateProject(project); err != nil {
		if msg := projectConflictMessage(err); msg != nil {
			h.badRequest(w, r, msg)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新楼盘失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新楼盘成功", project)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)

	if err := h.repository.DeleteProject(project.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "operations_project_id_fkey":
			h.errorResponse(w, r, "该楼盘存在关联的交易，无法删除")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "楼盘不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除楼盘成功", nil)
}
