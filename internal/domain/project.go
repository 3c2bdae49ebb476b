package domain

import "time"

type ProjectStatus string

const (
	ProjectStatusPreSale      ProjectStatus = "pre_sale"
	ProjectStatusConstruction ProjectStatus = "construction"
	ProjectStatusReady        ProjectStatus = "ready"
	ProjectStatusSoldOut      ProjectStatus = "sold_out"
)

type Project struct {
	ID          int64         `json:"id"`
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	City        string        `json:"city"`
	Address     string        `json:"address"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Status      ProjectStatus `json:"status"`
	PriceFrom   int64         `json:"priceFrom"` // 以分为单位
	Currency    string        `json:"currency"`
	Bedrooms    int32         `json:"bedrooms"`
	AreaFrom    float64       `json:"areaFrom"` // 平方米
	IsFeatured  bool          `json:"isFeatured"`
	CoverImage  string        `json:"coverImage"`
	Images      []string      `json:"images"`
	Amenities   []string      `json:"amenities"`
	CreatedAt   time.Time     `json:"createdAt"`
	Version     int32         `json:"-"`
}

// ProjectFilter 对应公开列表页上的筛选项，零值表示不过滤
type ProjectFilter struct {
	Status   ProjectStatus
	City     string
	Featured *bool
}

type ProjectMarker struct {
	ID        int64         `json:"id"`
	Slug      string        `json:"slug"`
	Name      string        `json:"name"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Status    ProjectStatus `json:"status"`
}
