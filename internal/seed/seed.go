package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/utils"
)

// 导入文件必须包含的列，其余列可选
var requiredHeaders = []string{"name", "city", "address", "latitude", "longitude", "status", "price_from"}

type ProjectCreator interface {
	CreateProject(p *domain.Project) error
}

// ImportProjects 从 CSV 中读取楼盘并逐行插入，单行失败只记录日志，返回成功插入的数量。
// 多值列（images、amenities）使用 | 分隔。
func ImportProjects(store ProjectCreator, src io.Reader) (int, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return 0, fmt.Errorf("缺少列 %q", h)
		}
	}

	cnt := 0
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return cnt, fmt.Errorf("读取第 %d 行失败: %w", line+1, err)
		}
		line++

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		p, err := projectFromRecord(record)
		if err != nil {
			slog.Error("楼盘数据无效", "line", line, "error", err)
			continue
		}

		if err := store.CreateProject(p); err != nil {
			slog.Error("插入楼盘失败", "line", line, "slug", p.Slug, "error", err)
			continue
		}

		cnt++
	}

	return cnt, nil
}

func projectFromRecord(record map[string]string) (*domain.Project, error) {
	p := &domain.Project{
		Name:        record["name"],
		Slug:        record["slug"],
		Summary:     record["summary"],
		Description: record["description"],
		City:        record["city"],
		Address:     record["address"],
		Status:      domain.ProjectStatus(record["status"]),
		Currency:    record["currency"],
		CoverImage:  record["cover_image"],
		Images:      splitList(record["images"]),
		Amenities:   splitList(record["amenities"]),
	}

	if p.Name == "" {
		return nil, errors.New("楼盘名不能为空")
	}
	if p.Slug == "" {
		p.Slug = utils.ProjectSlug(p.Name + " " + p.City)
	}
	if p.Currency == "" {
		p.Currency = "CNY"
	}
	if p.CoverImage == "" && len(p.Images) > 0 {
		p.CoverImage = p.Images[0]
	}

	switch p.Status {
	case domain.ProjectStatusPreSale, domain.ProjectStatusConstruction, domain.ProjectStatusReady, domain.ProjectStatusSoldOut:
	default:
		return nil, fmt.Errorf("未知的楼盘状态 %q", p.Status)
	}

	var err error
	if p.Latitude, err = strconv.ParseFloat(record["latitude"], 64); err != nil {
		return nil, fmt.Errorf("纬度格式错误: %w", err)
	}
	if p.Longitude, err = strconv.ParseFloat(record["longitude"], 64); err != nil {
		return nil, fmt.Errorf("经度格式错误: %w", err)
	}
	// 价格以元填写，入库时转换为分
	price, err := strconv.ParseFloat(record["price_from"], 64)
	if err != nil {
		return nil, fmt.Errorf("起价格式错误: %w", err)
	}
	p.PriceFrom = int64(math.Round(price * 100))

	if v := record["bedrooms"]; v != "" {
		bedrooms, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("户型格式错误: %w", err)
		}
		p.Bedrooms = int32(bedrooms)
	}
	if v := record["area_from"]; v != "" {
		if p.AreaFrom, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("面积格式错误: %w", err)
		}
	}
	if v := record["is_featured"]; v != "" {
		if p.IsFeatured, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("推荐标记格式错误: %w", err)
		}
	}

	if err := utils.ValidateProject(p); err != nil {
		return nil, err
	}

	return p, nil
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, "|") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
