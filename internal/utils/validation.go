package utils

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
)

func ValidateProject(p *domain.Project) error {
	if !slug.IsSlug(p.Slug) {
		return fmt.Errorf("无效的 slug：%q", p.Slug)
	}
	if isDigits(p.Slug) {
		return errors.New("slug 不能是纯数字")
	}

	if p.Latitude < -90 || p.Latitude > 90 {
		return errors.New("纬度必须在 -90 到 90 之间")
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return errors.New("经度必须在 -180 到 180 之间")
	}

	if p.PriceFrom < 0 {
		return errors.New("起价不能为负数")
	}
	if p.AreaFrom < 0 {
		return errors.New("面积不能为负数")
	}

	return nil
}

// ValidateOperation 检查交易状态和成交时间是否一致
func ValidateOperation(op *domain.Operation) error {
	if op.Amount <= 0 {
		return errors.New("交易金额必须大于 0")
	}

	switch op.Status {
	case domain.OperationStatusClosed:
		if op.ClosedAt == nil {
			return errors.New("已成交的交易必须填写成交时间")
		}
	default:
		if op.ClosedAt != nil {
			return errors.New("只有已成交的交易才能填写成交时间")
		}
	}

	return nil
}
