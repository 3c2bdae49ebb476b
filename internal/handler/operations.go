package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/domain"
	"github.com/sysu-ecnc-dev/property-site/backend/internal/utils"
)

// 外键约束失败时给出具体是哪个关联对象不存在
func operationReferenceMessage(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch pgErr.ConstraintName {
	case "operations_client_id_fkey":
		return errors.New("客户不存在")
	case "operations_project_id_fkey":
		return errors.New("楼盘不存在")
	}
	return nil
}

func (h *Handler) GetAllOperations(w http.ResponseWriter, r *http.Request) {
	operations, err := h.repository.GetAllOperations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取交易列表成功", operations)
}

func (h *Handler) CreateOperation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID  int64      `json:"clientID" validate:"required,gt=0"`
		ProjectID int64      `json:"projectID" validate:"required,gt=0"`
		Type      string     `json:"type" validate:"required,oneof=sale rent reservation"`
		Amount    int64      `json:"amount" validate:"required,gt=0"`
		Currency  string     `json:"currency" validate:"required,len=3,uppercase"`
		Status    string     `json:"status" validate:"omitempty,oneof=open closed cancelled"`
		ClosedAt  *time.Time `json:"closedAt"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	op := &domain.Operation{
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Type:      domain.OperationType(req.Type),
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    domain.OperationStatus(req.Status),
		ClosedAt:  req.ClosedAt,
	}
	if op.Status == "" {
		op.Status = domain.OperationStatusOpen
	}

	if err := utils.ValidateOperation(op); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateOperation(op); err != nil {
		if msg := operationReferenceMessage(err); msg != nil {
			h.badRequest(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建交易成功", op)
}

func (h *Handler) GetOperation(w http.ResponseWriter, r *http.Request) {
	op := r.Context().Value(OperationCtx).(*domain.Operation)
	h.successResponse(w, r, "获取交易信息成功", op)
}

func (h *Handler) UpdateOperation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID  *int64     `json:"clientID" validate:"omitempty,gt=0"`
		ProjectID *int64     `json:"projectID" validate:"omitempty,gt=0"`
		Type      *string    `json:"type" validate:"omitempty,oneof=sale rent reservation"`
		Amount    *int64     `json:"amount" validate:"omitempty,gt=0"`
		Currency  *string    `json:"currency" validate:"omitempty,len=3,uppercase"`
		Status    *string    `json:"status" validate:"omitempty,oneof=open closed cancelled"`
		ClosedAt  *time.Time `json:"closedAt"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	op := r.Context().Value(OperationCtx).(*domain.Operation)

	if req.ClientID != nil {
		op.ClientID = *req.ClientID
	}
	if req.ProjectID != nil {
		op.ProjectID = *req.ProjectID
	}
	if req.Type != nil {
		op.Type = domain.OperationType(*req.Type)
	}
	if req.Amount != nil {
		op.Amount = *req.Amount
	}
	if req.Currency != nil {
		op.Currency = *req.Currency
	}
	if req.Status != nil {
		op.Status = domain.OperationStatus(*req.Status)
		// 离开 closed 状态时清空成交时间
		if op.Status != domain.OperationStatusClosed {
			op.ClosedAt = nil
		}
	}
	if req.ClosedAt != nil {
		op.ClosedAt = req.ClosedAt
	}

	if err := utils.ValidateOperation(op); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateOperation(op); err != nil {
		if msg := operationReferenceMessage(err); msg != nil {
			h.badRequest(w, r, msg)
			return
		}
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新交易失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新交易成功", op)
}

func (h *Handler) DeleteOperation(w http.ResponseWriter, r *http.Request) {
	op := r.Context().Value(OperationCtx).(*domain.Operation)

	if err := h.repository.DeleteOperation(op.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "交易不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除交易成功", nil)
}
