package handler

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "服务运行中", nil)
}

// Ready 检查数据库和 redis 是否可用，不可用时返回 503
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	ready := true

	if err := h.repository.Ping(r.Context()); err != nil {
		h.logInternalServerError(r, err)
		checks["database"] = "unavailable"
		ready = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.logInternalServerError(r, err)
		checks["redis"] = "unavailable"
		ready = false
	}

	if !ready {
		h.writeJSON(w, r, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: "服务暂不可用",
			Data:    checks,
		})
		return
	}

	h.successResponse(w, r, "服务已就绪", checks)
}
