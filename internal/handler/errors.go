package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"buffotte-api/internal/types"
	"buffotte-api/pkg/reconcile"
)

// writeError maps domain errors onto HTTP statuses while keeping the
// response envelope the dashboard expects.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, reconcile.ErrInvalidTarget):
		status = http.StatusBadRequest
		message = "an item id or name is required"
	case errors.Is(err, reconcile.ErrItemNotFound):
		status = http.StatusNotFound
		message = "item not found"
	case errors.Is(err, reconcile.ErrItemVanished):
		message = "item disappeared during refresh"
	default:
		logx.WithContext(ctx).Errorf("request failed: %v", err)
	}

	httpx.WriteJsonCtx(ctx, w, status, &types.ErrorResp{Success: false, Message: message})
}
