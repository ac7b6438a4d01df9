package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"buffotte-api/internal/logic"
	"buffotte-api/internal/svc"
)

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewHealthLogic(r.Context(), svcCtx)
		resp := l.Health()
		if !resp.Success {
			httpx.WriteJsonCtx(r.Context(), w, http.StatusServiceUnavailable, resp)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
