package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"buffotte-api/internal/logic"
	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
)

func ItemDetailHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ItemDetailReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewItemDetailLogic(r.Context(), svcCtx)
		resp, err := l.ItemDetail(&req)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
