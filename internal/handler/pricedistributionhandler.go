package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"buffotte-api/internal/logic"
	"buffotte-api/internal/svc"
)

func PriceDistributionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewPriceDistributionLogic(r.Context(), svcCtx)
		resp, err := l.PriceDistribution()
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
