package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"buffotte-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/api/health",
				Handler: HealthHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/search",
				Handler: SearchHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/item/:identifier",
				Handler: ItemDetailHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/item/:identifier/history",
				Handler: HistoryHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/item/refresh",
				Handler: RefreshHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/stats",
				Handler: StatsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/stats/price-distribution",
				Handler: PriceDistributionHandler(serverCtx),
			},
			// Compatibility aliases kept for older dashboard builds.
			{
				Method:  http.MethodPost,
				Path:    "/api/refresh-item",
				Handler: RefreshHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/price-distribution",
				Handler: PriceDistributionHandler(serverCtx),
			},
		},
	)
}
