package types

import (
	"buffotte-api/internal/repo"
	"buffotte-api/pkg/reconcile"
)

type SearchReq struct {
	Q string `form:"q,optional"`
}

type SearchResp struct {
	Success bool               `json:"success"`
	Data    []repo.ItemSummary `json:"data"`
}

type ItemDetailReq struct {
	Identifier string `path:"identifier"`
}

type ItemDetailResp struct {
	Success bool            `json:"success"`
	Data    *reconcile.Item `json:"data"`
}

type HistoryReq struct {
	Identifier string `path:"identifier"`
	Limit      int    `form:"limit,default=500"`
}

type HistoryResp struct {
	Success bool              `json:"success"`
	Data    []repo.PricePoint `json:"data"`
}

type RefreshReq struct {
	Id   int64  `json:"id,optional"`
	Name string `json:"name,optional"`
}

type RefreshResp struct {
	Success        bool                   `json:"success"`
	Data           *reconcile.Item        `json:"data"`
	Message        string                 `json:"message"`
	CrawlerSuccess bool                   `json:"crawlerSuccess"`
	DataUpdated    bool                   `json:"dataUpdated"`
	PriceChanged   bool                   `json:"priceChanged"`
	PriceChange    *reconcile.PriceChange `json:"priceChange"`
	RefreshTime    string                 `json:"refreshTime"`
}

type StatsResp struct {
	Success bool           `json:"success"`
	Data    *repo.Overview `json:"data"`
}

type DistributionResp struct {
	Success bool               `json:"success"`
	Data    []repo.PriceBucket `json:"data"`
}

type HealthResp struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ErrorResp is the envelope for 4xx/5xx responses.
type ErrorResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
