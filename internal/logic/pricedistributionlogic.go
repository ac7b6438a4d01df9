package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"buffotte-api/internal/repo"
	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
)

type PriceDistributionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPriceDistributionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PriceDistributionLogic {
	return &PriceDistributionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PriceDistributionLogic) PriceDistribution() (*types.DistributionResp, error) {
	buckets, err := l.svcCtx.Repos.Stats.PriceDistribution(l.ctx)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []repo.PriceBucket{}
	}
	return &types.DistributionResp{Success: true, Data: buckets}, nil
}
