package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
)

type StatsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStatsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StatsLogic {
	return &StatsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *StatsLogic) Stats() (*types.StatsResp, error) {
	overview, err := l.svcCtx.Repos.Stats.Overview(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.StatsResp{Success: true, Data: overview}, nil
}
