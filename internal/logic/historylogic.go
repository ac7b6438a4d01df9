package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"buffotte-api/internal/repo"
	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
	"buffotte-api/pkg/reconcile"
)

type HistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HistoryLogic {
	return &HistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HistoryLogic) History(req *types.HistoryReq) (*types.HistoryResp, error) {
	item, err := l.svcCtx.Repos.Items.FindByIdentifier(l.ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, reconcile.ErrItemNotFound
	}

	points, err := l.svcCtx.Repos.History.ListByItem(l.ctx, item.ID, req.Limit)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []repo.PricePoint{}
	}
	return &types.HistoryResp{Success: true, Data: points}, nil
}
