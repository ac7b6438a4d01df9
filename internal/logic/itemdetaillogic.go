package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
	"buffotte-api/pkg/reconcile"
)

type ItemDetailLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewItemDetailLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ItemDetailLogic {
	return &ItemDetailLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ItemDetailLogic) ItemDetail(req *types.ItemDetailReq) (*types.ItemDetailResp, error) {
	item, err := l.svcCtx.Repos.Items.FindByIdentifier(l.ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, reconcile.ErrItemNotFound
	}
	return &types.ItemDetailResp{Success: true, Data: item}, nil
}
