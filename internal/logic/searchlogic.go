package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"buffotte-api/internal/repo"
	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
)

const searchLimit = 20

type SearchLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSearchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SearchLogic {
	return &SearchLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SearchLogic) Search(req *types.SearchReq) (*types.SearchResp, error) {
	rows, err := l.svcCtx.Repos.Items.Search(l.ctx, req.Q, searchLimit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repo.ItemSummary{}
	}
	return &types.SearchResp{Success: true, Data: rows}, nil
}
