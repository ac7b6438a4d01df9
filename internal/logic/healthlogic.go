package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
)

const serviceVersion = "1.0.0"

type HealthLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthLogic {
	return &HealthLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthLogic) Health() *types.HealthResp {
	resp := &types.HealthResp{
		Success:   true,
		Message:   "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   serviceVersion,
	}

	var one int
	if err := l.svcCtx.DBConn.QueryRowCtx(l.ctx, &one, "SELECT 1"); err != nil {
		l.Errorf("health probe: database unreachable: %v", err)
		resp.Success = false
		resp.Message = "database unreachable"
	}
	return resp
}
