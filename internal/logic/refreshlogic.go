package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"buffotte-api/internal/svc"
	"buffotte-api/internal/types"
	"buffotte-api/pkg/journal"
	"buffotte-api/pkg/reconcile"
)

type RefreshLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefreshLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefreshLogic {
	return &RefreshLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RefreshLogic) Refresh(req *types.RefreshReq) (*types.RefreshResp, error) {
	target := reconcile.Target{ID: req.Id, Name: req.Name}
	outcome, err := l.svcCtx.Coordinator.Refresh(l.ctx, target)
	l.writeJournal(target, outcome, err)
	if err != nil {
		return nil, err
	}

	return &types.RefreshResp{
		Success:        true,
		Data:           outcome.ItemAfter,
		Message:        outcome.Message,
		CrawlerSuccess: outcome.UpdaterSucceeded,
		DataUpdated:    outcome.DataUpdated,
		PriceChanged:   outcome.PriceChanged,
		PriceChange:    outcome.PriceChange,
		RefreshTime:    outcome.RefreshTime.UTC().Format(time.RFC3339),
	}, nil
}

func (l *RefreshLogic) writeJournal(target reconcile.Target, outcome *reconcile.Outcome, refreshErr error) {
	if l.svcCtx.Journal == nil {
		return
	}

	rec := &journal.RefreshRecord{
		ItemID:   target.ID,
		ItemName: target.Name,
	}
	if outcome != nil {
		rec.CrawlerSuccess = outcome.UpdaterSucceeded
		rec.Forced = outcome.Forced
		rec.DataUpdated = outcome.DataUpdated
		rec.PriceChanged = outcome.PriceChanged
		rec.Message = outcome.Message
		rec.Timestamp = outcome.RefreshTime
		if outcome.ItemBefore != nil {
			rec.ItemID = outcome.ItemBefore.ID
			rec.ItemName = outcome.ItemBefore.Name
			rec.PriceBefore = outcome.ItemBefore.SellReferencePrice
		}
		if outcome.ItemAfter != nil {
			rec.PriceAfter = outcome.ItemAfter.SellReferencePrice
		}
	}
	if refreshErr != nil {
		rec.ErrorMessage = refreshErr.Error()
	}

	if _, err := l.svcCtx.Journal.WriteRefresh(rec); err != nil {
		l.Errorf("refresh journal write failed: %v", err)
	}
}
