package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"coinfolio-api/internal/svc"
	"coinfolio-api/internal/types"
	"coinfolio-api/pkg/quotes"
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

// History returns the recent price series for a coin. Freshness, expiry and
// stale fallback are handled inside the quotes service; this endpoint never
// fails on upstream trouble, it degrades to whatever series is available.
func (l *HistoryLogic) History(req *types.HistoryReq) (*types.HistoryResp, error) {
	coinId := quotes.NormalizeID(req.CoinId)
	if coinId == "" {
		return nil, ErrInvalidHolding
	}
	points := l.svcCtx.Quotes.History(l.ctx, coinId, req.Days, req.Currency)
	return &types.HistoryResp{Prices: points}, nil
}
