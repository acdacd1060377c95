package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"coinfolio-api/internal/svc"
	"coinfolio-api/internal/types"
)

type ListHoldingsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListHoldingsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListHoldingsLogic {
	return &ListHoldingsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ListHoldings returns the caller's raw positions without valuation.
func (l *ListHoldingsLogic) ListHoldings() ([]types.HoldingResp, error) {
	userId, err := userIdFromCtx(l.ctx)
	if err != nil {
		return nil, err
	}

	rows, err := l.svcCtx.HoldingsModel.ListByUserId(l.ctx, userId)
	if err != nil {
		return nil, err
	}

	out := make([]types.HoldingResp, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.HoldingResp{
			CoinId:   row.CoinId,
			Quantity: row.Quantity,
			Logo:     row.LogoUrl.String,
		})
	}
	return out, nil
}
