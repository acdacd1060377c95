package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"coinfolio-api/internal/svc"
	"coinfolio-api/internal/types"
	"coinfolio-api/pkg/quotes"
)

type PortfolioLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPortfolioLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PortfolioLogic {
	return &PortfolioLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Portfolio values the caller's holdings against the in-process spot cache.
// Assets without a cached price contribute zero; the upstream is never
// consulted on this path.
func (l *PortfolioLogic) Portfolio() (*types.PortfolioResp, error) {
	userId, err := userIdFromCtx(l.ctx)
	if err != nil {
		return nil, err
	}

	user, err := l.svcCtx.UsersModel.FindOne(l.ctx, userId)
	if err != nil {
		return nil, err
	}

	rows, err := l.svcCtx.HoldingsModel.ListByUserId(l.ctx, userId)
	if err != nil {
		return nil, err
	}

	holdings := make([]quotes.Holding, 0, len(rows))
	logos := make(map[string]string, len(rows))
	for _, row := range rows {
		holdings = append(holdings, quotes.Holding{AssetID: row.CoinId, Quantity: row.Quantity})
		if row.LogoUrl.Valid {
			logos[row.CoinId] = row.LogoUrl.String
		}
	}

	totals, valuations := l.svcCtx.Valuator.Valuate(holdings)

	items := make([]types.HoldingValuationItem, 0, len(valuations))
	for _, v := range valuations {
		items = append(items, types.HoldingValuationItem{
			CoinId:   v.AssetID,
			Quantity: v.Quantity,
			Logo:     logos[v.AssetID],
			Prices:   v.Prices,
			Values:   v.Values,
		})
	}

	return &types.PortfolioResp{
		Email:    user.Email,
		Name:     user.Name,
		Totals:   totals,
		Holdings: items,
	}, nil
}
