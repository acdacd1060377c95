package logic

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"coinfolio-api/internal/model"
	"coinfolio-api/internal/svc"
	"coinfolio-api/internal/types"
	"coinfolio-api/pkg/quotes"
)

type UpdateHoldingLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUpdateHoldingLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UpdateHoldingLogic {
	return &UpdateHoldingLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// UpdateHolding replaces the quantity of an existing position.
func (l *UpdateHoldingLogic) UpdateHolding(req *types.UpdateHoldingReq) (*types.HoldingResp, error) {
	userId, err := userIdFromCtx(l.ctx)
	if err != nil {
		return nil, err
	}

	coinId := quotes.NormalizeID(req.CoinId)
	if coinId == "" || req.Quantity <= 0 {
		return nil, ErrInvalidHolding
	}

	holding, err := l.svcCtx.HoldingsModel.FindOneByUserIdCoinId(l.ctx, userId, coinId)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrHoldingNotFound
		}
		return nil, err
	}

	holding.Quantity = req.Quantity
	if err := l.svcCtx.HoldingsModel.Update(l.ctx, holding); err != nil {
		return nil, err
	}

	return &types.HoldingResp{
		CoinId:   coinId,
		Quantity: holding.Quantity,
		Logo:     holding.LogoUrl.String,
	}, nil
}
