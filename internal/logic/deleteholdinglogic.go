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

type DeleteHoldingLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteHoldingLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteHoldingLogic {
	return &DeleteHoldingLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DeleteHoldingLogic) DeleteHolding(req *types.DeleteHoldingReq) error {
	userId, err := userIdFromCtx(l.ctx)
	if err != nil {
		return err
	}

	coinId := quotes.NormalizeID(req.CoinId)
	holding, err := l.svcCtx.HoldingsModel.FindOneByUserIdCoinId(l.ctx, userId, coinId)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrHoldingNotFound
		}
		return err
	}

	return l.svcCtx.HoldingsModel.Delete(l.ctx, holding.Id)
}
