package logic

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	cachekeys "coinfolio-api/internal/cache"
	"coinfolio-api/internal/model"
	"coinfolio-api/internal/svc"
	"coinfolio-api/internal/types"
	"coinfolio-api/pkg/quotes"
)

type AddHoldingLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAddHoldingLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AddHoldingLogic {
	return &AddHoldingLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// AddHolding adds quantity to the caller's position in a coin. Repeated adds
// of the same coin accumulate rather than duplicate rows. Adding a coin the
// spot cache has never seen triggers an on-demand price refresh so the
// portfolio valuation does not wait for the next scheduled cycle.
func (l *AddHoldingLogic) AddHolding(req *types.AddHoldingReq) (*types.HoldingResp, error) {
	userId, err := userIdFromCtx(l.ctx)
	if err != nil {
		return nil, err
	}

	coinId := quotes.NormalizeID(req.CoinId)
	if coinId == "" || req.Quantity <= 0 {
		return nil, ErrInvalidHolding
	}

	logo := req.Logo
	if logo == "" {
		logo = l.resolveLogo(coinId)
	}

	existing, err := l.svcCtx.HoldingsModel.FindOneByUserIdCoinId(l.ctx, userId, coinId)
	switch {
	case err == nil:
		existing.Quantity += req.Quantity
		if logo != "" {
			existing.LogoUrl = sql.NullString{String: logo, Valid: true}
		}
		if err := l.svcCtx.HoldingsModel.Update(l.ctx, existing); err != nil {
			return nil, err
		}
		return &types.HoldingResp{CoinId: coinId, Quantity: existing.Quantity, Logo: logo}, nil
	case errors.Is(err, model.ErrNotFound):
		holding := &model.Holdings{
			UserId:   userId,
			CoinId:   coinId,
			Quantity: req.Quantity,
		}
		if logo != "" {
			holding.LogoUrl = sql.NullString{String: logo, Valid: true}
		}
		if _, err := l.svcCtx.HoldingsModel.Insert(l.ctx, holding); err != nil {
			return nil, err
		}
		l.svcCtx.Refresher.RefreshAsset(l.ctx, coinId)
		return &types.HoldingResp{CoinId: coinId, Quantity: req.Quantity, Logo: logo}, nil
	default:
		return nil, err
	}
}

// resolveLogo looks up the coin's thumbnail via the upstream search endpoint,
// going through Redis so repeated adds of popular coins do not hit upstream.
// Failures degrade to an empty logo.
func (l *AddHoldingLogic) resolveLogo(coinId string) string {
	key := cachekeys.LogoKey(coinId)
	var logo string
	if err := l.svcCtx.Cache.GetCtx(l.ctx, key, &logo); err == nil {
		return logo
	} else if !l.svcCtx.Cache.IsNotFound(err) {
		l.Errorf("logo cache read failed for %s: %v", coinId, err)
	}

	logo = l.svcCtx.Quotes.LogoURL(l.ctx, coinId)
	if logo == "" {
		return ""
	}
	if err := l.svcCtx.Cache.SetWithExpireCtx(l.ctx, key, logo, cachekeys.LogoTTL(l.svcCtx.TTL)); err != nil {
		l.Errorf("logo cache write failed for %s: %v", coinId, err)
	}
	return logo
}
