package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	cachekeys "coinfolio-api/internal/cache"
	"coinfolio-api/internal/svc"
	"coinfolio-api/internal/types"
)

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

// Search proxies the upstream coin search. Results are cached in Redis per
// query so repeated searches for popular terms stay off the rate-limited
// upstream. Empty queries return an empty list without a cache or upstream
// round trip.
func (l *SearchLogic) Search(req *types.SearchReq) (*types.SearchResp, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &types.SearchResp{Coins: []types.SearchCoin{}}, nil
	}

	key := cachekeys.SearchKey(query)
	var cached types.SearchResp
	if err := l.svcCtx.Cache.GetCtx(l.ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !l.svcCtx.Cache.IsNotFound(err) {
		l.Errorf("search cache read failed for %q: %v", query, err)
	}

	coins := l.svcCtx.Quotes.Search(l.ctx, query)
	resp := &types.SearchResp{Coins: make([]types.SearchCoin, 0, len(coins))}
	for _, coin := range coins {
		resp.Coins = append(resp.Coins, types.SearchCoin{
			Id:     coin.ID,
			Name:   coin.Name,
			Symbol: coin.Symbol,
			Thumb:  coin.Thumb,
		})
	}

	if len(resp.Coins) > 0 {
		if err := l.svcCtx.Cache.SetWithExpireCtx(l.ctx, key, resp, cachekeys.SearchTTL(l.svcCtx.TTL)); err != nil {
			l.Errorf("search cache write failed for %q: %v", query, err)
		}
	}
	return resp, nil
}
