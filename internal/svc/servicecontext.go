package svc

import (
	"context"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	cachekeys "coinfolio-api/internal/cache"
	"coinfolio-api/internal/config"
	"coinfolio-api/internal/model"
	"coinfolio-api/pkg/quotes"
)

type ServiceContext struct {
	Config config.Config

	UsersModel    model.UsersModel
	HoldingsModel model.HoldingsModel

	// Cache is the Redis-backed response cache (search results, logos).
	Cache cache.Cache
	TTL   cachekeys.TTLSet

	// The in-process price core. SpotCache and Refresher live for the
	// process lifetime; the refresher is the cache's only writer.
	SpotCache *quotes.SpotCache
	Quotes    *quotes.Service
	Refresher *quotes.Refresher
	Valuator  *quotes.Valuator
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config: c,
		TTL:    cachekeys.NewTTLSet(c.TTL.Short, c.TTL.Medium, c.TTL.Long),
	}

	cacheConf := cache.CacheConf{{RedisConf: c.Redis, Weight: 100}}
	svc.Cache = cache.New(cacheConf, syncx.NewSingleFlight(), cache.NewStat(cachekeys.Namespace), model.ErrNotFound)

	conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
	svc.UsersModel = model.NewUsersModel(conn, cacheConf)
	svc.HoldingsModel = model.NewHoldingsModel(conn, cacheConf)

	quotesCfg := c.Quotes.Value
	if quotesCfg == nil {
		quotesCfg = quotes.DefaultConfig()
	}
	client := quotesCfg.BuildClient()

	svc.SpotCache = quotes.NewSpotCache()
	svc.Quotes = quotes.NewService(client, quotes.NewSeriesCache(quotesCfg.SeriesTTL), quotesCfg.RequestTimeout)
	svc.Refresher = quotes.NewRefresher(client, holdingsIndex{svc.HoldingsModel}, svc.SpotCache, quotesCfg.RefresherConfig())
	svc.Valuator = quotes.NewValuator(svc.SpotCache, quotesCfg.Currencies)

	return svc
}

// holdingsIndex adapts the holdings model to the refresher's collaborator
// interface.
type holdingsIndex struct {
	model.HoldingsModel
}

func (h holdingsIndex) DistinctAssetIDs(ctx context.Context) ([]string, error) {
	return h.DistinctCoinIds(ctx)
}
