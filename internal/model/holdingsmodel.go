package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlc"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

const cacheHoldingsIdPrefix = "cache:holdings:id:"

type (
	// HoldingsModel persists per-user asset holdings.
	HoldingsModel interface {
		Insert(ctx context.Context, data *Holdings) (int64, error)
		FindOne(ctx context.Context, id int64) (*Holdings, error)
		FindOneByUserIdCoinId(ctx context.Context, userId int64, coinId string) (*Holdings, error)
		ListByUserId(ctx context.Context, userId int64) ([]Holdings, error)
		Update(ctx context.Context, data *Holdings) error
		Delete(ctx context.Context, id int64) error
		DistinctCoinIds(ctx context.Context) ([]string, error)
	}

	// Holdings mirrors the holdings table. CoinId is stored normalized
	// (trimmed, lower-cased).
	Holdings struct {
		Id        int64          `db:"id"`
		UserId    int64          `db:"user_id"`
		CoinId    string         `db:"coin_id"`
		Quantity  float64        `db:"quantity"`
		LogoUrl   sql.NullString `db:"logo_url"`
		CreatedAt time.Time      `db:"created_at"`
		UpdatedAt time.Time      `db:"updated_at"`
	}

	defaultHoldingsModel struct {
		sqlc.CachedConn
		table string
	}
)

// NewHoldingsModel returns a model for the holdings table.
func NewHoldingsModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) HoldingsModel {
	return &defaultHoldingsModel{
		CachedConn: sqlc.NewConn(conn, c, opts...),
		table:      "public.holdings",
	}
}

func (m *defaultHoldingsModel) Insert(ctx context.Context, data *Holdings) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (user_id, coin_id, quantity, logo_url, created_at, updated_at) VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id", m.table)
	var id int64
	if err := m.QueryRowNoCacheCtx(ctx, &id, query, data.UserId, data.CoinId, data.Quantity, data.LogoUrl); err != nil {
		return 0, err
	}
	return id, nil
}

func (m *defaultHoldingsModel) FindOne(ctx context.Context, id int64) (*Holdings, error) {
	idKey := fmt.Sprintf("%s%v", cacheHoldingsIdPrefix, id)
	var resp Holdings
	err := m.QueryRowCtx(ctx, &resp, idKey, func(ctx context.Context, conn sqlx.SqlConn, v any) error {
		query := fmt.Sprintf("SELECT id, user_id, coin_id, quantity, logo_url, created_at, updated_at FROM %s WHERE id = $1 LIMIT 1", m.table)
		return conn.QueryRowCtx(ctx, v, query, id)
	})
	switch err {
	case nil:
		return &resp, nil
	case sqlc.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultHoldingsModel) FindOneByUserIdCoinId(ctx context.Context, userId int64, coinId string) (*Holdings, error) {
	var resp Holdings
	query := fmt.Sprintf("SELECT id, user_id, coin_id, quantity, logo_url, created_at, updated_at FROM %s WHERE user_id = $1 AND coin_id = $2 LIMIT 1", m.table)
	err := m.QueryRowNoCacheCtx(ctx, &resp, query, userId, coinId)
	switch err {
	case nil:
		return &resp, nil
	case sqlc.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultHoldingsModel) ListByUserId(ctx context.Context, userId int64) ([]Holdings, error) {
	var resp []Holdings
	query := fmt.Sprintf("SELECT id, user_id, coin_id, quantity, logo_url, created_at, updated_at FROM %s WHERE user_id = $1 ORDER BY id", m.table)
	if err := m.QueryRowsNoCacheCtx(ctx, &resp, query, userId); err != nil {
		return nil, err
	}
	return resp, nil
}

func (m *defaultHoldingsModel) Update(ctx context.Context, data *Holdings) error {
	idKey := fmt.Sprintf("%s%v", cacheHoldingsIdPrefix, data.Id)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		query := fmt.Sprintf("UPDATE %s SET quantity = $1, logo_url = $2, updated_at = NOW() WHERE id = $3", m.table)
		return conn.ExecCtx(ctx, query, data.Quantity, data.LogoUrl, data.Id)
	}, idKey)
	return err
}

func (m *defaultHoldingsModel) Delete(ctx context.Context, id int64) error {
	idKey := fmt.Sprintf("%s%v", cacheHoldingsIdPrefix, id)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", m.table)
		return conn.ExecCtx(ctx, query, id)
	}, idKey)
	return err
}

// DistinctCoinIds returns every coin id held by any user. Feeds the bulk
// refresh cycle; intentionally uncached so the refresher always sees the
// current set.
func (m *defaultHoldingsModel) DistinctCoinIds(ctx context.Context) ([]string, error) {
	var ids []string
	query := fmt.Sprintf("SELECT DISTINCT coin_id FROM %s ORDER BY coin_id", m.table)
	if err := m.QueryRowsNoCacheCtx(ctx, &ids, query); err != nil {
		return nil, err
	}
	return ids, nil
}
