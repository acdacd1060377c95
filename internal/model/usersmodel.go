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

const (
	cacheUsersIdPrefix    = "cache:users:id:"
	cacheUsersEmailPrefix = "cache:users:email:"
)

type (
	// UsersModel persists user accounts.
	UsersModel interface {
		Insert(ctx context.Context, data *Users) (int64, error)
		FindOne(ctx context.Context, id int64) (*Users, error)
		FindOneByEmail(ctx context.Context, email string) (*Users, error)
		Delete(ctx context.Context, id int64) error
	}

	// Users mirrors the users table.
	Users struct {
		Id           int64     `db:"id"`
		Name         string    `db:"name"`
		Email        string    `db:"email"`
		PasswordHash string    `db:"password_hash"`
		CreatedAt    time.Time `db:"created_at"`
	}

	defaultUsersModel struct {
		sqlc.CachedConn
		table string
	}
)

// NewUsersModel returns a model for the users table.
func NewUsersModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) UsersModel {
	return &defaultUsersModel{
		CachedConn: sqlc.NewConn(conn, c, opts...),
		table:      "public.users",
	}
}

func (m *defaultUsersModel) Insert(ctx context.Context, data *Users) (int64, error) {
	query := fmt.Sprintf("INSERT INTO %s (name, email, password_hash, created_at) VALUES ($1, $2, $3, NOW()) RETURNING id", m.table)
	var id int64
	err := m.QueryRowNoCacheCtx(ctx, &id, query, data.Name, data.Email, data.PasswordHash)
	if err != nil {
		return 0, err
	}
	emailKey := fmt.Sprintf("%s%v", cacheUsersEmailPrefix, data.Email)
	_ = m.DelCacheCtx(ctx, emailKey)
	return id, nil
}

func (m *defaultUsersModel) FindOne(ctx context.Context, id int64) (*Users, error) {
	idKey := fmt.Sprintf("%s%v", cacheUsersIdPrefix, id)
	var resp Users
	err := m.QueryRowCtx(ctx, &resp, idKey, func(ctx context.Context, conn sqlx.SqlConn, v any) error {
		query := fmt.Sprintf("SELECT id, name, email, password_hash, created_at FROM %s WHERE id = $1 LIMIT 1", m.table)
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

func (m *defaultUsersModel) FindOneByEmail(ctx context.Context, email string) (*Users, error) {
	emailKey := fmt.Sprintf("%s%v", cacheUsersEmailPrefix, email)
	var resp Users
	err := m.QueryRowIndexCtx(ctx, &resp, emailKey, m.formatPrimary, func(ctx context.Context, conn sqlx.SqlConn, v any) (any, error) {
		query := fmt.Sprintf("SELECT id, name, email, password_hash, created_at FROM %s WHERE email = $1 LIMIT 1", m.table)
		if err := conn.QueryRowCtx(ctx, &resp, query, email); err != nil {
			return nil, err
		}
		return resp.Id, nil
	}, m.queryPrimary)
	switch err {
	case nil:
		return &resp, nil
	case sqlc.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultUsersModel) Delete(ctx context.Context, id int64) error {
	data, err := m.FindOne(ctx, id)
	if err != nil {
		return err
	}
	idKey := fmt.Sprintf("%s%v", cacheUsersIdPrefix, id)
	emailKey := fmt.Sprintf("%s%v", cacheUsersEmailPrefix, data.Email)
	_, err = m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", m.table)
		return conn.ExecCtx(ctx, query, id)
	}, idKey, emailKey)
	return err
}

func (m *defaultUsersModel) formatPrimary(primary any) string {
	return fmt.Sprintf("%s%v", cacheUsersIdPrefix, primary)
}

func (m *defaultUsersModel) queryPrimary(ctx context.Context, conn sqlx.SqlConn, v, primary any) error {
	query := fmt.Sprintf("SELECT id, name, email, password_hash, created_at FROM %s WHERE id = $1 LIMIT 1", m.table)
	return conn.QueryRowCtx(ctx, v, query, primary)
}
