package logic

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"coinfolio-api/internal/config"
	"coinfolio-api/internal/model"
	"coinfolio-api/internal/svc"
	"coinfolio-api/internal/types"
	"coinfolio-api/pkg/coingecko"
	"coinfolio-api/pkg/quotes"
)

// stubQuoteSource serves fixed spot prices and counts upstream calls.
type stubQuoteSource struct {
	mu         sync.Mutex
	prices     coingecko.SimplePrices
	priceCalls int
}

func (s *stubQuoteSource) SimplePrices(_ context.Context, ids, _ []string) (coingecko.SimplePrices, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priceCalls++
	return s.prices, nil
}

func (s *stubQuoteSource) MarketChart(context.Context, string, string, string) ([]coingecko.PricePoint, error) {
	return nil, nil
}

func (s *stubQuoteSource) Search(context.Context, string) ([]coingecko.Coin, error) {
	return nil, nil
}

func (s *stubQuoteSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priceCalls
}

// holdingsIndexStub adapts the stub holdings model to the refresher interface.
type holdingsIndexStub struct {
	holdings *stubHoldingsModel
}

func (h holdingsIndexStub) DistinctAssetIDs(ctx context.Context) ([]string, error) {
	return h.holdings.DistinctCoinIds(ctx)
}

type stubUsersModel struct {
	byEmail map[string]*model.Users
	nextId  int64
}

func newStubUsersModel() *stubUsersModel {
	return &stubUsersModel{byEmail: make(map[string]*model.Users), nextId: 1}
}

func (m *stubUsersModel) Insert(_ context.Context, data *model.Users) (int64, error) {
	data.Id = m.nextId
	m.nextId++
	m.byEmail[data.Email] = data
	return data.Id, nil
}

func (m *stubUsersModel) FindOne(_ context.Context, id int64) (*model.Users, error) {
	for _, u := range m.byEmail {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *stubUsersModel) FindOneByEmail(_ context.Context, email string) (*model.Users, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func (m *stubUsersModel) Delete(_ context.Context, id int64) error {
	for email, u := range m.byEmail {
		if u.Id == id {
			delete(m.byEmail, email)
			return nil
		}
	}
	return model.ErrNotFound
}

type stubHoldingsModel struct {
	rows   []*model.Holdings
	nextId int64
}

func newStubHoldingsModel() *stubHoldingsModel {
	return &stubHoldingsModel{nextId: 1}
}

func (m *stubHoldingsModel) Insert(_ context.Context, data *model.Holdings) (int64, error) {
	data.Id = m.nextId
	m.nextId++
	m.rows = append(m.rows, data)
	return data.Id, nil
}

func (m *stubHoldingsModel) FindOne(_ context.Context, id int64) (*model.Holdings, error) {
	for _, row := range m.rows {
		if row.Id == id {
			return row, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *stubHoldingsModel) FindOneByUserIdCoinId(_ context.Context, userId int64, coinId string) (*model.Holdings, error) {
	for _, row := range m.rows {
		if row.UserId == userId && row.CoinId == coinId {
			return row, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *stubHoldingsModel) ListByUserId(_ context.Context, userId int64) ([]model.Holdings, error) {
	var out []model.Holdings
	for _, row := range m.rows {
		if row.UserId == userId {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *stubHoldingsModel) Update(_ context.Context, data *model.Holdings) error {
	for _, row := range m.rows {
		if row.Id == data.Id {
			*row = *data
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *stubHoldingsModel) Delete(_ context.Context, id int64) error {
	for i, row := range m.rows {
		if row.Id == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *stubHoldingsModel) DistinctCoinIds(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range m.rows {
		if !seen[row.CoinId] {
			seen[row.CoinId] = true
			ids = append(ids, row.CoinId)
		}
	}
	return ids, nil
}

func newTestContext(users *stubUsersModel, holdings *stubHoldingsModel) *svc.ServiceContext {
	spot := quotes.NewSpotCache()
	return &svc.ServiceContext{
		Config: config.Config{
			Auth: config.AuthConf{AccessSecret: "test-secret", AccessExpire: 3600},
		},
		UsersModel:    users,
		HoldingsModel: holdings,
		SpotCache:     spot,
		Valuator:      quotes.NewValuator(spot, []string{"brl", "usd", "eur"}),
	}
}

func ctxForUser(userId int64) context.Context {
	raw, _ := json.Marshal(userId)
	return context.WithValue(context.Background(), "userId", json.Number(raw))
}

func TestRegisterAndLogin(t *testing.T) {
	users := newStubUsersModel()
	svcCtx := newTestContext(users, newStubHoldingsModel())
	ctx := context.Background()

	resp, err := NewRegisterLogic(ctx, svcCtx).Register(&types.RegisterReq{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", resp.Email)
	require.NotZero(t, resp.Id)

	// Stored password is hashed, not plaintext.
	stored := users.byEmail["alice@example.com"]
	require.NotEqual(t, "correct horse", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))

	login, err := NewLoginLogic(ctx, svcCtx).Login(&types.LoginReq{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	token, err := jwt.Parse(login.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.EqualValues(t, resp.Id, claims["userId"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svcCtx := newTestContext(newStubUsersModel(), newStubHoldingsModel())
	ctx := context.Background()

	_, err := NewRegisterLogic(ctx, svcCtx).Register(&types.RegisterReq{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = NewRegisterLogic(ctx, svcCtx).Register(&types.RegisterReq{
		Name: "Other Alice", Email: "alice@example.com", Password: "another pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svcCtx := newTestContext(newStubUsersModel(), newStubHoldingsModel())
	ctx := context.Background()

	_, err := NewRegisterLogic(ctx, svcCtx).Register(&types.RegisterReq{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = NewLoginLogic(ctx, svcCtx).Login(&types.LoginReq{
		Email: "alice@example.com", Password: "wrong horse",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewLoginLogic(ctx, svcCtx).Login(&types.LoginReq{
		Email: "nobody@example.com", Password: "correct horse",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateAndDeleteHolding(t *testing.T) {
	users := newStubUsersModel()
	holdings := newStubHoldingsModel()
	svcCtx := newTestContext(users, holdings)

	_, err := holdings.Insert(context.Background(), &model.Holdings{
		UserId: 7, CoinId: "bitcoin", Quantity: 0.5,
	})
	require.NoError(t, err)

	ctx := ctxForUser(7)

	updated, err := NewUpdateHoldingLogic(ctx, svcCtx).UpdateHolding(&types.UpdateHoldingReq{
		CoinId: "Bitcoin", Quantity: 1.25,
	})
	require.NoError(t, err)
	require.Equal(t, "bitcoin", updated.CoinId)
	require.Equal(t, 1.25, updated.Quantity)

	// Another user cannot touch the row.
	_, err = NewUpdateHoldingLogic(ctxForUser(8), svcCtx).UpdateHolding(&types.UpdateHoldingReq{
		CoinId: "bitcoin", Quantity: 2,
	})
	require.ErrorIs(t, err, ErrHoldingNotFound)

	require.NoError(t, NewDeleteHoldingLogic(ctx, svcCtx).DeleteHolding(&types.DeleteHoldingReq{CoinId: "bitcoin"}))
	require.Empty(t, holdings.rows)

	err = NewDeleteHoldingLogic(ctx, svcCtx).DeleteHolding(&types.DeleteHoldingReq{CoinId: "bitcoin"})
	require.ErrorIs(t, err, ErrHoldingNotFound)
}

func TestAddHoldingAccumulatesAndRefreshesOnDemand(t *testing.T) {
	holdings := newStubHoldingsModel()
	svcCtx := newTestContext(newStubUsersModel(), holdings)

	source := &stubQuoteSource{prices: coingecko.SimplePrices{"bitcoin": {"usd": 50.0}}}
	svcCtx.Refresher = quotes.NewRefresher(source, holdingsIndexStub{holdings}, svcCtx.SpotCache, quotes.RefresherConfig{
		Currencies:     []string{"brl", "usd", "eur"},
		ThrottleWindow: 2 * time.Minute,
	})

	ctx := ctxForUser(7)

	// First add inserts a row and fetches the price on demand.
	resp, err := NewAddHoldingLogic(ctx, svcCtx).AddHolding(&types.AddHoldingReq{
		CoinId: " BitCoin ", Quantity: 0.5, Logo: "https://img/btc.png",
	})
	require.NoError(t, err)
	require.Equal(t, "bitcoin", resp.CoinId)
	require.InDelta(t, 0.5, resp.Quantity, 1e-9)
	require.Equal(t, 1, source.calls())

	quote, ok := svcCtx.SpotCache.Get("bitcoin")
	require.True(t, ok)
	require.InDelta(t, 50.0, quote["usd"], 1e-9)

	// A repeated add accumulates into the same row instead of duplicating it,
	// and does not hit the upstream again.
	resp, err = NewAddHoldingLogic(ctx, svcCtx).AddHolding(&types.AddHoldingReq{
		CoinId: "bitcoin", Quantity: 0.25, Logo: "https://img/btc.png",
	})
	require.NoError(t, err)
	require.InDelta(t, 0.75, resp.Quantity, 1e-9)
	require.Len(t, holdings.rows, 1)
	require.InDelta(t, 0.75, holdings.rows[0].Quantity, 1e-9)
	require.Equal(t, 1, source.calls())
}

func TestAddHoldingRejectsInvalidInput(t *testing.T) {
	holdings := newStubHoldingsModel()
	svcCtx := newTestContext(newStubUsersModel(), holdings)
	ctx := ctxForUser(7)

	_, err := NewAddHoldingLogic(ctx, svcCtx).AddHolding(&types.AddHoldingReq{
		CoinId: "bitcoin", Quantity: 0,
	})
	require.ErrorIs(t, err, ErrInvalidHolding)

	_, err = NewAddHoldingLogic(ctx, svcCtx).AddHolding(&types.AddHoldingReq{
		CoinId: "   ", Quantity: 1,
	})
	require.ErrorIs(t, err, ErrInvalidHolding)
	require.Empty(t, holdings.rows)
}

func TestPortfolioValuesHoldings(t *testing.T) {
	users := newStubUsersModel()
	holdings := newStubHoldingsModel()
	svcCtx := newTestContext(users, holdings)

	userId, err := users.Insert(context.Background(), &model.Users{
		Name: "Alice", Email: "alice@example.com", PasswordHash: "x",
	})
	require.NoError(t, err)

	_, err = holdings.Insert(context.Background(), &model.Holdings{
		UserId: userId, CoinId: "bitcoin", Quantity: 2,
	})
	require.NoError(t, err)
	_, err = holdings.Insert(context.Background(), &model.Holdings{
		UserId: userId, CoinId: "ethereum", Quantity: 10,
	})
	require.NoError(t, err)

	svcCtx.SpotCache.Merge(map[string]quotes.Quote{
		"bitcoin":  {"brl": 100, "usd": 50, "eur": 40},
		"ethereum": {"brl": 10, "usd": 5, "eur": 4},
	})

	resp, err := NewPortfolioLogic(ctxForUser(userId), svcCtx).Portfolio()
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", resp.Email)
	require.Len(t, resp.Holdings, 2)
	require.Equal(t, 300.0, resp.Totals["brl"])
	require.Equal(t, 150.0, resp.Totals["usd"])
	require.Equal(t, 120.0, resp.Totals["eur"])
}
