package pg

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"otcledger/internal/domain"
	"otcledger/internal/port"
)

var _ port.Repository = (*PgRepo)(nil)

// PgRepo mirrors ledger state into Postgres. Amounts are NUMERIC and
// cross the boundary as decimals so the full uint64 range round-trips.
type PgRepo struct {
	pool *pgxpool.Pool
}

// NewPgRepo connects to Postgres; call Close when finished.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func (p *PgRepo) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// InitSchema creates the tables if they do not exist.
func (p *PgRepo) InitSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS orders(
  id BIGINT PRIMARY KEY,
  asset TEXT NOT NULL,
  creator TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  settler_hint NUMERIC NOT NULL,
  open BOOLEAN NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS balances(
  owner TEXT NOT NULL,
  asset TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  PRIMARY KEY(owner, asset)
);
CREATE TABLE IF NOT EXISTS positions(
  provider TEXT NOT NULL,
  asset TEXT NOT NULL,
  id BIGINT NOT NULL,
  amount NUMERIC NOT NULL,
  PRIMARY KEY(provider, asset)
);
CREATE TABLE IF NOT EXISTS oracle_rates(
  direction TEXT PRIMARY KEY,
  rate NUMERIC NOT NULL
);
CREATE TABLE IF NOT EXISTS matches(
  order_id BIGINT NOT NULL,
  provider TEXT NOT NULL,
  seller TEXT NOT NULL,
  asset_in TEXT NOT NULL,
  asset_out TEXT NOT NULL,
  amount_in NUMERIC NOT NULL,
  amount_out NUMERIC NOT NULL,
  rate NUMERIC NOT NULL,
  matched_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

// executor is satisfied by both the pool and a pgx transaction.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveOrder(ctx context.Context, q executor, o *domain.Order) error {
	_, err := q.Exec(ctx, `
INSERT INTO orders(id, asset, creator, amount, settler_hint, open, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  amount = EXCLUDED.amount,
  open = EXCLUDED.open
`, int64(o.ID), string(o.Asset), string(o.Creator), numStr(o.Amount), numStr(o.SettlerHint), o.Open, o.CreatedAt)
	return err
}

func saveBalance(ctx context.Context, q executor, owner domain.Identity, asset domain.Asset, amount uint64) error {
	_, err := q.Exec(ctx, `
INSERT INTO balances(owner, asset, amount)
VALUES($1,$2,$3)
ON CONFLICT (owner, asset) DO UPDATE SET amount = EXCLUDED.amount
`, string(owner), string(asset), numStr(amount))
	return err
}

func savePosition(ctx context.Context, q executor, p *domain.LiquidityPosition) error {
	_, err := q.Exec(ctx, `
INSERT INTO positions(provider, asset, id, amount)
VALUES($1,$2,$3,$4)
ON CONFLICT (provider, asset) DO UPDATE SET amount = EXCLUDED.amount
`, string(p.Provider), string(p.Asset), int64(p.ID), numStr(p.Amount))
	return err
}

func saveRate(ctx context.Context, q executor, dir domain.RateDirection, rate uint64) error {
	_, err := q.Exec(ctx, `
INSERT INTO oracle_rates(direction, rate)
VALUES($1,$2)
ON CONFLICT (direction) DO UPDATE SET rate = EXCLUDED.rate
`, string(dir), numStr(rate))
	return err
}

func saveMatch(ctx context.Context, q executor, m *domain.Match) error {
	_, err := q.Exec(ctx, `
INSERT INTO matches(order_id, provider, seller, asset_in, asset_out, amount_in, amount_out, rate, matched_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, int64(m.OrderID), string(m.Provider), string(m.Seller), string(m.AssetIn), string(m.AssetOut),
		numStr(m.AmountIn), numStr(m.AmountOut), numStr(m.Rate), m.Timestamp)
	return err
}

func (p *PgRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	return saveOrder(ctx, p.pool, o)
}

func (p *PgRepo) SaveBalance(ctx context.Context, owner domain.Identity, asset domain.Asset, amount uint64) error {
	return saveBalance(ctx, p.pool, owner, asset, amount)
}

func (p *PgRepo) SavePosition(ctx context.Context, pos *domain.LiquidityPosition) error {
	if pos == nil {
		return errors.New("nil position")
	}
	return savePosition(ctx, p.pool, pos)
}

func (p *PgRepo) SaveRate(ctx context.Context, dir domain.RateDirection, rate uint64) error {
	return saveRate(ctx, p.pool, dir, rate)
}

func (p *PgRepo) SaveMatch(ctx context.Context, m *domain.Match) error {
	if m == nil {
		return errors.New("nil match")
	}
	return saveMatch(ctx, p.pool, m)
}

func (p *PgRepo) LoadOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, asset, creator, amount, settler_hint, open, created_at FROM orders ORDER BY id ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		var (
			o            domain.Order
			id           int64
			asset        string
			creator      string
			amount, hint string
		)
		if err := rows.Scan(&id, &asset, &creator, &amount, &hint, &o.Open, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.ID = uint64(id)
		o.Asset = domain.Asset(asset)
		o.Creator = domain.Identity(creator)
		if o.Amount, err = parseNum(amount); err != nil {
			return nil, err
		}
		if o.SettlerHint, err = parseNum(hint); err != nil {
			return nil, err
		}
		res = append(res, &o)
	}
	return res, rows.Err()
}

func (p *PgRepo) LoadBalances(ctx context.Context) ([]domain.BalanceEntry, error) {
	rows, err := p.pool.Query(ctx, `SELECT owner, asset, amount FROM balances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.BalanceEntry
	for rows.Next() {
		var owner, asset, amount string
		if err := rows.Scan(&owner, &asset, &amount); err != nil {
			return nil, err
		}
		e := domain.BalanceEntry{
			Owner: domain.Identity(owner),
			Asset: domain.Asset(asset),
		}
		if e.Amount, err = parseNum(amount); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (p *PgRepo) LoadPositions(ctx context.Context) ([]*domain.LiquidityPosition, error) {
	rows, err := p.pool.Query(ctx, `SELECT provider, asset, id, amount FROM positions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.LiquidityPosition
	for rows.Next() {
		var (
			pos             domain.LiquidityPosition
			provider, asset string
			id              int64
			amount          string
		)
		if err := rows.Scan(&provider, &asset, &id, &amount); err != nil {
			return nil, err
		}
		pos.Provider = domain.Identity(provider)
		pos.Asset = domain.Asset(asset)
		pos.ID = uint64(id)
		if pos.Amount, err = parseNum(amount); err != nil {
			return nil, err
		}
		res = append(res, &pos)
	}
	return res, rows.Err()
}

func (p *PgRepo) LoadRates(ctx context.Context) (map[domain.RateDirection]uint64, error) {
	rows, err := p.pool.Query(ctx, `SELECT direction, rate FROM oracle_rates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[domain.RateDirection]uint64)
	for rows.Next() {
		var dir, rate string
		if err := rows.Scan(&dir, &rate); err != nil {
			return nil, err
		}
		v, err := parseNum(rate)
		if err != nil {
			return nil, err
		}
		res[domain.RateDirection(dir)] = v
	}
	return res, rows.Err()
}

func (p *PgRepo) LoadRecentMatches(ctx context.Context, limit int) ([]*domain.Match, error) {
	rows, err := p.pool.Query(ctx, `
SELECT order_id, provider, seller, asset_in, asset_out, amount_in, amount_out, rate, matched_at
FROM matches ORDER BY matched_at DESC LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		var (
			m                         domain.Match
			orderID                   int64
			provider, seller          string
			assetIn, assetOut         string
			amountIn, amountOut, rate string
		)
		if err := rows.Scan(&orderID, &provider, &seller, &assetIn, &assetOut, &amountIn, &amountOut, &rate, &m.Timestamp); err != nil {
			return nil, err
		}
		m.OrderID = uint64(orderID)
		m.Provider = domain.Identity(provider)
		m.Seller = domain.Identity(seller)
		m.AssetIn = domain.Asset(assetIn)
		m.AssetOut = domain.Asset(assetOut)
		if m.AmountIn, err = parseNum(amountIn); err != nil {
			return nil, err
		}
		if m.AmountOut, err = parseNum(amountOut); err != nil {
			return nil, err
		}
		if m.Rate, err = parseNum(rate); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (p *PgRepo) BeginTx(ctx context.Context) (port.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: begin tx: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

var _ port.Tx = (*pgTx)(nil)

func (t *pgTx) SaveOrder(ctx context.Context, o *domain.Order) error {
	return saveOrder(ctx, t.tx, o)
}

func (t *pgTx) SaveBalance(ctx context.Context, owner domain.Identity, asset domain.Asset, amount uint64) error {
	return saveBalance(ctx, t.tx, owner, asset, amount)
}

func (t *pgTx) SavePosition(ctx context.Context, p *domain.LiquidityPosition) error {
	return savePosition(ctx, t.tx, p)
}

func (t *pgTx) SaveRate(ctx context.Context, dir domain.RateDirection, rate uint64) error {
	return saveRate(ctx, t.tx, dir, rate)
}

func (t *pgTx) SaveMatch(ctx context.Context, m *domain.Match) error {
	return saveMatch(ctx, t.tx, m)
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// numStr renders a uint64 as a NUMERIC literal through decimal so the
// full range survives the trip.
func numStr(v uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0).String()
}

func parseNum(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("pg: parse numeric %q: %w", s, err)
	}
	if d.Sign() < 0 {
		return 0, fmt.Errorf("pg: negative numeric %q", s)
	}
	return d.BigInt().Uint64(), nil
}
