package archive

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sol-dex-hub/internal/domain"
	"sol-dex-hub/internal/relay"
)

// Store writes delivered events to Postgres.
type Store struct {
	pool *Pool
}

// NewStore creates a Store on pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Compile-time interface check.
var _ relay.Archiver = (*Store)(nil)

// Archive persists one delivered payload. Pumpfun completions carry no
// archival table; the graduation is visible as the pool flipping complete.
func (s *Store) Archive(ctx context.Context, p *relay.Payload) error {
	if err := s.InsertPools(ctx, p.PoolCreatedEvts); err != nil {
		return err
	}
	return s.InsertTrades(ctx, p.TradeEvts)
}

// InsertTrades adds trades in one transaction, skipping rows already
// archived under the same (txid, idx).
func (s *Store) InsertTrades(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trades (
			blk_ts, slot, txid, idx, mint, decimals, trader,
			dex, pool, is_buy, sol_amt, token_amt, price_sol
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (txid, idx) DO NOTHING
	`

	for _, t := range trades {
		_, err := tx.Exec(ctx, query,
			time.Unix(t.BlkTs, 0).UTC(), int64(t.Slot), t.Txid, int64(t.Idx),
			t.Mint.String(), int16(t.Decimals), t.Trader.String(),
			string(t.Dex), t.Pool.String(), t.IsBuy,
			strconv.FormatUint(t.SolAmt, 10), strconv.FormatUint(t.TokenAmt, 10),
			t.PriceSol,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s/%d: %w", t.Txid, t.Idx, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit trades: %w", err)
	}
	return nil
}

// InsertPools adds pool birth records, skipping already-known addresses.
func (s *Store) InsertPools(ctx context.Context, pools []*domain.PoolCreatedRecord) error {
	if len(pools) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO pools (addr, dex, creator, mint_a, mint_b, decimals_a, decimals_b)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (addr) DO NOTHING
	`

	for _, p := range pools {
		_, err := tx.Exec(ctx, query,
			p.Addr.String(), string(p.Dex), p.Creator.String(),
			p.MintA.String(), p.MintB.String(),
			int16(p.DecimalsA), int16(p.DecimalsB),
		)
		if err != nil {
			return fmt.Errorf("insert pool %s: %w", p.Addr, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit pools: %w", err)
	}
	return nil
}
