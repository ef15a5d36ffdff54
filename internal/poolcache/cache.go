// Package poolcache derives and caches per-pool attributes. Records live in
// the KV store under "pool:<addr>" with a 12h TTL; the cache is a lookup
// accelerator, and every lookup falls back to deriving the record from the
// instruction accounts of the swap that touched the pool.
package poolcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"sol-dex-hub/internal/domain"
	"sol-dex-hub/internal/kv"
	"sol-dex-hub/internal/stream"
)

const (
	// KeyPrefix scopes pool records in the KV store.
	KeyPrefix = "pool:"

	// TTL is refreshed on every pool touch.
	TTL = 12 * time.Hour
)

// Cache reads and writes pool records through the KV store.
type Cache struct {
	store kv.Store
}

// New creates a pool cache over the given store.
func New(store kv.Store) *Cache {
	return &Cache{store: store}
}

// Key returns the KV key for a pool address.
func Key(addr solana.PublicKey) string {
	return KeyPrefix + addr.String()
}

// Get returns the cached record for addr, or kv.ErrNotFound.
func (c *Cache) Get(ctx context.Context, addr solana.PublicKey) (*domain.PoolRecord, error) {
	raw, err := c.store.Get(ctx, Key(addr))
	if err != nil {
		return nil, err
	}
	var rec domain.PoolRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode pool record %s: %w", addr, err)
	}
	return &rec, nil
}

// Touch writes the record and resets its TTL.
func (c *Cache) Touch(ctx context.Context, rec *domain.PoolRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode pool record %s: %w", rec.Addr, err)
	}
	return c.store.SetEx(ctx, Key(rec.Addr), string(raw), TTL)
}

// getOrDerive loads the cached record for addr, deriving it with the given
// function on a miss. Either way the record's TTL is refreshed.
func (c *Cache) getOrDerive(ctx context.Context, addr solana.PublicKey, derive func() (*domain.PoolRecord, error)) (*domain.PoolRecord, error) {
	rec, err := c.Get(ctx, addr)
	if errors.Is(err, kv.ErrNotFound) {
		rec, err = derive()
	}
	if err != nil {
		return nil, err
	}
	if err := c.Touch(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RaydiumSwapPool resolves the pool for a Raydium swap. The vault accounts
// sit at 4/5, shifted to 5/6 in the 18-account instruction form.
func (c *Cache) RaydiumSwapPool(ctx context.Context, amm solana.PublicKey, accounts []stream.IxAccount) (*domain.PoolRecord, error) {
	return c.getOrDerive(ctx, amm, func() (*domain.PoolRecord, error) {
		coinIdx, pcIdx := 4, 5
		if len(accounts) == 18 {
			coinIdx, pcIdx = 5, 6
		}
		coin, err := stream.PostToken(accounts, coinIdx)
		if err != nil {
			return nil, err
		}
		pc, err := stream.PostToken(accounts, pcIdx)
		if err != nil {
			return nil, err
		}
		mintA, err := solana.PublicKeyFromBase58(coin.Mint)
		if err != nil {
			return nil, fmt.Errorf("%w: coin vault mint: %v", stream.ErrShape, err)
		}
		mintB, err := solana.PublicKeyFromBase58(pc.Mint)
		if err != nil {
			return nil, fmt.Errorf("%w: pc vault mint: %v", stream.ErrShape, err)
		}
		return &domain.PoolRecord{
			Addr:      amm,
			Dex:       domain.DexRaydiumAmm,
			MintA:     mintA,
			MintB:     mintB,
			DecimalsA: coin.Decimals,
			DecimalsB: pc.Decimals,
		}, nil
	})
}

// PumpfunTradePool resolves the bonding curve pool for a Pumpfun trade.
// Curve and mint come straight from the instruction accounts.
func (c *Cache) PumpfunTradePool(ctx context.Context, accounts []stream.IxAccount) (*domain.PoolRecord, error) {
	curve, err := stream.Account(accounts, 3)
	if err != nil {
		return nil, err
	}
	mint, err := stream.Account(accounts, 2)
	if err != nil {
		return nil, err
	}
	return c.getOrDerive(ctx, curve, func() (*domain.PoolRecord, error) {
		return PumpfunPool(curve, mint, false), nil
	})
}

// PumpammSwapPool resolves the pool for a PumpAmm buy or sell.
func (c *Cache) PumpammSwapPool(ctx context.Context, pool solana.PublicKey, accounts []stream.IxAccount) (*domain.PoolRecord, error) {
	return c.getOrDerive(ctx, pool, func() (*domain.PoolRecord, error) {
		return vaultPool(pool, domain.DexPumpAmm, accounts, 7, 8)
	})
}

// DlmmSwapPool resolves the lb pair pool for a DLMM swap.
func (c *Cache) DlmmSwapPool(ctx context.Context, lbPair solana.PublicKey, accounts []stream.IxAccount) (*domain.PoolRecord, error) {
	return c.getOrDerive(ctx, lbPair, func() (*domain.PoolRecord, error) {
		return vaultPool(lbPair, domain.DexMeteoraDlmm, accounts, 2, 3)
	})
}

// DammSwapPool resolves the pool for a DAMM swap.
func (c *Cache) DammSwapPool(ctx context.Context, pool solana.PublicKey, accounts []stream.IxAccount) (*domain.PoolRecord, error) {
	return c.getOrDerive(ctx, pool, func() (*domain.PoolRecord, error) {
		return vaultPool(pool, domain.DexMeteoraDamm, accounts, 5, 6)
	})
}

// vaultPool derives a pool record from the token balances of two vault
// accounts, keeping the vaults' native A/B order.
func vaultPool(addr solana.PublicKey, dex domain.Dex, accounts []stream.IxAccount, aIdx, bIdx int) (*domain.PoolRecord, error) {
	a, err := stream.PostToken(accounts, aIdx)
	if err != nil {
		return nil, err
	}
	b, err := stream.PostToken(accounts, bIdx)
	if err != nil {
		return nil, err
	}
	mintA, err := solana.PublicKeyFromBase58(a.Mint)
	if err != nil {
		return nil, fmt.Errorf("%w: vault mint: %v", stream.ErrShape, err)
	}
	mintB, err := solana.PublicKeyFromBase58(b.Mint)
	if err != nil {
		return nil, fmt.Errorf("%w: vault mint: %v", stream.ErrShape, err)
	}
	return &domain.PoolRecord{
		Addr:      addr,
		Dex:       dex,
		MintA:     mintA,
		MintB:     mintB,
		DecimalsA: a.Decimals,
		DecimalsB: b.Decimals,
	}, nil
}

// PumpfunPool builds the fixed-shape Pumpfun pool record. Bonding curves
// always pair a 6-decimal token against WSOL.
func PumpfunPool(curve, mint solana.PublicKey, isComplete bool) *domain.PoolRecord {
	return &domain.PoolRecord{
		Addr:       curve,
		Dex:        domain.DexPumpfun,
		IsComplete: isComplete,
		MintA:      mint,
		MintB:      domain.WSOL,
		DecimalsA:  6,
		DecimalsB:  9,
	}
}
