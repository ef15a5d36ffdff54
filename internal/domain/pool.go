package domain

import "github.com/gagliardetto/solana-go"

// PoolRecord holds the immutable per-pool attributes needed to normalize
// trades: which DEX owns the pool, its two mints in the pool's native order
// (X/Y, coin/pc or base/quote depending on the DEX), and their decimals.
// Cached under "pool:<addr>" with a 12h TTL; only IsComplete ever changes
// (Pumpfun bonding-curve graduation).
type PoolRecord struct {
	Addr       solana.PublicKey `json:"addr"`
	Dex        Dex              `json:"dex"`
	IsComplete bool             `json:"isComplete"`
	MintA      solana.PublicKey `json:"mintA"`
	MintB      solana.PublicKey `json:"mintB"`
	DecimalsA  uint8            `json:"decimalsA"`
	DecimalsB  uint8            `json:"decimalsB"`
}

// IsWsolPool reports whether one side of the pool is wrapped SOL.
func (p *PoolRecord) IsWsolPool() bool {
	return p.MintA == WSOL || p.MintB == WSOL
}

// TokenMint returns the non-WSOL mint.
func (p *PoolRecord) TokenMint() solana.PublicKey {
	if p.MintA == WSOL {
		return p.MintB
	}
	return p.MintA
}

// TokenDecimals returns the decimals of the non-WSOL mint.
func (p *PoolRecord) TokenDecimals() uint8 {
	if p.MintA == WSOL {
		return p.DecimalsB
	}
	return p.DecimalsA
}

// IsRaydiumBuy resolves trade direction for Raydium swaps. direction==1 is
// pc->coin, anything else coin->pc; mintB is the pc side.
func (p *PoolRecord) IsRaydiumBuy(direction uint64) bool {
	if direction == 1 {
		return p.MintB == WSOL
	}
	return p.MintB != WSOL
}

// IsMeteoraDlmmBuy resolves trade direction for DLMM swaps. swapForY means
// the trader pays token X; mintA is the X side.
func (p *PoolRecord) IsMeteoraDlmmBuy(swapForY bool) bool {
	if swapForY {
		return p.MintA == WSOL
	}
	return p.MintA != WSOL
}
