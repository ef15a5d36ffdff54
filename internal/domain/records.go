package domain

import "github.com/gagliardetto/solana-go"

// PoolCreatedRecord is a pool's birth event: the PoolRecord attributes plus
// where in the chain the pool was created and by whom.
type PoolCreatedRecord struct {
	BlkTs     int64            `json:"blkTs"`
	Slot      uint64           `json:"slot"`
	Txid      string           `json:"txid"`
	Idx       uint64           `json:"idx"`
	Creator   solana.PublicKey `json:"creator"`
	Addr      solana.PublicKey `json:"addr"`
	Dex       Dex              `json:"dex"`
	MintA     solana.PublicKey `json:"mintA"`
	MintB     solana.PublicKey `json:"mintB"`
	DecimalsA uint8            `json:"decimalsA"`
	DecimalsB uint8            `json:"decimalsB"`
}

// IsWsolPool reports whether one side of the new pool is wrapped SOL.
func (p *PoolCreatedRecord) IsWsolPool() bool {
	return p.MintA == WSOL || p.MintB == WSOL
}

// AsPoolRecord converts the birth event into the cacheable pool attributes.
func (p *PoolCreatedRecord) AsPoolRecord() *PoolRecord {
	return &PoolRecord{
		Addr:       p.Addr,
		Dex:        p.Dex,
		IsComplete: false,
		MintA:      p.MintA,
		MintB:      p.MintB,
		DecimalsA:  p.DecimalsA,
		DecimalsB:  p.DecimalsB,
	}
}

// TradeRecord is a normalized swap against a WSOL pool. Mint is always the
// non-WSOL side; IsBuy is true iff the trader spent SOL to receive the token.
// PoolSolAmt/PoolTokenAmt are the vault balances after the swap.
type TradeRecord struct {
	BlkTs        int64            `json:"blkTs"`
	Slot         uint64           `json:"slot"`
	Txid         string           `json:"txid"`
	Idx          uint64           `json:"idx"`
	Mint         solana.PublicKey `json:"mint"`
	Decimals     uint8            `json:"decimals"`
	Trader       solana.PublicKey `json:"trader"`
	Dex          Dex              `json:"dex"`
	Pool         solana.PublicKey `json:"pool"`
	PoolSolAmt   uint64           `json:"poolSolAmt"`
	PoolTokenAmt uint64           `json:"poolTokenAmt"`
	IsBuy        bool             `json:"isBuy"`
	SolAmt       uint64           `json:"solAmt"`
	TokenAmt     uint64           `json:"tokenAmt"`
	PriceSol     float64          `json:"priceSol"`
}

// PumpfunCompleteRecord marks a Pumpfun bonding curve graduating.
type PumpfunCompleteRecord struct {
	BlkTs        int64            `json:"blkTs"`
	Slot         uint64           `json:"slot"`
	Txid         string           `json:"txid"`
	Idx          uint64           `json:"idx"`
	User         solana.PublicKey `json:"user"`
	Mint         solana.PublicKey `json:"mint"`
	BondingCurve solana.PublicKey `json:"bondingCurve"`
}

// CalcPriceSol converts raw swap amounts to a SOL price per whole token.
func CalcPriceSol(solAmt, tokenAmt uint64, tokenDecimals uint8) float64 {
	sol := float64(solAmt) / 1e9
	token := float64(tokenAmt) / pow10(tokenDecimals)
	return sol / token
}

func pow10(n uint8) float64 {
	v := 1.0
	for i := uint8(0); i < n; i++ {
		v *= 10
	}
	return v
}
