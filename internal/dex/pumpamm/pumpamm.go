// Package pumpamm decodes Pump-AMM CPI event logs: base58, 8-byte event CPI
// tag, 8-byte discriminator, Borsh record.
package pumpamm

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ProgramID is the PumpSwap AMM program.
var ProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

// LogPrefix precedes the base58 payload in transaction logs.
const LogPrefix = "pumpamm cpi log: "

// Event discriminators.
var (
	CreatePoolDiscriminator = []byte{177, 49, 12, 210, 160, 118, 167, 116}
	BuyDiscriminator        = []byte{103, 244, 82, 31, 44, 245, 119, 119}
	SellDiscriminator       = []byte{62, 47, 55, 10, 165, 3, 220, 42}
)

// CreatePoolEvent is emitted when a new AMM pool is created.
type CreatePoolEvent struct {
	Timestamp             int64
	Index                 uint16
	Creator               solana.PublicKey
	BaseMint              solana.PublicKey
	QuoteMint             solana.PublicKey
	BaseMintDecimals      uint8
	QuoteMintDecimals     uint8
	BaseAmountIn          uint64
	QuoteAmountIn         uint64
	PoolBaseAmount        uint64
	PoolQuoteAmount       uint64
	MinimumLiquidity      uint64
	InitialLiquidity      uint64
	LpTokenAmountOut      uint64
	PoolBump              uint8
	Pool                  solana.PublicKey
	LpMint                solana.PublicKey
	UserBaseTokenAccount  solana.PublicKey
	UserQuoteTokenAccount solana.PublicKey
}

// BuyEvent is emitted on a quote-for-base swap.
type BuyEvent struct {
	Timestamp                        int64
	BaseAmountOut                    uint64
	MaxQuoteAmountIn                 uint64
	UserBaseTokenReserves            uint64
	UserQuoteTokenReserves           uint64
	PoolBaseTokenReserves            uint64
	PoolQuoteTokenReserves           uint64
	QuoteAmountIn                    uint64
	LpFeeBasisPoints                 uint64
	LpFee                            uint64
	ProtocolFeeBasisPoints           uint64
	ProtocolFee                      uint64
	QuoteAmountInWithLpFee           uint64
	UserQuoteAmountIn                uint64
	Pool                             solana.PublicKey
	User                             solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipient             solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
}

// SellEvent is emitted on a base-for-quote swap.
type SellEvent struct {
	Timestamp                        int64
	BaseAmountIn                     uint64
	MinQuoteAmountOut                uint64
	UserBaseTokenReserves            uint64
	UserQuoteTokenReserves           uint64
	PoolBaseTokenReserves            uint64
	PoolQuoteTokenReserves           uint64
	QuoteAmountOut                   uint64
	LpFeeBasisPoints                 uint64
	LpFee                            uint64
	ProtocolFeeBasisPoints           uint64
	ProtocolFee                      uint64
	QuoteAmountOutWithoutLpFee       uint64
	UserQuoteAmountOut               uint64
	Pool                             solana.PublicKey
	User                             solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipient             solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
}

// Decode parses a Pump-AMM CPI log (base58, prefix already stripped) into
// one of *CreatePoolEvent, *BuyEvent, *SellEvent.
func Decode(log string) (any, error) {
	raw, err := base58.Decode(log)
	if err != nil {
		return nil, fmt.Errorf("decode pumpamm log base58: %w", err)
	}
	if len(raw) < 16 {
		return nil, fmt.Errorf("pumpamm log too short: %d bytes", len(raw))
	}
	payload := raw[8:]

	var v any
	switch {
	case bytes.HasPrefix(payload, CreatePoolDiscriminator):
		v = &CreatePoolEvent{}
	case bytes.HasPrefix(payload, BuyDiscriminator):
		v = &BuyEvent{}
	case bytes.HasPrefix(payload, SellDiscriminator):
		v = &SellEvent{}
	default:
		return nil, fmt.Errorf("not a pumpamm event log")
	}
	if err := bin.NewBorshDecoder(payload[8:]).Decode(v); err != nil {
		return nil, fmt.Errorf("decode pumpamm event: %w", err)
	}
	return v, nil
}
