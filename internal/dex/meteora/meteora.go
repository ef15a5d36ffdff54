// Package meteora decodes Meteora DLMM and DAMM event logs.
//
// DLMM events arrive base58-encoded with an 8-byte event CPI tag before the
// discriminator; DAMM events arrive base64-encoded (runtime "Program data:"
// logs) with the discriminator first. The swap discriminator is shared
// between the two programs; the transport encoding tells them apart.
package meteora

import (
	"bytes"
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Program IDs.
var (
	DlmmProgramID = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	DammProgramID = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")
)

// Log prefixes preceding the encoded payloads in transaction logs.
const (
	DlmmLogPrefix = "meteora dlmm cpi log: "
	DammLogPrefix = "meteora damm log Program data: "
)

// InitBinArrayDataPrefix is the base58 instruction-data prefix of the DLMM
// initializeBinArray instruction, whose logs are not trade logs and are
// filtered out before decoding.
const InitBinArrayDataPrefix = "5N5iEh8c"

// Event discriminators.
var (
	SwapDiscriminator         = []byte{81, 108, 227, 190, 205, 208, 10, 196}
	LbPairCreateDiscriminator = []byte{185, 74, 252, 125, 27, 215, 188, 111}
	PoolCreatedDiscriminator  = []byte{202, 44, 41, 88, 104, 220, 157, 82}
)

// Anchor instruction discriminators of the DAMM pool-initialization forms
// that carry a config account. Their account layout shifts the vaults and
// the creator by one position.
var (
	DammInitWithConfigIxID  = []byte{7, 166, 138, 171, 206, 171, 236, 244}
	DammInitWithConfig2IxID = []byte{48, 149, 220, 130, 61, 11, 9, 178}
)

// DammInitHasConfig reports whether base58 instruction data is one of the
// with-config pool initialization forms.
func DammInitHasConfig(ixData string) bool {
	raw, err := base58.Decode(ixData)
	if err != nil {
		return false
	}
	return bytes.HasPrefix(raw, DammInitWithConfigIxID) ||
		bytes.HasPrefix(raw, DammInitWithConfig2IxID)
}

// DlmmSwapEvent is emitted on every DLMM swap. SwapForY means the trader
// paid token X and received token Y.
type DlmmSwapEvent struct {
	LbPair      solana.PublicKey
	From        solana.PublicKey
	StartBinID  int32
	EndBinID    int32
	AmountIn    uint64
	AmountOut   uint64
	SwapForY    bool
	Fee         uint64
	ProtocolFee uint64
	FeeBps      bin.Uint128
	HostFee     uint64
}

// LbPairCreateEvent is emitted when a new DLMM pair is created.
type LbPairCreateEvent struct {
	LbPair  solana.PublicKey
	BinStep uint16
	TokenX  solana.PublicKey
	TokenY  solana.PublicKey
}

// DammSwapEvent is emitted on every DAMM swap. It carries no direction or
// account fields; both are resolved from the instruction accounts.
type DammSwapEvent struct {
	InAmount    uint64
	OutAmount   uint64
	TradeFee    uint64
	ProtocolFee uint64
	HostFee     uint64
}

// DammPoolCreatedEvent is emitted when a new DAMM pool is created.
type DammPoolCreatedEvent struct {
	LpMint     solana.PublicKey
	TokenAMint solana.PublicKey
	TokenBMint solana.PublicKey
	PoolType   uint8
	Pool       solana.PublicKey
}

// DecodeDlmm parses a DLMM CPI log (base58, prefix already stripped) into
// one of *DlmmSwapEvent, *LbPairCreateEvent.
func DecodeDlmm(log string) (any, error) {
	raw, err := base58.Decode(log)
	if err != nil {
		return nil, fmt.Errorf("decode meteora dlmm log base58: %w", err)
	}
	if len(raw) < 16 {
		return nil, fmt.Errorf("meteora dlmm log too short: %d bytes", len(raw))
	}
	payload := raw[8:]

	var v any
	switch {
	case bytes.HasPrefix(payload, SwapDiscriminator):
		v = &DlmmSwapEvent{}
	case bytes.HasPrefix(payload, LbPairCreateDiscriminator):
		v = &LbPairCreateEvent{}
	default:
		return nil, fmt.Errorf("not a meteora dlmm event log")
	}
	if err := bin.NewBorshDecoder(payload[8:]).Decode(v); err != nil {
		return nil, fmt.Errorf("decode meteora dlmm event: %w", err)
	}
	return v, nil
}

// DecodeDamm parses a DAMM event log (base64, prefix already stripped) into
// one of *DammSwapEvent, *DammPoolCreatedEvent.
func DecodeDamm(log string) (any, error) {
	raw, err := base64.StdEncoding.DecodeString(log)
	if err != nil {
		return nil, fmt.Errorf("decode meteora damm log base64: %w", err)
	}
	if len(raw) < 8 {
		return nil, fmt.Errorf("meteora damm log too short: %d bytes", len(raw))
	}

	var v any
	switch {
	case bytes.HasPrefix(raw, SwapDiscriminator):
		v = &DammSwapEvent{}
	case bytes.HasPrefix(raw, PoolCreatedDiscriminator):
		v = &DammPoolCreatedEvent{}
	default:
		return nil, fmt.Errorf("not a meteora damm event log")
	}
	if err := bin.NewBorshDecoder(raw[8:]).Decode(v); err != nil {
		return nil, fmt.Errorf("decode meteora damm event: %w", err)
	}
	return v, nil
}
