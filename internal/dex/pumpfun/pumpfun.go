// Package pumpfun decodes Pumpfun bonding-curve CPI event logs.
//
// A log is a base58 string: 8 bytes of the program's event CPI tag, an
// 8-byte event discriminator, then the Borsh record. The discriminator is
// part of the record here (a leading u64 field), matching the program's
// event layout.
package pumpfun

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ProgramID is the pump.fun bonding curve program.
var ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

// LogPrefix precedes the base58 payload in transaction logs.
const LogPrefix = "pumpfun cpi log: "

// Event discriminators.
var (
	TradeDiscriminator     = []byte{189, 219, 127, 211, 78, 230, 97, 238}
	CreateDiscriminator    = []byte{27, 114, 169, 77, 222, 235, 99, 118}
	CompleteDiscriminator  = []byte{95, 114, 97, 156, 212, 46, 152, 8}
	SetParamsDiscriminator = []byte{223, 195, 159, 246, 62, 48, 143, 131}
)

// TradeEvent is emitted on every bonding-curve buy or sell.
type TradeEvent struct {
	Discriminator        uint64
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
}

// CreateEvent is emitted when a new bonding curve token launches.
type CreateEvent struct {
	Discriminator uint64
	Name          string
	Symbol        string
	URI           string
	Mint          solana.PublicKey
	BondingCurve  solana.PublicKey
	User          solana.PublicKey
}

// CompleteEvent is emitted when a bonding curve graduates.
type CompleteEvent struct {
	Discriminator uint64
	User          solana.PublicKey
	Mint          solana.PublicKey
	BondingCurve  solana.PublicKey
	Timestamp     int64
}

// SetParamsEvent is emitted on curve parameter updates. Decoded for
// completeness; the pipeline does not act on it.
type SetParamsEvent struct {
	Discriminator               uint64
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// Decode parses a Pumpfun CPI log (base58, prefix already stripped) into one
// of *TradeEvent, *CreateEvent, *CompleteEvent, *SetParamsEvent.
func Decode(log string) (any, error) {
	raw, err := base58.Decode(log)
	if err != nil {
		return nil, fmt.Errorf("decode pumpfun log base58: %w", err)
	}
	if len(raw) < 16 {
		return nil, fmt.Errorf("pumpfun log too short: %d bytes", len(raw))
	}
	payload := raw[8:] // drop the event CPI tag; discriminator stays

	var v any
	switch {
	case bytes.HasPrefix(payload, TradeDiscriminator):
		v = &TradeEvent{}
	case bytes.HasPrefix(payload, CreateDiscriminator):
		v = &CreateEvent{}
	case bytes.HasPrefix(payload, CompleteDiscriminator):
		v = &CompleteEvent{}
	case bytes.HasPrefix(payload, SetParamsDiscriminator):
		v = &SetParamsEvent{}
	default:
		return nil, fmt.Errorf("not a pumpfun event log")
	}
	if err := bin.NewBorshDecoder(payload).Decode(v); err != nil {
		return nil, fmt.Errorf("decode pumpfun event: %w", err)
	}
	return v, nil
}
