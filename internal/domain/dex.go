package domain

import "github.com/gagliardetto/solana-go"

// Dex identifies which DEX program produced an event. Serialized as the
// variant name at boundaries.
type Dex string

const (
	DexRaydiumAmm  Dex = "RaydiumAmm"
	DexPumpfun     Dex = "Pumpfun"
	DexPumpAmm     Dex = "PumpAmm"
	DexMeteoraDlmm Dex = "MeteoraDlmm"
	DexMeteoraDamm Dex = "MeteoraDamm"
)

// WSOL is the wrapped SOL mint. Every pool the pipeline emits events for has
// exactly one WSOL side.
var WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// TxMeta carries the per-instruction position of an event inside a block.
type TxMeta struct {
	BlkTs int64  // block time, epoch seconds
	Slot  uint64
	Txid  string // transaction signature, base58
	Idx   uint64 // instruction index within the transaction
}
