// Package raydium decodes Raydium AMM v4 ray_log payloads.
//
// A ray_log is a base64 string whose first byte is a log-type tag; the rest
// is a packed little-endian record (bincode layout, no field tags).
package raydium

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the Raydium AMM v4 program.
var ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

// LogPrefix precedes the base64 payload in transaction logs.
const LogPrefix = "Program log: ray_log: "

// Log-type tags (first byte of the decoded payload).
const (
	LogTypeInit uint8 = iota
	LogTypeDeposit
	LogTypeWithdraw
	LogTypeSwapBaseIn
	LogTypeSwapBaseOut
)

// InitLog is emitted when an AMM pool is initialized.
type InitLog struct {
	LogType      uint8
	Time         uint64
	PcDecimals   uint8
	CoinDecimals uint8
	PcLotSize    uint64
	CoinLotSize  uint64
	PcAmount     uint64
	CoinAmount   uint64
	Market       solana.PublicKey
}

// DepositLog is emitted on add-liquidity. Decoded for completeness; the
// pipeline does not act on it.
type DepositLog struct {
	LogType    uint8
	MaxCoin    uint64
	MaxPc      uint64
	Base       uint64
	PoolCoin   uint64
	PoolPc     uint64
	PoolLp     uint64
	CalcPnlX   bin.Uint128
	CalcPnlY   bin.Uint128
	DeductCoin uint64
	DeductPc   uint64
	MintLp     uint64
}

// WithdrawLog is emitted on remove-liquidity.
type WithdrawLog struct {
	LogType    uint8
	WithdrawLp uint64
	UserLp     uint64
	PoolCoin   uint64
	PoolPc     uint64
	PoolLp     uint64
	CalcPnlX   bin.Uint128
	CalcPnlY   bin.Uint128
	OutCoin    uint64
	OutPc      uint64
}

// SwapBaseInLog is emitted on a swap with a fixed input amount.
// Direction 1 is pc->coin, 0 is coin->pc.
type SwapBaseInLog struct {
	LogType    uint8
	AmountIn   uint64
	MinimumOut uint64
	Direction  uint64
	UserSource uint64
	PoolCoin   uint64
	PoolPc     uint64
	OutAmount  uint64
}

// SwapBaseOutLog is emitted on a swap with a fixed output amount.
type SwapBaseOutLog struct {
	LogType    uint8
	MaxIn      uint64
	AmountOut  uint64
	Direction  uint64
	UserSource uint64
	PoolCoin   uint64
	PoolPc     uint64
	DeductIn   uint64
}

// Decode parses a ray_log payload (base64, prefix already stripped) into one
// of *InitLog, *DepositLog, *WithdrawLog, *SwapBaseInLog, *SwapBaseOutLog.
func Decode(log string) (any, error) {
	data, err := base64.StdEncoding.DecodeString(log)
	if err != nil {
		return nil, fmt.Errorf("decode ray_log base64: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty ray_log")
	}

	var v any
	switch data[0] {
	case LogTypeInit:
		v = &InitLog{}
	case LogTypeDeposit:
		v = &DepositLog{}
	case LogTypeWithdraw:
		v = &WithdrawLog{}
	case LogTypeSwapBaseIn:
		v = &SwapBaseInLog{}
	case LogTypeSwapBaseOut:
		v = &SwapBaseOutLog{}
	default:
		return nil, fmt.Errorf("unknown ray_log type %d", data[0])
	}
	if err := bin.NewBinDecoder(data).Decode(v); err != nil {
		return nil, fmt.Errorf("decode ray_log type %d: %w", data[0], err)
	}
	return v, nil
}
