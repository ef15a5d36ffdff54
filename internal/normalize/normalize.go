// Package normalize turns (programId, log, accounts) triples into normalized
// pipeline events. Decode and account-shape failures are logged and skipped;
// only KV failures propagate, since retrying the batch can heal those.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gagliardetto/solana-go"

	"sol-dex-hub/internal/dex/meteora"
	"sol-dex-hub/internal/dex/pumpamm"
	"sol-dex-hub/internal/dex/pumpfun"
	"sol-dex-hub/internal/dex/raydium"
	"sol-dex-hub/internal/domain"
	"sol-dex-hub/internal/poolcache"
	"sol-dex-hub/internal/stream"
)

var (
	raydiumProgram = raydium.ProgramID.String()
	pumpfunProgram = pumpfun.ProgramID.String()
	pumpammProgram = pumpamm.ProgramID.String()
	dlmmProgram    = meteora.DlmmProgramID.String()
	dammProgram    = meteora.DammProgramID.String()

	wsolMint = domain.WSOL.String()
)

// decodeError marks a malformed or foreign log payload. Skippable.
type decodeError struct{ err error }

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// Normalizer resolves decoded DEX logs against the pool cache and produces
// at most one event per instruction.
type Normalizer struct {
	pools  *poolcache.Cache
	logger *log.Logger
}

// New creates a Normalizer. A nil logger falls back to log.Default.
func New(pools *poolcache.Cache, logger *log.Logger) *Normalizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Normalizer{pools: pools, logger: logger}
}

// Normalize processes one log/instruction pair. A nil event with a nil error
// means the pair produced nothing: a foreign program, a non-trade event, a
// non-WSOL pool, a zero-amount swap, or a malformed log that was logged and
// skipped. Errors are KV failures only.
func (n *Normalizer) Normalize(ctx context.Context, programID, logLine string, ix *stream.Instruction, meta domain.TxMeta) (*domain.Event, error) {
	var (
		evt *domain.Event
		err error
	)
	switch programID {
	case raydiumProgram:
		evt, err = n.raydium(ctx, logLine, ix, meta)
	case pumpfunProgram:
		evt, err = n.pumpfun(ctx, logLine, ix, meta)
	case pumpammProgram:
		evt, err = n.pumpamm(ctx, logLine, ix, meta)
	case dlmmProgram:
		evt, err = n.meteoraDlmm(ctx, logLine, ix, meta)
	case dammProgram:
		evt, err = n.meteoraDamm(ctx, logLine, ix, meta)
	default:
		return nil, nil
	}

	if err != nil && skippable(err) {
		n.logger.Printf("[normalize] skip instruction %d in tx %s: %v", meta.Idx, meta.Txid, err)
		return nil, nil
	}
	return evt, err
}

// skippable separates per-instruction decode and shape failures from store
// failures, which must bubble up and restart the worker.
func skippable(err error) bool {
	var de *decodeError
	return errors.As(err, &de) || errors.Is(err, stream.ErrShape)
}

func (n *Normalizer) raydium(ctx context.Context, logLine string, ix *stream.Instruction, meta domain.TxMeta) (*domain.Event, error) {
	decoded, err := raydium.Decode(strings.Replace(logLine, raydium.LogPrefix, "", 1))
	if err != nil {
		return nil, &decodeError{fmt.Errorf("raydium log: %w", err)}
	}

	switch l := decoded.(type) {
	case *raydium.InitLog:
		created, err := poolcache.PoolCreatedFromRaydiumInit(meta, l, ix.Accounts)
		if err != nil {
			return nil, err
		}
		return n.emitPoolCreated(ctx, created)

	case *raydium.SwapBaseInLog:
		return n.raydiumSwap(ctx, ix, meta, l.Direction, l.AmountIn, l.OutAmount)

	case *raydium.SwapBaseOutLog:
		return n.raydiumSwap(ctx, ix, meta, l.Direction, l.DeductIn, l.AmountOut)
	}
	return nil, nil
}

// raydiumSwap handles both swap forms; in/out are the log's input-side and
// output-side amounts (amountIn/outAmount or deductIn/amountOut).
func (n *Normalizer) raydiumSwap(ctx context.Context, ix *stream.Instruction, meta domain.TxMeta, direction, in, out uint64) (*domain.Event, error) {
	amm, err := stream.Account(ix.Accounts, 1)
	if err != nil {
		return nil, err
	}
	pool, err := n.pools.RaydiumSwapPool(ctx, amm, ix.Accounts)
	if err != nil {
		return nil, err
	}
	if !pool.IsWsolPool() {
		return nil, nil
	}

	trader, err := stream.Account(ix.Accounts, len(ix.Accounts)-1)
	if err != nil {
		return nil, err
	}

	coinIdx, pcIdx := 4, 5
	if len(ix.Accounts) == 18 {
		coinIdx, pcIdx = 5, 6
	}
	coinVault, err := stream.PostToken(ix.Accounts, coinIdx)
	if err != nil {
		return nil, err
	}
	pcVault, err := stream.PostToken(ix.Accounts, pcIdx)
	if err != nil {
		return nil, err
	}

	// direction 1 is pc->coin: the input amount is on the pc side, so
	// pairing direction with "is pc the WSOL side" maps in/out onto
	// sol/token.
	pcIsWsol := pool.MintB == domain.WSOL
	solAmt, tokenAmt := out, in
	if (direction == 1) == pcIsWsol {
		solAmt, tokenAmt = in, out
	}

	poolSolAmt, poolTokenAmt := coinVault.Amt, pcVault.Amt
	if coinVault.Mint != wsolMint {
		poolSolAmt, poolTokenAmt = pcVault.Amt, coinVault.Amt
	}

	return n.emitTrade(meta, pool, trader, solAmt, tokenAmt, pool.IsRaydiumBuy(direction), poolSolAmt, poolTokenAmt)
}

func (n *Normalizer) pumpfun(ctx context.Context, logLine string, ix *stream.Instruction, meta domain.TxMeta) (*domain.Event, error) {
	decoded, err := pumpfun.Decode(strings.Replace(logLine, pumpfun.LogPrefix, "", 1))
	if err != nil {
		return nil, &decodeError{fmt.Errorf("pumpfun log: %w", err)}
	}

	switch l := decoded.(type) {
	case *pumpfun.CreateEvent:
		return n.emitPoolCreated(ctx, poolcache.PoolCreatedFromPumpfunCreate(meta, l))

	case *pumpfun.TradeEvent:
		pool, err := n.pools.PumpfunTradePool(ctx, ix.Accounts)
		if err != nil {
			return nil, err
		}
		if !pool.IsWsolPool() {
			return nil, nil
		}
		trader, err := stream.Account(ix.Accounts, 6)
		if err != nil {
			return nil, err
		}
		return n.emitTrade(meta, pool, trader, l.SolAmount, l.TokenAmount, l.IsBuy, l.RealSolReserves, l.RealTokenReserves)

	case *pumpfun.CompleteEvent:
		// graduation flips the cached pool to complete
		if err := n.pools.Touch(ctx, poolcache.PumpfunPool(l.BondingCurve, l.Mint, true)); err != nil {
			return nil, err
		}
		return &domain.Event{PumpfunComplete: &domain.PumpfunCompleteRecord{
			BlkTs:        meta.BlkTs,
			Slot:         meta.Slot,
			Txid:         meta.Txid,
			Idx:          meta.Idx,
			User:         l.User,
			Mint:         l.Mint,
			BondingCurve: l.BondingCurve,
		}}, nil
	}
	return nil, nil
}

func (n *Normalizer) pumpamm(ctx context.Context, logLine string, ix *stream.Instruction, meta domain.TxMeta) (*domain.Event, error) {
	decoded, err := pumpamm.Decode(strings.Replace(logLine, pumpamm.LogPrefix, "", 1))
	if err != nil {
		return nil, &decodeError{fmt.Errorf("pumpamm log: %w", err)}
	}

	switch l := decoded.(type) {
	case *pumpamm.CreatePoolEvent:
		return n.emitPoolCreated(ctx, poolcache.PoolCreatedFromPumpammCreate(meta, l))

	case *pumpamm.BuyEvent:
		return n.pumpammSwap(ctx, ix, meta, l.Pool, l.User, l.BaseAmountOut, l.QuoteAmountInWithLpFee, true)

	case *pumpamm.SellEvent:
		return n.pumpammSwap(ctx, ix, meta, l.Pool, l.User, l.BaseAmountIn, l.UserQuoteAmountOut, false)
	}
	return nil, nil
}

// pumpammSwap handles buys and sells. baseAmt/quoteAmt are the log amounts
// on each vault side; quoteIn says whether quote was the input side. The
// token normally sits on base with WSOL on quote; a WSOL base flips both
// the amounts and the direction.
func (n *Normalizer) pumpammSwap(ctx context.Context, ix *stream.Instruction, meta domain.TxMeta, poolAddr, trader solana.PublicKey, baseAmt, quoteAmt uint64, quoteIn bool) (*domain.Event, error) {
	pool, err := n.pools.PumpammSwapPool(ctx, poolAddr, ix.Accounts)
	if err != nil {
		return nil, err
	}
	if !pool.IsWsolPool() {
		return nil, nil
	}

	baseVault, err := stream.PostToken(ix.Accounts, 7)
	if err != nil {
		return nil, err
	}
	quoteVault, err := stream.PostToken(ix.Accounts, 8)
	if err != nil {
		return nil, err
	}

	solAmt, tokenAmt := quoteAmt, baseAmt
	poolSolAmt, poolTokenAmt := quoteVault.Amt, baseVault.Amt
	isBuy := quoteIn
	if pool.MintA == domain.WSOL {
		solAmt, tokenAmt = baseAmt, quoteAmt
		poolSolAmt, poolTokenAmt = baseVault.Amt, quoteVault.Amt
		isBuy = !quoteIn
	}

	return n.emitTrade(meta, pool, trader, solAmt, tokenAmt, isBuy, poolSolAmt, poolTokenAmt)
}

func (n *Normalizer) meteoraDlmm(ctx context.Context, logLine string, ix *stream.Instruction, meta domain.TxMeta) (*domain.Event, error) {
	decoded, err := meteora.DecodeDlmm(strings.Replace(logLine, meteora.DlmmLogPrefix, "", 1))
	if err != nil {
		return nil, &decodeError{fmt.Errorf("meteora dlmm log: %w", err)}
	}

	switch l := decoded.(type) {
	case *meteora.LbPairCreateEvent:
		created, err := poolcache.PoolCreatedFromDlmmCreate(meta, l, ix.Accounts)
		if err != nil {
			return nil, err
		}
		return n.emitPoolCreated(ctx, created)

	case *meteora.DlmmSwapEvent:
		lbPair, err := stream.Account(ix.Accounts, 0)
		if err != nil {
			return nil, err
		}
		pool, err := n.pools.DlmmSwapPool(ctx, lbPair, ix.Accounts)
		if err != nil {
			return nil, err
		}
		if !pool.IsWsolPool() {
			return nil, nil
		}
		trader, err := stream.Account(ix.Accounts, 10)
		if err != nil {
			return nil, err
		}
		xVault, err := stream.PostToken(ix.Accounts, 2)
		if err != nil {
			return nil, err
		}
		yVault, err := stream.PostToken(ix.Accounts, 3)
		if err != nil {
			return nil, err
		}

		// swapForY means X was the input side; pairing that with "is X
		// the WSOL side" maps amountIn/amountOut onto sol/token.
		xIsWsol := pool.MintA == domain.WSOL
		solAmt, tokenAmt := l.AmountOut, l.AmountIn
		if l.SwapForY == xIsWsol {
			solAmt, tokenAmt = l.AmountIn, l.AmountOut
		}

		poolSolAmt, poolTokenAmt := xVault.Amt, yVault.Amt
		if xVault.Mint != wsolMint {
			poolSolAmt, poolTokenAmt = yVault.Amt, xVault.Amt
		}

		return n.emitTrade(meta, pool, trader, solAmt, tokenAmt, pool.IsMeteoraDlmmBuy(l.SwapForY), poolSolAmt, poolTokenAmt)
	}
	return nil, nil
}

func (n *Normalizer) meteoraDamm(ctx context.Context, logLine string, ix *stream.Instruction, meta domain.TxMeta) (*domain.Event, error) {
	decoded, err := meteora.DecodeDamm(strings.Replace(logLine, meteora.DammLogPrefix, "", 1))
	if err != nil {
		return nil, &decodeError{fmt.Errorf("meteora damm log: %w", err)}
	}

	switch l := decoded.(type) {
	case *meteora.DammPoolCreatedEvent:
		created, err := poolcache.PoolCreatedFromDammCreate(meta, l, ix.Accounts, ix.Data)
		if err != nil {
			return nil, err
		}
		return n.emitPoolCreated(ctx, created)

	case *meteora.DammSwapEvent:
		poolAddr, err := stream.Account(ix.Accounts, 0)
		if err != nil {
			return nil, err
		}
		pool, err := n.pools.DammSwapPool(ctx, poolAddr, ix.Accounts)
		if err != nil {
			return nil, err
		}
		if !pool.IsWsolPool() {
			return nil, nil
		}
		trader, err := stream.Account(ix.Accounts, 12)
		if err != nil {
			return nil, err
		}
		aVault, err := stream.PostToken(ix.Accounts, 5)
		if err != nil {
			return nil, err
		}
		bVault, err := stream.PostToken(ix.Accounts, 6)
		if err != nil {
			return nil, err
		}

		// the swap log has no direction field; the user's source token
		// account (account 1) tells which side went in, falling back to
		// the destination (account 2) when the source never held tokens.
		isBuy, err := dammIsBuy(ix.Accounts)
		if err != nil {
			return nil, err
		}

		solAmt, tokenAmt := l.OutAmount, l.InAmount-l.ProtocolFee
		if isBuy {
			solAmt, tokenAmt = l.InAmount-l.ProtocolFee, l.OutAmount
		}

		poolSolAmt, poolTokenAmt := aVault.Amt, bVault.Amt
		if aVault.Mint != wsolMint {
			poolSolAmt, poolTokenAmt = bVault.Amt, aVault.Amt
		}

		return n.emitTrade(meta, pool, trader, solAmt, tokenAmt, isBuy, poolSolAmt, poolTokenAmt)
	}
	return nil, nil
}

func dammIsBuy(accounts []stream.IxAccount) (bool, error) {
	if src, err := stream.TokenMint(accounts, 1); err == nil {
		return src == wsolMint, nil
	}
	if dst, err := stream.TokenMint(accounts, 2); err == nil {
		return dst != wsolMint, nil
	}
	return false, fmt.Errorf("%w: damm swap has no user source or destination token balance", stream.ErrShape)
}

// emitPoolCreated touches the pool record and emits a PoolCreated for WSOL
// pools only.
func (n *Normalizer) emitPoolCreated(ctx context.Context, created *domain.PoolCreatedRecord) (*domain.Event, error) {
	if err := n.pools.Touch(ctx, created.AsPoolRecord()); err != nil {
		return nil, err
	}
	if !created.Creator.IsZero() && !domain.IsOnCurve(created.Creator) {
		// pools made by another program rather than a wallet
		n.logger.Printf("[normalize] pool %s created by off-curve address %s", created.Addr, created.Creator)
	}
	if !created.IsWsolPool() {
		return nil, nil
	}
	return &domain.Event{PoolCreated: created}, nil
}

// emitTrade assembles the trade record, dropping zero-amount swaps.
func (n *Normalizer) emitTrade(meta domain.TxMeta, pool *domain.PoolRecord, trader solana.PublicKey, solAmt, tokenAmt uint64, isBuy bool, poolSolAmt, poolTokenAmt uint64) (*domain.Event, error) {
	if solAmt == 0 || tokenAmt == 0 {
		return nil, nil
	}
	decimals := pool.TokenDecimals()
	return &domain.Event{Trade: &domain.TradeRecord{
		BlkTs:        meta.BlkTs,
		Slot:         meta.Slot,
		Txid:         meta.Txid,
		Idx:          meta.Idx,
		Mint:         pool.TokenMint(),
		Decimals:     decimals,
		Trader:       trader,
		Dex:          pool.Dex,
		Pool:         pool.Addr,
		PoolSolAmt:   poolSolAmt,
		PoolTokenAmt: poolTokenAmt,
		IsBuy:        isBuy,
		SolAmt:       solAmt,
		TokenAmt:     tokenAmt,
		PriceSol:     domain.CalcPriceSol(solAmt, tokenAmt, decimals),
	}}, nil
}
