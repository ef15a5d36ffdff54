package poolcache

import (
	"sol-dex-hub/internal/dex/meteora"
	"sol-dex-hub/internal/dex/pumpamm"
	"sol-dex-hub/internal/dex/pumpfun"
	"sol-dex-hub/internal/dex/raydium"
	"sol-dex-hub/internal/domain"
	"sol-dex-hub/internal/stream"
)

// PoolCreatedFromRaydiumInit builds the creation record for a Raydium pool
// initialization. The amm, mints and creator come from fixed instruction
// account positions; decimals come from the init log.
func PoolCreatedFromRaydiumInit(meta domain.TxMeta, log *raydium.InitLog, accounts []stream.IxAccount) (*domain.PoolCreatedRecord, error) {
	amm, err := stream.Account(accounts, 4)
	if err != nil {
		return nil, err
	}
	coinMint, err := stream.Account(accounts, 8)
	if err != nil {
		return nil, err
	}
	pcMint, err := stream.Account(accounts, 9)
	if err != nil {
		return nil, err
	}
	creator, err := stream.Account(accounts, 17)
	if err != nil {
		return nil, err
	}
	return &domain.PoolCreatedRecord{
		BlkTs:     meta.BlkTs,
		Slot:      meta.Slot,
		Txid:      meta.Txid,
		Idx:       meta.Idx,
		Creator:   creator,
		Addr:      amm,
		Dex:       domain.DexRaydiumAmm,
		MintA:     coinMint,
		MintB:     pcMint,
		DecimalsA: log.CoinDecimals,
		DecimalsB: log.PcDecimals,
	}, nil
}

// PoolCreatedFromPumpfunCreate builds the creation record for a new Pumpfun
// bonding curve.
func PoolCreatedFromPumpfunCreate(meta domain.TxMeta, evt *pumpfun.CreateEvent) *domain.PoolCreatedRecord {
	return &domain.PoolCreatedRecord{
		BlkTs:     meta.BlkTs,
		Slot:      meta.Slot,
		Txid:      meta.Txid,
		Idx:       meta.Idx,
		Creator:   evt.User,
		Addr:      evt.BondingCurve,
		Dex:       domain.DexPumpfun,
		MintA:     evt.Mint,
		MintB:     domain.WSOL,
		DecimalsA: 6,
		DecimalsB: 9,
	}
}

// PoolCreatedFromPumpammCreate builds the creation record for a new PumpAmm
// pool, entirely from the create event.
func PoolCreatedFromPumpammCreate(meta domain.TxMeta, evt *pumpamm.CreatePoolEvent) *domain.PoolCreatedRecord {
	return &domain.PoolCreatedRecord{
		BlkTs:     meta.BlkTs,
		Slot:      meta.Slot,
		Txid:      meta.Txid,
		Idx:       meta.Idx,
		Creator:   evt.Creator,
		Addr:      evt.Pool,
		Dex:       domain.DexPumpAmm,
		MintA:     evt.BaseMint,
		MintB:     evt.QuoteMint,
		DecimalsA: evt.BaseMintDecimals,
		DecimalsB: evt.QuoteMintDecimals,
	}
}

// PoolCreatedFromDlmmCreate builds the creation record for a new DLMM lb
// pair. Decimals come from the vault balances at accounts 4/5, the creator
// from account 8.
func PoolCreatedFromDlmmCreate(meta domain.TxMeta, evt *meteora.LbPairCreateEvent, accounts []stream.IxAccount) (*domain.PoolCreatedRecord, error) {
	xVault, err := stream.PostToken(accounts, 4)
	if err != nil {
		return nil, err
	}
	yVault, err := stream.PostToken(accounts, 5)
	if err != nil {
		return nil, err
	}
	creator, err := stream.Account(accounts, 8)
	if err != nil {
		return nil, err
	}
	return &domain.PoolCreatedRecord{
		BlkTs:     meta.BlkTs,
		Slot:      meta.Slot,
		Txid:      meta.Txid,
		Idx:       meta.Idx,
		Creator:   creator,
		Addr:      evt.LbPair,
		Dex:       domain.DexMeteoraDlmm,
		MintA:     evt.TokenX,
		MintB:     evt.TokenY,
		DecimalsA: xVault.Decimals,
		DecimalsB: yVault.Decimals,
	}, nil
}

// PoolCreatedFromDammCreate builds the creation record for a new DAMM pool.
// The with-config initialization forms carry an extra leading account, which
// shifts the vault and creator positions by one.
func PoolCreatedFromDammCreate(meta domain.TxMeta, evt *meteora.DammPoolCreatedEvent, accounts []stream.IxAccount, ixData string) (*domain.PoolCreatedRecord, error) {
	aIdx, bIdx, creatorIdx := 6, 7, 17
	if meteora.DammInitHasConfig(ixData) {
		aIdx, bIdx, creatorIdx = 7, 8, 18
	}
	aVault, err := stream.PostToken(accounts, aIdx)
	if err != nil {
		return nil, err
	}
	bVault, err := stream.PostToken(accounts, bIdx)
	if err != nil {
		return nil, err
	}
	creator, err := stream.Account(accounts, creatorIdx)
	if err != nil {
		return nil, err
	}
	return &domain.PoolCreatedRecord{
		BlkTs:     meta.BlkTs,
		Slot:      meta.Slot,
		Txid:      meta.Txid,
		Idx:       meta.Idx,
		Creator:   creator,
		Addr:      evt.Pool,
		Dex:       domain.DexMeteoraDamm,
		MintA:     evt.TokenAMint,
		MintB:     evt.TokenBMint,
		DecimalsA: aVault.Decimals,
		DecimalsB: bVault.Decimals,
	}, nil
}
