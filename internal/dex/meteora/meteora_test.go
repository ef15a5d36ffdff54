package meteora

import "testing"

const (
	dlmmSwapLog   = "yCGxBopjnVNQkNP5usq1PpLuVb2NpVsU6W7oHk1uLCBqSbdXeht3CBJqM9Tqo5eD8dWs3PcBsosJs4TvgcKDL59evdyxbk1yUH1Wjk81pBm4JBZyfTH9W4PNhbdf8ueHGDkFqhaW75JUGhrwv3T8GbkzpnbdFCFKdcT1gYQnH89AVpBPWqGU63e6nFFRBtTWASyZwM"
	dlmmCreateLog = "FPwodQBxG1zfFUeFeUF2VDpU7KqWxHbyuYpoFzxe5t5Qaah8zV77xFwXU3wqndwXXp9N83wCyPtQMc9zS1xK4ithJuMsrt1sd9fe8MXr7fvPwciaSDTA2ZSPr49S41rui4adqcDb6a14uQcEz6vgJg9tpGeU"
	dammSwapLog   = "UWzjvs3QCsSuVepPAAAAAPbFLwAAAAAArKqjAAAAAACr6igAAAAAAAAAAAAAAAAA"
	dammCreateLog = "yiwpWGjcnVL/OEim1tJaIYv+uaPx+ExHNdLj9kYFNHhSYEHp3UqzpOXozgM2rUsMJx7iRsc7tS5W0xZVIVrmfBDwo4cZ855TBpuIV/6rgYT7aH9jRhjANdrEOdwa6ztVmKDwAAAAAAEBsLGkRP0LBqwdp+4Q412IQMSZjqfRwFJ5w7XpeoA2jvI="
)

func TestDecodeDlmm_Swap(t *testing.T) {
	v, err := DecodeDlmm(dlmmSwapLog)
	if err != nil {
		t.Fatalf("DecodeDlmm failed: %v", err)
	}

	evt, ok := v.(*DlmmSwapEvent)
	if !ok {
		t.Fatalf("expected *DlmmSwapEvent, got %T", v)
	}
	if got := evt.LbPair.String(); got != "GCYpPT33pwxyGWaQ8XTrFQbKyb91tmSXJES2ewXrcPuz" {
		t.Errorf("LbPair = %s", got)
	}
	if got := evt.From.String(); got != "8hfWTyGZZyh1PXnH7Tg7ZLz69PsVSAsDs4p1ErYN4grC" {
		t.Errorf("From = %s", got)
	}
	if evt.StartBinID != -382 || evt.EndBinID != -382 {
		t.Errorf("bin ids = %d..%d, want -382..-382", evt.StartBinID, evt.EndBinID)
	}
	if evt.AmountIn != 198300000 {
		t.Errorf("AmountIn = %d, want 198300000", evt.AmountIn)
	}
	if evt.AmountOut != 21600777824 {
		t.Errorf("AmountOut = %d, want 21600777824", evt.AmountOut)
	}
	if evt.SwapForY {
		t.Error("SwapForY = true, want false")
	}
	if evt.Fee != 10555506 {
		t.Errorf("Fee = %d, want 10555506", evt.Fee)
	}
	if evt.ProtocolFee != 527775 {
		t.Errorf("ProtocolFee = %d, want 527775", evt.ProtocolFee)
	}
	if got := evt.FeeBps.BigInt().Uint64(); got != 53229981 {
		t.Errorf("FeeBps = %d, want 53229981", got)
	}
	if evt.HostFee != 0 {
		t.Errorf("HostFee = %d, want 0", evt.HostFee)
	}
}

func TestDecodeDlmm_LbPairCreate(t *testing.T) {
	v, err := DecodeDlmm(dlmmCreateLog)
	if err != nil {
		t.Fatalf("DecodeDlmm failed: %v", err)
	}

	evt, ok := v.(*LbPairCreateEvent)
	if !ok {
		t.Fatalf("expected *LbPairCreateEvent, got %T", v)
	}
	if got := evt.LbPair.String(); got != "9d9mb8kooFfaD3SctgZtkxQypkshx6ezhbKio89ixyy2" {
		t.Errorf("LbPair = %s", got)
	}
	if evt.BinStep != 50 {
		t.Errorf("BinStep = %d, want 50", evt.BinStep)
	}
	if got := evt.TokenX.String(); got != "6p6xgHyF7AeE6TZkSmFsko444wqoP15icUSqi2jfGiPN" {
		t.Errorf("TokenX = %s", got)
	}
	if got := evt.TokenY.String(); got != "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v" {
		t.Errorf("TokenY = %s", got)
	}
}

func TestDecodeDamm_Swap(t *testing.T) {
	v, err := DecodeDamm(dammSwapLog)
	if err != nil {
		t.Fatalf("DecodeDamm failed: %v", err)
	}

	evt, ok := v.(*DammSwapEvent)
	if !ok {
		t.Fatalf("expected *DammSwapEvent, got %T", v)
	}
	if evt.InAmount != 1340757422 {
		t.Errorf("InAmount = %d, want 1340757422", evt.InAmount)
	}
	if evt.OutAmount != 3130870 {
		t.Errorf("OutAmount = %d, want 3130870", evt.OutAmount)
	}
	if evt.TradeFee != 10726060 {
		t.Errorf("TradeFee = %d, want 10726060", evt.TradeFee)
	}
	if evt.ProtocolFee != 2681515 {
		t.Errorf("ProtocolFee = %d, want 2681515", evt.ProtocolFee)
	}
	if evt.HostFee != 0 {
		t.Errorf("HostFee = %d, want 0", evt.HostFee)
	}
}

func TestDecodeDamm_PoolCreated(t *testing.T) {
	v, err := DecodeDamm(dammCreateLog)
	if err != nil {
		t.Fatalf("DecodeDamm failed: %v", err)
	}

	evt, ok := v.(*DammPoolCreatedEvent)
	if !ok {
		t.Fatalf("expected *DammPoolCreatedEvent, got %T", v)
	}
	if got := evt.LpMint.String(); got != "JBGjxPcb55NpuCkeeE5igKLAK7s9NQDumQGYok77r4jm" {
		t.Errorf("LpMint = %s", got)
	}
	if got := evt.TokenAMint.String(); got != "GUUFsneDFrEgYwV2ngpvpMdAmwFjhFknA5eL7ehkeFf8" {
		t.Errorf("TokenAMint = %s", got)
	}
	if got := evt.TokenBMint.String(); got != "So11111111111111111111111111111111111111112" {
		t.Errorf("TokenBMint = %s", got)
	}
	if evt.PoolType != 1 {
		t.Errorf("PoolType = %d, want 1", evt.PoolType)
	}
	if got := evt.Pool.String(); got != "CtjrznmKMBNGTmZiRmCtHkgX3VcduwMMqFntLNbEqury" {
		t.Errorf("Pool = %s", got)
	}
}

func TestDammInitHasConfig(t *testing.T) {
	// base58 of the 8-byte init-with-config instruction ids
	if !DammInitHasConfig("2HDkvGbaQ2P") {
		t.Error("init-with-config instruction not recognized")
	}
	if !DammInitHasConfig("98Lg5EFQocu") {
		t.Error("init-with-config2 instruction not recognized")
	}
	if DammInitHasConfig("1111111111") {
		t.Error("unrelated instruction data matched")
	}
}
