package pumpamm

import "testing"

const (
	createPoolLog = "rLaD5MVJGTSekbeMDJ6HPu2vjcD1CxmDA1gQymYBcRq6XBB4xCkgHtGtWK2Q4cJCJaqU3cbnFFpYE1VuvorWUEyvmRvi3822c3tEnKFiNEkgEhy2eiGskn9DhuyyMPURFDGNQCMfqurSm39XCu5HRsKgPi8pWxrzpDf6XaAaw1F8ti4D2CDJCQU5wKUqiGTcUt5phxnyNHAx13V4YWW6RjU5yoY5aXFeE7vwhkPnVGdJSKFioPEydYHWJnXLydcvKL5w91kkPSCPeGtFhV1nJSHW8WV48x32xd3DQgHS8yyniBjbenhF7M9Lw7Nu1969mk71vKMhes8BzPN4tQbbBQNSeKfxRb3nqkiLKUFaSqezDDLsc1W6LJpv3rh1tKHd1CFEMeMoa73twgb73aZ7cem9mrV2cuutYtqsNr"
	buyLog        = "w1295DLPcEG5wn5ZTAu91vQ18djDpDL3tybTWvQVi2WRAVj2ozjJ175VoKUrAn3DL6fvGfri2FxUBCkCtQW1945U26ADQX8fEBMBgHySLwbXxZodRxUYB4hBfD5MJK3CU3i7Un2vmZAKjCGAjZXggLmCdPdN5BAUZVC2p793gzEAkvAF7uugNXHDJ1KWPWLj1f7HGcQEhUKEwZAumW9YoPWfikc3Rf22mA5KQNZkhbk4XbDuASKSarMEEmjnXcp3Sxo2RarcE5nBj8Vn73VdDsfAFBHzPqHrxQ9MU1Zka3cSupvF4iwH5Sz1DJ9Da97EQthDTX6nP2uHB3UemQobL5NJ1Sk5tL5Kp13dv1NhLCggsJ5HUCy5nSpGwYPniDyPUvMEL6peWf2V6jWuAQ6ctS4pPAnpT5eTKGKpeECae3cZ55ot62ErQ"
	sellLog       = "w1295DLPcEFrZVGvC9FAJRzkesEEPkg7dr1Fip6zXypBg16aNJWJEi5ocDmYTrudzSikvC4HkiEfMpkYgHGPeZiVmAxrXDHyAjCQLoeYDSmTAgNXahrdmDcZvc2xzp5osdZwF3YJwkAw9Lx5MVwzeA6xgLEM1h2fXEXwLgZ3MtswS5WLKcZDKcogZa7rp29BdpjXUkAvCkbCFEiwTTNLSdyXo5eLRUUqco4dt3oaPcNqDqsyxRZZ9PMoh3pXHHFifQjtbX4uMLkepryCvZA9tF4GVhYGS4sm2wkDTZ6HrBroaqCt1uNfpK7MFmBDvKung5oLsUdJPFGutVLA9AHC1fnnR89fMRmwZpwf8T4jHR2GBCbJwDHS6pK1BkmBpKUoLyn7oC3wpdG8u98qzN7oSBZMNgXDfWdpq4cQFj814zC4gB49RDcWH"
)

func TestDecode_Buy(t *testing.T) {
	v, err := Decode(buyLog)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	evt, ok := v.(*BuyEvent)
	if !ok {
		t.Fatalf("expected *BuyEvent, got %T", v)
	}
	if evt.Timestamp != 1742799186 {
		t.Errorf("Timestamp = %d, want 1742799186", evt.Timestamp)
	}
	if evt.BaseAmountOut != 344684000000 {
		t.Errorf("BaseAmountOut = %d, want 344684000000", evt.BaseAmountOut)
	}
	if evt.MaxQuoteAmountIn != 4000000000 {
		t.Errorf("MaxQuoteAmountIn = %d, want 4000000000", evt.MaxQuoteAmountIn)
	}
	if evt.PoolBaseTokenReserves != 64233705184397 {
		t.Errorf("PoolBaseTokenReserves = %d, want 64233705184397", evt.PoolBaseTokenReserves)
	}
	if evt.PoolQuoteTokenReserves != 310993746157 {
		t.Errorf("PoolQuoteTokenReserves = %d, want 310993746157", evt.PoolQuoteTokenReserves)
	}
	if evt.QuoteAmountIn != 1677824553 {
		t.Errorf("QuoteAmountIn = %d, want 1677824553", evt.QuoteAmountIn)
	}
	if evt.LpFee != 3355650 {
		t.Errorf("LpFee = %d, want 3355650", evt.LpFee)
	}
	if evt.ProtocolFee != 838913 {
		t.Errorf("ProtocolFee = %d, want 838913", evt.ProtocolFee)
	}
	if evt.QuoteAmountInWithLpFee != 1681180203 {
		t.Errorf("QuoteAmountInWithLpFee = %d, want 1681180203", evt.QuoteAmountInWithLpFee)
	}
	if evt.UserQuoteAmountIn != 1682019116 {
		t.Errorf("UserQuoteAmountIn = %d, want 1682019116", evt.UserQuoteAmountIn)
	}
	if got := evt.Pool.String(); got != "7BbiE43PCG6HGoR7pV9GX9brcYwW1SNJTVmbDHzGbhXy" {
		t.Errorf("Pool = %s", got)
	}
	if got := evt.User.String(); got != "78MbHfip1D5xLEMtKFDfBNw4vRuVtsqyedTcPVoaSMGG" {
		t.Errorf("User = %s", got)
	}
}

func TestDecode_Sell(t *testing.T) {
	v, err := Decode(sellLog)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	evt, ok := v.(*SellEvent)
	if !ok {
		t.Fatalf("expected *SellEvent, got %T", v)
	}
	if evt.Timestamp != 1742799186 {
		t.Errorf("Timestamp = %d, want 1742799186", evt.Timestamp)
	}
	if evt.BaseAmountIn != 86188859991 {
		t.Errorf("BaseAmountIn = %d, want 86188859991", evt.BaseAmountIn)
	}
	if evt.QuoteAmountOut != 20908311 {
		t.Errorf("QuoteAmountOut = %d, want 20908311", evt.QuoteAmountOut)
	}
	if evt.UserQuoteAmountOut != 20856039 {
		t.Errorf("UserQuoteAmountOut = %d, want 20856039", evt.UserQuoteAmountOut)
	}
	if got := evt.Pool.String(); got != "6kiNyqSmofBJKFm4w3Jo3qNAne3QnKHQET2mGv8toYys" {
		t.Errorf("Pool = %s", got)
	}
	if got := evt.User.String(); got != "98B1WGW1DMppKvvkEcEAfNVmoQo2hQmzozGa4wVwQTa" {
		t.Errorf("User = %s", got)
	}
}

func TestDecode_CreatePool(t *testing.T) {
	v, err := Decode(createPoolLog)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	evt, ok := v.(*CreatePoolEvent)
	if !ok {
		t.Fatalf("expected *CreatePoolEvent, got %T", v)
	}
	if evt.Timestamp != 1742797560 {
		t.Errorf("Timestamp = %d, want 1742797560", evt.Timestamp)
	}
	if evt.Index != 0 {
		t.Errorf("Index = %d, want 0", evt.Index)
	}
	if got := evt.Creator.String(); got != "BrZq2UU7yn5guKkx9uh3RCaxUZU2qjvMey4iENuvDQyw" {
		t.Errorf("Creator = %s", got)
	}
	if got := evt.BaseMint.String(); got != "9UEVXypd54qEnnPZHqeKHMfvDQ1ZbREo1vJ1PAvXpump" {
		t.Errorf("BaseMint = %s", got)
	}
	if got := evt.QuoteMint.String(); got != "So11111111111111111111111111111111111111112" {
		t.Errorf("QuoteMint = %s", got)
	}
	if evt.BaseMintDecimals != 6 {
		t.Errorf("BaseMintDecimals = %d, want 6", evt.BaseMintDecimals)
	}
	if evt.QuoteMintDecimals != 9 {
		t.Errorf("QuoteMintDecimals = %d, want 9", evt.QuoteMintDecimals)
	}
	if got := evt.Pool.String(); got != "5ZW7h6zfHtTcpJw5vavD1LrCdJtnUHYHKUGzSFswUScR" {
		t.Errorf("Pool = %s", got)
	}
	if got := evt.LpMint.String(); got != "6g9KH6m8RvtSh6oi3tM2XKLdnyrdsaFrcLYsBzD4G4QG" {
		t.Errorf("LpMint = %s", got)
	}
	if evt.PoolBump != 254 {
		t.Errorf("PoolBump = %d, want 254", evt.PoolBump)
	}
	if evt.LpTokenAmountOut != 4193388306113 {
		t.Errorf("LpTokenAmountOut = %d, want 4193388306113", evt.LpTokenAmountOut)
	}
}
