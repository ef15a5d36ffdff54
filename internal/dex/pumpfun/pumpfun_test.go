package pumpfun

import "testing"

const tradeLog = "2K7nL28PxCW8ejnyCeuMpbXwJKzXo9q1ecEyRsXKe7VYaxLjCqTrMCp9pnwrwTG7rmaRTa1vcTqa8LGDfNZ9bpcKgSPgNDe3MrFn57HPpTzriKWACnH99YDM7dfTpxwRoCQTrs6BSdGSXgusW9Jbz1yAV9D32MZ62azsiK16Gksbq7cinYkugTfQDJM5"

func TestDecode_Trade(t *testing.T) {
	v, err := Decode(tradeLog)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	evt, ok := v.(*TradeEvent)
	if !ok {
		t.Fatalf("expected *TradeEvent, got %T", v)
	}
	if got := evt.Mint.String(); got != "G6DgoUhSAThLqpQgex3JWqkHNci9wAURfbR6mdNMpump" {
		t.Errorf("Mint = %s", got)
	}
	if evt.SolAmount != 23486458 {
		t.Errorf("SolAmount = %d, want 23486458", evt.SolAmount)
	}
	if evt.TokenAmount != 833886445300 {
		t.Errorf("TokenAmount = %d, want 833886445300", evt.TokenAmount)
	}
	if evt.IsBuy {
		t.Error("IsBuy = true, want false")
	}
	if got := evt.User.String(); got != "8bPfqDf7rvWy7YkXhEYNJaWHkrn3gwEJMSeCQsYCJjP7" {
		t.Errorf("User = %s", got)
	}
	if evt.Timestamp != 1740724823 {
		t.Errorf("Timestamp = %d, want 1740724823", evt.Timestamp)
	}
	if evt.VirtualSolReserves != 30098608607 {
		t.Errorf("VirtualSolReserves = %d, want 30098608607", evt.VirtualSolReserves)
	}
	if evt.VirtualTokenReserves != 1069484654581128 {
		t.Errorf("VirtualTokenReserves = %d, want 1069484654581128", evt.VirtualTokenReserves)
	}
	if evt.RealSolReserves != 98608607 {
		t.Errorf("RealSolReserves = %d, want 98608607", evt.RealSolReserves)
	}
	if evt.RealTokenReserves != 789584654581128 {
		t.Errorf("RealTokenReserves = %d, want 789584654581128", evt.RealTokenReserves)
	}
}

func TestDecode_NotAPumpfunLog(t *testing.T) {
	// valid base58 but wrong discriminator
	if _, err := Decode("1111111111111111111111111111111111111111111111111111"); err == nil {
		t.Error("expected error for unknown discriminator")
	}
	if _, err := Decode("0OIl"); err == nil {
		t.Error("expected error for invalid base58")
	}
}
