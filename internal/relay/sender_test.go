package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"sol-dex-hub/internal/domain"
	"sol-dex-hub/internal/kv"
	"sol-dex-hub/internal/queue"
)

func queuedEvent(t *testing.T, evt domain.Event) string {
	t.Helper()
	raw, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return string(raw)
}

func sampleTrade() domain.Event {
	return domain.Event{Trade: &domain.TradeRecord{
		BlkTs:    1740724823,
		Slot:     322000000,
		Txid:     "sig",
		Mint:     solana.NewWallet().PublicKey(),
		Decimals: 6,
		Dex:      domain.DexPumpfun,
		IsBuy:    true,
		SolAmt:   1_000_000,
		TokenAmt: 42_000_000,
		PriceSol: 0.0000238,
	}}
}

func samplePoolCreated() domain.Event {
	return domain.Event{PoolCreated: &domain.PoolCreatedRecord{
		Slot:  322000001,
		Txid:  "sig2",
		Addr:  solana.NewWallet().PublicKey(),
		Dex:   domain.DexRaydiumAmm,
		MintA: solana.NewWallet().PublicKey(),
		MintB: domain.WSOL,
	}}
}

func newSender(t *testing.T, endpoint string) (*Sender, *queue.Queue) {
	t.Helper()
	events := queue.NewEvents(kv.NewMemory())
	return New(Options{Events: events, Endpoint: endpoint}), events
}

func TestRunOnce_TrimsOn200(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
	}))
	defer srv.Close()

	s, events := newSender(t, srv.URL)
	ctx := context.Background()

	if err := events.Push(ctx, queuedEvent(t, sampleTrade()), queuedEvent(t, samplePoolCreated())); err != nil {
		t.Fatalf("push: %v", err)
	}
	n, err := s.runOnce(ctx)
	if err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}
	if n != 2 {
		t.Errorf("delivered %d events, want 2", n)
	}

	if len(got.TradeEvts) != 1 || len(got.PoolCreatedEvts) != 1 || len(got.PumpfunCompleteEvts) != 0 {
		t.Errorf("buckets = %d/%d/%d", len(got.TradeEvts), len(got.PoolCreatedEvts), len(got.PumpfunCompleteEvts))
	}
	if got.TradeEvts[0].SolAmt != 1_000_000 {
		t.Errorf("trade SolAmt = %d", got.TradeEvts[0].SolAmt)
	}

	left, err := events.Len(ctx)
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if left != 0 {
		t.Errorf("queue not trimmed, %d left", left)
	}
}

func TestRunOnce_RetainsOnNon200(t *testing.T) {
	status := http.StatusInternalServerError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	s, events := newSender(t, srv.URL)
	ctx := context.Background()

	if err := events.Push(ctx, queuedEvent(t, sampleTrade())); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := s.runOnce(ctx); err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}
	left, _ := events.Len(ctx)
	if left != 1 {
		t.Fatalf("events dropped on a %d response", status)
	}

	// the retry after a recovery drains the queue
	status = http.StatusOK
	if _, err := s.runOnce(ctx); err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}
	left, _ = events.Len(ctx)
	if left != 0 {
		t.Errorf("queue not trimmed after recovery, %d left", left)
	}
}

func TestRunOnce_RetainsOnConnectFailure(t *testing.T) {
	// a closed listener gives a guaranteed connection refusal
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s, events := newSender(t, srv.URL)
	ctx := context.Background()

	if err := events.Push(ctx, queuedEvent(t, sampleTrade())); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := s.runOnce(ctx); err != nil {
		t.Fatalf("a transport failure must not be fatal: %v", err)
	}
	left, _ := events.Len(ctx)
	if left != 1 {
		t.Errorf("events dropped on connect failure")
	}
}

func TestRunOnce_EmptyQueueSendsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected delivery from an empty queue")
	}))
	defer srv.Close()

	s, _ := newSender(t, srv.URL)
	n, err := s.runOnce(context.Background())
	if err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
}

func TestPayload_EmptyBucketsSerializeAsArrays(t *testing.T) {
	p, err := bucket([]string{queuedEvent(t, sampleTrade())})
	if err != nil {
		t.Fatalf("bucket failed: %v", err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"pumpfunCompleteEvts":[]`) {
		t.Errorf("empty bucket serialized as null: %s", body)
	}
	if !strings.Contains(body, `"poolCreatedEvts":[]`) {
		t.Errorf("empty bucket serialized as null: %s", body)
	}
}

type recordingArchiver struct {
	payloads []*Payload
}

func (a *recordingArchiver) Archive(_ context.Context, p *Payload) error {
	a.payloads = append(a.payloads, p)
	return nil
}

func TestRunOnce_ArchivesAfterAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	events := queue.NewEvents(kv.NewMemory())
	arch := &recordingArchiver{}
	s := New(Options{Events: events, Endpoint: srv.URL, Archiver: arch})
	ctx := context.Background()

	if err := events.Push(ctx, queuedEvent(t, sampleTrade())); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := s.runOnce(ctx); err != nil {
		t.Fatalf("runOnce failed: %v", err)
	}
	if len(arch.payloads) != 1 || len(arch.payloads[0].TradeEvts) != 1 {
		t.Fatalf("archived %d payloads", len(arch.payloads))
	}
}
