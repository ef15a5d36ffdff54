// Package relay delivers normalized events to the downstream webhook. Events
// stay on the queue until the downstream acknowledges them with a 200.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"sol-dex-hub/internal/domain"
	"sol-dex-hub/internal/observability"
	"sol-dex-hub/internal/queue"
)

const (
	// dialTimeout bounds the TCP connect to the downstream.
	dialTimeout = 200 * time.Millisecond

	// requestTimeout bounds the whole delivery round trip.
	requestTimeout = time.Second

	defaultInterval     = 500 * time.Millisecond
	defaultIdleInterval = 200 * time.Millisecond
)

// Payload is the body of one downstream delivery: the queued events
// bucketed by kind.
type Payload struct {
	PumpfunCompleteEvts []*domain.PumpfunCompleteRecord `json:"pumpfunCompleteEvts"`
	PoolCreatedEvts     []*domain.PoolCreatedRecord     `json:"poolCreatedEvts"`
	TradeEvts           []*domain.TradeRecord           `json:"tradeEvts"`
}

// Archiver persists delivered payloads. Called after each acknowledged
// delivery; failures are logged, never retried.
type Archiver interface {
	Archive(ctx context.Context, p *Payload) error
}

// Options configures a Sender. Zero values fall back to defaults.
type Options struct {
	Events   *queue.Queue
	Endpoint string
	Client   *http.Client
	Archiver Archiver
	Metrics  *observability.Metrics
	Logger   *log.Logger

	// Interval is the sleep after a delivery attempt. Defaults to 500ms.
	Interval time.Duration

	// IdleInterval is the sleep when the queue is empty. Defaults to
	// 200ms.
	IdleInterval time.Duration
}

// Sender is the egress worker. One instance runs per process.
type Sender struct {
	events       *queue.Queue
	endpoint     string
	client       *http.Client
	archiver     Archiver
	metrics      *observability.Metrics
	logger       *log.Logger
	interval     time.Duration
	idleInterval time.Duration
}

// NewHTTPClient returns the egress HTTP client with the delivery timeouts.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: dialTimeout}).DialContext,
		},
	}
}

// New creates a Sender from opts.
func New(opts Options) *Sender {
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.IdleInterval <= 0 {
		opts.IdleInterval = defaultIdleInterval
	}
	return &Sender{
		events:       opts.Events,
		endpoint:     opts.Endpoint,
		client:       opts.Client,
		archiver:     opts.Archiver,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		interval:     opts.Interval,
		idleInterval: opts.IdleInterval,
	}
}

// Run loops until ctx is canceled or the store fails. Delivery failures are
// not errors; the events stay queued and the next iteration retries them.
func (s *Sender) Run(ctx context.Context) error {
	for {
		n, err := s.runOnce(ctx)
		if err != nil {
			return err
		}
		sleep := s.interval
		if n == 0 {
			sleep = s.idleInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// runOnce attempts one delivery of the current queue snapshot. It returns
// the number of events in the snapshot, trimmed off only when the
// downstream answered 200.
func (s *Sender) runOnce(ctx context.Context) (int, error) {
	raws, err := s.events.Snapshot(ctx, queue.EventsBound)
	if err != nil {
		return 0, err
	}
	if len(raws) == 0 {
		return 0, nil
	}

	payload, err := bucket(raws)
	if err != nil {
		return 0, err
	}
	s.logger.Printf("[relay] sending %d events to %s: %d trades, %d pools created, %d pump completes",
		len(raws), s.endpoint, len(payload.TradeEvts), len(payload.PoolCreatedEvts), len(payload.PumpfunCompleteEvts))

	ok := s.deliver(ctx, payload)
	if !ok {
		return len(raws), nil
	}

	if err := s.events.Trim(ctx, int64(len(raws))); err != nil {
		return 0, err
	}
	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, payload); err != nil {
			s.logger.Printf("[relay] archive failed: %v", err)
		}
	}
	return len(raws), nil
}

// bucket deserializes queued events into the delivery payload. The slices
// are allocated up front so empty buckets serialize as [] rather than null.
func bucket(raws []string) (*Payload, error) {
	p := &Payload{
		PumpfunCompleteEvts: []*domain.PumpfunCompleteRecord{},
		PoolCreatedEvts:     []*domain.PoolCreatedRecord{},
		TradeEvts:           []*domain.TradeRecord{},
	}
	for i, raw := range raws {
		var evt domain.Event
		if err := json.Unmarshal([]byte(raw), &evt); err != nil {
			return nil, fmt.Errorf("unmarshal queued event %d: %w", i, err)
		}
		switch {
		case evt.Trade != nil:
			p.TradeEvts = append(p.TradeEvts, evt.Trade)
		case evt.PoolCreated != nil:
			p.PoolCreatedEvts = append(p.PoolCreatedEvts, evt.PoolCreated)
		case evt.PumpfunComplete != nil:
			p.PumpfunCompleteEvts = append(p.PumpfunCompleteEvts, evt.PumpfunComplete)
		}
	}
	return p, nil
}

// deliver POSTs the payload and reports whether the downstream answered
// exactly 200. Transport failures and other statuses only warn; the caller
// retains the events either way.
func (s *Sender) deliver(ctx context.Context, p *Payload) bool {
	body, err := json.Marshal(p)
	if err != nil {
		s.logger.Printf("[relay] marshal payload: %v", err)
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		s.logger.Printf("[relay] build request: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Printf("[relay] delivery failed: %v", err)
		s.observe("error", start, false)
		return false
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Printf("[relay] delivery rejected with status %d, keeping events", resp.StatusCode)
		s.observe(fmt.Sprintf("%d", resp.StatusCode), start, false)
		return false
	}
	s.observe("200", start, true)
	return true
}

func (s *Sender) observe(status string, start time.Time, ok bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.Deliveries.WithLabelValues(status).Inc()
	s.metrics.DeliveryLatency.Observe(time.Since(start).Seconds())
	if ok {
		s.metrics.LastDeliveryUnix.Set(float64(time.Now().Unix()))
	}
}
