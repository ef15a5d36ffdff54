// Package ingest runs the batch worker: it drains raw webhook bodies from
// the intake queue, normalizes them into events, and pushes the events onto
// the egress queue.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sol-dex-hub/internal/dex/meteora"
	"sol-dex-hub/internal/domain"
	"sol-dex-hub/internal/normalize"
	"sol-dex-hub/internal/observability"
	"sol-dex-hub/internal/queue"
	"sol-dex-hub/internal/stream"
)

const (
	defaultInterval         = 300 * time.Millisecond
	defaultParseConcurrency = 5
)

var dlmmProgram = meteora.DlmmProgramID.String()

// Options configures a Worker. Zero values fall back to defaults.
type Options struct {
	Intake     *queue.Queue
	Events     *queue.Queue
	Normalizer *normalize.Normalizer
	Metrics    *observability.Metrics
	Logger     *log.Logger

	// Interval is how long the worker sleeps when the intake queue is
	// empty. Defaults to 300ms.
	Interval time.Duration

	// ParseConcurrency bounds the number of batch bodies unmarshaled in
	// parallel. Defaults to 5.
	ParseConcurrency int
}

// Worker is the intake-to-events pump. One instance runs per process.
type Worker struct {
	intake     *queue.Queue
	events     *queue.Queue
	normalizer *normalize.Normalizer
	metrics    *observability.Metrics
	logger     *log.Logger
	interval   time.Duration
	parseConc  int

	now func() time.Time
}

// New creates a Worker from opts.
func New(opts Options) *Worker {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.ParseConcurrency <= 0 {
		opts.ParseConcurrency = defaultParseConcurrency
	}
	return &Worker{
		intake:     opts.Intake,
		events:     opts.Events,
		normalizer: opts.Normalizer,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		interval:   opts.Interval,
		parseConc:  opts.ParseConcurrency,
		now:        time.Now,
	}
}

// Run loops until ctx is canceled or a store or egress-queue failure makes
// further progress impossible. Callers restart the worker on error.
func (w *Worker) Run(ctx context.Context) error {
	for {
		processed, err := w.runOnce(ctx)
		if err != nil {
			return err
		}
		if processed > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// runOnce drains one snapshot of the intake queue. It returns the number of
// bodies consumed. The snapshot is trimmed off whether or not it yielded
// events; bodies that fail to parse are logged and dropped rather than
// wedging the queue.
func (w *Worker) runOnce(ctx context.Context) (int, error) {
	bodies, err := w.intake.Snapshot(ctx, queue.IntakeBound)
	if err != nil {
		return 0, err
	}
	if len(bodies) == 0 {
		return 0, nil
	}
	start := w.now()

	batches := w.parse(ctx, bodies)

	var (
		serialized []string
		maxBlkTs   int64
	)
	for _, batch := range batches {
		if batch == nil {
			continue
		}
		if w.metrics != nil {
			w.metrics.BatchesParsed.Inc()
		}
		md := batch.Metadata
		w.logger.Printf("[ingest] batch slots %d-%d stream=%s region=%s txs=%d",
			md.BatchStartRange, md.BatchEndRange, md.StreamName, md.StreamRegion, len(batch.Txs))

		for ti := range batch.Txs {
			tx := &batch.Txs[ti]
			if tx.BlkTs > maxBlkTs {
				maxBlkTs = tx.BlkTs
			}
			evts, err := w.normalizeTx(ctx, tx)
			if err != nil {
				return 0, err
			}
			serialized = append(serialized, evts...)
		}
	}

	if len(serialized) > 0 {
		if err := w.events.Push(ctx, serialized...); err != nil {
			return 0, fmt.Errorf("push events: %w", err)
		}
	}

	// Trim exactly what was snapshotted, including bodies that parsed to
	// nothing; anything pushed behind the snapshot stays for the next
	// iteration.
	if err := w.intake.Trim(ctx, int64(len(bodies))); err != nil {
		return 0, err
	}

	w.observe(ctx, start, maxBlkTs)
	return len(bodies), nil
}

// parse unmarshals bodies concurrently, preserving order. A body that is
// not valid JSON leaves a nil slot.
func (w *Worker) parse(ctx context.Context, bodies []string) []*stream.Batch {
	batches := make([]*stream.Batch, len(bodies))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(w.parseConc)
	for i, body := range bodies {
		g.Go(func() error {
			var batch stream.Batch
			if err := json.Unmarshal([]byte(body), &batch); err != nil {
				w.logger.Printf("[ingest] drop unparseable batch: %v", err)
				if w.metrics != nil {
					w.metrics.BatchParseErrors.Inc()
				}
				return nil
			}
			batches[i] = &batch
			return nil
		})
	}
	g.Wait()
	return batches
}

// normalizeTx pairs each log line of one transaction with its instruction
// and returns the serialized events. DLMM initializeBinArray invocations
// emit swap-shaped logs without trade semantics, so they are dropped before
// pairing.
func (w *Worker) normalizeTx(ctx context.Context, tx *stream.Tx) ([]string, error) {
	ixs := make([]*stream.ProgramInvocation, 0, len(tx.Ixs))
	for i := range tx.Ixs {
		inv := &tx.Ixs[i]
		if inv.ProgramID == dlmmProgram && strings.HasPrefix(inv.Instruction.Data, meteora.InitBinArrayDataPrefix) {
			continue
		}
		ixs = append(ixs, inv)
	}

	var out []string
	for i, logLine := range tx.Logs {
		if i >= len(ixs) {
			break
		}
		inv := ixs[i]
		meta := domain.TxMeta{
			BlkTs: tx.BlkTs,
			Slot:  tx.Slot,
			Txid:  tx.Signature,
			Idx:   inv.Instruction.Index,
		}
		evt, err := w.normalizer.Normalize(ctx, inv.ProgramID, logLine, &inv.Instruction, meta)
		if err != nil {
			return nil, err
		}
		if evt == nil {
			continue
		}
		raw, err := json.Marshal(evt)
		if err != nil {
			return nil, fmt.Errorf("marshal %s event: %w", evt.Kind(), err)
		}
		if w.metrics != nil {
			w.metrics.EventsNormalized.WithLabelValues(string(evt.Kind())).Inc()
		}
		out = append(out, string(raw))
	}
	return out, nil
}

func (w *Worker) observe(ctx context.Context, start time.Time, maxBlkTs int64) {
	if w.metrics == nil {
		return
	}
	w.metrics.BatchCycleTime.Observe(w.now().Sub(start).Seconds())
	if maxBlkTs > 0 {
		w.metrics.StreamLagSeconds.Set(w.now().Sub(time.Unix(maxBlkTs, 0)).Seconds())
	}
	if n, err := w.intake.Len(ctx); err == nil {
		w.metrics.IntakeQueueDepth.Set(float64(n))
	}
	if n, err := w.events.Len(ctx); err == nil {
		w.metrics.EventsQueueDepth.Set(float64(n))
	}
}
