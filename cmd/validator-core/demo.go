package main

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/validator-core/cmd/validator-core/config"
	"github.com/luxfi/validator-core/log"
	"github.com/luxfi/validator-core/pack"
	packmetrics "github.com/luxfi/validator-core/pack/metrics"
)

// RunDemo exercises Pack end to end: a generator goroutine rate-limited by
// golang.org/x/time/rate submits synthetic transactions while
// cfg.Limits.BankTileCnt worker goroutines, coordinated by
// golang.org/x/sync/errgroup, pull microblocks and report completion --
// modeling the real bank-tile workers of §5. It runs until ctx is
// cancelled.
func RunDemo(ctx context.Context, cfg config.Config) error {
	metrics := packmetrics.New()
	p, err := pack.New(cfg.Limits, nil, metrics)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, metrics)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return generateTransactions(gctx, p) })

	for w := 0; w < cfg.Limits.BankTileCnt; w++ {
		workerID := w
		g.Go(func() error { return runBankTile(gctx, p, workerID, cfg.Limits) })
	}

	return g.Wait()
}

// generateTransactions submits synthetic single-account-write transactions
// at a bounded rate, so the demo doesn't spin a tight insert loop burning a
// whole core for no observational benefit.
func generateTransactions(ctx context.Context, p *pack.Pack) error {
	limiter := rate.NewLimiter(rate.Limit(2000), 100)
	var seq uint64
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		seq++
		in := syntheticTxn(seq)
		h := p.InsertInit()
		result := p.InsertFini(h, in, time.Now().Unix()+30)
		log.Trace("demo: submitted transaction", "seq", seq, "result", result)
	}
}

// syntheticTxn deterministically derives a transaction touching one
// pseudo-random account, varying cost and vote-ness by seq so the demo
// exercises both the priority heap and the vote sub-budget.
func syntheticTxn(seq uint64) pack.TxnInput {
	var sigBuf [8]byte
	binary.BigEndian.PutUint64(sigBuf[:], seq)
	digest := sha256.Sum256(sigBuf[:])

	var sig pack.Signature
	copy(sig[:], digest[:])

	var addr common.Address
	copy(addr[:], digest[:20])

	return pack.TxnInput{
		FirstSignature: sig,
		SigCount:       1,
		WriteAccounts:  []pack.Address{addr},
		IsSimpleVote:   seq%10 == 0,
		ComputeBudget: pack.ComputeBudgetInput{
			Present:          true,
			ComputeUnitLimit: 1000 + (seq % 5000),
		},
	}
}

// runBankTile repeatedly requests a microblock for workerID, "executes" it
// (a no-op in this demo -- replay/execution is out of scope), and reports
// completion so the account locks it holds are released.
func runBankTile(ctx context.Context, p *pack.Pack, workerID int, limits pack.Limits) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			batch := p.ScheduleNextMicroblock(workerID, limits.MaxCostPerBlock/uint64(limits.BankTileCnt), 0.25)
			if len(batch) > 0 {
				log.Debug("demo: scheduled microblock", "worker", workerID, "count", len(batch))
				p.MicroblockComplete(workerID)
			}
		}
	}
}

// serveMetrics exposes Pack's metrics over HTTP via the prometheus.Gatherer
// bridge, following the teacher's metrics/prometheus.Gatherer usage.
func serveMetrics(addr string, m *packmetrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("demo: metrics server exited", "err", err)
	}
}
