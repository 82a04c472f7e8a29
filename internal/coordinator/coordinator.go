package coordinator

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asylian21/mnemonic-recover/internal/balance"
	"github.com/asylian21/mnemonic-recover/internal/combin"
	"github.com/asylian21/mnemonic-recover/internal/deriver"
	"github.com/asylian21/mnemonic-recover/internal/progress"
	"github.com/asylian21/mnemonic-recover/internal/resolver"
)

// Config assembles everything a Coordinator needs to drive one run.
type Config struct {
	Slots      []resolver.Slot
	Enumerator *combin.Enumerator
	Chain      deriver.Chain

	// TargetAddress, if non-empty, is the address the run is searching
	// for, compared against whichever chain address(es) Chain derives.
	TargetAddress string

	// BalanceClient, if non-nil, is queried for each candidate that doesn't
	// match TargetAddress, with one address per candidate: the Bitcoin
	// address when one was derived, otherwise the Ethereum address. The two
	// modes are independent and may both be active.
	BalanceClient  balance.Client
	BalanceTimeout time.Duration

	Workers int

	State        *progress.State
	ProgressPath string
	// SaveEvery controls how many committed chunks elapse between progress
	// file writes. 0 means every chunk.
	SaveEvery int
}

// Outcome is the final disposition of a run.
type Outcome struct {
	Status          string // "match", "loaded_wallet", "exhausted", "stopped"
	Match           *MatchFound
	LoadedWallet    *LoadedWalletFound
	ChunksProcessed int
	Errors          int
}

// Coordinator owns the worker pool for one run. It is
// single-use: construct a fresh Coordinator per Run call.
type Coordinator struct {
	cfg Config

	stopped atomic.Bool // soft stop: dispatcher emits no further chunks
	cancel  context.CancelFunc
}

// New constructs a Coordinator. cfg.Workers must be >= 1; cfg.State and
// cfg.Enumerator must be non-nil.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("coordinator: workers must be >= 1, got %d", cfg.Workers)
	}
	if cfg.Enumerator == nil {
		return nil, fmt.Errorf("coordinator: enumerator is required")
	}
	if cfg.State == nil {
		return nil, fmt.Errorf("coordinator: state is required")
	}
	if cfg.BalanceTimeout <= 0 {
		cfg.BalanceTimeout = 10 * time.Second
	}
	return &Coordinator{cfg: cfg}, nil
}

// Stop requests a soft shutdown: in-flight chunks are allowed to finish and
// their progress committed, but no new chunks are dispatched. Run returns
// once draining completes.
func (c *Coordinator) Stop() {
	c.stopped.Store(true)
}

// Terminate requests a hard shutdown: the shared context is cancelled
// immediately, so in-flight derivations abandon as soon as they next check
// ctx. Progress already committed via Commit is preserved; work in flight
// at the moment of cancellation is not.
func (c *Coordinator) Terminate() {
	if c.cancel != nil {
		c.cancel()
	}
}

type job struct {
	tuples     [][]string
	start, end *big.Int
}

// Run drives the worker pool to exhaustion, to a match, to a loaded
// wallet, or to an external Stop/Terminate/ctx cancellation - whichever
// comes first.
func (c *Coordinator) Run(ctx context.Context) (*Outcome, error) {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	defer cancel()

	jobs := make(chan job, c.cfg.Workers)
	results := make(chan Result, c.cfg.Workers*2)

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer close(jobs)
		for {
			if c.stopped.Load() {
				return nil
			}
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			tuples, start, end, ok := c.cfg.Enumerator.Next(gctx)
			if !ok {
				return nil
			}
			select {
			case jobs <- job{tuples: tuples, start: start, end: end}:
			case <-gctx.Done():
				return nil
			}
		}
	})

	for w := 0; w < c.cfg.Workers; w++ {
		g.Go(func() error {
			return c.work(gctx, jobs, results)
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	outcome := &Outcome{Status: "exhausted"}
	var chunksSinceSave int

	for r := range results {
		r.Visit(
			func(cc ChunkComplete) {
				c.cfg.State.Commit(cc.Start, cc.End)
				outcome.ChunksProcessed++
				chunksSinceSave++
				if chunksSinceSave > c.cfg.SaveEvery {
					_ = c.cfg.State.Save(c.cfg.ProgressPath)
					chunksSinceSave = 0
				}
			},
			func(m MatchFound) {
				if outcome.Match != nil || outcome.LoadedWallet != nil {
					return // first observed win stands; late results are drained and discarded
				}
				outcome.Status = "match"
				outcome.Match = &m
				cancel()
			},
			func(l LoadedWalletFound) {
				if outcome.Match != nil || outcome.LoadedWallet != nil {
					return
				}
				outcome.Status = "loaded_wallet"
				outcome.LoadedWallet = &l
				cancel()
			},
			func(e ErrorResult) {
				outcome.Errors++
			},
		)
	}

	if err := g.Wait(); err != nil {
		return outcome, err
	}

	if outcome.Status == "exhausted" && (c.stopped.Load() || runCtx.Err() != nil) {
		// Interrupted before exhaustion: the run is resumable, not done.
		outcome.Status = "stopped"
		c.cfg.State.Status = progress.StatusPaused
	} else {
		c.cfg.State.Status = progress.StatusCompleted
	}
	_ = c.cfg.State.Save(c.cfg.ProgressPath)

	return outcome, nil
}

func (c *Coordinator) work(ctx context.Context, jobs <-chan job, results chan<- Result) error {
	for j := range jobs {
		for i, tuple := range j.tuples {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			idx := new(big.Int).Add(j.start, big.NewInt(int64(i)))
			phraseWords := resolver.Assemble(c.cfg.Slots, tuple)
			phrase := strings.Join(phraseWords, " ")

			res, err := deriver.Derive(phrase, c.cfg.Chain)
			if err != nil {
				if err == deriver.ErrInvalidMnemonic {
					// Expected for the overwhelming majority of candidates;
					// not logged per-occurrence.
					continue
				}
				results <- fromError(ErrorResult{Err: err, Index: idx})
				continue
			}

			if match, addr := c.matchesTarget(res); match {
				results <- fromMatchFound(MatchFound{
					Phrase:  phraseWords,
					Chain:   string(c.cfg.Chain),
					Address: addr,
					Index:   idx,
				})
				return nil
			}

			if c.cfg.BalanceClient != nil {
				if wallet, ok := c.checkBalance(ctx, res); ok {
					wallet.Phrase = phraseWords
					wallet.Index = idx
					results <- fromLoadedWallet(wallet)
					return nil
				}
			}
		}
		results <- fromChunkComplete(ChunkComplete{Start: j.start, End: j.end})
	}
	return nil
}

// matchesTarget reports whether either derived address equals the
// configured target. Ethereum addresses are compared case-insensitively
// since EIP-55 checksumming is a display convention, not a distinct
// address.
func (c *Coordinator) matchesTarget(res deriver.Result) (bool, string) {
	if c.cfg.TargetAddress == "" {
		return false, ""
	}
	if res.Bitcoin != "" && res.Bitcoin == c.cfg.TargetAddress {
		return true, res.Bitcoin
	}
	if res.Ethereum != "" && strings.EqualFold(res.Ethereum, c.cfg.TargetAddress) {
		return true, res.Ethereum
	}
	return false, ""
}

func (c *Coordinator) checkBalance(ctx context.Context, res deriver.Result) (LoadedWalletFound, bool) {
	addr := res.Bitcoin
	if addr == "" {
		addr = res.Ethereum
	}
	if addr == "" {
		return LoadedWalletFound{}, false
	}

	var queryErr error
	bal := balance.Query(ctx, c.cfg.BalanceClient, addr, c.cfg.BalanceTimeout, func(err error) {
		queryErr = err
	})
	_ = queryErr // transient failures map to zero balance; not surfaced per-query

	if bal.Sign() <= 0 {
		return LoadedWalletFound{}, false
	}
	return LoadedWalletFound{
		Chain:   string(c.cfg.Chain),
		Address: addr,
		Balance: bal,
	}, true
}
