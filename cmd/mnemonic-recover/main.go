/*
Mnemonic Recovery Engine

Description:
	Recovers a partially-known BIP-39 mnemonic phrase by enumerating the
	missing or ambiguous words, deriving a Bitcoin and/or Ethereum address
	from every candidate phrase, and matching against a target address or
	an on-chain balance.

Algorithm:
	1. Resolve each phrase position into a Fixed word, a Prefix candidate
	   set, or Unknown (full wordlist).
	2. Compute the upper-bound combination count for progress/ETA.
	3. Enumerate candidate fillings in chunks across a worker pool.
	4. Derive addresses per candidate and check against --public-key
	   and/or a live balance query.
	5. Persist progress after every completed chunk; resume from it with
	   --resume.

Security Note:
	For authorized recovery of one's own lost mnemonic, or for security
	research into wallet recovery tooling. This tool never transmits a
	private key or seed; only derived public addresses leave the process.

License: MIT
*/
package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/asylian21/mnemonic-recover/internal/balance"
	"github.com/asylian21/mnemonic-recover/internal/combin"
	"github.com/asylian21/mnemonic-recover/internal/config"
	"github.com/asylian21/mnemonic-recover/internal/coordinator"
	"github.com/asylian21/mnemonic-recover/internal/progress"
	"github.com/asylian21/mnemonic-recover/internal/resolver"
)

func main() {
	app := &cli.App{
		Name:  "mnemonic-recover",
		Usage: "recover a partial BIP-39 mnemonic by enumerating and checking candidate addresses",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mnemonic", Usage: "space-separated phrase with '*' wildcards", EnvVars: []string{"MNEMONIC"}},
			&cli.StringFlag{Name: "chain", Usage: "chain id (bitcoin, mainnet, bsc, polygon, ...)", EnvVars: []string{"CHAIN"}},
			&cli.StringFlag{Name: "public-key", Usage: "target address for exact-match early termination", EnvVars: []string{"PUBLIC_KEY"}},
			&cli.BoolFlag{Name: "query-balances", Usage: "query on-chain balance for every candidate address", EnvVars: []string{"CHECK_BALANCES"}},
			&cli.BoolFlag{Name: "repeating-words", Usage: "allow duplicate words when filling unknown positions", EnvVars: []string{"REPEATING_WORDS"}},
			&cli.IntFlag{Name: "workers", Usage: "worker thread count", Value: config.DefaultWorkers},
			&cli.IntFlag{Name: "chunk-size", Usage: "tuples dispatched per chunk", Value: config.DefaultChunkSize},
			&cli.BoolFlag{Name: "resume", Usage: "load prior progress and continue"},
			&cli.StringFlag{Name: "progress-file", Usage: "progress file path", Value: config.DefaultProgressPath},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := &config.Config{
		Mnemonic:       ctx.String("mnemonic"),
		Chain:          ctx.String("chain"),
		PublicKey:      ctx.String("public-key"),
		QueryBalances:  ctx.Bool("query-balances"),
		RepeatingWords: ctx.Bool("repeating-words"),
		Workers:        ctx.Int("workers"),
		ChunkSize:      ctx.Int("chunk-size"),
		Resume:         ctx.Bool("resume"),
		ProgressPath:   ctx.String("progress-file"),
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	slots, report, err := resolver.Resolve(cfg.Tokens())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log.Printf("resolved phrase: %d fixed, %d prefix, %d unknown", report.Fixed, report.Prefix, report.Unknown)

	bound := combin.UpperBound(slots, cfg.RepeatingWords)
	log.Printf("upper bound on candidate phrases: %s", bound.String())

	basis := combin.NewBasis(slots)
	enum, err := combin.NewEnumerator(basis, combin.FixedWords(slots), cfg.RepeatingWords, cfg.ChunkSize)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	chain := cfg.ResolveChain()
	fingerprint := progress.Fingerprint(cfg.Mnemonic, string(chain), cfg.RepeatingWords)

	state, err := loadOrCreateState(cfg, fingerprint, bound, enum)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var client balance.Client
	if cfg.QueryBalances {
		ep, ok := balance.Resolve(string(chain))
		if !ok {
			return cli.Exit(fmt.Sprintf("config: no balance endpoint registered for chain %q", chain), 1)
		}
		client = balance.ForChain(chain, ep)
	}

	coord, err := coordinator.New(coordinator.Config{
		Slots:          slots,
		Enumerator:     enum,
		Chain:          chain,
		TargetAddress:  cfg.PublicKey,
		BalanceClient:  client,
		BalanceTimeout: 10 * time.Second,
		Workers:        cfg.Workers,
		State:          state,
		ProgressPath:   cfg.ProgressPath,
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	go statsReporter(statsCtx, state, bound, time.Now())

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Printf("shutdown signal received, finishing in-flight chunks (send again to abort)")
		coord.Stop()
		<-sigCh
		log.Printf("second signal received, terminating immediately")
		coord.Terminate()
	}()

	outcome, err := coord.Run(context.Background())
	if err != nil {
		state.Status = progress.StatusError
		state.Err = err.Error()
		_ = state.Save(cfg.ProgressPath)
		return cli.Exit(fmt.Sprintf("coordinator: %v", err), 1)
	}

	reportOutcome(outcome)
	return nil
}

// loadOrCreateState resumes a prior run when --resume is set and the
// on-disk state's fingerprint matches the current (phrase, chain, mode);
// any other case (no --resume, no file, fingerprint mismatch) starts
// fresh. On resume, the enumerator is seeked past whatever was already
// processed.
func loadOrCreateState(cfg *config.Config, fingerprint string, bound *big.Int, enum *combin.Enumerator) (*progress.State, error) {
	if !cfg.Resume {
		return progress.Fresh(fingerprint, bound), nil
	}

	loaded, err := progress.Load(cfg.ProgressPath)
	if err != nil {
		return nil, fmt.Errorf("loading progress file: %w", err)
	}
	if loaded == nil || !loaded.Matches(fingerprint) {
		log.Printf("no matching progress file at %s, starting fresh", cfg.ProgressPath)
		return progress.Fresh(fingerprint, bound), nil
	}

	resumeFrom := new(big.Int).Add(loaded.LastProcessedIndex, big.NewInt(1))
	if err := enum.Seek(resumeFrom); err != nil {
		return nil, fmt.Errorf("resuming enumerator: %w", err)
	}
	loaded.Status = progress.StatusRunning
	log.Printf("resumed from index %s", loaded.LastProcessedIndex.String())
	return loaded, nil
}

// statsReporter periodically prints throughput and ETA while the scan
// runs. Committed-index reads go through State.Snapshot, so no locks are
// shared with the derivation hot path.
func statsReporter(ctx context.Context, state *progress.State, total *big.Int, start time.Time) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	prior, _ := state.Snapshot()
	lastDone := new(big.Int).Add(prior, big.NewInt(1))
	lastTime := start

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			processed, chunks := state.Snapshot()
			done := new(big.Int).Add(processed, big.NewInt(1))

			interval := new(big.Int).Sub(done, lastDone)
			intervalSecs := now.Sub(lastTime).Seconds()
			rate := new(big.Float).Quo(new(big.Float).SetInt(interval), big.NewFloat(intervalSecs))

			percent := new(big.Float).Quo(new(big.Float).SetInt(done), new(big.Float).SetInt(total))
			percent.Mul(percent, big.NewFloat(100))

			eta := "unknown"
			if r, _ := rate.Float64(); r > 0 {
				remaining := new(big.Float).SetInt(new(big.Int).Sub(total, done))
				secs, _ := new(big.Float).Quo(remaining, rate).Float64()
				if secs > 100*365*24*3600 {
					eta = ">100y"
				} else {
					eta = (time.Duration(secs) * time.Second).String()
				}
			}

			log.Printf("[stats] %s/%s candidates (%s%%) | %s/sec | %d chunks | ETA %s",
				done.String(), total.String(), percent.Text('f', 4), rate.Text('f', 0), chunks, eta)

			lastDone.Set(done)
			lastTime = now
		}
	}
}

func reportOutcome(o *coordinator.Outcome) {
	switch o.Status {
	case "match":
		fmt.Printf("\n*** MATCH FOUND ***\n")
		fmt.Printf("chain: %s\naddress: %s\nphrase: %s\n", o.Match.Chain, o.Match.Address, strings.Join(o.Match.Phrase, " "))
	case "loaded_wallet":
		fmt.Printf("\n*** LOADED WALLET FOUND ***\n")
		fmt.Printf("chain: %s\naddress: %s\nbalance: %s\nphrase: %s\n", o.LoadedWallet.Chain, o.LoadedWallet.Address, o.LoadedWallet.Balance.String(), strings.Join(o.LoadedWallet.Phrase, " "))
	case "stopped":
		log.Printf("run stopped after %d chunks (no match yet); resume with --resume", o.ChunksProcessed)
	default:
		log.Printf("enumeration exhausted after %d chunks, no match found", o.ChunksProcessed)
	}
}
