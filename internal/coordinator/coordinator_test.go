package coordinator

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/asylian21/mnemonic-recover/internal/combin"
	"github.com/asylian21/mnemonic-recover/internal/deriver"
	"github.com/asylian21/mnemonic-recover/internal/progress"
	"github.com/asylian21/mnemonic-recover/internal/resolver"
)

// elevenAbandonSlots returns the 11 fixed "abandon" slots of the canonical
// test vector followed by one non-fixed slot whose candidates are supplied
// by the caller.
func elevenAbandonSlots(lastCandidates []string) []resolver.Slot {
	slots := make([]resolver.Slot, 0, 12)
	for i := 0; i < 11; i++ {
		slots = append(slots, resolver.Slot{Kind: resolver.KindFixed, Word: "abandon"})
	}
	slots = append(slots, resolver.Slot{Kind: resolver.KindPrefix, Candidates: lastCandidates})
	return slots
}

func newTestCoordinator(t *testing.T, slots []resolver.Slot, chain deriver.Chain, target string, client interface {
	Balance(ctx context.Context, address string) (*big.Int, error)
}) *Coordinator {
	t.Helper()
	basis := combin.NewBasis(slots)
	enum, err := combin.NewEnumerator(basis, combin.FixedWords(slots), true, 10)
	if err != nil {
		t.Fatalf("new enumerator: %v", err)
	}

	state := progress.Fresh("test-fp", basis.Size())
	dir := t.TempDir()

	cfg := Config{
		Slots:          slots,
		Enumerator:     enum,
		Chain:          chain,
		TargetAddress:  target,
		BalanceClient:  client,
		BalanceTimeout: time.Second,
		Workers:        2,
		State:          state,
		ProgressPath:   filepath.Join(dir, "progress.json"),
	}
	co, err := New(cfg)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	return co
}

func TestCoordinatorFindsMatch(t *testing.T) {
	slots := elevenAbandonSlots([]string{"zoo", "zone", "about"})
	co := newTestCoordinator(t, slots, deriver.Bitcoin, "bc1qhgv6v7jgxxpf0cpzxd9zga52mx9tuvcdnknlhn", nil)

	outcome, err := co.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Status != "match" {
		t.Fatalf("expected match, got %s", outcome.Status)
	}
	if outcome.Match.Address != "bc1qhgv6v7jgxxpf0cpzxd9zga52mx9tuvcdnknlhn" {
		t.Fatalf("unexpected match address: %s", outcome.Match.Address)
	}
	if outcome.Match.Phrase[11] != "about" {
		t.Fatalf("expected last word 'about', got %q", outcome.Match.Phrase[11])
	}
}

func TestCoordinatorExhaustsWithoutMatch(t *testing.T) {
	slots := elevenAbandonSlots([]string{"zoo", "zone", "yellow"})
	co := newTestCoordinator(t, slots, deriver.Bitcoin, "bc1qhgv6v7jgxxpf0cpzxd9zga52mx9tuvcdnknlhn", nil)

	outcome, err := co.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Status != "exhausted" {
		t.Fatalf("expected exhausted, got %s", outcome.Status)
	}
	if outcome.ChunksProcessed == 0 {
		t.Fatalf("expected at least one chunk processed")
	}
}

type alwaysFundedClient struct{}

func (alwaysFundedClient) Balance(ctx context.Context, address string) (*big.Int, error) {
	return big.NewInt(12345), nil
}

func TestCoordinatorFindsLoadedWallet(t *testing.T) {
	slots := elevenAbandonSlots([]string{"zoo", "zone", "about"})
	co := newTestCoordinator(t, slots, deriver.Bitcoin, "", alwaysFundedClient{})

	outcome, err := co.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Status != "loaded_wallet" {
		t.Fatalf("expected loaded_wallet, got %s", outcome.Status)
	}
	if outcome.LoadedWallet.Balance.Cmp(big.NewInt(12345)) != 0 {
		t.Fatalf("unexpected balance: %s", outcome.LoadedWallet.Balance)
	}
}

type erroringClient struct{}

func (erroringClient) Balance(ctx context.Context, address string) (*big.Int, error) {
	return nil, errors.New("simulated host failure")
}

func TestCoordinatorBalanceErrorsDoNotHaltRun(t *testing.T) {
	slots := elevenAbandonSlots([]string{"zoo", "zone", "about"})
	co := newTestCoordinator(t, slots, deriver.Bitcoin, "", erroringClient{})

	outcome, err := co.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Status != "exhausted" {
		t.Fatalf("expected exhausted (balance errors map to zero), got %s", outcome.Status)
	}
}

func TestCoordinatorStopHaltsDispatch(t *testing.T) {
	slots := elevenAbandonSlots([]string{"zoo", "zone", "yellow"})
	co := newTestCoordinator(t, slots, deriver.Bitcoin, "", nil)
	co.Stop()

	outcome, err := co.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome.Status != "stopped" {
		t.Fatalf("expected stopped, got %s", outcome.Status)
	}
}

func TestNewRejectsZeroWorkers(t *testing.T) {
	slots := elevenAbandonSlots([]string{"zoo"})
	basis := combin.NewBasis(slots)
	enum, _ := combin.NewEnumerator(basis, nil, true, 10)
	_, err := New(Config{Slots: slots, Enumerator: enum, Workers: 0, State: progress.Fresh("fp", basis.Size())})
	if err == nil {
		t.Fatalf("expected error for zero workers")
	}
}
