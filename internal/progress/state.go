// Package progress implements a persistent, atomically-rewritten record of
// how far a run has advanced, plus the worker pool's contiguous-prefix
// commit policy for turning out-of-order chunk completions into a
// monotone last-processed index.
package progress

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	sha256simd "github.com/minio/sha256-simd"
)

// Status is the run's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusError     Status = "error"
)

// State is the persistent record of a run's progress. LastProcessedIndex
// and TotalCombinations are *big.Int because a fully-unknown phrase pushes
// the candidate count well past 2^53, which is why they're stringified in
// JSON rather than encoded as numbers.
type State struct {
	RunID              string
	Fingerprint        string // identifies the (phrase, chain, mode) this run belongs to
	LastProcessedIndex *big.Int
	TotalCombinations  *big.Int
	StartTime          time.Time
	LastUpdateTime     time.Time
	ChunksProcessed    int
	Status             Status
	Err                string

	mu      sync.Mutex
	pending map[string]*big.Int // start.String() -> end, awaiting contiguous commit
}

// Fresh returns a new State for a run just starting, with LastProcessedIndex
// at -1 (meaning "nothing processed yet").
func Fresh(fingerprint string, total *big.Int) *State {
	now := time.Now().UTC()
	return &State{
		RunID:              uuid.New().String(),
		Fingerprint:        fingerprint,
		LastProcessedIndex: big.NewInt(-1),
		TotalCombinations:  new(big.Int).Set(total),
		StartTime:          now,
		LastUpdateTime:     now,
		Status:             StatusRunning,
		pending:            make(map[string]*big.Int),
	}
}

// Matches reports whether this state belongs to the run identified by
// fingerprint - the check that guards --resume against silently
// continuing an unrelated prior run sharing the same progress file path.
func (s *State) Matches(fingerprint string) bool {
	return s.Fingerprint == fingerprint
}

// Fingerprint derives a stable identifier for a (phrase, chain, repeating)
// combination, used to validate --resume against the on-disk state.
func Fingerprint(phrase, chain string, repeating bool) string {
	sum := sha256simd.Sum256([]byte(fmt.Sprintf("%s|%s|%v", phrase, chain, repeating)))
	return hex.EncodeToString(sum[:])
}

// Commit records that the chunk spanning [start, end) has completed,
// whether cleanly or with a non-fatal per-chunk error (both count as done
// for progress purposes), and advances LastProcessedIndex by
// the longest contiguous prefix of completed chunks starting at the
// current index. Out-of-order completions (a fast late chunk finishing
// before an earlier slow one) are held in the pending set until the gap
// closes, so a fast late chunk can never overwrite a slow early one.
func (s *State) Commit(start, end *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[start.String()] = new(big.Int).Set(end)
	s.ChunksProcessed++
	s.LastUpdateTime = time.Now().UTC()

	for {
		want := new(big.Int).Add(s.LastProcessedIndex, big.NewInt(1))
		next, ok := s.pending[want.String()]
		if !ok {
			break
		}
		delete(s.pending, want.String())
		s.LastProcessedIndex.Set(new(big.Int).Sub(next, big.NewInt(1)))
	}
}

// Snapshot returns a copy of the commit cursor for concurrent readers
// (the stats reporter), so they never race the Coordinator's Commit calls.
func (s *State) Snapshot() (lastProcessed *big.Int, chunks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.LastProcessedIndex), s.ChunksProcessed
}

// pendingStarts returns the pending interval starts in ascending order,
// for deterministic diagnostics/tests.
func (s *State) pendingStarts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
