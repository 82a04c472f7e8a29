package progress

import (
	"math/big"
	"testing"
)

func TestCommitInOrderAdvancesImmediately(t *testing.T) {
	s := Fresh("fp", big.NewInt(1000))
	s.Commit(big.NewInt(0), big.NewInt(100))
	if s.LastProcessedIndex.Cmp(big.NewInt(99)) != 0 {
		t.Fatalf("expected 99, got %s", s.LastProcessedIndex)
	}
	s.Commit(big.NewInt(100), big.NewInt(200))
	if s.LastProcessedIndex.Cmp(big.NewInt(199)) != 0 {
		t.Fatalf("expected 199, got %s", s.LastProcessedIndex)
	}
}

func TestCommitOutOfOrderHoldsUntilGapCloses(t *testing.T) {
	s := Fresh("fp", big.NewInt(1000))

	// Chunk [200,300) finishes before [0,100) and [100,200) - a fast
	// worker racing ahead of slower ones.
	s.Commit(big.NewInt(200), big.NewInt(300))
	if s.LastProcessedIndex.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("expected no advance yet, got %s", s.LastProcessedIndex)
	}
	if len(s.pendingStarts()) != 1 {
		t.Fatalf("expected one pending interval, got %d", len(s.pendingStarts()))
	}

	s.Commit(big.NewInt(100), big.NewInt(200))
	if s.LastProcessedIndex.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("expected still no advance, got %s", s.LastProcessedIndex)
	}

	// Closing the gap at the front should flush both pending intervals at once.
	s.Commit(big.NewInt(0), big.NewInt(100))
	if s.LastProcessedIndex.Cmp(big.NewInt(299)) != 0 {
		t.Fatalf("expected 299 after gap closes, got %s", s.LastProcessedIndex)
	}
	if len(s.pendingStarts()) != 0 {
		t.Fatalf("expected pending set drained, got %v", s.pendingStarts())
	}
}

func TestCommitChunksProcessedCounts(t *testing.T) {
	s := Fresh("fp", big.NewInt(1000))
	s.Commit(big.NewInt(0), big.NewInt(10))
	s.Commit(big.NewInt(10), big.NewInt(20))
	s.Commit(big.NewInt(30), big.NewInt(40))
	if s.ChunksProcessed != 3 {
		t.Fatalf("expected 3 chunks processed, got %d", s.ChunksProcessed)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("phrase one", "bitcoin", false)
	b := Fingerprint("phrase one", "bitcoin", false)
	if a != b {
		t.Fatalf("expected fingerprint to be deterministic")
	}
	c := Fingerprint("phrase two", "bitcoin", false)
	if a == c {
		t.Fatalf("expected different phrases to produce different fingerprints")
	}
}
