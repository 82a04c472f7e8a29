package combin

import (
	"math/big"
	"testing"

	"github.com/asylian21/mnemonic-recover/internal/resolver"
)

func TestNewBasisAndFixedWords(t *testing.T) {
	slots := []resolver.Slot{
		{Kind: resolver.KindFixed, Word: "abandon"},
		{Kind: resolver.KindPrefix, Candidates: []string{"about", "above"}},
		{Kind: resolver.KindUnknown},
	}
	b := NewBasis(slots)
	if b.K() != 2 {
		t.Fatalf("expected K=2, got %d", b.K())
	}
	if len(b.Candidates[0]) != 2 {
		t.Fatalf("expected prefix slot to carry 2 candidates, got %d", len(b.Candidates[0]))
	}
	fixed := FixedWords(slots)
	if len(fixed) != 1 || fixed[0] != "abandon" {
		t.Fatalf("expected fixed words [abandon], got %v", fixed)
	}
}

func TestBasisSize(t *testing.T) {
	b := Basis{Candidates: [][]string{{"a", "b", "c"}, {"x", "y"}}}
	if b.Size().Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("expected size 6, got %s", b.Size())
	}
}
