// Package combin implements the upper-bound calculator and the combination
// enumerator: the mixed-radix indexing scheme over the unknown positions
// of a partially-resolved mnemonic, and the lazy, restartable, chunked
// stream of fillings for those positions.
package combin

import (
	"math/big"

	"github.com/asylian21/mnemonic-recover/internal/resolver"
)

// Basis is the per-unknown-position candidate list: the k-th element is
// the ordered candidate set for the k-th unknown position, in
// left-to-right order.
type Basis struct {
	Candidates [][]string
}

// NewBasis extracts the candidate lists for every non-Fixed slot, in
// phrase order.
func NewBasis(slots []resolver.Slot) Basis {
	b := Basis{Candidates: make([][]string, 0, resolver.UnknownCount(slots))}
	for _, s := range slots {
		if s.Kind != resolver.KindFixed {
			b.Candidates = append(b.Candidates, s.CandidateList())
		}
	}
	return b
}

// K is the tuple arity: the number of unknown positions.
func (b Basis) K() int {
	return len(b.Candidates)
}

// Cardinalities returns (c_0, ..., c_{K-1}).
func (b Basis) Cardinalities() []int {
	c := make([]int, len(b.Candidates))
	for i, cands := range b.Candidates {
		c[i] = len(cands)
	}
	return c
}

// Size returns the product of the cardinalities: the size of the full
// mixed-radix digit space this basis describes. In with-repetition mode
// this equals the total enumeration count N; in without-repetition mode
// it is the space the enumerator walks while pruning invalid tuples.
func (b Basis) Size() *big.Int {
	n := big.NewInt(1)
	for _, cands := range b.Candidates {
		n.Mul(n, big.NewInt(int64(len(cands))))
	}
	return n
}

// FixedWords collects the words already confirmed at Fixed slots, for the
// without-repetition uniqueness check.
func FixedWords(slots []resolver.Slot) []string {
	words := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Kind == resolver.KindFixed {
			words = append(words, s.Word)
		}
	}
	return words
}
