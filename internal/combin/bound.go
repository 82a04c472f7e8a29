package combin

import (
	"math/big"

	"github.com/asylian21/mnemonic-recover/internal/resolver"
	"github.com/asylian21/mnemonic-recover/internal/wordlist"
)

// UpperBound computes N, the total enumeration count used to drive
// progress percentages and ETA.
//
// With repeating words allowed this is exact: N = W^U * prod(prefix sizes).
//
// Without repetition, the U unknown positions must draw distinct words
// that also differ from the Fixed words. Prefix-candidate cardinalities
// are NOT subtracted from the 2048-word pool, which over-counts N when a
// prefix candidate happens to equal a word chosen for an unknown slot:
// the result is a tight upper bound, not an exact count. Callers must
// only use it for progress/ETA display, never as the exact loop bound in
// non-repeating mode.
func UpperBound(slots []resolver.Slot, repeating bool) *big.Int {
	W := int64(wordlist.Size)

	var unknown, fixed int64
	prefixSizes := make([]int64, 0)
	for _, s := range slots {
		switch s.Kind {
		case resolver.KindUnknown:
			unknown++
		case resolver.KindFixed:
			fixed++
		case resolver.KindPrefix:
			prefixSizes = append(prefixSizes, int64(len(s.Candidates)))
		}
	}

	prefixProduct := big.NewInt(1)
	for _, p := range prefixSizes {
		prefixProduct.Mul(prefixProduct, big.NewInt(p))
	}

	if repeating {
		n := new(big.Int).Exp(big.NewInt(W), big.NewInt(unknown), nil)
		return n.Mul(n, prefixProduct)
	}

	n := new(big.Int).Set(prefixProduct)
	for j := int64(0); j < unknown; j++ {
		pool := W - fixed - j
		if pool < 0 {
			pool = 0
		}
		n.Mul(n, big.NewInt(pool))
	}
	return n
}
