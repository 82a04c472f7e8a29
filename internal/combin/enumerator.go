package combin

import (
	"context"
	"fmt"
	"math/big"
)

// Enumerator is a lazy, restartable, chunked stream of tuples of fillings
// for the unknown positions. Tuples are produced in lexicographic order
// over the mixed-radix basis: position 0 varies slowest, position K-1
// varies fastest.
//
// With repetition allowed, every digit vector in the basis's full
// cartesian product is valid and the index space is a straight bijection:
// direct O(K) seek is exact.
//
// Without repetition, the enumerator performs an incremental depth-first
// descent: before committing a candidate word at depth d it confirms the
// word does not already appear among the Fixed slots or among the tuple
// positions 0..d-1 committed so far. A word failing that check is skipped
// in place - and, critically, failing it at a shallow depth prunes the
// entire subtree beneath that depth rather than visiting it one tuple at
// a time. Seeking in this mode is only exact via fast-forward (discarding
// `start` emitted tuples).
type Enumerator struct {
	basis      Basis
	fixedWords map[string]struct{}
	repeating  bool
	chunkSize  int

	cursor            []int
	assigned          []string
	pos               int
	emitted           *big.Int
	started           bool
	done              bool
	emptyTupleEmitted bool

	// seeked marks that cursor holds digits decoded from a direct seek;
	// the first descent must consume them instead of resetting each level
	// to zero.
	seeked bool
}

// NewEnumerator constructs an Enumerator over basis. fixedWords are the
// words already committed to Fixed slots (used only by the
// without-repetition uniqueness check). chunkSize must be >= 1.
func NewEnumerator(basis Basis, fixedWords []string, repeating bool, chunkSize int) (*Enumerator, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("combin: chunk size must be >= 1, got %d", chunkSize)
	}
	fw := make(map[string]struct{}, len(fixedWords))
	for _, w := range fixedWords {
		fw[w] = struct{}{}
	}
	return &Enumerator{
		basis:      basis,
		fixedWords: fw,
		repeating:  repeating,
		chunkSize:  chunkSize,
	}, nil
}

func (e *Enumerator) reset() {
	e.cursor = make([]int, e.basis.K())
	e.assigned = make([]string, e.basis.K())
	e.pos = 0
	e.emitted = big.NewInt(0)
	e.done = false
	e.started = true
	e.emptyTupleEmitted = false
	e.seeked = false
}

func (e *Enumerator) ensureStarted() {
	if !e.started {
		e.reset()
	}
}

// isUnique reports whether word is not already used by a Fixed slot or by
// any of the tuple positions committed so far (positions 0..pos-1).
func (e *Enumerator) isUnique(word string, pos int) bool {
	if _, ok := e.fixedWords[word]; ok {
		return false
	}
	for i := 0; i < pos; i++ {
		if e.assigned[i] == word {
			return false
		}
	}
	return true
}

// advance finds and commits the next valid full tuple into e.assigned,
// leaving internal state positioned so the following call continues the
// search past the tuple just found. Returns false once the enumeration is
// exhausted.
func (e *Enumerator) advance() bool {
	if e.done {
		return false
	}

	K := e.basis.K()
	if K == 0 {
		// Zero unknown positions: exactly one (empty) tuple, then done.
		e.done = true
		return !e.emittedEmptyOnce()
	}

	pos := e.pos
	for {
		if pos < 0 {
			e.done = true
			return false
		}
		if pos == K {
			e.seeked = false
			e.pos = K - 1
			e.cursor[e.pos]++
			return true
		}

		candidates := e.basis.Candidates[pos]
		found := false
		for e.cursor[pos] < len(candidates) {
			word := candidates[e.cursor[pos]]
			if e.repeating || e.isUnique(word, pos) {
				e.assigned[pos] = word
				found = true
				break
			}
			e.cursor[pos]++
		}

		if found {
			pos++
			if pos < K && !e.seeked {
				e.cursor[pos] = 0
			}
			continue
		}

		e.seeked = false
		pos--
		if pos >= 0 {
			e.cursor[pos]++
		}
	}
}

// emittedEmptyOnce implements the K==0 special case: returns false the
// first time it's called (meaning "not yet emitted", so advance should
// succeed once), and true on every later call (meaning "already emitted",
// so advance should report done).
func (e *Enumerator) emittedEmptyOnce() bool {
	already := e.emptyTupleEmitted
	e.emptyTupleEmitted = true
	return already
}

// Seek positions the enumerator so its next emission is the tuple at
// global index start. With repetition allowed this decodes
// start directly into the mixed-radix digit vector (O(K)). Without
// repetition it fast-forwards by discarding `start` tuples, the only
// exact strategy in that mode.
func (e *Enumerator) Seek(start *big.Int) error {
	if start.Sign() < 0 {
		return fmt.Errorf("combin: seek index must be non-negative, got %s", start)
	}

	e.reset()

	if e.repeating {
		return e.seekDirect(start)
	}
	return e.seekFastForward(start)
}

func (e *Enumerator) seekDirect(start *big.Int) error {
	if start.Cmp(e.basis.Size()) == 0 {
		// Seeking to exactly N (a completed prior run): nothing left.
		e.emitted.Set(start)
		e.done = true
		return nil
	}

	K := e.basis.K()
	if K == 0 {
		if start.Sign() != 0 {
			return fmt.Errorf("combin: seek index %s out of range for zero unknown positions", start)
		}
		return nil
	}

	remaining := new(big.Int).Set(start)
	card := e.basis.Cardinalities()
	for k := K - 1; k >= 0; k-- {
		c := big.NewInt(int64(card[k]))
		digit := new(big.Int)
		digit.Mod(remaining, c)
		e.cursor[k] = int(digit.Int64())
		remaining.Div(remaining, c)
	}
	if remaining.Sign() != 0 {
		return fmt.Errorf("combin: seek index %s exceeds enumeration size", start)
	}
	e.emitted.Set(start)
	e.seeked = true
	return nil
}

func (e *Enumerator) seekFastForward(start *big.Int) error {
	count := big.NewInt(0)
	one := big.NewInt(1)
	for count.Cmp(start) < 0 {
		if !e.advance() {
			return fmt.Errorf("combin: seek index %s exceeds enumeration", start)
		}
		count.Add(count, one)
	}
	e.emitted.Set(count)
	return nil
}

// Next returns the next chunk of up to chunkSize tuples, together with
// the emitted-index interval [start, end) they occupy (the chunk's
// fingerprint). ok is false once the stream is exhausted or ctx is
// cancelled before any tuple could be produced.
func (e *Enumerator) Next(ctx context.Context) (tuples [][]string, start, end *big.Int, ok bool) {
	e.ensureStarted()
	if e.done {
		return nil, nil, nil, false
	}

	start = new(big.Int).Set(e.emitted)
	out := make([][]string, 0, e.chunkSize)
	one := big.NewInt(1)

	for len(out) < e.chunkSize {
		select {
		case <-ctx.Done():
			goto done
		default:
		}
		if !e.advance() {
			break
		}
		tuple := make([]string, e.basis.K())
		copy(tuple, e.assigned)
		out = append(out, tuple)
		e.emitted.Add(e.emitted, one)
	}

done:
	if len(out) == 0 {
		return nil, nil, nil, false
	}
	end = new(big.Int).Set(e.emitted)
	return out, start, end, true
}

// Done reports whether the enumeration has been fully consumed.
func (e *Enumerator) Done() bool {
	return e.done
}
