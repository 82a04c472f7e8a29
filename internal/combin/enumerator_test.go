package combin

import (
	"context"
	"math/big"
	"testing"
)

func smallBasis() Basis {
	return Basis{Candidates: [][]string{
		{"a0", "a1", "a2"},
		{"b0", "b1"},
	}}
}

func drainAll(t *testing.T, e *Enumerator) [][]string {
	t.Helper()
	var all [][]string
	ctx := context.Background()
	for {
		tuples, start, end, ok := e.Next(ctx)
		if !ok {
			break
		}
		if new(big.Int).Sub(end, start).Int64() != int64(len(tuples)) {
			t.Fatalf("chunk interval [%s,%s) doesn't match length %d", start, end, len(tuples))
		}
		all = append(all, tuples...)
	}
	return all
}

func TestEnumeratorBijectionWithRepetition(t *testing.T) {
	basis := smallBasis()
	e, err := NewEnumerator(basis, nil, true, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := drainAll(t, e)

	want := int64(3 * 2)
	if int64(len(all)) != want {
		t.Fatalf("expected %d tuples, got %d", want, len(all))
	}

	// Lexicographic order: position 0 slowest, position 1 fastest.
	expected := [][]string{
		{"a0", "b0"}, {"a0", "b1"},
		{"a1", "b0"}, {"a1", "b1"},
		{"a2", "b0"}, {"a2", "b1"},
	}
	for i := range expected {
		if all[i][0] != expected[i][0] || all[i][1] != expected[i][1] {
			t.Fatalf("tuple %d: got %v, want %v", i, all[i], expected[i])
		}
	}
}

func TestEnumeratorSeekDirectMatchesSequentialDecode(t *testing.T) {
	basis := smallBasis()
	e1, _ := NewEnumerator(basis, nil, true, 10)
	all := drainAll(t, e1)

	for idx := 0; idx < len(all); idx++ {
		e2, _ := NewEnumerator(basis, nil, true, 1)
		if err := e2.Seek(big.NewInt(int64(idx))); err != nil {
			t.Fatalf("seek(%d) failed: %v", idx, err)
		}
		tuples, _, _, ok := e2.Next(context.Background())
		if !ok {
			t.Fatalf("seek(%d): expected a tuple", idx)
		}
		if tuples[0][0] != all[idx][0] || tuples[0][1] != all[idx][1] {
			t.Fatalf("seek(%d): got %v, want %v", idx, tuples[0], all[idx])
		}
	}
}

func TestEnumeratorChunkSizeOne(t *testing.T) {
	e, _ := NewEnumerator(smallBasis(), nil, true, 1)
	count := 0
	ctx := context.Background()
	for {
		tuples, _, _, ok := e.Next(ctx)
		if !ok {
			break
		}
		if len(tuples) != 1 {
			t.Fatalf("expected exactly 1 tuple per chunk, got %d", len(tuples))
		}
		count++
	}
	if count != 6 {
		t.Fatalf("expected 6 tuples total, got %d", count)
	}
}

func TestEnumeratorZeroUnknownPositions(t *testing.T) {
	e, _ := NewEnumerator(Basis{}, nil, true, 1000)
	tuples, start, end, ok := e.Next(context.Background())
	if !ok {
		t.Fatalf("expected exactly one (empty) tuple")
	}
	if len(tuples) != 1 || len(tuples[0]) != 0 {
		t.Fatalf("expected one empty tuple, got %v", tuples)
	}
	if start.Sign() != 0 || end.Int64() != 1 {
		t.Fatalf("expected interval [0,1), got [%s,%s)", start, end)
	}
	if _, _, _, ok := e.Next(context.Background()); ok {
		t.Fatalf("expected enumeration to terminate after the empty tuple")
	}
}

func TestEnumeratorResumeAtLastIndex(t *testing.T) {
	basis := smallBasis()
	e, _ := NewEnumerator(basis, nil, true, 10)
	total := basis.Size()

	last := new(big.Int).Sub(total, big.NewInt(1))
	if err := e.Seek(last); err != nil {
		t.Fatalf("seek to last index failed: %v", err)
	}
	tuples, start, end, ok := e.Next(context.Background())
	if !ok {
		t.Fatalf("expected one final tuple")
	}
	if len(tuples) != 1 {
		t.Fatalf("expected exactly one final tuple, got %d", len(tuples))
	}
	if start.Cmp(last) != 0 || end.Cmp(total) != 0 {
		t.Fatalf("expected interval [%s,%s), got [%s,%s)", last, total, start, end)
	}
	if _, _, _, ok := e.Next(context.Background()); ok {
		t.Fatalf("expected enumeration to terminate after the last tuple")
	}
}

func TestEnumeratorWithoutRepetitionUniqueness(t *testing.T) {
	basis := Basis{Candidates: [][]string{
		{"abandon", "about", "above"},
		{"abandon", "about", "above"},
	}}
	fixed := []string{"abandon"}
	e, _ := NewEnumerator(basis, fixed, false, 10)
	all := drainAll(t, e)

	for _, tuple := range all {
		seen := map[string]bool{"abandon": true}
		for _, w := range tuple {
			if seen[w] {
				t.Fatalf("tuple %v contains a repeated or fixed word", tuple)
			}
			seen[w] = true
		}
	}
	// Only (about, above) and (above, about) survive: both positions must
	// avoid "abandon" (fixed) and each other.
	if len(all) != 2 {
		t.Fatalf("expected 2 surviving tuples, got %d: %v", len(all), all)
	}
}

func TestEnumeratorWithoutRepetitionResumeExact(t *testing.T) {
	basis := Basis{Candidates: [][]string{
		{"abandon", "about", "above", "absent"},
		{"abandon", "about", "above", "absent"},
	}}
	fixed := []string{"abandon"}

	full, _ := NewEnumerator(basis, fixed, false, 10)
	all := drainAll(t, full)

	for idx := range all {
		e, _ := NewEnumerator(basis, fixed, false, 1)
		if err := e.Seek(big.NewInt(int64(idx))); err != nil {
			t.Fatalf("seek(%d): %v", idx, err)
		}
		tuples, _, _, ok := e.Next(context.Background())
		if !ok {
			t.Fatalf("seek(%d): expected a tuple", idx)
		}
		if tuples[0][0] != all[idx][0] || tuples[0][1] != all[idx][1] {
			t.Fatalf("seek(%d): got %v, want %v", idx, tuples[0], all[idx])
		}
	}
}

func TestEnumeratorSeekToTotalYieldsNothing(t *testing.T) {
	// A completed prior run resumes at exactly N; the stream must simply
	// be empty, not an error.
	basis := smallBasis()
	e, _ := NewEnumerator(basis, nil, true, 10)
	if err := e.Seek(basis.Size()); err != nil {
		t.Fatalf("seek to N: %v", err)
	}
	if _, _, _, ok := e.Next(context.Background()); ok {
		t.Fatalf("expected no tuples after seeking to the total count")
	}
}

func TestEnumeratorSeekPastEnumerationErrors(t *testing.T) {
	e, _ := NewEnumerator(smallBasis(), nil, false, 10)
	if err := e.Seek(big.NewInt(1000)); err == nil {
		t.Fatalf("expected error seeking past the end of a non-repeating enumeration")
	}
}
