// Package resolver turns a user-supplied partial mnemonic into a
// per-position word slot description that the combination enumerator can
// iterate over.
package resolver

import (
	"fmt"

	"github.com/asylian21/mnemonic-recover/internal/wordlist"
)

// Kind identifies which variant a Slot holds.
type Kind int

const (
	// KindFixed is a confirmed wordlist word.
	KindFixed Kind = iota
	// KindPrefix is an ordered, non-empty list of wordlist words sharing
	// a user-supplied prefix.
	KindPrefix
	// KindUnknown carries no information; the full wordlist applies.
	KindUnknown
)

// Slot is one position in the phrase, resolved to a fixed word, a set of
// prefix candidates, or left fully unknown.
type Slot struct {
	Kind       Kind
	Word       string   // valid when Kind == KindFixed
	Candidates []string // valid when Kind == KindPrefix, wordlist order
}

// CandidateList returns the full candidate list for this slot regardless of
// kind: one word for Fixed, the prefix set for Prefix, the whole wordlist
// for Unknown.
func (s Slot) CandidateList() []string {
	switch s.Kind {
	case KindFixed:
		return []string{s.Word}
	case KindPrefix:
		return s.Candidates
	default:
		return wordlist.Words()
	}
}

// ValidLengths are the legal BIP-39 phrase lengths.
var ValidLengths = map[int]bool{12: true, 15: true, 18: true, 21: true, 24: true}

// InvalidWordError reports a token that matched zero wordlist entries.
type InvalidWordError struct {
	Word string
}

func (e *InvalidWordError) Error() string {
	return fmt.Sprintf("resolver: %q matches no BIP-39 wordlist entry", e.Word)
}

// InvalidLengthError reports a phrase whose token count isn't a legal
// BIP-39 length.
type InvalidLengthError struct {
	Length int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("resolver: phrase length %d is not a valid BIP-39 length (12, 15, 18, 21, 24)", e.Length)
}

// Report summarizes how many slots of each kind were produced, for the CLI
// banner.
type Report struct {
	Unknown int
	Prefix  int
	Fixed   int
}

// Resolve classifies each token, where a token is either the literal
// sentinel "*" or a (possibly partial) word.
func Resolve(tokens []string) ([]Slot, Report, error) {
	if !ValidLengths[len(tokens)] {
		return nil, Report{}, &InvalidLengthError{Length: len(tokens)}
	}

	slots := make([]Slot, 0, len(tokens))
	var report Report

	for _, tok := range tokens {
		slot, err := resolveToken(tok)
		if err != nil {
			return nil, Report{}, err
		}
		switch slot.Kind {
		case KindUnknown:
			report.Unknown++
		case KindPrefix:
			report.Prefix++
		case KindFixed:
			report.Fixed++
		}
		slots = append(slots, slot)
	}

	return slots, report, nil
}

func resolveToken(tok string) (Slot, error) {
	if tok == "*" {
		return Slot{Kind: KindUnknown}, nil
	}

	if _, ok := wordlist.IndexOf(tok); ok {
		return Slot{Kind: KindFixed, Word: tok}, nil
	}

	matches := wordlist.PrefixMatches(tok)
	switch len(matches) {
	case 0:
		return Slot{}, &InvalidWordError{Word: tok}
	case 1:
		return Slot{Kind: KindFixed, Word: matches[0]}, nil
	default:
		return Slot{Kind: KindPrefix, Candidates: matches}, nil
	}
}

// Assemble reproduces a full phrase (as tokens, one per position) from the
// resolved slots and a tuple of fillings for the unknown/prefix positions,
// in left-to-right order. It is the inverse of Resolve for any tuple
// consistent with the resolution.
func Assemble(slots []Slot, tuple []string) []string {
	phrase := make([]string, len(slots))
	t := 0
	for i, s := range slots {
		if s.Kind == KindFixed {
			phrase[i] = s.Word
			continue
		}
		phrase[i] = tuple[t]
		t++
	}
	return phrase
}

// UnknownCount reports the number of non-Fixed slots, i.e. the arity K of
// the tuples the combination enumerator must produce.
func UnknownCount(slots []Slot) int {
	n := 0
	for _, s := range slots {
		if s.Kind != KindFixed {
			n++
		}
	}
	return n
}
