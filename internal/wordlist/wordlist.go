// Package wordlist exposes the fixed, ordered BIP-39 English wordlist and
// the lookups the Candidate Resolver needs over it.
//
// The wordlist itself is treated as an external constant: it is
// sourced from github.com/tyler-smith/go-bip39 rather than vendored here.
package wordlist

import (
	"sort"
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39"
)

// Size is the number of words in the BIP-39 English wordlist.
const Size = 2048

var (
	once    sync.Once
	words   []string
	indexOf map[string]int
)

func load() {
	words = bip39.GetWordList()
	indexOf = make(map[string]int, len(words))
	for i, w := range words {
		indexOf[w] = i
	}
}

// Words returns the 2048-word list, indexed 0..2047, in wordlist order.
// The returned slice must not be mutated by callers.
func Words() []string {
	once.Do(load)
	return words
}

// IndexOf returns a word's position in the wordlist, if present.
func IndexOf(word string) (int, bool) {
	once.Do(load)
	i, ok := indexOf[word]
	return i, ok
}

// MustIndex returns a word's position, panicking if the word is not in the
// wordlist. Reserved for callers that have already validated membership
// (e.g. assembling a Fixed slot produced by the resolver).
func MustIndex(word string) int {
	i, ok := IndexOf(word)
	if !ok {
		panic("wordlist: word not in BIP-39 wordlist: " + word)
	}
	return i
}

// PrefixMatches returns every wordlist entry starting with prefix, in
// wordlist order. An empty prefix matches nothing (callers treat the `*`
// sentinel separately, as Unknown).
func PrefixMatches(prefix string) []string {
	once.Do(load)
	if prefix == "" {
		return nil
	}
	// words is itself alphabetically sorted in the BIP-39 standard, so a
	// binary search for the prefix boundary would work; a linear scan is
	// simpler and the list is only 2048 entries, run once per slot.
	matches := make([]string, 0, 8)
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			matches = append(matches, w)
		}
	}
	return matches
}

// sortedCopy is used only by tests that want to assert wordlist ordering
// without depending on go-bip39's internal representation.
func sortedCopy() []string {
	once.Do(load)
	cp := make([]string, len(words))
	copy(cp, words)
	sort.Strings(cp)
	return cp
}
