// Package coordinator drives the combination enumerator, derives and
// checks addresses for every candidate phrase across a fixed pool of
// workers, and persists progress as chunks complete.
package coordinator

import "math/big"

// Result is a closed, exhaustive tagged variant over the four outcomes a
// worker can report. Exactly one of the embedded pointers is non-nil; the
// Visit method is the only way to inspect it, forcing every call site
// to handle all variants - a new variant added here fails to compile
// everywhere it isn't handled, rather than silently falling through a
// default case.
type Result struct {
	chunkComplete     *ChunkComplete
	matchFound        *MatchFound
	loadedWalletFound *LoadedWalletFound
	errResult         *ErrorResult
}

// ChunkComplete reports that the enumerator positions [Start, End) have
// been fully processed (derived, checked, and, if requested, balance
// queried) with no match.
type ChunkComplete struct {
	Start, End *big.Int
}

// MatchFound reports a candidate phrase whose derived address equals the
// target address supplied via --public-key.
type MatchFound struct {
	Phrase  []string
	Chain   string
	Address string
	Index   *big.Int
}

// LoadedWalletFound reports a candidate phrase whose derived address
// carries a non-zero on-chain balance, found while --query-balances is
// set (independent of whether a specific target address was supplied).
type LoadedWalletFound struct {
	Phrase  []string
	Chain   string
	Address string
	Balance *big.Int
	Index   *big.Int
}

// ErrorResult reports a non-fatal, per-candidate error: a derivation
// error unrelated to an invalid checksum. Balance query failures are
// downgraded to zero by Query and are not reported here. It does not stop
// the run.
type ErrorResult struct {
	Err   error
	Index *big.Int
}

func fromChunkComplete(c ChunkComplete) Result    { return Result{chunkComplete: &c} }
func fromMatchFound(m MatchFound) Result          { return Result{matchFound: &m} }
func fromLoadedWallet(l LoadedWalletFound) Result { return Result{loadedWalletFound: &l} }
func fromError(e ErrorResult) Result              { return Result{errResult: &e} }

// Visit dispatches r to exactly one of the supplied handlers. Every caller
// must supply all four - there is no default branch to silently swallow a
// case.
func (r Result) Visit(
	onChunkComplete func(ChunkComplete),
	onMatchFound func(MatchFound),
	onLoadedWalletFound func(LoadedWalletFound),
	onError func(ErrorResult),
) {
	switch {
	case r.chunkComplete != nil:
		onChunkComplete(*r.chunkComplete)
	case r.matchFound != nil:
		onMatchFound(*r.matchFound)
	case r.loadedWalletFound != nil:
		onLoadedWalletFound(*r.loadedWalletFound)
	case r.errResult != nil:
		onError(*r.errResult)
	default:
		panic("coordinator: Result holds no variant")
	}
}
