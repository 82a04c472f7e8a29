package balance

import "github.com/asylian21/mnemonic-recover/internal/deriver"

// ChainEndpoint is the network-facing configuration for one chain: either
// a block-explorer host (Bitcoin) or a JSON-RPC URL (EVM chains).
type ChainEndpoint struct {
	Chain          deriver.Chain
	ExplorerHost   string // Bitcoin only, e.g. "https://blockstream.info"
	RPCEndpoint    string // EVM only, e.g. "https://eth.llamarpc.com"
	MinInterval    string // human-readable, for CLI display only
	RequestsPerSec float64
}

// DefaultRegistry maps the chain identifiers accepted by --chain to the
// endpoints used when --query-balances is set. mainnet is an alias for
// Ethereum mainnet; the other EVM chains share the same derivation path
// and differ only in RPC endpoint.
var DefaultRegistry = map[string]ChainEndpoint{
	"bitcoin": {
		Chain:          deriver.Bitcoin,
		ExplorerHost:   "https://blockstream.info",
		RequestsPerSec: 1,
	},
	"mainnet": {
		Chain:          deriver.Ethereum,
		RPCEndpoint:    "https://eth.llamarpc.com",
		RequestsPerSec: 4,
	},
	"ethereum": {
		Chain:          deriver.Ethereum,
		RPCEndpoint:    "https://eth.llamarpc.com",
		RequestsPerSec: 4,
	},
	"bsc": {
		Chain:          deriver.Ethereum,
		RPCEndpoint:    "https://bsc-dataseed.binance.org",
		RequestsPerSec: 4,
	},
	"polygon": {
		Chain:          deriver.Ethereum,
		RPCEndpoint:    "https://polygon-rpc.com",
		RequestsPerSec: 4,
	},
}

// Resolve looks up a chain identifier in DefaultRegistry. An unrecognized
// identifier returns ok == false; no fallback endpoint is supplied.
func Resolve(chainID string) (ChainEndpoint, bool) {
	ep, ok := DefaultRegistry[chainID]
	return ep, ok
}
