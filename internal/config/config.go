// Package config assembles the run configuration behind the CLI flag
// table, independent of whether values arrived via CLI flags or the
// environment-variable fallback (urfave/cli/v2 handles that duality at
// the flag-definition layer in cmd/mnemonic-recover; this package just
// validates the assembled result).
package config

import (
	"fmt"
	"strings"

	"github.com/asylian21/mnemonic-recover/internal/deriver"
)

// DefaultProgressPath is the progress file path used when no explicit
// path is given.
const DefaultProgressPath = "recovery-progress.json"

const (
	DefaultWorkers   = 4
	DefaultChunkSize = 1000
)

// Config is the fully-resolved, validated set of run parameters.
type Config struct {
	Mnemonic       string
	Chain          string
	PublicKey      string
	QueryBalances  bool
	RepeatingWords bool
	Workers        int
	ChunkSize      int
	Resume         bool
	ProgressPath   string
}

// Validate fails fast on user-input errors: every check here must run
// before any enumeration work begins.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Mnemonic) == "" {
		return fmt.Errorf("config: --mnemonic is required")
	}
	if strings.TrimSpace(c.Chain) == "" {
		return fmt.Errorf("config: --chain is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: --workers must be >= 1, got %d", c.Workers)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("config: --chunk-size must be >= 1, got %d", c.ChunkSize)
	}
	if c.ProgressPath == "" {
		c.ProgressPath = DefaultProgressPath
	}
	return nil
}

// Tokens splits Mnemonic on whitespace into the per-position tokens the
// Candidate Resolver expects.
func (c *Config) Tokens() []string {
	return strings.Fields(c.Mnemonic)
}

// ResolveChain resolves the configured chain identifier into a deriver.Chain.
// Anything other than "bitcoin"/"btc"/"both" is treated as an EVM-family chain
// (deriver.Chain.IsEVM's contract), so this is a thin normalizer rather
// than a validator.
func (c *Config) ResolveChain() deriver.Chain {
	switch strings.ToLower(c.Chain) {
	case "bitcoin", "btc":
		return deriver.Bitcoin
	case "both":
		return deriver.Both
	default:
		return deriver.Chain(strings.ToLower(c.Chain))
	}
}
