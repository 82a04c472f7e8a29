// Package balance queries chain-specific endpoints for an address's
// balance, returning 0 rather than erroring on transient network failure
// so the engine keeps scanning instead of halting.
package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/asylian21/mnemonic-recover/internal/deriver"
)

// Client queries an address's balance in the chain's base unit (satoshis
// for Bitcoin, wei for EVM chains). Unlike the worker-facing Query
// function below, Client.Balance may return an error; the zero-on-failure
// behavior lives one layer up, so callers who want real errors (tests,
// diagnostics) can still see them.
type Client interface {
	Balance(ctx context.Context, address string) (*big.Int, error)
}

// hostLimiters holds one rate limiter per host; get returns (creating if
// needed) the limiter for a given host, so that concurrent workers querying the same block explorer or
// RPC endpoint serialize to its configured requests-per-second ceiling.
// Connection objects are per-worker, but the rate limiter is deliberately
// shared across workers per host, since the rate ceiling is a property of
// the remote host, not of any one worker.
type hostLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newHostLimiters() *hostLimiters {
	return &hostLimiters{limiters: make(map[string]*rate.Limiter)}
}

func (h *hostLimiters) get(host string, perSecond float64) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		if perSecond <= 0 {
			perSecond = 1
		}
		l = rate.NewLimiter(rate.Limit(perSecond), 1)
		h.limiters[host] = l
	}
	return l
}

var sharedLimiters = newHostLimiters()

// BitcoinClient queries a block-explorer HTTP API (blockstream.info by
// default) for a Bitcoin address's balance.
type BitcoinClient struct {
	Host       string
	HTTPClient *http.Client
	PerSecond  float64
}

type blockstreamChainStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
}

type blockstreamAddress struct {
	ChainStats blockstreamChainStats `json:"chain_stats"`
}

// Balance implements Client. A non-200 response or malformed JSON is
// reported as an error; callers that want failures mapped to zero should
// use Query below.
func (c *BitcoinClient) Balance(ctx context.Context, address string) (*big.Int, error) {
	host := c.Host
	if host == "" {
		host = "https://blockstream.info"
	}
	limiter := sharedLimiters.get(host, c.PerSecond)
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	url := fmt.Sprintf("%s/api/address/%s", host, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("balance: blockstream returned status %d for %s", resp.StatusCode, address)
	}

	var parsed blockstreamAddress
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("balance: decoding blockstream response: %w", err)
	}

	sats := parsed.ChainStats.FundedTxoSum - parsed.ChainStats.SpentTxoSum
	if sats < 0 {
		sats = 0
	}
	return big.NewInt(sats), nil
}

// EVMClient queries an EVM-compatible chain's balance via JSON-RPC
// (eth_getBalance), using go-ethereum's ethclient as the RPC transport.
type EVMClient struct {
	Endpoint  string
	PerSecond float64

	mu   sync.Mutex
	conn *ethclient.Client
}

func (c *EVMClient) dial(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := ethclient.DialContext(ctx, c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("balance: dialing %s: %w", c.Endpoint, err)
	}
	c.conn = conn
	return conn, nil
}

// Balance implements Client.
func (c *EVMClient) Balance(ctx context.Context, address string) (*big.Int, error) {
	limiter := sharedLimiters.get(c.Endpoint, c.PerSecond)
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	bal, err := conn.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("balance: eth_getBalance for %s: %w", address, err)
	}
	return bal, nil
}

// Query is the worker-facing entry point: any failure (including context
// deadlines) maps to a zero balance rather than propagating. A failed
// query is not retried and no backoff is applied. timeout bounds a single
// query so a stalled endpoint cannot block a worker indefinitely.
func Query(ctx context.Context, client Client, address string, timeout time.Duration, onError func(error)) *big.Int {
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bal, err := client.Balance(qctx, address)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return big.NewInt(0)
	}
	return bal
}

// ForChain constructs the appropriate Client for a resolved chain
// identifier, per DefaultRegistry / a caller-supplied override.
func ForChain(chain deriver.Chain, ep ChainEndpoint) Client {
	if chain == deriver.Bitcoin {
		return &BitcoinClient{Host: ep.ExplorerHost, PerSecond: ep.RequestsPerSec}
	}
	return &EVMClient{Endpoint: ep.RPCEndpoint, PerSecond: ep.RequestsPerSec}
}
