package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"

	"github.com/smartcontractkit/interchain-infra/config/env"
	"github.com/smartcontractkit/interchain-infra/pkg/logger"
)

const (
	// Default retry configuration for RPC calls
	RPCDefaultRetryAttempts = 1
	RPCDefaultRetryDelay    = 1000 * time.Millisecond
	RPCDefaultRetryTimeout  = 10 * time.Second
)

// RetryConfig controls how each call is retried against a single endpoint before falling back
// to the next one.
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

// DefaultRetryConfig returns the retry configuration used when none is provided.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: RPCDefaultRetryAttempts,
		Delay:    RPCDefaultRetryDelay,
		Timeout:  RPCDefaultRetryTimeout,
	}
}

// RetryConfigFromSettings builds a RetryConfig from the environment RPC settings.
func RetryConfigFromSettings(cfg env.RPCConfig) RetryConfig {
	return RetryConfig{
		Attempts: cfg.Attempts,
		Delay:    cfg.Delay,
		Timeout:  cfg.Timeout,
	}
}

// Client is the read-only view of an EVM chain used by the checks in this repository.
// *ethclient.Client satisfies it.
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	Close()
}

// MultiClient should comply with the Client interface
var _ Client = &MultiClient{}

// MultiClient spreads calls over a primary endpoint and its backups. Every call is retried on an
// endpoint before moving on to the next one, and the first endpoint that succeeds becomes the
// primary for subsequent calls.
type MultiClient struct {
	primary     Client
	backups     []Client
	retryConfig RetryConfig
	lggr        logger.Logger
	chainName   string
	mu          sync.RWMutex
}

// NewMultiClient creates a MultiClient over clients, the first one being the primary.
func NewMultiClient(
	lggr logger.Logger, chainName string, retryConfig RetryConfig, clients ...Client,
) (*MultiClient, error) {
	if len(clients) == 0 {
		return nil, errors.New("no RPC clients provided, need at least one")
	}

	if retryConfig.Attempts == 0 {
		retryConfig.Attempts = RPCDefaultRetryAttempts
	}

	return &MultiClient{
		primary:     clients[0],
		backups:     clients[1:],
		retryConfig: retryConfig,
		lggr:        lggr,
		chainName:   chainName,
	}, nil
}

func (mc *MultiClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := mc.retryWithBackups(ctx, "ChainID", func(ct context.Context, client Client) error {
		var err error
		id, err = client.ChainID(ct)

		return err
	})

	return id, err
}

func (mc *MultiClient) BlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := mc.retryWithBackups(ctx, "BlockNumber", func(ct context.Context, client Client) error {
		var err error
		number, err = client.BlockNumber(ct)

		return err
	})

	return number, err
}

func (mc *MultiClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	var balance *big.Int
	err := mc.retryWithBackups(ctx, "BalanceAt", func(ct context.Context, client Client) error {
		var err error
		balance, err = client.BalanceAt(ct, account, blockNumber)

		return err
	})

	return balance, err
}

func (mc *MultiClient) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	var code []byte
	err := mc.retryWithBackups(ctx, "CodeAt", func(ct context.Context, client Client) error {
		var err error
		code, err = client.CodeAt(ct, account, blockNumber)

		return err
	})

	return code, err
}

// Close closes every underlying client.
func (mc *MultiClient) Close() {
	for _, client := range mc.clients() {
		client.Close()
	}
}

func (mc *MultiClient) retryWithBackups(ctx context.Context, opName string, op func(context.Context, Client) error) error {
	var err error
	traceID := uuid.New()

	for rpcIndex, client := range mc.clients() {
		retryCount := 0
		err2 := retry.Do(func() error {
			timeoutCtx, cancel := ensureTimeout(ctx, mc.retryConfig.Timeout)
			defer cancel()

			err = op(timeoutCtx, client)
			if err != nil {
				mc.lggr.Warnf("traceID %q: chain %q: op: %q: client index %d: failed execution - retryable error '%s'", traceID.String(), mc.chainName, opName, rpcIndex, maybeDataErr(err))
				return err
			}

			mc.reorderRPCs(rpcIndex)

			return nil
		},
			retry.Context(ctx),
			retry.Attempts(mc.retryConfig.Attempts),
			retry.Delay(mc.retryConfig.Delay),
			retry.DelayType(retry.FixedDelay),
			retry.OnRetry(func(n uint, err error) { retryCount++ }),
		)
		if err2 == nil {
			if retryCount > 0 {
				mc.lggr.Infof("traceID %q: chain %q: op: %q: client index %d: successfully executed after %d retry", traceID.String(), mc.chainName, opName, rpcIndex, retryCount)
			}

			return nil
		}

		if ctx.Err() != nil {
			return errors.Join(err, ctx.Err())
		}

		mc.lggr.Infof("traceID %q: chain %q: op: %q: client index %d: failed, trying next client", traceID.String(), mc.chainName, opName, rpcIndex)
	}

	return errors.Join(err, fmt.Errorf("all backup clients failed for chain %q", mc.chainName))
}

// ensureTimeout checks if the parent context has a deadline.
// If it does, it returns a new cancelable context using the parent's deadline.
// If it doesn't, it creates a new context with the specified timeout.
func ensureTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := parent.Deadline(); hasDeadline || timeout <= 0 {
		return context.WithCancel(parent)
	}

	return context.WithTimeout(parent, timeout)
}

// reorderRPCs promotes the client at rpcIndex to primary. The clients that failed before it,
// including the previous primary, are moved to the end of the backups.
func (mc *MultiClient) reorderRPCs(rpcIndex int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if rpcIndex < 1 || len(mc.backups) == 0 {
		return
	}

	newPrimaryIndex := rpcIndex - 1
	newPrimary := mc.backups[newPrimaryIndex]

	reordered := make([]Client, 0, len(mc.backups))
	reordered = append(reordered, mc.backups[newPrimaryIndex+1:]...)
	reordered = append(reordered, mc.backups[:newPrimaryIndex]...)
	reordered = append(reordered, mc.primary)

	mc.backups = reordered
	mc.primary = newPrimary
}

func (mc *MultiClient) clients() []Client {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return append([]Client{mc.primary}, mc.backups...)
}

func maybeDataErr(err error) error {
	var d rpc.DataError
	if errors.As(err, &d) {
		return fmt.Errorf("%s: %v", d.Error(), d.ErrorData())
	}

	return err
}
