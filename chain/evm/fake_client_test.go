package evm

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var errUnavailable = errors.New("rpc unavailable")

// fakeClient is a Client whose calls fail a configurable number of times before succeeding.
type fakeClient struct {
	mu       sync.Mutex
	name     string
	failures int // remaining calls that fail; negative fails forever
	calls    int
	closed   bool

	chainID *big.Int
	balance *big.Int
	code    []byte
}

func (f *fakeClient) call() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failures != 0 {
		if f.failures > 0 {
			f.failures--
		}

		return errUnavailable
	}

	return nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *fakeClient) ChainID(context.Context) (*big.Int, error) {
	if err := f.call(); err != nil {
		return nil, err
	}

	return f.chainID, nil
}

func (f *fakeClient) BlockNumber(context.Context) (uint64, error) {
	if err := f.call(); err != nil {
		return 0, err
	}

	return 42, nil
}

func (f *fakeClient) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	if err := f.call(); err != nil {
		return nil, err
	}

	return f.balance, nil
}

func (f *fakeClient) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	if err := f.call(); err != nil {
		return nil, err
	}

	return f.code, nil
}

func (f *fakeClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}
