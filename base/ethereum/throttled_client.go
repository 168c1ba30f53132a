package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ThrottledCaller bounds the number of concurrent calls against one rpc endpoint
type ThrottledCaller struct {
	caller bind.ContractCaller
	tokens chan int
}

var _ bind.ContractCaller = (*ThrottledCaller)(nil)

func NewThrottledCaller(caller bind.ContractCaller, n int) *ThrottledCaller {
	if n <= 0 {
		n = 1
	}
	tokens := make(chan int, n)
	for i := 0; i < n; i++ {
		tokens <- i + 1
	}
	return &ThrottledCaller{
		caller: caller,
		tokens: tokens,
	}
}

func (c *ThrottledCaller) CodeAt(ctx context.Context, address common.Address, number *big.Int) ([]byte, error) {
	token, err := c.before(ctx)
	if err != nil {
		return nil, err
	}
	defer c.after(token)
	return c.caller.CodeAt(ctx, address, number)
}

func (c *ThrottledCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, number *big.Int) ([]byte, error) {
	token, err := c.before(ctx)
	if err != nil {
		return nil, err
	}
	defer c.after(token)
	return c.caller.CallContract(ctx, msg, number)
}

func (c *ThrottledCaller) before(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case token := <-c.tokens:
		return token, nil
	}
}

func (c *ThrottledCaller) after(token int) {
	c.tokens <- token
}
