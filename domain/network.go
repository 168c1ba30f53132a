package domain

import (
	"math/big"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

// Receiver is the receive logic of an account. It runs while the sender waits, with the gas
// forwarded by the sender metered in ctx. Returning an error rejects the payment.
type Receiver interface {
	Receive(ctx ctx.Ctx, from Address, amount *big.Int) error
}

// ReceiverFunc adapts a function to Receiver
type ReceiverFunc func(ctx ctx.Ctx, from Address, amount *big.Int) error

func (f ReceiverFunc) Receive(ctx ctx.Ctx, from Address, amount *big.Int) error {
	return f(ctx, from, amount)
}

// Network holds the native value balance of every account
type Network interface {
	BalanceOf(ctx ctx.Ctx, addr Address) (*big.Int, error)
	// Transfer moves amount and runs the receiver of `to` with gasLimit. A rejected
	// receive reverts every move made under this transfer.
	Transfer(ctx ctx.Ctx, from, to Address, amount *big.Int, gasLimit uint64) error
	// Register installs receive logic for addr
	Register(addr Address, r Receiver)
}

// Sender pushes native value to possibly adversarial recipients
type Sender interface {
	// Send forwards a bounded gas stipend and reports success, it never fails the caller
	Send(ctx ctx.Ctx, from, to Address, amount *big.Int) bool
	// SendExact forwards all gas and surfaces the failure
	SendExact(ctx ctx.Ctx, from, to Address, amount *big.Int) error
}
