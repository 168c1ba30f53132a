package repository

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

const (
	weth  = domain.Address("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	alice = domain.Address("0xa000000000000000000000000000000000000003")
	bob   = domain.Address("0xb000000000000000000000000000000000000004")
)

func TestTransfer(t *testing.T) {
	c := ctx.Background()
	tkn := NewMemory(weth, "WETH")
	require.NoError(t, tkn.Mint(c, alice, big.NewInt(10)))

	require.NoError(t, tkn.Transfer(c, alice, bob, big.NewInt(4)))
	a, _ := tkn.BalanceOf(c, alice)
	b, _ := tkn.BalanceOf(c, bob)
	require.Equal(t, int64(6), a.Int64())
	require.Equal(t, int64(4), b.Int64())

	require.ErrorIs(t, tkn.Transfer(c, alice, bob, big.NewInt(7)), domain.ErrInsufficientBalance)

	tkn.Reject(bob, true)
	require.Error(t, tkn.Transfer(c, alice, bob, big.NewInt(1)))
	a, _ = tkn.BalanceOf(c, alice)
	require.Equal(t, int64(6), a.Int64())
}

func TestDirectory(t *testing.T) {
	c := ctx.Background()
	tkn := NewMemory(weth, "WETH")
	d := NewDirectory(tkn)

	got, err := d.Get(c, weth.ToLower())
	require.NoError(t, err)
	require.Equal(t, "WETH", got.Symbol())

	_, err = d.Get(c, alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
