package ens

import (
	"strings"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/validator"
	"github.com/x-xyz/auctionhouse/domain"
)

type ENS interface {
	// Resolve returns an empty address for unregistered names
	Resolve(ctx ctx.Ctx, name string) (domain.Address, error)
	ReverseResolve(ctx ctx.Ctx, address domain.Address) (string, error)
}

// IsName reports whether s looks like an ens name
func IsName(s string) bool {
	return strings.HasSuffix(strings.ToLower(s), ".eth") && len(s) > len(".eth")
}

// Recipient accepts a hex address or, when e is set, an ens name
func Recipient(c ctx.Ctx, e ENS, s string) (domain.Address, error) {
	if validator.IsValidAddress(s) {
		return domain.Address(s).ToLower(), nil
	}
	if e == nil || !IsName(s) {
		return "", domain.ErrInvalidAddress
	}
	addr, err := e.Resolve(c, s)
	if err != nil {
		return "", err
	}
	if addr.IsEmpty() {
		return "", domain.ErrInvalidAddress
	}
	return addr.ToLower(), nil
}
