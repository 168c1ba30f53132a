package ens

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/keys"
	"github.com/x-xyz/auctionhouse/service/cache"
	"github.com/x-xyz/auctionhouse/service/cache/provider/primitive"
)

const (
	name    = "machibigbrother.eth"
	address = domain.Address("0x020cA66C30beC2c4Fe3861a94E4DB4A498A35872")
)

type fakeBackend struct {
	resolves int
}

func (f *fakeBackend) Resolve(n string) (common.Address, error) {
	f.resolves++
	switch n {
	case name:
		return common.HexToAddress(string(address)), nil
	case "down.eth":
		return common.Address{}, errors.New("rpc down")
	}
	return common.Address{}, errors.New("unregistered name")
}

func (f *fakeBackend) ReverseResolve(a common.Address) (string, error) {
	if a == common.HexToAddress(string(address)) {
		return name, nil
	}
	return "", errors.New("not a resolver")
}

type ensSuite struct {
	suite.Suite

	backend *fakeBackend
	im      ENS
}

func TestSuite(t *testing.T) {
	suite.Run(t, new(ensSuite))
}

func (s *ensSuite) SetupTest() {
	s.backend = &fakeBackend{}
	s.im = New(s.backend, cache.New(cache.Config{
		TTL:      time.Minute,
		Prefix:   keys.PfxEns,
		Provider: primitive.NewPrimitive("ens", 1),
	}))
}

func (s *ensSuite) TestResolve() {
	c := ctx.Background()

	res, err := s.im.Resolve(c, name)
	s.Require().NoError(err)
	s.Equal(address.ToLower(), res)

	res, err = s.im.Resolve(c, name)
	s.Require().NoError(err)
	s.Equal(address.ToLower(), res)
	s.Equal(1, s.backend.resolves)

	res, err = s.im.Resolve(c, "nobody.eth")
	s.Require().NoError(err)
	s.True(res.IsEmpty())

	_, err = s.im.Resolve(c, "down.eth")
	s.EqualError(err, "rpc down")
}

func (s *ensSuite) TestReverseResolve() {
	c := ctx.Background()

	res, err := s.im.ReverseResolve(c, address)
	s.Require().NoError(err)
	s.Equal(name, res)

	res, err = s.im.ReverseResolve(c, "0x0000000000000000000000000000000000000001")
	s.Require().NoError(err)
	s.Empty(res)
}

func (s *ensSuite) TestRecipient() {
	c := ctx.Background()

	cases := []struct {
		input string
		ens   ENS
		want  domain.Address
		err   error
	}{
		{string(address), nil, address.ToLower(), nil},
		{name, s.im, address.ToLower(), nil},
		{name, nil, "", domain.ErrInvalidAddress},
		{"nobody.eth", s.im, "", domain.ErrInvalidAddress},
		{"0x1234", s.im, "", domain.ErrInvalidAddress},
	}
	for _, tc := range cases {
		got, err := Recipient(c, tc.ens, tc.input)
		if tc.err != nil {
			s.ErrorIs(err, tc.err, tc.input)
			continue
		}
		s.NoError(err, tc.input)
		s.Equal(tc.want, got, tc.input)
	}
}
