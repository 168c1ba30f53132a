package repository

import (
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/mongoclient"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/account"
	"github.com/x-xyz/auctionhouse/service/query"
)

type repoSuite struct {
	suite.Suite
	ctx     ctx.Ctx
	newRepo func() account.Repo
	repo    account.Repo
}

func (s *repoSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.repo = s.newRepo()
}

func (s *repoSuite) TestCreditDebit() {
	alice := domain.Address("0xAbC0000000000000000000000000000000000001")

	bal, err := s.repo.Balance(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(int64(0), bal.Int64())

	s.Require().NoError(s.repo.Credit(s.ctx, alice, big.NewInt(10)))
	// addresses are case insensitive
	bal, err = s.repo.Balance(s.ctx, alice.ToLower())
	s.Require().NoError(err)
	s.Equal(int64(10), bal.Int64())

	cases := []struct {
		amount  int64
		err     error
		balance int64
	}{
		{amount: 11, err: domain.ErrInsufficientBalance, balance: 10},
		{amount: -1, err: domain.ErrNegativeAmount, balance: 10},
		{amount: 4, err: nil, balance: 6},
		{amount: 6, err: nil, balance: 0},
	}
	for _, c := range cases {
		err := s.repo.Debit(s.ctx, alice, big.NewInt(c.amount))
		if c.err != nil {
			s.ErrorIs(err, c.err)
		} else {
			s.NoError(err)
		}
		bal, err := s.repo.Balance(s.ctx, alice)
		s.Require().NoError(err)
		s.Equal(c.balance, bal.Int64())
	}
}

func (s *repoSuite) TestBalanceIsACopy() {
	alice := domain.Address("0x01")
	s.Require().NoError(s.repo.Credit(s.ctx, alice, big.NewInt(5)))

	bal, _ := s.repo.Balance(s.ctx, alice)
	bal.SetInt64(100)

	bal, _ = s.repo.Balance(s.ctx, alice)
	s.Equal(int64(5), bal.Int64())
}

func (s *repoSuite) TestDebitFailureKeepsBalance() {
	bob := domain.Address("0xb0b0000000000000000000000000000000000002")
	s.Require().NoError(s.repo.Credit(s.ctx, bob, big.NewInt(3)))
	s.Require().NoError(s.repo.Credit(s.ctx, bob, big.NewInt(4)))
	s.ErrorIs(s.repo.Debit(s.ctx, bob, big.NewInt(8)), domain.ErrInsufficientBalance)

	bal, err := s.repo.Balance(s.ctx, bob)
	s.Require().NoError(err)
	s.Equal(int64(7), bal.Int64())
}

func TestMemoryRepo(t *testing.T) {
	suite.Run(t, &repoSuite{newRepo: NewMemory})
}

func TestMongoRepo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	client := mongoclient.MustConnectMongoClient(mongoclient.Config{URI: uri, AuthDBName: "admin", DBName: "testdb", SetSafe: true})
	q := query.New(client, false)
	suite.Run(t, &repoSuite{newRepo: func() account.Repo {
		if err := client.Database("testdb").Collection(string(domain.TableAccounts)).Drop(ctx.Background()); err != nil {
			t.Fatal(err)
		}
		return New(q)
	}})
}
