package repository

import (
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/mongoclient"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/service/query"
)

const (
	engine   = domain.Address("0xE000000000000000000000000000000000000001")
	splitter = domain.Address("0x5000000000000000000000000000000000000002")
	alice    = domain.Address("0xa000000000000000000000000000000000000003")
	bob      = domain.Address("0xb000000000000000000000000000000000000004")
)

type repoSuite struct {
	suite.Suite
	ctx     ctx.Ctx
	newRepo func() ledger.Repo
	repo    ledger.Repo
}

func (s *repoSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.repo = s.newRepo()
}

func (s *repoSuite) amount(v *big.Int, err error) int64 {
	s.Require().NoError(err)
	return v.Int64()
}

func (s *repoSuite) TestAddAndTake() {
	s.Equal(int64(0), s.amount(s.repo.Get(s.ctx, engine, alice)))

	s.Require().NoError(s.repo.Add(s.ctx, engine, alice, big.NewInt(7)))
	s.Require().NoError(s.repo.Add(s.ctx, engine, alice, big.NewInt(3)))
	s.Require().NoError(s.repo.Add(s.ctx, engine, bob, big.NewInt(5)))
	s.Require().NoError(s.repo.Add(s.ctx, splitter, alice, big.NewInt(1)))

	s.Equal(int64(10), s.amount(s.repo.Get(s.ctx, engine, alice)))
	s.Equal(int64(15), s.amount(s.repo.Total(s.ctx, engine)))
	s.Equal(int64(1), s.amount(s.repo.Total(s.ctx, splitter)))

	entries, err := s.repo.FindAll(s.ctx, engine)
	s.Require().NoError(err)
	s.Len(entries, 2)

	s.Equal(int64(10), s.amount(s.repo.Take(s.ctx, engine, alice)))
	s.Equal(int64(0), s.amount(s.repo.Take(s.ctx, engine, alice)))
	s.Equal(int64(0), s.amount(s.repo.Get(s.ctx, engine, alice)))
	s.Equal(int64(5), s.amount(s.repo.Total(s.ctx, engine)))

	entries, err = s.repo.FindAll(s.ctx, engine)
	s.Require().NoError(err)
	s.Len(entries, 1)
	s.Equal(bob.ToLower(), entries[0].Payee)
	s.Equal("5", entries[0].Amount)
}

func (s *repoSuite) TestCaseInsensitive() {
	s.Require().NoError(s.repo.Add(s.ctx, engine.ToLower(), alice, big.NewInt(2)))
	s.Equal(int64(2), s.amount(s.repo.Get(s.ctx, engine, alice.ToLower())))
}

func (s *repoSuite) TestNegative() {
	s.ErrorIs(s.repo.Add(s.ctx, engine, alice, big.NewInt(-1)), domain.ErrNegativeAmount)
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
	suite.Run(t, &repoSuite{newRepo: func() ledger.Repo {
		c := ctx.Background()
		if err := client.Database("testdb").Collection(string(domain.TablePendingEntries)).Drop(c); err != nil {
			t.Fatal(err)
		}
		repo, err := New(c, q)
		if err != nil {
			t.Fatal(err)
		}
		return repo
	}})
}
