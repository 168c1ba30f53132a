package repository

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/mongoclient"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/royalty"
	"github.com/x-xyz/auctionhouse/service/query"
)

const (
	first  = domain.Address("0x5000000000000000000000000000000000000001")
	second = domain.Address("0x5000000000000000000000000000000000000002")
	alice  = domain.Address("0xa000000000000000000000000000000000000003")
	bob    = domain.Address("0xb000000000000000000000000000000000000004")
)

type repoSuite struct {
	suite.Suite
	ctx     ctx.Ctx
	newRepo func() royalty.Repo
	repo    royalty.Repo
}

func (s *repoSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.repo = s.newRepo()
}

func (s *repoSuite) TestUpsert() {
	_, err := s.repo.FindOne(s.ctx, first)
	s.ErrorIs(err, domain.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.repo.Upsert(s.ctx, &royalty.Record{Address: second, CreatedAt: now.Add(time.Second)}))
	s.Require().NoError(s.repo.Upsert(s.ctx, &royalty.Record{Address: first, CreatedAt: now}))
	s.Require().NoError(s.repo.Upsert(s.ctx, &royalty.Record{Address: first, PayeeA: alice, PayeeB: bob, Initialized: true, CreatedAt: now}))

	n, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	got, err := s.repo.FindOne(s.ctx, first)
	s.Require().NoError(err)
	s.True(got.Initialized)
	s.Equal(alice, got.PayeeA)

	all, err := s.repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(first, all[0].Address)
	s.Equal(second, all[1].Address)
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
	suite.Run(t, &repoSuite{newRepo: func() royalty.Repo {
		c := ctx.Background()
		if err := client.Database("testdb").Collection(string(domain.TableSplitters)).Drop(c); err != nil {
			t.Fatal(err)
		}
		repo, err := New(c, q)
		if err != nil {
			t.Fatal(err)
		}
		return repo
	}})
}
