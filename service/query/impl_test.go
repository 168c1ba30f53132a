package query

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/database/mongoclient"
	"github.com/x-xyz/auctionhouse/domain"
)

var (
	mockCTX = ctx.Background()
)

const (
	mockTable = domain.TableAccounts
	dbName    = "testdb"
)

type dummy struct {
	Dummy  string `json:"dummy" bson:"dummy"`
	Update string `json:"updatekey" bson:"updatekey"`
}

type querySuite struct {
	suite.Suite
	im       *impl
	mongoURI string
}

// the suite talks to a real replica set, e.g. MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0
func (q *querySuite) SetupSuite() {
	q.mongoURI = os.Getenv("MONGO_URI")
	if q.mongoURI == "" {
		q.T().Skip("MONGO_URI not set")
	}
}

func (q *querySuite) SetupTest() {
	client := mongoclient.MustConnectMongoClient(mongoclient.Config{
		URI:            q.mongoURI,
		AuthDBName:     "admin",
		DBName:         dbName,
		SetSafe:        true,
		PoolMultiplier: 1,
	})
	q.im = New(client, false).(*impl)
	q.Require().NoError(q.im.client.Database(q.im.client.DbName).Collection(string(mockTable)).Drop(mockCTX))
}

func (q *querySuite) TestFindOne() {
	err := q.im.Upsert(mockCTX, mockTable, bson.M{"dummy": "v1"}, bson.M{"dummy": "v1", "updatekey": "u1"})
	q.Require().NoError(err)

	result := &dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "v1"}, result))
	q.Equal(dummy{"v1", "u1"}, *result)

	q.Equal(ErrNotFound, q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "v2"}, result))
}

func (q *querySuite) TestInsertShouldFailWithDuplicateKey() {
	q.Require().NoError(q.im.EnsureIndexes(mockCTX, mockTable, Index{Keys: []string{"dummy"}, Unique: true}))

	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"v1", "u1"}))
	q.Equal(ErrDuplicateKey, q.im.Insert(mockCTX, mockTable, dummy{"v1", "u2"}))
	q.NoError(q.im.Insert(mockCTX, mockTable, dummy{"v2", "u2"}))
}

func (q *querySuite) TestCountAndSearch() {
	for _, v := range []string{"b", "a", "c"} {
		q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{v, "same"}))
	}

	cnt, err := q.im.Count(mockCTX, mockTable, bson.M{"updatekey": "same"})
	q.Require().NoError(err)
	q.Equal(3, cnt)

	res := []dummy{}
	q.Require().NoError(q.im.Search(mockCTX, mockTable, 1, 0, "-dummy", bson.M{}, &res))
	q.Equal([]dummy{{"b", "same"}, {"a", "same"}}, res)
}

func (q *querySuite) TestPatchAndRemove() {
	q.Equal(ErrNotFound, q.im.Patch(mockCTX, mockTable, bson.M{"dummy": "v1"}, bson.M{"updatekey": "u2"}))

	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"v1", "u1"}))
	q.Require().NoError(q.im.Patch(mockCTX, mockTable, bson.M{"dummy": "v1"}, bson.M{"updatekey": "u2"}))

	result := &dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "v1"}, result))
	q.Equal("u2", result.Update)

	q.Require().NoError(q.im.Remove(mockCTX, mockTable, bson.M{"dummy": "v1"}))
	q.Equal(ErrNotFound, q.im.Remove(mockCTX, mockTable, bson.M{"dummy": "v1"}))
}

func (q *querySuite) TestRunWithTransaction() {
	// collections cannot be created inside a transaction on older servers
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, dummy{"seed", ""}))

	errAbort := errors.New("abort")
	err := q.im.RunWithTransaction(mockCTX, func(c ctx.Ctx) error {
		q.Require().NoError(q.im.Insert(c, mockTable, dummy{"v1", ""}))
		return errAbort
	})
	q.Equal(errAbort, err)

	result := &dummy{}
	q.Equal(ErrNotFound, q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "v1"}, result))

	err = q.im.RunWithTransaction(mockCTX, func(c ctx.Ctx) error {
		return q.im.Insert(c, mockTable, dummy{"v1", ""})
	})
	q.Require().NoError(err)
	q.NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "v1"}, result))
}

func (q *querySuite) TestPing() {
	q.NoError(q.im.Ping(mockCTX))
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(querySuite))
}
