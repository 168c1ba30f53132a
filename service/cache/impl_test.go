package cache

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain/keys"
	"github.com/x-xyz/auctionhouse/service/cache/provider"
	"github.com/x-xyz/auctionhouse/service/cache/provider/primitive"
)

var (
	mockCtx = ctx.Background()
)

type value struct {
	Value string `json:"value"`
}

type testsuite struct {
	suite.Suite
	im       Service
	provider provider.Provider
}

func (ts *testsuite) SetupTest() {
	ts.provider = primitive.NewPrimitive("test", 1)
	ts.im = New(Config{
		TTL:      time.Second,
		Prefix:   "testing",
		Provider: ts.provider,
	})
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestGet() {
	k := "get"
	v := value{"value"}
	c := &value{}

	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, k, c))

	sv, err := json.Marshal(v)
	ts.NoError(err)
	ts.NoError(ts.provider.Set(mockCtx, keys.RedisKey("testing", k), sv, time.Second))
	ts.NoError(ts.im.Get(mockCtx, k, c))
	ts.Equal(v, *c)
}

func (ts *testsuite) TestSetExpires() {
	k := "set"
	v := value{"value"}
	c := &value{}

	ts.NoError(ts.im.Set(mockCtx, k, v))

	sv, _, err := ts.provider.Get(mockCtx, keys.RedisKey("testing", k))
	ts.NoError(err)
	ts.NoError(json.Unmarshal(sv, c))
	ts.Equal(v, *c)

	time.Sleep(1100 * time.Millisecond)
	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, k, c))
}

func (ts *testsuite) TestGetByFunc() {
	k := "func"
	v := value{"value"}
	calls := 0
	getter := func() (interface{}, error) {
		calls++
		return &v, nil
	}

	c := &value{}
	ts.NoError(ts.im.GetByFunc(mockCtx, k, c, getter))
	ts.Equal(v, *c)

	c = &value{}
	ts.NoError(ts.im.GetByFunc(mockCtx, k, c, getter))
	ts.Equal(v, *c)
	ts.Equal(1, calls)
}

func (ts *testsuite) TestGetByFuncGetterFails() {
	fail := errors.New("boom")
	err := ts.im.GetByFunc(mockCtx, "fail", &value{}, func() (interface{}, error) {
		return nil, fail
	})
	ts.Equal(fail, err)
}

func (ts *testsuite) TestTake() {
	k := "take"
	ts.NoError(ts.im.Set(mockCtx, k, value{"once"}))

	c := &value{}
	ts.NoError(ts.im.Take(mockCtx, k, c))
	ts.Equal("once", c.Value)
	ts.Equal(ErrNotFound, ts.im.Take(mockCtx, k, c))
}
