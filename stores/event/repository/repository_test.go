package repository

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	mockRedis "github.com/x-xyz/auctionhouse/service/redis/mocks"
)

const (
	engine   = domain.Address("0xE000000000000000000000000000000000000001")
	splitter = domain.Address("0x5000000000000000000000000000000000000002")
)

type failingSink struct {
	err error
}

func (f failingSink) Emit(ctx ctx.Ctx, event domain.Event) error {
	return f.err
}

type eventSuite struct {
	suite.Suite
	ctx ctx.Ctx
}

func TestEvents(t *testing.T) {
	suite.Run(t, new(eventSuite))
}

func (s *eventSuite) SetupTest() {
	s.ctx = ctx.Background()
}

func event(id string, name domain.EventName, emitter domain.Address) domain.Event {
	return domain.Event{ID: id, Name: name, Emitter: emitter.ToLower(), Args: []string{id}, Time: time.Now()}
}

func (s *eventSuite) TestMemoryFindAll() {
	repo := NewMemory()
	s.Require().NoError(repo.Emit(s.ctx, event("1", domain.EventAuctionCreated, engine)))
	s.Require().NoError(repo.Emit(s.ctx, event("2", domain.EventAuctionBid, engine)))
	s.Require().NoError(repo.Emit(s.ctx, event("3", domain.EventRoyaltyReceived, splitter)))
	s.Require().NoError(repo.Emit(s.ctx, event("4", domain.EventAuctionBid, engine)))

	cases := []struct {
		desc string
		opts []domain.EventFindAllOptionsFunc
		ids  []string
	}{
		{"all in order", nil, []string{"1", "2", "3", "4"}},
		{"by name", []domain.EventFindAllOptionsFunc{domain.EventWithName(domain.EventAuctionBid)}, []string{"2", "4"}},
		{"by emitter", []domain.EventFindAllOptionsFunc{domain.EventWithEmitter(splitter)}, []string{"3"}},
		{"paginated", []domain.EventFindAllOptionsFunc{domain.EventWithPagination(1, 2)}, []string{"2", "3"}},
		{"past the end", []domain.EventFindAllOptionsFunc{domain.EventWithPagination(9, 2)}, []string{}},
	}

	for _, c := range cases {
		res, err := repo.FindAll(s.ctx, c.opts...)
		s.Require().NoError(err, c.desc)
		ids := []string{}
		for _, e := range res {
			ids = append(ids, e.ID)
		}
		s.Equal(c.ids, ids, c.desc)
	}
}

func (s *eventSuite) TestFanoutKeepsGoing() {
	first, second := errors.New("first"), errors.New("second")
	repo := NewMemory()
	sink := NewFanout(failingSink{first}, repo, failingSink{second})

	err := sink.Emit(s.ctx, event("1", domain.EventPaused, engine))
	s.True(errors.Is(err, first))
	s.True(errors.Is(err, second))

	res, err := repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(res, 1)
}

func (s *eventSuite) TestPublisher() {
	r := &mockRedis.Service{}
	e := event("1", domain.EventAuctionFinish, engine)
	payload, err := json.Marshal(e)
	s.Require().NoError(err)

	r.On("Publish", mock.Anything, "auctionhouse:events", payload).Return(1, nil).Once()
	s.NoError(NewPublisher(r, "auctionhouse:events").Emit(s.ctx, e))

	fail := errors.New("conn refused")
	r.On("Publish", mock.Anything, "auctionhouse:events", payload).Return(0, fail).Once()
	s.Equal(fail, NewPublisher(r, "auctionhouse:events").Emit(s.ctx, e))
	r.AssertExpectations(s.T())
}

type countingSink struct {
	mu  sync.Mutex
	ids []string
}

func (c *countingSink) Emit(ctx ctx.Ctx, event domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, event.ID)
	return nil
}

func (c *countingSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

func (s *eventSuite) TestAsync() {
	pool := goroutines.NewPool(2)
	defer pool.Release()

	sink := &countingSink{}
	a := NewAsync(sink, pool)
	for _, id := range []string{"1", "2", "3"} {
		s.Require().NoError(a.Emit(s.ctx, event(id, domain.EventAuctionBid, engine)))
	}
	s.Eventually(func() bool { return sink.len() == 3 }, time.Second, 10*time.Millisecond)
}

func (s *eventSuite) TestAsyncSurvivesCancelledCaller() {
	pool := goroutines.NewPool(1)
	defer pool.Release()

	sink := &countingSink{}
	c, cancel := ctx.WithCancel(s.ctx)
	cancel()
	s.Require().NoError(NewAsync(sink, pool).Emit(c, event("1", domain.EventAuctionBid, engine)))
	s.Eventually(func() bool { return sink.len() == 1 }, time.Second, 10*time.Millisecond)
}
