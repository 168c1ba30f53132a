package usecase

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	"github.com/x-xyz/auctionhouse/stores/event/repository"
)

const (
	engine = domain.Address("0xE000000000000000000000000000000000000001")
	admin  = domain.Address("0xAD00000000000000000000000000000000000002")
	minter = domain.Address("0x3000000000000000000000000000000000000003")
	alice  = domain.Address("0xa000000000000000000000000000000000000004")
)

type accessSuite struct {
	suite.Suite
	ctx    ctx.Ctx
	events domain.EventRepo
	im     access.Control
}

func TestAccess(t *testing.T) {
	suite.Run(t, new(accessSuite))
}

func (s *accessSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.events = repository.NewMemory()
	s.im = New(&Config{
		Address: engine,
		Admins:  []domain.Address{admin},
		Minters: []domain.Address{minter},
		Sink:    s.events,
	})
}

func (s *accessSuite) TestRoles() {
	s.True(s.im.HasRole(s.ctx, admin.ToLower(), access.RoleAdmin))
	s.True(s.im.HasRole(s.ctx, minter, access.RoleMinter))
	s.False(s.im.HasRole(s.ctx, alice, access.RoleAdmin))

	s.ErrorIs(s.im.Grant(s.ctx, alice, alice, access.RoleAdmin), domain.ErrNotAuthorized)
	s.Require().NoError(s.im.Grant(s.ctx, admin, alice, access.RoleMinter))
	s.True(s.im.HasRole(s.ctx, alice, access.RoleMinter))
	s.Equal([]domain.Address{minter.ToLower(), alice.ToLower()}, s.im.Members(s.ctx, access.RoleMinter))

	s.Require().NoError(s.im.Revoke(s.ctx, admin, alice, access.RoleMinter))
	s.False(s.im.HasRole(s.ctx, alice, access.RoleMinter))

	s.ErrorIs(s.im.Grant(s.ctx, admin, alice, access.Role("OWNER")), domain.ErrBadParamInput)
}

func (s *accessSuite) TestPause() {
	s.False(s.im.Paused(s.ctx))

	s.ErrorIs(s.im.Pause(s.ctx, alice), domain.ErrNotAdmin)
	s.ErrorIs(s.im.Unpause(s.ctx, admin), domain.ErrNotPaused)

	s.Require().NoError(s.im.Pause(s.ctx, admin))
	s.True(s.im.Paused(s.ctx))
	s.ErrorIs(s.im.Pause(s.ctx, admin), domain.ErrPaused)

	s.Require().NoError(s.im.Unpause(s.ctx, admin))
	s.False(s.im.Paused(s.ctx))

	events, err := s.events.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(domain.EventPaused, events[0].Name)
	s.Equal([]string{admin.ToLowerStr()}, events[0].Args)
	s.Equal(engine.ToLower(), events[0].Emitter)
	s.Equal(domain.EventUnpaused, events[1].Name)
}
