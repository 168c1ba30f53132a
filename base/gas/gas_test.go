package gas

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

type gasTestSuite struct {
	suite.Suite
}

func TestGasTestSuite(t *testing.T) {
	suite.Run(t, new(gasTestSuite))
}

func (s *gasTestSuite) TestCharge() {
	cases := []struct {
		name      string
		limit     uint64
		charges   []uint64
		err       error
		remaining uint64
	}{
		{
			name:      "within limit",
			limit:     5000,
			charges:   []uint64{CostCall, CostEvent},
			remaining: 5000 - CostCall - CostEvent,
		},
		{
			name:      "exact limit",
			limit:     CostEvent,
			charges:   []uint64{CostEvent},
			remaining: 0,
		},
		{
			name:      "stipend cannot afford a call",
			limit:     DefaultStipend,
			charges:   []uint64{CostCall},
			err:       ErrOutOfGas,
			remaining: DefaultStipend,
		},
		{
			name:      "unlimited",
			limit:     Unlimited,
			charges:   []uint64{CostCall, CostCall, CostCall},
			remaining: Unlimited,
		},
	}

	for _, c := range cases {
		m := NewMeter(c.limit)
		var err error
		for _, n := range c.charges {
			if err = m.Charge(n); err != nil {
				break
			}
		}
		s.Equal(c.err, err, c.name)
		s.Equal(c.remaining, m.Remaining(), c.name)
	}
}

func (s *gasTestSuite) TestCtx() {
	bg := ctx.Background()
	s.Nil(MeterFrom(bg))
	s.NoError(Charge(bg, CostCall))
	s.Equal(Unlimited, Remaining(bg))

	c := WithMeter(bg, NewMeter(DefaultStipend))
	s.NotNil(MeterFrom(c))
	s.NoError(Charge(c, CostEvent))
	s.Equal(DefaultStipend-CostEvent, Remaining(c))
	s.Equal(ErrOutOfGas, Charge(c, CostCall))
	s.Equal(CostEvent, MeterFrom(c).Used())
}
