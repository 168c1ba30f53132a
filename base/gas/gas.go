// Package gas meters the work a callee may do while it holds control during a value transfer.
//
// A meter travels in the ctx. Code that runs on behalf of an untrusted receiver charges the meter
// before it does anything observable; a ctx without a meter is unmetered.
package gas

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

const (
	// Unlimited disables metering for a callee
	Unlimited uint64 = math.MaxUint64

	// DefaultStipend is what a bounded push forwards to the receiver
	DefaultStipend uint64 = 2300

	// CostCall is charged when entering the network or any component entry point
	CostCall uint64 = 2600

	// CostEvent is charged per emitted event
	CostEvent uint64 = 1500
)

var ErrOutOfGas = errors.New("out of gas")

type meterKey struct{}

// Meter counts consumed gas against a limit
type Meter struct {
	mu    sync.Mutex
	limit uint64
	used  uint64
}

func NewMeter(limit uint64) *Meter {
	return &Meter{limit: limit}
}

// Charge consumes n. The meter is left untouched when n exceeds what is left.
func (m *Meter) Charge(n uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit == Unlimited {
		return nil
	}
	if n > m.limit-m.used {
		return ErrOutOfGas
	}
	m.used += n
	return nil
}

func (m *Meter) Remaining() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit == Unlimited {
		return Unlimited
	}
	return m.limit - m.used
}

func (m *Meter) Used() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

// WithMeter returns a ctx carrying m. The meter is kept out of the log fields.
func WithMeter(parent ctx.Ctx, m *Meter) ctx.Ctx {
	return ctx.WithContext(parent, context.WithValue(parent.Context, meterKey{}, m))
}

// MeterFrom returns the meter carried by c, or nil
func MeterFrom(c ctx.Ctx) *Meter {
	if c.Context == nil {
		return nil
	}
	m, _ := c.Value(meterKey{}).(*Meter)
	return m
}

// Charge consumes n from the meter in c
func Charge(c ctx.Ctx, n uint64) error {
	if m := MeterFrom(c); m != nil {
		return m.Charge(n)
	}
	return nil
}

// Remaining reports what is left in c, Unlimited when c is unmetered
func Remaining(c ctx.Ctx) uint64 {
	if m := MeterFrom(c); m != nil {
		return m.Remaining()
	}
	return Unlimited
}
