package ctx

import (
	"context"
	"time"

	"github.com/google/uuid"

	log "github.com/x-xyz/auctionhouse/base/log"
)

const keyCallID = "callID"

type Ctx struct {
	context.Context
	log.Logger
}

func Background() Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  log.Log(),
	}
}

func Todo() Ctx {
	return Ctx{
		Context: context.TODO(),
		Logger:  log.Log(),
	}
}

func WithValue(parent Ctx, key string, val interface{}) Ctx {
	return Ctx{
		Context: context.WithValue(parent, key, val),
		Logger:  parent.Logger.WithField(key, val),
	}
}

func WithValues(parent Ctx, kvs map[string]interface{}) Ctx {
	c := parent
	for k, v := range kvs {
		c = WithValue(c, k, v)
	}
	return c
}

// WithContext swaps the underlying context and keeps the logger.
// Used for values that must not end up in log fields.
func WithContext(parent Ctx, c context.Context) Ctx {
	return Ctx{
		Context: c,
		Logger:  parent.Logger,
	}
}

// WithCallID tags the context with a fresh call id unless one is already set.
func WithCallID(parent Ctx) Ctx {
	if id := CallID(parent); id != "" {
		return parent
	}
	return WithValue(parent, keyCallID, uuid.NewString())
}

// CallID returns the call id set by WithCallID
func CallID(c Ctx) string {
	if c.Context == nil {
		return ""
	}
	id, _ := c.Value(keyCallID).(string)
	return id
}

func WithCancel(parent Ctx) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}

func WithTimeout(parent Ctx, timeout time.Duration) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}
