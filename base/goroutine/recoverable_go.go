package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/auctionhouse/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type options struct {
	name           string
	afterRecovered func(panic interface{}, stack []byte)
}

type Option func(*options)

// WithName tags the panic log of the goroutine
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithAfterRecovered runs f with the recovered value once the panic is logged
func WithAfterRecovered(f func(panic interface{}, stack []byte)) Option {
	return func(o *options) {
		o.afterRecovered = f
	}
}

// RecoverableGo runs f in a goroutine. The returned channel yields the panic, or is closed when f returns.
func RecoverableGo(f func(), opts ...Option) <-chan *PanicEvent {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	panicChan := make(chan *PanicEvent, 1)

	go func() {
		defer func() {
			p := recover()
			if p == nil {
				close(panicChan)
				return
			}

			stack := debug.Stack()
			log.Log().WithFields(log.Fields{
				"err":   p,
				"name":  o.name,
				"stack": string(stack),
			}).Error("panic")

			if o.afterRecovered != nil {
				o.afterRecovered(p, stack)
			}
			panicChan <- &PanicEvent{p, stack}
		}()

		f()
	}()

	return panicChan
}
