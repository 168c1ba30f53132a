package goroutine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverableGo(t *testing.T) {
	res := []string{}

	ev := <-RecoverableGo(
		func() {
			res = append(res, "run task")
			panic("boom")
		},
		WithName("task"),
		WithAfterRecovered(func(p interface{}, stack []byte) {
			res = append(res, "after recovered", p.(string))
		}),
	)

	assert.Equal(t, []string{"run task", "after recovered", "boom"}, res)
	assert.Equal(t, "boom", ev.Panic)
	assert.NotEmpty(t, ev.Stack)
}

func TestRecoverableGoWithoutPanic(t *testing.T) {
	done := false
	ev, ok := <-RecoverableGo(func() { done = true }, WithName("noop"))
	assert.True(t, done)
	assert.False(t, ok)
	assert.Nil(t, ev)
}
