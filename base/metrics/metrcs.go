/*Package metrics wraps datadog-go and prometheus to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Warning: *.warn
*/
package metrics

import (
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/auctionhouse/base/env"
)

const (
	// TagValueNA is used for tags whose values are not available.
	TagValueNA = "n/a"

	BackendLog        = "log"
	BackendDatadog    = "datadog"
	BackendPrometheus = "prometheus"
)

// Ender provides interface for BumpHistogram
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// backend is what a Metrics pushes to once sampling decided to keep a bump
type backend interface {
	BumpAvg(key string, val, sampleRate float64, tags ...string)
	BumpSum(key string, val, sampleRate float64, tags ...string)
	BumpHistogram(key string, val, sampleRate float64, tags ...string)
	BumpTime(key string, sampleRate float64, tags ...string) Ender
}

// Option is functional parameter for metrics option
type Option func(*opt)

// opt is struct of metrics options
type opt struct {
	// withPodName means send metrics with pod name or not
	// default: true
	withPodName bool
	backend     string
}

// WithoutPodName means the metrics sent by the Service will not contain pod name
// Pod name produces a lot of custom metrics. If it is unnecessary to group metrics by pod name, using it to disable pod name tag
func WithoutPodName() Option {
	return func(o *opt) {
		o.withPodName = false
	}
}

// WithBackend overrides the `metrics.backend` config
func WithBackend(name string) Option {
	return func(o *opt) {
		o.backend = name
	}
}

// New creates a metric client with package name as prefix
func New(pkgName string, options ...Option) Service {
	o := opt{
		withPodName: true,
		backend:     viper.GetString("metrics.backend"),
	}
	for _, option := range options {
		option(&o)
	}

	tags := []string{
		// using host removes all tags associated with host
		// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
		"host:", // remove unused host tag
		"env:" + viper.GetString("env_name"),
		"app:" + viper.GetString("app_name"),
	}
	if o.withPodName {
		tags = append(tags, "pod:"+env.PodName())
	}

	var b backend
	switch o.backend {
	case BackendDatadog:
		b = newDDMetrics(tags)
	case BackendPrometheus:
		b = defaultPromMetrics()
	default:
		b = newLogMetrics(tags)
	}

	return &Metrics{
		pkgName: pkgName,
		backend: b,
	}
}

// Metrics samples bumps and forwards them to a backend
type Metrics struct {
	pkgName string
	backend backend
}

// sampleRate returns the pkg's metrics firing rate.
// sampleRate can range from 0 to 1, and 1 means always send the metrics.
func (mt *Metrics) sampleRate() float64 {
	if rate := viper.GetFloat64("metrics.sampleRate." + mt.pkgName); rate > 0 && rate <= 1 {
		return rate
	}
	return 1.0
}

// bumpSumPanic handles panics for all metrics vendor.
// inconsistent tagging.
func (mt *Metrics) bumpSumPanic(key, tag string) {
	mt.backend.BumpSum(key, 1, 1, "tag", tag)
}

// bumpLatency records each bump's latency with only 0.0001 sampling rate
func (mt *Metrics) bumpLatency(typ string, start time.Time, sampleRate float64) {
	if rand.Float64() < float64(0.0001)*sampleRate {
		mt.backend.BumpHistogram("bump.latency", float64(time.Since(start)/time.Millisecond), 1, "name", mt.pkgName, "type", typ)
	}
}

func (mt *Metrics) recoverPanic(typ, key string, tags []string) {
	if err := recover(); err != nil {
		mt.bumpSumPanic(typ+".panic", mt.pkgName+`.`+key+"#"+strings.Join(tags, "#"))
	}
}

// BumpAvg bumps the average for the given key.
func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	defer mt.recoverPanic("bumpavg", key, tags)

	sampleRate := mt.sampleRate()
	defer mt.bumpLatency("bumpavg", time.Now(), sampleRate)

	mt.backend.BumpAvg(mt.pkgName+`.`+key, val, sampleRate, tags...)
}

// BumpSum bumps the sum for the given key.
func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	defer mt.recoverPanic("bumpsum", key, tags)

	sampleRate := mt.sampleRate()
	defer mt.bumpLatency("bumpsum", time.Now(), sampleRate)

	mt.backend.BumpSum(mt.pkgName+`.`+key, val, sampleRate, tags...)
}

// BumpHistogram bumps the histogram for the given key.
func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	defer mt.recoverPanic("bumphistogram", key, tags)

	sampleRate := mt.sampleRate()
	defer mt.bumpLatency("bumphistogram", time.Now(), sampleRate)

	mt.backend.BumpHistogram(mt.pkgName+`.`+key, val, sampleRate, tags...)
}

// BumpTime is a special version of BumpHistogram which is specialized for
// timers. Calling it starts the timer, and it returns a value on which End()
// can be called to indicate finishing the timer. A convenient way of
// recording the duration of a function is calling it like such at the top of
// the function:
//
//     defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	sampleRate := mt.sampleRate()
	end := mt.backend.BumpTime(mt.pkgName+`.`+key, sampleRate, tags...)

	return &timeTracker{
		end:         end,
		sampleRate:  sampleRate,
		bumpLatency: mt.bumpLatency,
		panicHandler: func() {
			mt.bumpSumPanic("bumptime.panic", mt.pkgName+`.`+key+"#"+strings.Join(tags, "#"))
		},
	}
}

type timeTracker struct {
	end          Ender
	sampleRate   float64
	bumpLatency  func(string, time.Time, float64)
	panicHandler func()
}

func (t *timeTracker) End() {
	defer func() {
		if err := recover(); err != nil {
			t.panicHandler()
		}
	}()

	defer t.bumpLatency("bumptime", time.Now(), t.sampleRate)

	t.end.End()
}
