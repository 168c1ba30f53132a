package metrics

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promOnce    sync.Once
	promDefault *promMetrics
)

func defaultPromMetrics() *promMetrics {
	promOnce.Do(func() {
		promDefault = newPromMetrics(prometheus.DefaultRegisterer)
	})
	return promDefault
}

// Handler serves the default prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// promMetrics maps bumps onto lazily registered vectors. Label names of a key are fixed by its
// first bump; a later bump with other tag keys panics and is counted by Metrics.
type promMetrics struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	gauges     map[string]*prometheus.GaugeVec
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	return &promMetrics{
		reg:        reg,
		gauges:     map[string]*prometheus.GaugeVec{},
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}
}

var promNameReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", ":", "_")

func promName(key string) string {
	return promNameReplacer.Replace(key)
}

// promLabels splits key/value tags into sorted label names and a label set
func promLabels(tags []string) ([]string, prometheus.Labels) {
	if len(tags)%2 != 0 {
		panic("tag length needs to be multiple of 2")
	}
	labels := prometheus.Labels{}
	names := make([]string, 0, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		name := promName(tags[i])
		if _, ok := labels[name]; !ok {
			names = append(names, name)
		}
		labels[name] = tags[i+1]
	}
	sort.Strings(names)
	return names, labels
}

func (pm *promMetrics) register(c prometheus.Collector) prometheus.Collector {
	if err := pm.reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func (pm *promMetrics) gauge(key string, names []string) *prometheus.GaugeVec {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if g, ok := pm.gauges[key]; ok {
		return g
	}
	g := pm.register(prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: promName(key)}, names)).(*prometheus.GaugeVec)
	pm.gauges[key] = g
	return g
}

func (pm *promMetrics) counter(key string, names []string) *prometheus.CounterVec {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if c, ok := pm.counters[key]; ok {
		return c
	}
	c := pm.register(prometheus.NewCounterVec(prometheus.CounterOpts{Name: promName(key)}, names)).(*prometheus.CounterVec)
	pm.counters[key] = c
	return c
}

func (pm *promMetrics) histogram(key string, names []string) *prometheus.HistogramVec {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if h, ok := pm.histograms[key]; ok {
		return h
	}
	h := pm.register(prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: promName(key)}, names)).(*prometheus.HistogramVec)
	pm.histograms[key] = h
	return h
}

func (pm *promMetrics) BumpAvg(key string, val, sampleRate float64, tags ...string) {
	names, labels := promLabels(tags)
	pm.gauge(key, names).With(labels).Set(val)
}

func (pm *promMetrics) BumpSum(key string, val, sampleRate float64, tags ...string) {
	names, labels := promLabels(tags)
	pm.counter(key, names).With(labels).Add(val)
}

func (pm *promMetrics) BumpHistogram(key string, val, sampleRate float64, tags ...string) {
	names, labels := promLabels(tags)
	pm.histogram(key, names).With(labels).Observe(val)
}

func (pm *promMetrics) BumpTime(key string, sampleRate float64, tags ...string) Ender {
	names, labels := promLabels(tags)
	return &promTimeTracker{
		start:    time.Now(),
		observer: pm.histogram(key, names).With(labels),
	}
}

type promTimeTracker struct {
	start    time.Time
	observer prometheus.Observer
}

func (t *promTimeTracker) End() {
	t.observer.Observe(float64(time.Since(t.start)) / float64(time.Millisecond))
}
