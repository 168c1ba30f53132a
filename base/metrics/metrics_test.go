package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type metricsTestSuite struct {
	suite.Suite
}

func TestMetricsTestSuite(t *testing.T) {
	suite.Run(t, new(metricsTestSuite))
}

func (s *metricsTestSuite) TestParseTag() {
	s.Nil(parseTag(nil))
	s.Equal([]string{"a:b", "c:d"}, parseTag([]string{"a", "b", "c", "d"}))
}

func (s *metricsTestSuite) TestLogBackend() {
	m := New("test", WithBackend(BackendLog), WithoutPodName())
	s.NotPanics(func() {
		m.BumpSum("count", 1, "op", "bid")
		m.BumpAvg("avg", 2)
		m.BumpHistogram("hist", 3)
		m.BumpTime("time", "op", "bid").End()
	})
}

func (s *metricsTestSuite) TestPrometheusBackend() {
	reg := prometheus.NewRegistry()
	pm := newPromMetrics(reg)
	m := &Metrics{pkgName: "auction", backend: pm}

	m.BumpSum("payment.failed", 1, "op", "bid")
	m.BumpSum("payment.failed", 2, "op", "bid")
	m.BumpTime("bid.time").End()

	families, err := reg.Gather()
	s.Require().NoError(err)

	found := map[string]*float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				v := c.GetValue()
				found[f.GetName()] = &v
			}
			if h := metric.GetHistogram(); h != nil {
				v := float64(h.GetSampleCount())
				found[f.GetName()] = &v
			}
		}
	}
	s.Require().Contains(found, "auction_payment_failed")
	s.Equal(float64(3), *found["auction_payment_failed"])
	s.Require().Contains(found, "auction_bid_time")
	s.Equal(float64(1), *found["auction_bid_time"])
}

func (s *metricsTestSuite) TestPrometheusMismatchedLabelsRecovered() {
	m := &Metrics{pkgName: "auction", backend: newPromMetrics(prometheus.NewRegistry())}
	m.BumpSum("mismatch", 1, "op", "bid")
	// the panic from inconsistent labels is swallowed and counted
	s.NotPanics(func() {
		m.BumpSum("mismatch", 1, "other", "x")
	})
}
