package metrics

import (
	"github.com/x-xyz/auctionhouse/base/log"
)

// LogClient writes every bump as a debug log, used where no metrics agent runs
type LogClient struct{}

func (lc *LogClient) log(kind, name string, value interface{}, tags []string) {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric " + kind)
}

func (lc *LogClient) Gauge(name string, value float64, tags []string, rate float64) error {
	lc.log("gauge", name, value, tags)
	return nil
}

func (lc *LogClient) Count(name string, value int64, tags []string, rate float64) error {
	lc.log("count", name, value, tags)
	return nil
}

func (lc *LogClient) Histogram(name string, value float64, tags []string, rate float64) error {
	lc.log("histogram", name, value, tags)
	return nil
}

// TimeInMilliseconds logs value in ms
func (lc *LogClient) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	lc.log("time", name, value, tags)
	return nil
}
