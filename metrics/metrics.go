package metrics

import (
	"fmt"

	"github.com/penglongli/gin-metrics/ginmetrics"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "metrics")

const (
	discoveryMetricsName  = "revoker_discovery_total"
	revocationMetricsName = "revoker_revocations_total"
	revokedMetricsName    = "revoker_revoked_tokens_total"
)

// Outcome labels.
const (
	OK           = "ok"
	Empty        = "empty"
	AccessDenied = "access_denied"
	Failed       = "failed"
)

// Init metrics
func Init() error {
	counters := []*ginmetrics.Metric{
		{
			Type:        ginmetrics.Counter,
			Name:        discoveryMetricsName,
			Description: "Delegated token searches by outcome",
			Labels:      []string{"outcome"},
		},
		{
			Type:        ginmetrics.Counter,
			Name:        revocationMetricsName,
			Description: "Revocation transactions by outcome",
			Labels:      []string{"outcome"},
		},
		{
			Type:        ginmetrics.Counter,
			Name:        revokedMetricsName,
			Description: "Delegations revoked in confirmed transactions",
			Labels:      []string{},
		},
	}
	for _, counter := range counters {
		if err := ginmetrics.GetMonitor().AddMetric(counter); err != nil {
			log.Error(fmt.Sprintf("Error adding metric: %s", err))
			return err
		}
	}
	return nil
}

// Recorder receives workflow outcomes.
type Recorder interface {
	Discovery(outcome string)
	Revocation(outcome string, revoked int)
}

// Prometheus records outcomes in the gin-metrics registry. Init must have been called.
type Prometheus struct{}

func (Prometheus) Discovery(outcome string) {
	inc(discoveryMetricsName, outcome)
}

func (Prometheus) Revocation(outcome string, revoked int) {
	inc(revocationMetricsName, outcome)
	if revoked > 0 {
		metric := ginmetrics.GetMonitor().GetMetric(revokedMetricsName)
		if err := metric.Add([]string{}, float64(revoked)); err != nil {
			log.Error(fmt.Sprintf("Error adding to metric: %s", err))
		}
	}
}

func inc(name, outcome string) {
	err := ginmetrics.GetMonitor().GetMetric(name).Inc([]string{outcome})
	if err != nil {
		log.Error(fmt.Sprintf("Error incrementing metric: %s", err))
	}
}

// Nop discards outcomes.
type Nop struct{}

func (Nop) Discovery(string)       {}
func (Nop) Revocation(string, int) {}
