package metrics

import (
	"testing"

	"github.com/penglongli/gin-metrics/ginmetrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndRecord(t *testing.T) {
	require.NoError(t, Init())
	assert.Error(t, Init(), "metrics can only be registered once")

	for _, name := range []string{discoveryMetricsName, revocationMetricsName, revokedMetricsName} {
		assert.Equal(t, ginmetrics.Counter, ginmetrics.GetMonitor().GetMetric(name).Type)
	}

	var r Recorder = Prometheus{}
	assert.NotPanics(t, func() {
		r.Discovery(OK)
		r.Discovery(AccessDenied)
		r.Revocation(OK, 2)
		r.Revocation(Failed, 0)
	})
}
