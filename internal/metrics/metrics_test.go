package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	assert.Same(t, first.WebhooksReceived, second.WebhooksReceived)
	assert.Same(t, first.JobTriggers, second.JobTriggers)
}

func TestObserve(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveWebhook("PackageAddedWebHookEventPayloadV1")
	m.ObserveWebhook("")
	m.ObserveTrigger(nil)
	m.ObserveTrigger(errors.New("boom"))
	m.ObserveTrigger(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhooksReceived.WithLabelValues("PackageAddedWebHookEventPayloadV1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhooksReceived.WithLabelValues(UnknownPayloadType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobTriggers.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobTriggers.WithLabelValues(ResultFailure)))
}

func TestObserve_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveWebhook("x")
		m.ObserveTrigger(nil)
	})
}
