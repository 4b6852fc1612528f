package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	// UnknownPayloadType labels bodies whose discriminator is missing or
	// unrecognised, keeping the label set bounded
	UnknownPayloadType = "unknown"
)

// Metrics holds the service collectors
type Metrics struct {
	WebhooksReceived *prometheus.CounterVec
	JobTriggers      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A collector that
// is already registered is reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}

	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netcore_jenkins_webhooks_received_total",
		Help: "Webhook POSTs received, by payload type",
	}, []string{"payload_type"})

	existing, err := register(reg, received)
	if err != nil {
		return nil, fmt.Errorf("failed to register webhooks_received metric: %w", err)
	}
	m.WebhooksReceived = existing

	triggers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netcore_jenkins_job_triggers_total",
		Help: "Jenkins build requests, by result",
	}, []string{"result"})

	existing, err = register(reg, triggers)
	if err != nil {
		return nil, fmt.Errorf("failed to register job_triggers metric: %w", err)
	}
	m.JobTriggers = existing

	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

// ObserveWebhook counts one received webhook
func (m *Metrics) ObserveWebhook(payloadType string) {
	if m == nil {
		return
	}
	if payloadType == "" {
		payloadType = UnknownPayloadType
	}
	m.WebhooksReceived.WithLabelValues(payloadType).Inc()
}

// ObserveTrigger counts one finished build request
func (m *Metrics) ObserveTrigger(err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.JobTriggers.WithLabelValues(result).Inc()
}
