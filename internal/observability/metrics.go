package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Send outcomes recorded on mesh_messages_total.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Collector bundles the gateway's Prometheus metrics: how many CoT
// documents arrived, what happened to each on the mesh side, how often the
// compact fallback kicked in, and how large the payloads were.
type Collector struct {
	gatherer prometheus.Gatherer

	CotMessages      prometheus.Counter
	MeshMessages     *prometheus.CounterVec
	CompactFallbacks prometheus.Counter
	PayloadBytes     prometheus.Histogram
}

// NewCollector registers the gateway metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	cotMessages, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cot_messages_total",
		Help: "Total number of CoT documents received by the gateway.",
	}), "cot_messages_total")
	if err != nil {
		return nil, err
	}

	meshMessages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mesh_messages_total",
		Help: "CoT documents by mesh outcome: sent, failed, or skipped by the detail-marker filter.",
	}, []string{"outcome"})
	meshMessages, err = registerCounterVec(reg, meshMessages, "mesh_messages_total")
	if err != nil {
		return nil, err
	}

	fallbacks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compact_fallbacks_total",
		Help: "Payloads that exceeded the mesh limit and were sent in the compact JSON form instead.",
	}), "compact_fallbacks_total")
	if err != nil {
		return nil, err
	}

	payloadBytes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mesh_payload_bytes",
		Help:    "Size of payloads handed to the mesh transport.",
		Buckets: []float64{8, 16, 32, 64, 128, 200, 256, 512, 1024},
	})
	payloadBytes, err = registerHistogram(reg, payloadBytes, "mesh_payload_bytes")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		CotMessages:      cotMessages,
		MeshMessages:     meshMessages,
		CompactFallbacks: fallbacks,
		PayloadBytes:     payloadBytes,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveReceived records an incoming CoT document.
func (c *Collector) ObserveReceived() {
	if c == nil || c.CotMessages == nil {
		return
	}
	c.CotMessages.Inc()
}

// ObserveOutcome records the mesh-side fate of a document.
func (c *Collector) ObserveOutcome(outcome string) {
	if c == nil || c.MeshMessages == nil {
		return
	}
	c.MeshMessages.WithLabelValues(outcome).Inc()
}

// ObservePayload records the size of a payload handed to the transport.
func (c *Collector) ObservePayload(size int) {
	if c == nil || c.PayloadBytes == nil {
		return
	}
	c.PayloadBytes.Observe(float64(size))
}

// ObserveCompactFallback records one use of the degraded-mode format.
func (c *Collector) ObserveCompactFallback() {
	if c == nil || c.CompactFallbacks == nil {
		return
	}
	c.CompactFallbacks.Inc()
}

func registerCounter(reg prometheus.Registerer, ctr prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(ctr); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return ctr, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
