// Package gateway runs the interceptor service: it listens for CoT XML on
// UDP, filters for mesh-flagged events, translates each one to the plugin
// wire format, and hands the payload to the mesh transport.
package gateway

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/signalsfoundry/cotmesh/compact"
	"github.com/signalsfoundry/cotmesh/cot"
	"github.com/signalsfoundry/cotmesh/internal/logging"
	"github.com/signalsfoundry/cotmesh/internal/observability"
	"github.com/signalsfoundry/cotmesh/mesh"
	"github.com/signalsfoundry/cotmesh/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/cotmesh/internal/gateway"

// Service is one running gateway instance. Construct with NewService;
// Run blocks until the context is cancelled.
type Service struct {
	cfg     Config
	sender  mesh.Sender
	log     logging.Logger
	metrics *observability.Collector
	enc     wire.Encoder
	tracer  trace.Tracer
}

// NewService wires a gateway from its collaborators. log and metrics may
// be nil.
func NewService(cfg Config, sender mesh.Sender, log logging.Logger, metrics *observability.Collector) *Service {
	if log == nil {
		log = logging.Noop()
	}
	return &Service{
		cfg:     cfg,
		sender:  sender,
		log:     log,
		metrics: metrics,
		enc:     wire.Encoder{Log: log},
		tracer:  otel.Tracer(tracerName),
	}
}

// Run listens on the configured UDP address and processes incoming CoT
// documents until ctx is cancelled. Datagram boundaries are not trusted:
// events are reassembled from the byte stream by their <event>…</event>
// envelope, so senders may fragment or batch freely.
func (s *Service) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	s.log.Info(ctx, "gateway listening",
		logging.String("addr", s.cfg.ListenAddr),
		logging.String("marker", s.cfg.Marker()),
		logging.String("transport", s.cfg.Transport),
	)

	var pending string
	buf := make([]byte, 64*1024)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read datagram: %w", err)
		}
		if n == 0 {
			continue
		}

		pending += string(buf[:n])
		var events []string
		events, pending = splitEvents(pending)
		for _, ev := range events {
			s.Process(ctx, ev)
		}
	}
}

// Process runs one CoT document through the filter → extract → encode →
// send pipeline. It never returns an error: a bad document degrades per
// the codec's fallback rules, and a failed send is counted and logged.
func (s *Service) Process(ctx context.Context, doc string) {
	ctx, id := logging.EnsureMessageID(ctx)
	ctx, span := s.tracer.Start(ctx, "gateway.Process")
	defer span.End()
	span.SetAttributes(attribute.String("cotmesh.message_id", id))

	log := s.log.With(logging.String("message_id", id))
	s.metrics.ObserveReceived()

	if marker := s.cfg.Marker(); !cot.HasMarker(doc, marker) {
		s.metrics.ObserveOutcome(observability.OutcomeSkipped)
		span.SetAttributes(attribute.Bool("cotmesh.skipped", true))
		log.Debug(ctx, "event lacks detail marker, skipping", logging.String("marker", marker))
		return
	}

	fields := cot.Extract(doc)
	payload := s.enc.Encode(fields, s.cfg.Compress)

	if len(payload) > s.cfg.MaxPayloadBytes && s.cfg.CompactFallback {
		log.Info(ctx, "payload over mesh limit, using compact form",
			logging.Int("binary_bytes", len(payload)),
			logging.Int("limit", s.cfg.MaxPayloadBytes),
		)
		payload = compact.FromFields(fields)
		s.metrics.ObserveCompactFallback()
		span.SetAttributes(attribute.Bool("cotmesh.compact", true))
	}

	s.metrics.ObservePayload(len(payload))
	span.SetAttributes(attribute.Int("cotmesh.payload_bytes", len(payload)))

	if err := s.sender.Send(ctx, payload, s.cfg.Channel); err != nil {
		s.metrics.ObserveOutcome(observability.OutcomeFailed)
		log.Warn(ctx, "mesh send failed", logging.Err(err), logging.Int("channel", s.cfg.Channel))
		return
	}
	s.metrics.ObserveOutcome(observability.OutcomeSent)
	log.Debug(ctx, "forwarded to mesh",
		logging.Int("payload_bytes", len(payload)),
		logging.Int("channel", s.cfg.Channel),
	)
}

// splitEvents peels complete <event>…</event> documents off the front of
// buf, returning them along with the unconsumed remainder. Bytes before
// the first <event are noise (partial envelopes, stray whitespace) and are
// dropped with the consumed prefix.
func splitEvents(buf string) (events []string, rest string) {
	const openTag, closeTag = "<event", "</event>"
	for {
		start := strings.Index(buf, openTag)
		if start < 0 {
			// Nothing openable; keep a tail in case "<eve" is mid-flight.
			if len(buf) > len(openTag) {
				buf = buf[len(buf)-len(openTag):]
			}
			return events, buf
		}
		end := strings.Index(buf[start:], closeTag)
		if end < 0 {
			return events, buf[start:]
		}
		end += start + len(closeTag)
		events = append(events, buf[start:end])
		buf = buf[end:]
	}
}
