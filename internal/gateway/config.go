package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/signalsfoundry/cotmesh/cot"
	"github.com/signalsfoundry/cotmesh/mesh"
)

// Transport names accepted in the config file.
const (
	TransportTCP    = "tcp"
	TransportStdout = "stdout"
)

// Config describes one gateway instance: where CoT arrives, which events
// are forwarded, and how payloads leave.
type Config struct {
	// ListenAddr is the UDP address CoT documents arrive on.
	ListenAddr string `json:"listen_addr"`

	// DetailMarker filters events: only documents containing this string
	// are forwarded. nil means the default __meshtastic marker; an
	// explicit "" forwards everything.
	DetailMarker *string `json:"detail_marker"`

	// Channel is the mesh channel index passed to the transport.
	Channel int `json:"channel"`

	// Compress asks the encoder to set the is_compressed flag.
	Compress bool `json:"compress"`

	// MaxPayloadBytes is the practical mesh payload limit; larger binary
	// payloads fall back to the compact JSON form when CompactFallback is
	// set.
	MaxPayloadBytes int  `json:"max_payload_bytes"`
	CompactFallback bool `json:"compact_fallback"`

	Transport   string `json:"transport"` // "tcp" | "stdout"
	TCPAddr     string `json:"tcp_addr"`
	SendTimeout int    `json:"send_timeout_seconds"`
}

// DefaultConfig returns the configuration a marker-filtering gateway on
// the conventional CoT UDP port would use.
func DefaultConfig() Config {
	marker := cot.MeshtasticMarker
	return Config{
		ListenAddr:      ":8087",
		DetailMarker:    &marker,
		Channel:         0,
		MaxPayloadBytes: 200,
		CompactFallback: true,
		Transport:       TransportStdout,
		SendTimeout:     10,
	}
}

// LoadConfig reads a JSON gateway config, filling unset fields with
// defaults and validating the result.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse gateway config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("gateway config: listen_addr is required")
	}
	if c.MaxPayloadBytes <= 0 {
		return fmt.Errorf("gateway config: max_payload_bytes must be positive, got %d", c.MaxPayloadBytes)
	}
	switch c.Transport {
	case TransportStdout:
	case TransportTCP:
		if c.TCPAddr == "" {
			return fmt.Errorf("gateway config: tcp transport requires tcp_addr")
		}
	default:
		return fmt.Errorf("gateway config: unknown transport %q", c.Transport)
	}
	return nil
}

// Marker resolves the effective detail marker.
func (c Config) Marker() string {
	if c.DetailMarker == nil {
		return cot.MeshtasticMarker
	}
	return *c.DetailMarker
}

// BuildSender constructs the transport named by the config. The stdout
// transport writes raw payload bytes to w.
func (c Config) BuildSender(w io.Writer) (mesh.Sender, error) {
	switch c.Transport {
	case TransportTCP:
		return &mesh.TCPSender{
			Addr:    c.TCPAddr,
			Timeout: time.Duration(c.SendTimeout) * time.Second,
		}, nil
	case TransportStdout:
		return mesh.NewWriterSender(w), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", c.Transport)
	}
}
