// Package compact renders the legacy degraded-mode message: a small JSON
// object carrying only the essential CoT fields, truncated to fit tight
// mesh payload limits. It is the fallback the surrounding system may
// choose when the binary payload is too large for the link.
package compact

import (
	"encoding/json"
	"math"

	"github.com/signalsfoundry/cotmesh/cot"
)

// Truncation limits, matching the original sender.
const (
	maxUIDLen      = 20
	maxTypeLen     = 10
	maxCallsignLen = 15
)

// Marker identifies the compact format; receivers key on it.
const Marker = "1"

type message struct {
	Cot      string   `json:"cot"`
	UID      string   `json:"u,omitempty"`
	Type     string   `json:"t,omitempty"`
	Lat      *float64 `json:"la,omitempty"`
	Lon      *float64 `json:"lo,omitempty"`
	Callsign string   `json:"c,omitempty"`
	Err      string   `json:"err,omitempty"`
}

// ParseError is the payload emitted when a document yields nothing usable.
var ParseError = []byte(`{"cot":"1","err":"parse"}`)

// FromFields renders the compact form of an extracted field set.
// Coordinates are rounded to five decimals and included only when a point
// element was actually present.
func FromFields(f cot.Fields) []byte {
	m := message{
		Cot:      Marker,
		UID:      truncate(f.UID, maxUIDLen),
		Type:     truncate(f.Type, maxTypeLen),
		Callsign: truncate(f.Callsign, maxCallsignLen),
	}
	if f.HasPoint {
		lat := round5(f.Lat)
		lon := round5(f.Lon)
		m.Lat = &lat
		m.Lon = &lon
	}
	if m.UID == "" && m.Type == "" && m.Callsign == "" && !f.HasPoint {
		return ParseError
	}

	out, err := json.Marshal(m)
	if err != nil {
		return ParseError
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func round5(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*1e5) / 1e5
}
