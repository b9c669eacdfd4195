package wire

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/cotmesh/cot"
	"github.com/signalsfoundry/cotmesh/internal/logging"
)

// Top-level field numbers. Emission order in the buffer is exactly
// field-number order; receivers depend on it.
const (
	fieldCompressed = 1
	fieldContact    = 2
	fieldGroup      = 3
	fieldStatus     = 4
	fieldPLI        = 5
	fieldChat       = 6
)

// Encoder turns a cot.Fields record into the plugin wire format. The zero
// Encoder is ready to use and logs nowhere; set Log to capture encode
// diagnostics.
type Encoder struct {
	Log logging.Logger
}

// Encode builds the full payload. It never fails: an unexpected internal
// error is logged and degrades to the minimal fallback payload, a PLI
// record at (0,0) with no other sub-records. When compress is false the
// is_compressed field is omitted entirely.
//
// A PLI sub-record is always emitted, even a degenerate (0,0) one. The
// other sub-records appear only when their fields are present, in strictly
// increasing field-number order.
func (e *Encoder) Encode(f cot.Fields, compress bool) (out []byte) {
	defer func() {
		if r := recover(); r != nil {
			e.log().Error(context.Background(), "wire encode failed, sending fallback PLI",
				logging.String("panic", fmt.Sprint(r)))
			out = FallbackPayload()
		}
	}()

	var b []byte
	if compress {
		b = appendVarintField(b, fieldCompressed, 1)
	}
	if f.Callsign != "" {
		b = appendBytesField(b, fieldContact, encodeContact(f))
	}
	if f.HasGroup {
		if sub := encodeGroup(f); len(sub) > 0 {
			b = appendBytesField(b, fieldGroup, sub)
		}
	}
	if f.Battery != nil {
		b = appendBytesField(b, fieldStatus, appendVarintField(nil, 1, uint64(int64(*f.Battery))))
	}
	b = appendBytesField(b, fieldPLI, encodePLI(f))
	if f.ChatText != "" {
		b = appendBytesField(b, fieldChat, encodeChat(f))
	}
	return b
}

// FallbackPayload is the minimal wire message: a PLI sub-record at (0,0)
// and nothing else. It is what Encode degrades to on internal failure.
func FallbackPayload() []byte {
	return appendBytesField(nil, fieldPLI, encodePLI(cot.Fields{}))
}

// contact: 1=callsign, 2=device callsign (optional).
func encodeContact(f cot.Fields) []byte {
	b := appendStringField(nil, 1, f.Callsign)
	if f.DeviceCallsign != "" {
		b = appendStringField(b, 2, f.DeviceCallsign)
	}
	return b
}

// group: 1=role enum, 2=team enum; a field resolving to 0 is omitted.
func encodeGroup(f cot.Fields) []byte {
	var b []byte
	if r := RoleNumber(f.Role); r != 0 {
		b = appendVarintField(b, 1, uint64(r))
	}
	if t := TeamNumber(f.Team); t != 0 {
		b = appendVarintField(b, 2, uint64(t))
	}
	return b
}

// pli: 1=lat fixed32, 2=lon fixed32, 3=altitude (only when non-zero;
// a true altitude of 0 is therefore indistinguishable on the wire from no
// altitude at all, which receivers expect), 4=speed (>0), 5=course (>0).
func encodePLI(f cot.Fields) []byte {
	b := appendFixed32Field(nil, 1, degreesE7(f.Lat))
	b = appendFixed32Field(b, 2, degreesE7(f.Lon))
	if f.Altitude != nil && *f.Altitude != 0 {
		b = appendVarintField(b, 3, uint64(int64(*f.Altitude)))
	}
	if f.Speed != nil && *f.Speed > 0 {
		b = appendVarintField(b, 4, uint64(*f.Speed))
	}
	if f.Course != nil && *f.Course > 0 {
		b = appendVarintField(b, 5, uint64(*f.Course))
	}
	return b
}

// chat: 1=message text, 2=recipient UID (optional; extraction never
// populates it), 3=recipient callsign (optional).
func encodeChat(f cot.Fields) []byte {
	b := appendStringField(nil, 1, f.ChatText)
	if f.ChatToUID != "" {
		b = appendStringField(b, 2, f.ChatToUID)
	}
	if f.ChatToCallsign != "" {
		b = appendStringField(b, 3, f.ChatToCallsign)
	}
	return b
}

// degreesE7 converts a coordinate to the fixed-point angle encoding:
// degrees times 1e7, truncated toward zero. Float-to-int conversion is
// unspecified out of range in Go, so values beyond int32 clamp and NaN
// maps to 0.
func degreesE7(deg float64) int32 {
	v := deg * 1e7
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

func (e *Encoder) log() logging.Logger {
	if e == nil || e.Log == nil {
		return logging.Noop()
	}
	return e.Log
}
