// Package cot extracts a fixed set of fields from Cursor-on-Target (CoT)
// XML documents. Extraction is best-effort: any element or attribute may be
// missing or malformed, and each field degrades independently.
package cot

// Default group attributes applied when a __group element is present but
// does not name them.
const (
	DefaultRole = "Team Member"
	DefaultTeam = "Cyan"
)

// Fields is the loosely-typed record produced by Extract. Every field is
// independently optional; string fields use "" for absent, integer fields
// use a nil pointer so that zero stays distinguishable from absent.
type Fields struct {
	// Event attributes, used by the compact fallback format.
	UID  string
	Type string

	// Contact. DeviceCallsign has a wire slot but no CoT source element;
	// Extract never sets it.
	Callsign       string
	DeviceCallsign string

	// Group. HasGroup reports whether a __group element was seen; Role and
	// Team carry DefaultRole/DefaultTeam when the element omits them.
	HasGroup bool
	Role     string
	Team     string

	// Status.
	Battery *int

	// Point. Lat and Lon are always read together and default to 0,0 when
	// the point element is absent or malformed. HasPoint records whether a
	// point element was actually seen. Altitude prefers the hae attribute
	// and falls back to le; nil when neither parses.
	HasPoint bool
	Lat      float64
	Lon      float64
	Altitude *int

	// Track.
	Speed  *int
	Course *int

	// GeoChat. ChatToUID has a wire slot but no CoT source element is ever
	// consulted for it; Extract never sets it.
	ChatText       string
	ChatToUID      string
	ChatToCallsign string
}
