package cot

import "testing"

func TestExtractFullDocument(t *testing.T) {
	doc := `<event version="2.0" uid="ANDROID-123" type="a-f-G-U-C">
		<point lat="34.05" lon="-118.25" hae="100" ce="9.9" le="5"/>
		<detail>
			<contact callsign="VIPER"/>
			<__group role="Sniper" name="Red"/>
			<status battery="85"/>
			<track speed="12.4" course="270"/>
			<remarks>Need resupply</remarks>
			<dest callsign="ALPHA1"/>
		</detail>
	</event>`

	f := Extract(doc)

	if f.UID != "ANDROID-123" || f.Type != "a-f-G-U-C" {
		t.Fatalf("event attrs = %q/%q", f.UID, f.Type)
	}
	if f.Callsign != "VIPER" {
		t.Fatalf("callsign = %q", f.Callsign)
	}
	if !f.HasGroup || f.Role != "Sniper" || f.Team != "Red" {
		t.Fatalf("group = %v %q/%q", f.HasGroup, f.Role, f.Team)
	}
	if f.Battery == nil || *f.Battery != 85 {
		t.Fatalf("battery = %v", f.Battery)
	}
	if !f.HasPoint || f.Lat != 34.05 || f.Lon != -118.25 {
		t.Fatalf("point = %v %v/%v", f.HasPoint, f.Lat, f.Lon)
	}
	if f.Altitude == nil || *f.Altitude != 100 {
		t.Fatalf("altitude = %v, want 100 (hae preferred over le)", f.Altitude)
	}
	if f.Speed == nil || *f.Speed != 12 {
		t.Fatalf("speed = %v, want 12 (truncated)", f.Speed)
	}
	if f.Course == nil || *f.Course != 270 {
		t.Fatalf("course = %v", f.Course)
	}
	if f.ChatText != "Need resupply" {
		t.Fatalf("chat text = %q", f.ChatText)
	}
	if f.ChatToCallsign != "ALPHA1" {
		t.Fatalf("chat recipient callsign = %q", f.ChatToCallsign)
	}
	if f.ChatToUID != "" {
		t.Fatalf("chat recipient UID should never be populated, got %q", f.ChatToUID)
	}
	if f.DeviceCallsign != "" {
		t.Fatalf("device callsign should never be populated, got %q", f.DeviceCallsign)
	}
}

func TestExtractDegradesOnGarbage(t *testing.T) {
	for _, doc := range []string{
		"",
		"not xml at all",
		"<event><point lat=",
		"<event><unclosed></event",
		"\x00\x01\x02",
	} {
		f := Extract(doc)
		if f != (Fields{}) {
			t.Fatalf("Extract(%q) = %+v, want zero Fields", doc, f)
		}
	}
}

func TestExtractPointDefaults(t *testing.T) {
	f := Extract(`<event><detail><status battery="85"/></detail></event>`)
	if f.HasPoint {
		t.Fatalf("HasPoint = true without a point element")
	}
	if f.Lat != 0 || f.Lon != 0 {
		t.Fatalf("lat/lon = %v/%v, want 0/0", f.Lat, f.Lon)
	}
	if f.Battery == nil || *f.Battery != 85 {
		t.Fatalf("battery = %v", f.Battery)
	}
}

func TestExtractNonNumericCoordinates(t *testing.T) {
	f := Extract(`<event><point lat="oops" lon="-118.25"/></event>`)
	if f.Lat != 0 {
		t.Fatalf("non-numeric lat = %v, want 0", f.Lat)
	}
	if f.Lon != -118.25 {
		t.Fatalf("lon should parse independently, got %v", f.Lon)
	}
}

func TestExtractAltitudeFallsBackToLE(t *testing.T) {
	f := Extract(`<event><point lat="1" lon="2" le="40"/></event>`)
	if f.Altitude == nil || *f.Altitude != 40 {
		t.Fatalf("altitude = %v, want le fallback 40", f.Altitude)
	}

	f = Extract(`<event><point lat="1" lon="2" hae="junk" le="junk"/></event>`)
	if f.Altitude != nil {
		t.Fatalf("altitude = %v, want absent when neither parses", f.Altitude)
	}
}

func TestExtractBatteryNonNumericIsAbsent(t *testing.T) {
	f := Extract(`<event><status battery="low"/></event>`)
	if f.Battery != nil {
		t.Fatalf("battery = %v, want absent, not zero", f.Battery)
	}
}

func TestExtractGroupDefaults(t *testing.T) {
	f := Extract(`<event><__group/></event>`)
	if !f.HasGroup {
		t.Fatalf("HasGroup = false")
	}
	if f.Role != DefaultRole || f.Team != DefaultTeam {
		t.Fatalf("defaults = %q/%q, want %q/%q", f.Role, f.Team, DefaultRole, DefaultTeam)
	}

	f = Extract(`<event><point lat="1" lon="2"/></event>`)
	if f.HasGroup || f.Role != "" || f.Team != "" {
		t.Fatalf("no group element should leave group empty, got %v %q/%q", f.HasGroup, f.Role, f.Team)
	}
}

func TestExtractRemarksEmptyIsNoChat(t *testing.T) {
	f := Extract(`<event><remarks></remarks></event>`)
	if f.ChatText != "" {
		t.Fatalf("empty remarks produced chat %q", f.ChatText)
	}
	f = Extract(`<event><remarks/></event>`)
	if f.ChatText != "" {
		t.Fatalf("self-closed remarks produced chat %q", f.ChatText)
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	f := Extract(`<event>
		<status battery="10"/>
		<detail><status battery="99"/></detail>
	</event>`)
	if f.Battery == nil || *f.Battery != 10 {
		t.Fatalf("battery = %v, want first status in document order", f.Battery)
	}
}

func TestHasMarker(t *testing.T) {
	doc := `<event><detail><__meshtastic/></detail></event>`
	if !HasMarker(doc, MeshtasticMarker) {
		t.Fatalf("marker not found in %q", doc)
	}
	if HasMarker(`<event/>`, MeshtasticMarker) {
		t.Fatalf("marker found where absent")
	}
	if !HasMarker(`<event/>`, "") {
		t.Fatalf("empty marker should match everything")
	}
}
