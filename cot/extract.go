package cot

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"
)

// MeshtasticMarker is the detail key the upstream TAK interceptor uses to
// flag events destined for the mesh network.
const MeshtasticMarker = "__meshtastic"

// HasMarker reports whether the raw document mentions the given detail
// marker. A plain substring check matches the upstream interceptor's
// behaviour; it deliberately does not require well-formed XML.
func HasMarker(doc, marker string) bool {
	return marker == "" || strings.Contains(doc, marker)
}

// Extract pulls the translator's field set out of a CoT document. It is
// total over any input string: an unparseable document yields the zero
// Fields, and a field whose value fails to parse is absent without
// affecting the others.
//
// Elements are looked up by descendant search in document order; the first
// element with a matching name wins regardless of where it sits in the
// tree.
func Extract(doc string) Fields {
	var f Fields
	seen := make(map[string]bool, 8)

	dec := xml.NewDecoder(strings.NewReader(doc))

	// Depth of the first remarks element while its text is being
	// accumulated; 0 when not inside one.
	remarksDepth := 0
	var remarksText strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed document: degrade to the all-default record
			// rather than keeping a half-read one.
			return Fields{}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if remarksDepth > 0 {
				remarksDepth++
				continue
			}
			name := t.Name.Local
			if seen[name] {
				continue
			}
			seen[name] = true
			switch name {
			case "event":
				f.UID = attr(t, "uid")
				f.Type = attr(t, "type")
			case "contact":
				f.Callsign = attr(t, "callsign")
			case "__group":
				f.HasGroup = true
				f.Role = attrDefault(t, "role", DefaultRole)
				f.Team = attrDefault(t, "name", DefaultTeam)
			case "status":
				f.Battery = intAttr(t, "battery")
			case "point":
				f.HasPoint = true
				f.Lat = floatAttr(t, "lat")
				f.Lon = floatAttr(t, "lon")
				f.Altitude = intAttr(t, "hae")
				if f.Altitude == nil {
					f.Altitude = intAttr(t, "le")
				}
			case "track":
				f.Speed = intAttr(t, "speed")
				f.Course = intAttr(t, "course")
			case "remarks":
				remarksDepth = 1
			case "dest":
				f.ChatToCallsign = attr(t, "callsign")
			}
		case xml.EndElement:
			if remarksDepth > 0 {
				remarksDepth--
				if remarksDepth == 0 {
					f.ChatText = remarksText.String()
				}
			}
		case xml.CharData:
			if remarksDepth > 0 {
				remarksText.Write(t)
			}
		}
	}

	if remarksDepth > 0 {
		// Document ended inside remarks without a syntax error from the
		// decoder; treat the text as never completed.
		f.ChatText = ""
	}

	if !f.HasGroup {
		f.Role = ""
		f.Team = ""
	}
	return f
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrDefault(e xml.StartElement, name, def string) string {
	if v := attr(e, name); v != "" {
		return v
	}
	return def
}

// floatAttr parses a float attribute, defaulting to 0 when the attribute
// is missing or not numeric.
func floatAttr(e xml.StartElement, name string) float64 {
	v, err := strconv.ParseFloat(attr(e, name), 64)
	if err != nil {
		return 0
	}
	return v
}

// intAttr parses an integer-valued attribute. CoT writes these as decimal
// strings ("85", sometimes "85.0"), so it parses as float and truncates.
// Missing, non-numeric, or absurdly out-of-range values are absent, never
// zero.
func intAttr(e xml.StartElement, name string) *int {
	v, err := strconv.ParseFloat(attr(e, name), 64)
	if err != nil || math.IsNaN(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return nil
	}
	n := int(v)
	return &n
}
