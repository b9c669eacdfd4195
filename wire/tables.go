package wire

// Role and team names map to the ATAK plugin's enum values. Zero means
// unknown/unmapped and is never put on the wire.

var roleNumbers = map[string]int32{
	"Team Member":      1,
	"Team Lead":        2,
	"HQ":               3,
	"Sniper":           4,
	"Medic":            5,
	"Forward Observer": 6,
	"RTO":              7,
	"K9":               8,
}

var teamNumbers = map[string]int32{
	"White":      1,
	"Yellow":     2,
	"Orange":     3,
	"Magenta":    4,
	"Red":        5,
	"Maroon":     6,
	"Purple":     7,
	"Dark Blue":  8,
	"Blue":       9,
	"Cyan":       10,
	"Teal":       11,
	"Green":      12,
	"Dark Green": 13,
	"Brown":      14,
}

// RoleNumber resolves a CoT role name to its enum value. An unrecognised
// non-empty name resolves to Team Member (1); the empty string resolves
// to 0 (no role).
func RoleNumber(name string) int32 {
	if name == "" {
		return 0
	}
	if n, ok := roleNumbers[name]; ok {
		return n
	}
	return roleNumbers["Team Member"]
}

// TeamNumber resolves a CoT team name to its enum value. An unrecognised
// non-empty name resolves to Cyan (10); the empty string resolves to 0
// (no team).
func TeamNumber(name string) int32 {
	if name == "" {
		return 0
	}
	if n, ok := teamNumbers[name]; ok {
		return n
	}
	return teamNumbers["Cyan"]
}
