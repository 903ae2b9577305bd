package avr

import "strings"

// InputSource is one selectable input: its 2-character selector code and
// the factory display name shown before any rename. Values come from the
// catalog; codes a receiver reports outside it stay plain strings.
type InputSource struct {
	code string
	name string
}

// Code returns the 2-character selector code, e.g. "01".
func (s InputSource) Code() string { return s.code }

// Default returns the factory display name, e.g. "CBL/SAT".
func (s InputSource) Default() string { return s.name }

func (s InputSource) String() string { return s.code }

// IsZero reports whether s is the zero value rather than a catalog entry.
func (s InputSource) IsZero() bool { return s.code == "" }

// The input selector catalog. Codes are SLI values; not every receiver
// exposes every input.
var inputs = []InputSource{
	{"00", "VCR/DVR"},
	{"01", "CBL/SAT"},
	{"02", "GAME"},
	{"03", "AUX"},
	{"04", "GAME2"},
	{"05", "PC"},
	{"10", "BD/DVD"},
	{"11", "STRM BOX"},
	{"12", "TV"},
	{"20", "TAPE"},
	{"21", "TAPE2"},
	{"22", "PHONO"},
	{"23", "CD"},
	{"24", "FM"},
	{"25", "AM"},
	{"26", "TUNER"},
	{"27", "MUSIC SERVER"},
	{"28", "INTERNET RADIO"},
	{"29", "USB"},
	{"2A", "USB REAR"},
	{"2B", "NET"},
	{"2C", "USB TOGGLE"},
	{"2D", "AIRPLAY"},
	{"2E", "BLUETOOTH"},
	{"2F", "USB DAC"},
	{"30", "MULTI CH"},
	{"31", "XM"},
	{"32", "SIRIUS"},
	{"33", "DAB"},
	{"40", "UNIVERSAL PORT"},
	{"80", "MAIN SOURCE"},
}

var inputsByCode = func() map[string]InputSource {
	m := make(map[string]InputSource, len(inputs))
	for _, in := range inputs {
		m[in.code] = in
	}
	return m
}()

// Inputs returns the catalog in code order.
func Inputs() []InputSource {
	out := make([]InputSource, len(inputs))
	copy(out, inputs)
	return out
}

// InputByCode looks up a selector code, case-insensitively.
func InputByCode(code string) (InputSource, bool) {
	in, ok := inputsByCode[strings.ToUpper(strings.TrimSpace(code))]
	return in, ok
}
