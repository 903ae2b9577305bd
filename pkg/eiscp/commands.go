package eiscp

import (
	"fmt"
	"strings"
)

// Zone is a command namespace. The wire prefix is always "!1" for a
// receiver; zones differ in which 3-character codes they use, so the
// zone matters only when resolving friendly names.
type Zone string

const (
	ZoneMain Zone = "main"
	Zone2    Zone = "zone2"
	Zone3    Zone = "zone3"
	Zone4    Zone = "zone4"
)

// QueryValue asks the receiver to report a property's current state.
const QueryValue = "QSTN"

type commandDef struct {
	code    string
	name    string
	aliases []string
}

// Per-zone command catalog. Codes outside the catalog still travel fine
// through Send; the catalog exists for friendly-name resolution and for
// labeling received traffic.
var zoneCommands = map[Zone][]commandDef{
	ZoneMain: {
		{code: "PWR", name: "system-power"},
		{code: "AMT", name: "audio-muting"},
		{code: "MVL", name: "master-volume"},
		{code: "SLI", name: "input-selector"},
		// Both rename spellings are one wire command. The long form is a
		// legacy alias, not a second query.
		{code: "IRN", name: "input-selector-rename", aliases: []string{"input-selector-rename-input-function-rename"}},
		{code: "DIM", name: "dimmer-level"},
		{code: "TUN", name: "tuning"},
		{code: "NRI", name: "receiver-information"},
		{code: "ECN", name: "discovery"},
	},
	Zone2: {
		{code: "ZPW", name: "power"},
		{code: "ZMT", name: "muting"},
		{code: "ZVL", name: "volume"},
		{code: "SLZ", name: "selector"},
	},
	Zone3: {
		{code: "PW3", name: "power"},
		{code: "MT3", name: "muting"},
		{code: "VL3", name: "volume"},
		{code: "SL3", name: "selector"},
	},
	Zone4: {
		{code: "PW4", name: "power"},
		{code: "MT4", name: "muting"},
		{code: "VL4", name: "volume"},
		{code: "SL4", name: "selector"},
	},
}

var (
	nameToCode map[Zone]map[string]string
	codeToName map[Zone]map[string]string
)

func init() {
	nameToCode = make(map[Zone]map[string]string, len(zoneCommands))
	codeToName = make(map[Zone]map[string]string, len(zoneCommands))
	for zone, defs := range zoneCommands {
		names := make(map[string]string)
		codes := make(map[string]string)
		for _, def := range defs {
			names[def.name] = def.code
			for _, alias := range def.aliases {
				names[alias] = def.code
			}
			codes[def.code] = def.name
		}
		nameToCode[zone] = names
		codeToName[zone] = codes
	}
}

// Zones returns the known zones, main first.
func Zones() []Zone {
	return []Zone{ZoneMain, Zone2, Zone3, Zone4}
}

// ParseZone parses a zone spelling ("main", "zone2", ...).
func ParseZone(s string) (Zone, error) {
	z := Zone(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := zoneCommands[z]; !ok {
		return "", fmt.Errorf("eiscp: unknown zone %q", s)
	}
	return z, nil
}

// ResolveCommand turns a command spelling into its 3-character code.
// A shape-valid raw code passes through unchanged so callers can drive
// commands the catalog does not know; anything else is looked up as a
// friendly name in the zone, case-insensitively.
func ResolveCommand(zone Zone, name string) (string, error) {
	s := strings.TrimSpace(name)
	if isCommandCode(s) {
		return strings.ToUpper(s), nil
	}
	names, ok := nameToCode[zone]
	if !ok {
		return "", &UnknownCommandError{Zone: zone, Name: name}
	}
	if code, ok := names[strings.ToLower(s)]; ok {
		return code, nil
	}
	return "", &UnknownCommandError{Zone: zone, Name: name}
}

// CommandName returns the zone's friendly name for a code, or "" when
// the catalog does not know it.
func CommandName(zone Zone, code string) string {
	if codes, ok := codeToName[zone]; ok {
		return codes[strings.ToUpper(code)]
	}
	return ""
}

func isCommandCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
