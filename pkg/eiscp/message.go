package eiscp

// Unit type characters. Every ISCP message names the device category it
// addresses; receivers are unit '1'. The 'x' unit appears only in
// discovery broadcasts sent by a controller.
const (
	UnitReceiver   = '1'
	UnitBroadcast  = 'x'
	startCharacter = '!'
)

// Message is one decoded ISCP message. Validation happens here, at the
// protocol boundary; code above this package switches on Command and
// never re-parses raw payload strings.
type Message struct {
	// Unit is the unit type character, UnitReceiver for receiver traffic.
	Unit byte

	// Command is the 3-character command code, e.g. "PWR" or "IRN".
	Command string

	// Value is everything after the command with end bytes stripped.
	// Interior and trailing spaces are preserved; value semantics belong
	// to the command.
	Value string
}

// ParseMessage decodes a framed payload into a Message.
func ParseMessage(payload string) (Message, error) {
	if len(payload) < 5 {
		return Message{}, &MalformedMessageError{Payload: payload, Reason: "too short"}
	}
	if payload[0] != startCharacter {
		return Message{}, &MalformedMessageError{Payload: payload, Reason: "missing start character"}
	}
	unit := payload[1]
	if unit != UnitReceiver && unit != UnitBroadcast {
		return Message{}, &MalformedMessageError{Payload: payload, Reason: "unknown unit type"}
	}
	cmd := payload[2:5]
	for i := 0; i < len(cmd); i++ {
		c := cmd[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return Message{}, &MalformedMessageError{Payload: payload, Reason: "bad command code"}
		}
	}
	return Message{Unit: unit, Command: cmd, Value: payload[5:]}, nil
}

// String renders the canonical wire text, e.g. "!1PWR01".
func (m Message) String() string {
	return string(startCharacter) + string(m.Unit) + m.Command + m.Value
}

// Friendly returns the command's human name in the given zone, or the raw
// code when the catalog does not know it.
func (m Message) Friendly(zone Zone) string {
	if name := CommandName(zone, m.Command); name != "" {
		return name
	}
	return m.Command
}
