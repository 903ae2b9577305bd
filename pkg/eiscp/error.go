package eiscp

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrClosed is returned when operating on a closed connection.
	ErrClosed = errors.New("eiscp: connection closed")

	// ErrRecvTimeout is returned when no message arrives in time.
	ErrRecvTimeout = errors.New("eiscp: receive timeout")

	// ErrInvalidConfig is returned when the connection config is unusable.
	ErrInvalidConfig = errors.New("eiscp: invalid config")

	// ErrNoHost is returned when the config has no host.
	ErrNoHost = errors.New("eiscp: no host configured")
)

// FramingError is returned when a packet header is malformed.
type FramingError struct {
	Field string // "magic", "header size", "data size", "version"
	Value uint32
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("eiscp: bad packet %s: 0x%08X", e.Field, e.Value)
}

// MalformedMessageError is returned when a payload does not parse as an
// ISCP message.
type MalformedMessageError struct {
	Payload string
	Reason  string
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("eiscp: malformed message %q: %s", e.Payload, e.Reason)
}

// UnknownCommandError is returned when a friendly command name cannot be
// resolved for the requested zone.
type UnknownCommandError struct {
	Zone Zone
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("eiscp: unknown command %q in zone %s", e.Name, e.Zone)
}
