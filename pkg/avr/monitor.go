package avr

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/andyrak/onkyo-ng/pkg/eiscp"
)

// Event is one message observed on the receiver's status stream.
type Event struct {
	// Time the message arrived.
	Time time.Time

	// Command is the 3-character code.
	Command string

	// Name is the main-zone friendly name, or the code when unknown.
	Name string

	// Value is the raw message value.
	Value string

	// Pretty is a human rendering for well-known commands, empty
	// otherwise.
	Pretty string
}

// Events connects to the receiver and yields every message it pushes
// until the context ends or the stream drops. Receivers broadcast state
// changes to all connected controllers, so the stream carries volume
// turns, input switches, and renames as they happen.
func Events(ctx context.Context, opts Options) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		opts.setDefaults()

		conn, err := eiscp.Connect(ctx, opts.connConfig())
		if err != nil {
			yield(Event{}, err)
			return
		}
		defer conn.Close()

		for {
			msg, err := conn.Recv(ctx)
			if err != nil {
				var malformed *eiscp.MalformedMessageError
				if errors.As(err, &malformed) {
					opts.Logger.Debug("avr: monitor: malformed message", "err", err)
					continue
				}
				if ctx.Err() != nil {
					return
				}
				yield(Event{}, err)
				return
			}
			if !yield(eventFrom(msg), nil) {
				return
			}
		}
	}
}

func eventFrom(msg eiscp.Message) Event {
	return Event{
		Time:    time.Now(),
		Command: msg.Command,
		Name:    msg.Friendly(eiscp.ZoneMain),
		Value:   msg.Value,
		Pretty:  prettyValue(msg),
	}
}

// prettyValue renders well-known main zone messages for display.
func prettyValue(msg eiscp.Message) string {
	switch msg.Command {
	case "PWR":
		if msg.Value == "01" {
			return "power on"
		}
		return "power off"
	case "AMT":
		if msg.Value == "01" {
			return "muting on"
		}
		return "muting off"
	case "MVL":
		var level uint64
		if _, err := fmt.Sscanf(msg.Value, "%X", &level); err == nil {
			return fmt.Sprintf("volume %d", level)
		}
	case "SLI":
		if in, ok := InputByCode(msg.Value); ok {
			return fmt.Sprintf("input %s (%s)", in.Code(), in.Default())
		}
	case "IRN":
		if code, name, ok := parseRename(msg.Value); ok {
			return fmt.Sprintf("input %s renamed %q", code, name)
		}
	}
	return ""
}
