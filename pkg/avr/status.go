package avr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andyrak/onkyo-ng/pkg/eiscp"
)

// Status is a snapshot of the main zone.
type Status struct {
	// Power is true when the receiver reports system power on.
	Power bool

	// Volume is the master volume as the receiver counts it, usually
	// 0..100 but model-dependent.
	Volume int

	// Muted is true when audio muting is engaged.
	Muted bool

	// Input is the catalog entry for the active selector, zero when the
	// reported code is not in the catalog.
	Input InputSource

	// InputCode is the raw selector code as reported.
	InputCode string

	// Missing lists the command codes that never answered before the
	// window closed.
	Missing []string
}

var statusCommands = []string{"PWR", "MVL", "AMT", "SLI"}

// QueryStatusSnapshot queries power, volume, muting, and the active
// input in one pass. Unlike the name query this returns a hard error
// when the receiver cannot be reached; with a reachable receiver,
// unanswered properties land in Status.Missing.
func QueryStatusSnapshot(ctx context.Context, opts Options) (Status, error) {
	opts.setDefaults()
	log := opts.Logger

	conn, err := eiscp.Connect(ctx, opts.connConfig())
	if err != nil {
		return Status{}, err
	}
	defer conn.Close()

	pending := make(map[string]bool, len(statusCommands))
	for i, code := range statusCommands {
		if i > 0 && opts.SendSpacing > 0 {
			select {
			case <-ctx.Done():
				return Status{}, ctx.Err()
			case <-time.After(opts.SendSpacing):
			}
		}
		if err := conn.Send(ctx, eiscp.ZoneMain, code, eiscp.QueryValue); err != nil {
			return Status{}, fmt.Errorf("avr: status query %s: %w", code, err)
		}
		pending[code] = true
	}

	var status Status
	collectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	for len(pending) > 0 {
		msg, err := conn.Recv(collectCtx)
		if err != nil {
			var malformed *eiscp.MalformedMessageError
			if errors.As(err, &malformed) {
				log.Debug("avr: status query: malformed reply", "err", err)
				continue
			}
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break
			}
			return Status{}, err
		}
		if !pending[msg.Command] {
			log.Debug("avr: status query: ignoring", "cmd", msg.Command)
			continue
		}

		switch msg.Command {
		case "PWR":
			status.Power = msg.Value == "01"
		case "AMT":
			status.Muted = msg.Value == "01"
		case "MVL":
			level, err := strconv.ParseUint(strings.TrimSpace(msg.Value), 16, 16)
			if err != nil {
				log.Debug("avr: status query: odd volume value", "value", msg.Value)
			} else {
				status.Volume = int(level)
			}
		case "SLI":
			status.InputCode = strings.ToUpper(strings.TrimSpace(msg.Value))
			status.Input, _ = InputByCode(status.InputCode)
		}
		delete(pending, msg.Command)
	}

	for code := range pending {
		status.Missing = append(status.Missing, code)
	}
	sort.Strings(status.Missing)
	return status, nil
}
