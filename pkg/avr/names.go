package avr

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/andyrak/onkyo-ng/pkg/eiscp"
)

// Options configures one receiver operation. Every operation opens its
// own connection and closes it before returning.
type Options struct {
	// Host is the receiver's address. Required.
	Host string

	// Port is the eISCP port. Default is 60128.
	Port int

	// Timeout bounds the reply collection window. Default is 10 seconds.
	Timeout time.Duration

	// DialTimeout bounds connection establishment. Default is 5 seconds.
	DialTimeout time.Duration

	// SendSpacing is the pause between consecutive queries. Some
	// firmware drops back-to-back messages. Default is 50ms.
	SendSpacing time.Duration

	// Ending selects the end bytes for outgoing packets.
	Ending eiscp.Ending

	// Logger for operation traces. Default is slog.Default().
	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.Port == 0 {
		o.Port = eiscp.DefaultPort
	}
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.SendSpacing == 0 {
		o.SendSpacing = 50 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

func (o Options) connConfig() eiscp.Config {
	return eiscp.Config{
		Host:        o.Host,
		Port:        o.Port,
		DialTimeout: o.DialTimeout,
		Ending:      o.Ending,
		Logger:      o.Logger,
	}
}

// QueryStatus classifies how a name query went.
type QueryStatus int

const (
	// QueryFailed: no connection, or it died before anything came back.
	QueryFailed QueryStatus = iota

	// QueryPartial: the window closed with inputs still unanswered.
	// This is the usual outcome; receivers stay silent for inputs that
	// have no custom name.
	QueryPartial

	// QueryComplete: every queried input answered before the deadline.
	QueryComplete
)

func (s QueryStatus) String() string {
	switch s {
	case QueryComplete:
		return "complete"
	case QueryPartial:
		return "partial"
	default:
		return "failed"
	}
}

// NameResult is the outcome of a custom-name query. Names holds what the
// receiver reported; the status says whether silence means "no custom
// names" or "the query never ran".
type NameResult struct {
	// Names maps each input that answered to its trimmed custom name.
	Names map[InputSource]string

	// Unanswered lists queried inputs that never replied, in catalog
	// order.
	Unanswered []InputSource

	// Status classifies the outcome.
	Status QueryStatus

	// Err is the terminal error when Status is QueryFailed, or the
	// first send or receive error of a degraded run. Nil for a clean
	// partial result.
	Err error
}

// QueryInputNames asks the receiver for the custom name of each given
// input, all of them when none are given. It never fails: connection and
// send problems are logged, absorbed, and reflected in the result's
// status, and whatever was learned is returned.
//
// Replies are correlated against the set of queried input codes, so the
// call returns as soon as every input has answered; the timeout is only
// the upper bound for receivers that stay silent.
func QueryInputNames(ctx context.Context, opts Options, sources ...InputSource) NameResult {
	opts.setDefaults()
	log := opts.Logger

	if len(sources) == 0 {
		sources = Inputs()
	}

	result := NameResult{Names: make(map[InputSource]string, len(sources))}

	conn, err := eiscp.Connect(ctx, opts.connConfig())
	if err != nil {
		log.Warn("avr: name query: connect failed", "host", opts.Host, "err", err)
		result.Status = QueryFailed
		result.Err = err
		result.Unanswered = unansweredOf(sources, result.Names)
		return result
	}
	defer conn.Close()

	pending := make(map[string]InputSource, len(sources))
	sent := 0
	for i, in := range sources {
		if _, dup := pending[in.Code()]; dup {
			continue
		}
		if i > 0 && opts.SendSpacing > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.SendSpacing):
			}
		}
		if ctx.Err() != nil {
			break
		}
		if err := conn.Send(ctx, eiscp.ZoneMain, "IRN", in.Code()); err != nil {
			log.Warn("avr: name query: send failed", "input", in.Code(), "err", err)
			if result.Err == nil {
				result.Err = err
			}
			continue
		}
		pending[in.Code()] = in
		sent++
	}

	if sent > 0 {
		collectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		for len(pending) > 0 {
			msg, err := conn.Recv(collectCtx)
			if err != nil {
				var malformed *eiscp.MalformedMessageError
				if errors.As(err, &malformed) {
					log.Debug("avr: name query: malformed reply", "err", err)
					continue
				}
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					break
				}
				log.Warn("avr: name query: receive failed", "err", err)
				if result.Err == nil {
					result.Err = err
				}
				break
			}
			if msg.Command != "IRN" {
				log.Debug("avr: name query: ignoring", "cmd", msg.Command, "value", msg.Value)
				continue
			}
			code, name, ok := parseRename(msg.Value)
			if !ok {
				log.Debug("avr: name query: unusable rename value", "value", msg.Value)
				continue
			}
			source, known := InputByCode(code)
			if !known {
				log.Debug("avr: name query: unknown input code", "code", code, "name", name)
				continue
			}
			result.Names[source] = name
			delete(pending, source.Code())
		}
	}

	result.Unanswered = unansweredOf(sources, result.Names)

	switch {
	case sent == 0 && len(result.Names) == 0:
		result.Status = QueryFailed
		if result.Err == nil {
			result.Err = ctx.Err()
		}
	case len(result.Unanswered) == 0:
		result.Status = QueryComplete
	default:
		result.Status = QueryPartial
	}
	return result
}

// unansweredOf lists the queried sources that produced no name, deduped,
// in query order.
func unansweredOf(sources []InputSource, names map[InputSource]string) []InputSource {
	var out []InputSource
	seen := make(map[string]bool, len(sources))
	for _, in := range sources {
		if seen[in.Code()] {
			continue
		}
		seen[in.Code()] = true
		if _, ok := names[in]; !ok {
			out = append(out, in)
		}
	}
	return out
}

// parseRename splits an IRN value into its input code and trimmed custom
// name. Values shorter than a code and names that trim to nothing are
// unusable.
func parseRename(value string) (string, string, bool) {
	if len(value) < 2 {
		return "", "", false
	}
	code := strings.ToUpper(value[:2])
	name := strings.TrimSpace(value[2:])
	if name == "" {
		return "", "", false
	}
	return code, name, true
}

// ParseRenameValue splits a raw IRN value into its input code and
// trimmed custom name, reporting whether the value was usable. Exposed
// for diagnostic tooling; QueryInputNames applies the same rules.
func ParseRenameValue(value string) (code, name string, ok bool) {
	return parseRename(value)
}

// DisplayNames returns the effective display name of every input in the
// catalog: the factory default, overridden by the receiver's custom name
// where one exists. The map is always complete and the call never fails;
// the returned NameResult reports how the underlying query went.
func DisplayNames(ctx context.Context, opts Options) (map[InputSource]string, NameResult) {
	names := make(map[InputSource]string, len(inputs))
	for _, in := range Inputs() {
		names[in] = in.Default()
	}

	result := QueryInputNames(ctx, opts)
	for in, name := range result.Names {
		names[in] = name
	}
	return names, result
}
