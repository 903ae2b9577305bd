package eiscp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPort is the eISCP TCP and UDP port.
const DefaultPort = 60128

// recvPollInterval bounds how long a blocked read can outlive its
// context. Matches the discovery scan step.
const recvPollInterval = 100 * time.Millisecond

// Config is the configuration for a receiver connection.
type Config struct {
	// Host is the receiver's address. Required.
	Host string

	// Port is the eISCP port. Default is 60128.
	Port int

	// DialTimeout is the timeout for establishing the connection.
	// Default is 5 seconds.
	DialTimeout time.Duration

	// Ending is the end-byte sequence for outgoing packets.
	// Default is EndingCRLF.
	Ending Ending

	// Logger for protocol traces. Default is slog.Default().
	Logger *slog.Logger
}

// setDefaults sets default values for the config.
func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Conn is a connection to one receiver. It owns the socket exclusively
// and releases it on every exit path; Close is idempotent. One sender
// and one receiver goroutine may use it concurrently.
type Conn struct {
	config  Config
	conn    net.Conn
	reader  *bufio.Reader
	mu      sync.Mutex // protects writes
	readMu  sync.Mutex // protects reads
	running atomic.Bool
	log     *slog.Logger
}

// Connect establishes a TCP connection to a receiver.
func Connect(ctx context.Context, config Config) (*Conn, error) {
	config.setDefaults()
	if config.Host == "" {
		return nil, ErrNoHost
	}
	if config.Port < 1 || config.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, config.Port)
	}

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))

	dialCtx, cancel := context.WithTimeout(ctx, config.DialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("eiscp: dial %s: %w", addr, err)
	}

	c := &Conn{
		config: config,
		conn:   conn,
		reader: bufio.NewReader(conn),
		log:    config.Logger,
	}
	c.running.Store(true)

	c.log.Debug("eiscp: connected", "addr", addr)
	return c, nil
}

// Send resolves the command in the zone and writes one query or control
// message. The value is sent verbatim; use QueryValue to read a property.
func (c *Conn) Send(ctx context.Context, zone Zone, command, value string) error {
	code, err := ResolveCommand(zone, command)
	if err != nil {
		return err
	}
	return c.SendRaw(ctx, string(startCharacter)+string(UnitReceiver)+code+value)
}

// SendRaw writes a pre-built ISCP message, e.g. "!1PWRQSTN". The message
// is validated before framing.
func (c *Conn) SendRaw(ctx context.Context, message string) error {
	if !c.running.Load() {
		return ErrClosed
	}
	if _, err := ParseMessage(message); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	packet := Encode(message, c.config.Ending)

	c.mu.Lock()
	_, err := c.conn.Write(packet)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("eiscp: send: %w", err)
	}
	c.log.Debug("eiscp: sent", "msg", message)
	return nil
}

// Recv returns the next message from the receiver. It blocks until a
// message arrives or the context is canceled. A payload that fails
// validation is returned as a MalformedMessageError; the stream stays
// usable and the caller may keep receiving.
func (c *Conn) Recv(ctx context.Context) (Message, error) {
	if !c.running.Load() {
		return Message{}, ErrClosed
	}

	for {
		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		default:
		}

		// Poll in short steps so a cancel-only context can still
		// interrupt a blocked read at the next loop turn.
		step := time.Now().Add(recvPollInterval)
		if deadline, ok := ctx.Deadline(); ok && deadline.Before(step) {
			step = deadline
		}
		c.conn.SetReadDeadline(step)

		c.readMu.Lock()
		payload, err := ReadPacket(c.reader)
		c.readMu.Unlock()
		if err != nil {
			c.conn.SetReadDeadline(time.Time{})
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if !c.running.Load() {
				return Message{}, ErrClosed
			}
			return Message{}, err
		}
		c.conn.SetReadDeadline(time.Time{})

		msg, err := ParseMessage(payload)
		if err != nil {
			return Message{}, err
		}
		c.log.Debug("eiscp: received", "msg", msg.String())
		return msg, nil
	}
}

// RecvTimeout receives a message with a timeout. Returns ErrRecvTimeout
// when the window closes without one.
func (c *Conn) RecvTimeout(ctx context.Context, timeout time.Duration) (Message, error) {
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := c.Recv(rctx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return Message{}, ErrRecvTimeout
	}
	return msg, err
}

// Close closes the connection.
func (c *Conn) Close() error {
	if !c.running.Swap(false) {
		return nil // Already closed
	}
	c.log.Debug("eiscp: closed", "addr", c.conn.RemoteAddr())
	return c.conn.Close()
}

// IsRunning returns true until Close is called.
func (c *Conn) IsRunning() bool {
	return c.running.Load()
}

// RemoteAddr returns the receiver's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
