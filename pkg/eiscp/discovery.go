package eiscp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// Device is one receiver found by Discover.
type Device struct {
	// Model as reported, e.g. "TX-NR676E".
	Model string

	// Host is the source address the reply came from.
	Host string

	// Port is the eISCP port the receiver listens on.
	Port int

	// Region is the destination area code: "DX" North America, "XX"
	// Europe and Asia, "JJ" Japan.
	Region string

	// MAC is the identifier used to recognize a receiver across
	// address changes.
	MAC string
}

// DiscoverConfig is the configuration for a discovery scan.
type DiscoverConfig struct {
	// BroadcastAddr is the scan destination. Default is the limited
	// broadcast address 255.255.255.255.
	BroadcastAddr string

	// Port is the eISCP UDP port. Default is 60128.
	Port int

	// Wait is how long to collect replies. Default is 2 seconds.
	Wait time.Duration

	// Logger for scan traces. Default is slog.Default().
	Logger *slog.Logger
}

func (c *DiscoverConfig) setDefaults() {
	if c.BroadcastAddr == "" {
		c.BroadcastAddr = "255.255.255.255"
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Wait == 0 {
		c.Wait = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Discover broadcasts an ECN query and collects receiver replies until
// the wait window closes. The query goes out once per end-byte variant
// since firmware only answers the framing it expects. Replies are
// deduplicated by MAC.
func Discover(ctx context.Context, config DiscoverConfig) ([]Device, error) {
	config.setDefaults()
	log := config.Logger

	pc, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("eiscp: discover: %w", err)
	}
	defer pc.Close()

	ip := net.ParseIP(config.BroadcastAddr)
	if ip == nil {
		return nil, fmt.Errorf("eiscp: discover: bad broadcast address %q", config.BroadcastAddr)
	}
	dst := &net.UDPAddr{IP: ip, Port: config.Port}

	query := string(startCharacter) + string(UnitBroadcast) + "ECN" + QueryValue
	for _, ending := range Endings() {
		if _, err := pc.WriteTo(Encode(query, ending), dst); err != nil {
			return nil, fmt.Errorf("eiscp: discover: send: %w", err)
		}
	}

	deadline := time.Now().Add(config.Wait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var devices []Device
	seen := make(map[string]bool)
	buf := make([]byte, 1024)

	for {
		select {
		case <-ctx.Done():
			return devices, nil
		default:
		}
		if !time.Now().Before(deadline) {
			return devices, nil
		}

		// Short read deadline so context cancellation stays responsive.
		step := time.Now().Add(100 * time.Millisecond)
		if step.After(deadline) {
			step = deadline
		}
		pc.SetReadDeadline(step)

		n, src, err := pc.ReadFrom(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return devices, fmt.Errorf("eiscp: discover: read: %w", err)
		}

		payload, err := ReadPacket(bufio.NewReader(bytes.NewReader(buf[:n])))
		if err != nil {
			log.Debug("eiscp: discover: bad packet", "from", src.String(), "err", err)
			continue
		}
		msg, err := ParseMessage(payload)
		if err != nil || msg.Command != "ECN" || msg.Unit != UnitReceiver {
			continue
		}

		dev, err := parseDeviceInfo(msg.Value)
		if err != nil {
			log.Debug("eiscp: discover: bad reply", "from", src.String(), "err", err)
			continue
		}
		if host, _, err := net.SplitHostPort(src.String()); err == nil {
			dev.Host = host
		} else {
			dev.Host = src.String()
		}

		if seen[dev.MAC] {
			continue
		}
		seen[dev.MAC] = true
		devices = append(devices, dev)
		log.Debug("eiscp: discovered", "model", dev.Model, "host", dev.Host, "mac", dev.MAC)
	}
}

// parseDeviceInfo splits an ECN reply value, "model/port/region/mac".
// The model field may itself contain slashes, so the fixed fields are
// taken from the right.
func parseDeviceInfo(value string) (Device, error) {
	parts := strings.Split(strings.TrimSpace(value), "/")
	if len(parts) < 4 {
		return Device{}, fmt.Errorf("eiscp: short device info %q", value)
	}
	n := len(parts)
	port, err := strconv.Atoi(parts[n-3])
	if err != nil {
		return Device{}, fmt.Errorf("eiscp: bad port in device info %q", value)
	}
	return Device{
		Model:  strings.Join(parts[:n-3], "/"),
		Port:   port,
		Region: parts[n-2],
		MAC:    strings.ToUpper(parts[n-1]),
	}, nil
}
