package cli

import (
	"fmt"
	"strings"
)

// FormatDuration formats milliseconds to human readable string
func FormatDuration(ms int) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := float64(ms) / 1000
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs = secs - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatVolume renders a master-volume level with its wire form, e.g.
// 46 -> "46% (2E)". Receivers report volume as two hex digits.
func FormatVolume(level int) string {
	return fmt.Sprintf("%d%% (%02X)", level, level)
}

// FormatMAC renders a bare 12-digit device identifier with colons, e.g.
// "0009B0123456" -> "00:09:B0:12:34:56". Anything else passes through.
func FormatMAC(mac string) string {
	mac = strings.ToUpper(strings.TrimSpace(mac))
	if len(mac) != 12 || strings.Contains(mac, ":") {
		return mac
	}
	parts := make([]string, 0, 6)
	for i := 0; i < 12; i += 2 {
		parts = append(parts, mac[i:i+2])
	}
	return strings.Join(parts, ":")
}

// Truncate shortens a string to at most n runes, marking the cut with an
// ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
