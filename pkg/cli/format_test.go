package cli

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{0, "0ms"},
		{1, "1ms"},
		{100, "100ms"},
		{999, "999ms"},
		{1000, "1.0s"},
		{1500, "1.5s"},
		{5000, "5.0s"},
		{59000, "59.0s"},
		{60000, "1m0.0s"},
		{90000, "1m30.0s"},
		{125500, "2m5.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatDuration(tt.ms)
			if got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, "0% (00)"},
		{9, "9% (09)"},
		{46, "46% (2E)"},
		{100, "100% (64)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatVolume(tt.level)
			if got != tt.want {
				t.Errorf("FormatVolume(%d) = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestFormatMAC(t *testing.T) {
	tests := []struct {
		mac  string
		want string
	}{
		{"0009B0123456", "00:09:B0:12:34:56"},
		{"0009b0123456", "00:09:B0:12:34:56"},
		{" 0009B0123456 ", "00:09:B0:12:34:56"},
		{"00:09:B0:12:34:56", "00:09:B0:12:34:56"}, // already formatted
		{"short", "SHORT"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.mac, func(t *testing.T) {
			got := FormatMAC(tt.mac)
			if got != tt.want {
				t.Errorf("FormatMAC(%q) = %q, want %q", tt.mac, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"héllo", 4, "hél…"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Truncate(tt.s, tt.n)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}
