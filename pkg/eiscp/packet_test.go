package eiscp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestEncode(t *testing.T) {
	packet := Encode("!1PWRQSTN", EndingCRLF)

	if string(packet[0:4]) != "ISCP" {
		t.Errorf("magic = %q, want %q", packet[0:4], "ISCP")
	}
	if hs := binary.BigEndian.Uint32(packet[4:8]); hs != 16 {
		t.Errorf("header size = %d, want 16", hs)
	}
	// Data size counts the message and the end bytes
	if ds := binary.BigEndian.Uint32(packet[8:12]); ds != uint32(len("!1PWRQSTN")+2) {
		t.Errorf("data size = %d, want %d", ds, len("!1PWRQSTN")+2)
	}
	if packet[12] != 0x01 {
		t.Errorf("version = 0x%02X, want 0x01", packet[12])
	}
	if packet[13] != 0 || packet[14] != 0 || packet[15] != 0 {
		t.Error("reserved bytes not zero")
	}
	if string(packet[16:25]) != "!1PWRQSTN" {
		t.Errorf("message = %q, want %q", packet[16:25], "!1PWRQSTN")
	}
	if !bytes.Equal(packet[25:], []byte{0x0D, 0x0A}) {
		t.Errorf("end bytes = %v, want CR LF", packet[25:])
	}
}

func TestReadPacketRoundTrip(t *testing.T) {
	for _, ending := range Endings() {
		packet := Encode("!1MVL2E", ending)
		payload, err := ReadPacket(bufio.NewReader(bytes.NewReader(packet)))
		if err != nil {
			t.Fatalf("ending %s: read failed: %v", ending, err)
		}
		if payload != "!1MVL2E" {
			t.Errorf("ending %s: payload = %q, want %q", ending, payload, "!1MVL2E")
		}
	}
}

func TestReadPacketKeepsTrailingSpaces(t *testing.T) {
	// Rename values carry padding; only end bytes may be stripped.
	packet := Encode("!1IRN01Living Room  ", EndingEOFCRLF)
	payload, err := ReadPacket(bufio.NewReader(bytes.NewReader(packet)))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if payload != "!1IRN01Living Room  " {
		t.Errorf("payload = %q, trailing spaces lost", payload)
	}
}

func TestReadPacketStream(t *testing.T) {
	// Two packets back to back on one stream
	var stream bytes.Buffer
	stream.Write(Encode("!1PWR01", EndingEOF))
	stream.Write(Encode("!1AMT00", EndingCR))

	br := bufio.NewReader(&stream)
	first, err := ReadPacket(br)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	second, err := ReadPacket(br)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if first != "!1PWR01" || second != "!1AMT00" {
		t.Errorf("got %q, %q", first, second)
	}
	if _, err := ReadPacket(br); err != io.EOF {
		t.Errorf("drained stream err = %v, want io.EOF", err)
	}
}

func TestReadPacketBadHeader(t *testing.T) {
	tests := []struct {
		name   string
		mangle func([]byte)
		field  string
	}{
		{"magic", func(p []byte) { p[0] = 'X' }, "magic"},
		{"header size", func(p []byte) { p[7] = 0x20 }, "header size"},
		{"version", func(p []byte) { p[12] = 0x02 }, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packet := Encode("!1PWRQSTN", EndingCRLF)
			tt.mangle(packet)

			_, err := ReadPacket(bufio.NewReader(bytes.NewReader(packet)))
			var fe *FramingError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want FramingError", err)
			}
			if fe.Field != tt.field {
				t.Errorf("field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestReadPacketOversize(t *testing.T) {
	packet := Encode("!1PWRQSTN", EndingCRLF)
	binary.BigEndian.PutUint32(packet[8:12], MaxPacketSize+1)

	_, err := ReadPacket(bufio.NewReader(bytes.NewReader(packet)))
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FramingError", err)
	}
	if fe.Field != "data size" {
		t.Errorf("field = %q, want %q", fe.Field, "data size")
	}
}

func TestParseEnding(t *testing.T) {
	for _, ending := range Endings() {
		parsed, err := ParseEnding(ending.String())
		if err != nil {
			t.Fatalf("ParseEnding(%q) failed: %v", ending.String(), err)
		}
		if parsed != ending {
			t.Errorf("ParseEnding(%q) = %v, want %v", ending.String(), parsed, ending)
		}
	}

	if _, err := ParseEnding("bogus"); err == nil {
		t.Error("ParseEnding(bogus) should fail")
	}
}
