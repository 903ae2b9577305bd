package eiscp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// MaxPacketSize is the largest data segment accepted from a receiver.
// NRI replies carry a full XML device description and run to tens of
// kilobytes; anything larger than this is a framing error.
const MaxPacketSize = 64 * 1024

const (
	magic      = "ISCP"
	headerSize = 16
	version    = 0x01
)

// Ending selects the end-byte sequence appended to outgoing packets.
// Receivers differ by model and firmware in what they emit and what they
// accept; all known variants are recognized on the receive path.
type Ending int

const (
	EndingCRLF Ending = iota // 0x0D 0x0A, the widest accepted default
	EndingEOF                // 0x1A
	EndingCR                 // 0x0D
	EndingLF                 // 0x0A
	EndingEOFCR              // 0x1A 0x0D
	EndingEMCRLF             // 0x19 0x0D 0x0A
	EndingEOFCRLF            // 0x1A 0x0D 0x0A
)

var endingBytes = [...][]byte{
	EndingCRLF:    {0x0D, 0x0A},
	EndingEOF:     {0x1A},
	EndingCR:      {0x0D},
	EndingLF:      {0x0A},
	EndingEOFCR:   {0x1A, 0x0D},
	EndingEMCRLF:  {0x19, 0x0D, 0x0A},
	EndingEOFCRLF: {0x1A, 0x0D, 0x0A},
}

var endingNames = [...]string{
	EndingCRLF:    "crlf",
	EndingEOF:     "eof",
	EndingCR:      "cr",
	EndingLF:      "lf",
	EndingEOFCR:   "eof-cr",
	EndingEMCRLF:  "em-cr-lf",
	EndingEOFCRLF: "eof-cr-lf",
}

func (e Ending) bytes() []byte {
	if e < 0 || int(e) >= len(endingBytes) {
		return endingBytes[EndingCRLF]
	}
	return endingBytes[e]
}

// String returns the config spelling of the ending ("crlf", "eof", ...).
func (e Ending) String() string {
	if e < 0 || int(e) >= len(endingNames) {
		return "crlf"
	}
	return endingNames[e]
}

// ParseEnding parses a config spelling produced by [Ending.String].
func ParseEnding(s string) (Ending, error) {
	for i, name := range endingNames {
		if strings.EqualFold(s, name) {
			return Ending(i), nil
		}
	}
	return 0, fmt.Errorf("eiscp: unknown ending %q", s)
}

// Endings returns every known end-byte variant. Discovery broadcasts the
// query once per variant since the listening firmware only answers the
// framing it expects.
func Endings() []Ending {
	all := make([]Ending, len(endingBytes))
	for i := range all {
		all[i] = Ending(i)
	}
	return all
}

// Encode frames an ISCP message into one eISCP packet.
func Encode(message string, ending Ending) []byte {
	end := ending.bytes()
	buf := make([]byte, headerSize, headerSize+len(message)+len(end))
	copy(buf, magic)
	binary.BigEndian.PutUint32(buf[4:8], headerSize)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(message)+len(end)))
	buf[12] = version
	buf = append(buf, message...)
	buf = append(buf, end...)
	return buf
}

// ReadPacket reads one eISCP packet from the stream and returns the ISCP
// message with its end bytes stripped. A malformed header is fatal for
// the stream; there is no resynchronization.
func ReadPacket(r *bufio.Reader) (string, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return "", err
	}

	if string(header[0:4]) != magic {
		return "", &FramingError{Field: "magic", Value: binary.BigEndian.Uint32(header[0:4])}
	}
	if hs := binary.BigEndian.Uint32(header[4:8]); hs != headerSize {
		return "", &FramingError{Field: "header size", Value: hs}
	}
	dataSize := binary.BigEndian.Uint32(header[8:12])
	if dataSize == 0 || dataSize > MaxPacketSize {
		return "", &FramingError{Field: "data size", Value: dataSize}
	}
	if header[12] != version {
		return "", &FramingError{Field: "version", Value: uint32(header[12])}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(trimEnding(data)), nil
}

// trimEnding strips the trailing end-byte run. Only the four control
// bytes used by the known variants are removed; trailing spaces in the
// message value survive.
func trimEnding(data []byte) []byte {
	n := len(data)
	for n > 0 {
		switch data[n-1] {
		case 0x0A, 0x0D, 0x1A, 0x19:
			n--
		default:
			return data[:n]
		}
	}
	return data[:0]
}
