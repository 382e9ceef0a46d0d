// segdisp/segdisp.go
//
// Static 7-segment code tables. Bit n of a Segments value drives segment
// line n, in the usual a..g order (bit 0 = a, bit 6 = g).
package segdisp

import (
	"pinstate-go/errcode"
)

type Segments uint8

const (
	SegA Segments = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG

	Blank Segments = 0

	// NumLines is the number of segment lines a digit occupies.
	NumLines = 7
)

// Polarity selects the wiring of the display's common pin.
type Polarity uint8

const (
	CommonCathode Polarity = iota // segment lit when line is high
	CommonAnode                   // segment lit when line is low
)

var digits = [10]Segments{
	0b00111111, // 0
	0b00000110, // 1
	0b01011011, // 2
	0b01001111, // 3
	0b01100110, // 4
	0b01101101, // 5
	0b01111101, // 6
	0b00000111, // 7
	0b01111111, // 8
	0b01101111, // 9
}

var letters = [26]Segments{
	0b01110111, // A
	0b01111100, // B
	0b00111001, // C
	0b01011110, // D
	0b01111001, // E
	0b01110001, // F
	0b00111101, // G
	0b01110100, // H
	0b00110000, // I
	0b00011110, // J
	0b01110101, // K
	0b00111000, // L
	0b00010101, // M
	0b00110111, // N
	0b00111111, // O
	0b01110011, // P
	0b01100111, // Q
	0b00110011, // R
	0b01101101, // S
	0b01111000, // T
	0b00111110, // U
	0b00011100, // V
	0b00101010, // W
	0b00110110, // X
	0b01101110, // Y
	0b01011011, // Z
}

// Digit returns the code for 0..9.
func Digit(n int) (Segments, error) {
	if n < 0 || n > 9 {
		return Blank, &errcode.E{C: errcode.OutOfRange, Op: "segdisp.Digit"}
	}
	return digits[n], nil
}

// Letter returns the code for A..Z (either case).
func Letter(r rune) (Segments, error) {
	switch {
	case r >= 'a' && r <= 'z':
		return letters[r-'a'], nil
	case r >= 'A' && r <= 'Z':
		return letters[r-'A'], nil
	default:
		return Blank, &errcode.E{C: errcode.OutOfRange, Op: "segdisp.Letter"}
	}
}

// Hex returns the code for 0..15.
func Hex(n int) (Segments, error) {
	switch {
	case n >= 0 && n <= 9:
		return digits[n], nil
	case n >= 10 && n <= 15:
		return letters[n-10], nil
	default:
		return Blank, &errcode.E{C: errcode.OutOfRange, Op: "segdisp.Hex"}
	}
}

// EncodeRune maps a displayable character to its code. Space is Blank.
func EncodeRune(r rune) (Segments, error) {
	switch {
	case r == ' ':
		return Blank, nil
	case r >= '0' && r <= '9':
		return digits[r-'0'], nil
	default:
		s, err := Letter(r)
		if err != nil {
			return Blank, &errcode.E{C: errcode.OutOfRange, Op: "segdisp.EncodeRune"}
		}
		return s, nil
	}
}

// Lit reports whether segment line n (0..6) is lit.
func (s Segments) Lit(n int) bool {
	return n >= 0 && n < NumLines && s&(1<<n) != 0
}

// Wire converts the logical code to line levels for the given polarity.
// Common-anode displays light a segment by pulling its line low.
func (s Segments) Wire(p Polarity) uint8 {
	if p == CommonAnode {
		return ^uint8(s) & 0x7F
	}
	return uint8(s)
}

// String renders the code as a three-line glyph, for demos and debugging.
func (s Segments) String() string {
	pick := func(seg Segments, on, off string) string {
		if s&seg != 0 {
			return on
		}
		return off
	}
	return " " + pick(SegA, "_", " ") + " \n" +
		pick(SegF, "|", " ") + pick(SegG, "_", " ") + pick(SegB, "|", " ") + "\n" +
		pick(SegE, "|", " ") + pick(SegD, "_", " ") + pick(SegC, "|", " ")
}
