package bitconv

import (
	"strings"

	"github.com/yyyoichi/bitstream-go"
)

const (
	// Sentinel marks the end of the payload: 15 ones followed by a zero.
	Sentinel uint16 = 0xFFFE
	// SentinelLen is the length of Sentinel, in bits.
	SentinelLen = 16

	minPrintable = 32
	maxPrintable = 126
)

// IsPrintable reports whether c is a printable ASCII code.
func IsPrintable[T rune | byte](c T) bool {
	return c >= minPrintable && c <= maxPrintable
}

// Filter drops every rune outside the printable ASCII range.
func Filter(message string) string {
	var b strings.Builder
	b.Grow(len(message))
	for _, r := range message {
		if IsPrintable(r) {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// PayloadBits returns the number of bits the filtered message occupies, without the sentinel.
func PayloadBits(message string) int {
	return len(Filter(message)) * 8
}

// TextToBits frames message as a bit sequence: 8 bits per printable character,
// most significant bit first, followed by the sentinel.
func TextToBits(message string) *bitstream.BitReader[uint64] {
	w := bitstream.NewBitWriter[uint64](0, 0)
	put := func(v uint16, n int) {
		for i := n - 1; i >= 0; i-- {
			w.WriteBool((v>>uint(i))&1 == 1)
		}
	}
	for _, c := range []byte(Filter(message)) {
		put(uint16(c), 8)
	}
	put(Sentinel, SentinelLen)
	r := bitstream.NewBitReader(w.Data(), 0, 0)
	r.SetBits(w.Bits())
	return r
}

// BitsToText reads complete bytes from bits and stops at the first byte that is
// not printable ASCII. The valid prefix is returned; a trailing partial byte is ignored.
func BitsToText(bits *bitstream.BitReader[uint64]) string {
	n := bits.Bits() / 8
	var b strings.Builder
	b.Grow(n)
	for i := range n {
		var v byte
		for j := range 8 {
			bit, _ := bits.ReadBitAt(i*8 + j)
			v <<= 1
			if bit {
				v |= 1
			}
		}
		if !IsPrintable(v) {
			break
		}
		b.WriteByte(v)
	}
	return b.String()
}
