package bitconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yyyoichi/bitstream-go"
)

func fromBools(bits []bool) *bitstream.BitReader[uint64] {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	r := bitstream.NewBitReader(w.Data(), 0, 0)
	r.SetBits(len(bits))
	return r
}

func toBools(r *bitstream.BitReader[uint64]) []bool {
	bits := make([]bool, r.Bits())
	for i := range bits {
		bits[i], _ = r.ReadBitAt(i)
	}
	return bits
}

func bools(s string) []bool {
	out := make([]bool, 0, len(s))
	for _, c := range s {
		switch c {
		case '0':
			out = append(out, false)
		case '1':
			out = append(out, true)
		}
	}
	return out
}

func TestFilter(t *testing.T) {
	test := []struct {
		src string
		exp string
	}{
		{src: "Hello", exp: "Hello"},
		{src: "Hé!lo", exp: "H!lo"},
		{src: "tab\there\nnewline", exp: "tabherenewline"},
		{src: "こんにちはHello", exp: "Hello"},
		{src: "~ ", exp: "~ "},
		{src: "\x7f\x1f", exp: ""},
		{src: "", exp: ""},
	}
	for _, tt := range test {
		assert.Equal(t, tt.exp, Filter(tt.src))
		assert.Equal(t, tt.exp, Filter(Filter(tt.src)))
		assert.Equal(t, len(tt.exp)*8, PayloadBits(tt.src))
	}
}

func TestTextToBits(t *testing.T) {
	t.Run("layout", func(t *testing.T) {
		bits := TextToBits("A!")
		exp := bools("01000001 00100001 1111111111111110")
		assert.Equal(t, len(exp), bits.Bits())
		assert.Equal(t, exp, toBools(bits))
	})
	t.Run("empty message is sentinel only", func(t *testing.T) {
		bits := TextToBits("")
		assert.Equal(t, bools("1111111111111110"), toBools(bits))
	})
	t.Run("dropped characters", func(t *testing.T) {
		assert.Equal(t, toBools(TextToBits("H!lo")), toBools(TextToBits("Hé!lo")))
	})
	t.Run("filtering is stable", func(t *testing.T) {
		for _, m := range []string{"Hé!lo", "plain", "\x00\x01abc\x7f", "ünïcödé"} {
			assert.Equal(t, toBools(TextToBits(m)), toBools(TextToBits(Filter(m))))
		}
	})
}

func TestBitsToText(t *testing.T) {
	test := []struct {
		name string
		bits string
		exp  string
	}{
		{"two chars", "01000001 00100001", "A!"},
		{"empty", "", ""},
		{"partial byte ignored", "01000001 0100", "A"},
		{"stops at control byte", "01000001 00001010 01000010", "A"},
		{"stops at high byte", "10000000 01000001", ""},
		{"space and tilde", "00100000 01111110", " ~"},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, BitsToText(fromBools(bools(tt.bits))))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, m := range []string{"Hello, World!", "a", " ", "~}|{", "0123456789"} {
		framed := toBools(TextToBits(m))
		payload := framed[:len(framed)-SentinelLen]
		assert.Equal(t, m, BitsToText(fromBools(payload)))
	}
}

func TestIsPrintable(t *testing.T) {
	assert.True(t, IsPrintable(' '))
	assert.True(t, IsPrintable(byte('~')))
	assert.False(t, IsPrintable(byte(0x7f)))
	assert.False(t, IsPrintable('é'))
	assert.False(t, IsPrintable(byte(31)))
}
