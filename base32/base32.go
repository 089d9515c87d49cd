// Package base32 implements unpadded, lowercase RFC 4648 Base32.
package base32

import (
	"xdao.co/basetools/codec"
)

// Alphabet is the RFC 4648 Base32 alphabet. Encode emits it lowercased.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// Prefix is the legacy multibase marker accepted by Decode, in either case.
const Prefix = 'b'

const (
	name  = "base32"
	lower = "abcdefghijklmnopqrstuvwxyz234567"
)

// index maps a byte to its symbol value, or -1. ASCII letters match in
// either case; no other byte is folded.
var index [256]int8

func init() {
	for i := range index {
		index[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		index[Alphabet[i]] = int8(i)
		index[lower[i]] = int8(i)
	}

	codec.MustRegister(codec.Codec{
		Name:        name,
		Description: "RFC 4648 Base32, lowercase, unpadded",
		Prefix:      Prefix,
		Encode:      Encode,
		Decode:      Decode,
		DecodeRaw:   DecodeRaw,
	})
}

// EncodedLen returns the length of the encoding of n bytes.
func EncodedLen(n int) int {
	return (n*8 + 4) / 5
}

// Encode returns the lowercase, unpadded Base32 text of b.
func Encode(b []byte) string {
	out := make([]byte, 0, EncodedLen(len(b)))
	var reg uint32
	bits := 0

	for _, c := range b {
		reg = reg<<8 | uint32(c)
		bits += 8
		for bits >= 5 {
			out = append(out, lower[(reg>>(bits-5))&31])
			bits -= 5
		}
		reg &= 1<<bits - 1
	}
	if bits > 0 {
		out = append(out, lower[(reg<<(5-bits))&31])
	}
	return string(out)
}

// Decode decodes Base32 text in either case.
//
// A leading 'B' or 'b' is treated as a legacy multibase prefix and removed
// first. Trailing bits that do not fill a whole byte are discarded.
func Decode(s string) ([]byte, error) {
	if len(s) > 0 && (s[0] == 'B' || s[0] == Prefix) {
		return decode(s, 1)
	}
	return decode(s, 0)
}

// DecodeRaw decodes Base32 text in either case with no prefix handling.
func DecodeRaw(s string) ([]byte, error) {
	return decode(s, 0)
}

func decode(s string, from int) ([]byte, error) {
	out := make([]byte, ((len(s)-from)*5+7)/8)
	n := 0
	var reg uint32
	bits := 0

	for i := from; i < len(s); i++ {
		v := index[s[i]]
		if v < 0 {
			return nil, codec.SymbolError(name, s, i)
		}
		reg = reg<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			out[n] = byte(reg >> (bits - 8))
			n++
			bits -= 8
		}
		reg &= 1<<bits - 1
	}
	return out[:n], nil
}
