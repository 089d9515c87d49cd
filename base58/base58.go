// Package base58 implements Base58 text encoding with the Bitcoin alphabet.
//
// The encoder represents the big-endian numeric value of the whole buffer.
// Unlike Base58Check encoders it does not emit one '1' per leading zero byte:
// leading zero bytes fold into the magnitude and are lost. Content identifiers
// built by package cid depend on this exact output, so it must not change.
package base58

import (
	"xdao.co/basetools/codec"
)

// Alphabet is the Bitcoin Base58 alphabet (no 0, O, I or l).
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Prefix is the legacy multibase marker accepted (and stripped) by Decode.
const Prefix = 'z'

const (
	name  = "base58btc"
	radix = 58
)

// index maps a byte to its alphabet position, or -1.
var index [256]int8

func init() {
	for i := range index {
		index[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		index[Alphabet[i]] = int8(i)
	}

	codec.MustRegister(codec.Codec{
		Name:        name,
		Description: "Base58, Bitcoin alphabet",
		Prefix:      Prefix,
		Encode:      Encode,
		Decode:      Decode,
		DecodeRaw:   DecodeRaw,
	})
}

// Encode returns the Base58 text of b without any prefix.
// An empty or all-zero buffer encodes to "".
func Encode(b []byte) string {
	// Little-endian base-58 digits; every element stays in [0, 58) between bytes.
	digits := []int{0}

	for _, c := range b {
		for j := range digits {
			digits[j] <<= 8
		}
		digits[0] += int(c)

		carry := 0
		for j := range digits {
			digits[j] += carry
			carry = digits[j] / radix
			digits[j] %= radix
		}
		for carry > 0 {
			digits = append(digits, carry%radix)
			carry /= radix
		}
	}

	n := len(digits)
	for n > 0 && digits[n-1] == 0 {
		n--
	}

	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = Alphabet[digits[n-1-i]]
	}
	return string(out)
}

// Decode decodes Base58 text. A single leading 'z' is treated as a legacy
// multibase prefix and removed first.
func Decode(s string) ([]byte, error) {
	if len(s) > 0 && s[0] == Prefix {
		return decode(s, 1)
	}
	return decode(s, 0)
}

// DecodeRaw decodes Base58 text with no prefix handling.
// Leading '1' characters contribute nothing to the result.
func DecodeRaw(s string) ([]byte, error) {
	return decode(s, 0)
}

func decode(s string, from int) ([]byte, error) {
	// Little-endian bytes of the accumulated value.
	acc := make([]byte, 0, (len(s)-from)*733/1000+1)

	for i := from; i < len(s); i++ {
		v := int(index[s[i]])
		if v < 0 {
			return nil, codec.SymbolError(name, s, i)
		}
		for j := range acc {
			v += int(acc[j]) * radix
			acc[j] = byte(v)
			v >>= 8
		}
		for v > 0 {
			acc = append(acc, byte(v))
			v >>= 8
		}
	}

	for i, j := 0, len(acc)-1; i < j; i, j = i+1, j-1 {
		acc[i], acc[j] = acc[j], acc[i]
	}
	return acc, nil
}
