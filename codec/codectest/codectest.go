// Package codectest provides a conformance suite shared by every registered
// codec.
package codectest

import (
	"bytes"
	"math/rand"
	"testing"

	"xdao.co/basetools/codec"
)

// Samples returns deterministic pseudo-random buffers of length 1..maxLen.
//
// The first byte of every sample is non-zero so that the suite also holds
// for codecs that represent the numeric magnitude of the buffer.
func Samples(seed int64, maxLen int) [][]byte {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]byte, 0, maxLen)
	for n := 1; n <= maxLen; n++ {
		b := make([]byte, n)
		rng.Read(b)
		if b[0] == 0 {
			b[0] = 1
		}
		out = append(out, b)
	}
	return out
}

// ZeroPrefixed returns deterministic buffers of length 1..maxLen whose first
// half (rounded up) is zero bytes; the rest is pseudo-random.
func ZeroPrefixed(seed int64, maxLen int) [][]byte {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]byte, 0, maxLen)
	for n := 1; n <= maxLen; n++ {
		b := make([]byte, n)
		rng.Read(b[(n+1)/2:])
		out = append(out, b)
	}
	return out
}

// Option adjusts Run.
type Option func(*options)

type options struct {
	magnitudeOnly bool
}

// MagnitudeOnly marks a codec that encodes the numeric value of a buffer and
// so drops leading zero bytes. The leading-zero round trip is skipped.
func MagnitudeOnly() Option {
	return func(o *options) { o.magnitudeOnly = true }
}

// Run exercises the contract every codec.Codec must honor.
func Run(t *testing.T, c codec.Codec, opts ...Option) {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t.Run("EmptyInput", func(t *testing.T) {
		if got := c.Encode(nil); got != "" {
			t.Fatalf("Encode(nil) = %q, want empty", got)
		}
		if got := c.Encode([]byte{}); got != "" {
			t.Fatalf("Encode([]) = %q, want empty", got)
		}
		for name, decode := range map[string]func(string) ([]byte, error){"Decode": c.Decode, "DecodeRaw": c.DecodeRaw} {
			got, err := decode("")
			if err != nil {
				t.Fatalf("%s(\"\") failed: %v", name, err)
			}
			if len(got) != 0 {
				t.Fatalf("%s(\"\") = %x, want empty", name, got)
			}
		}
	})

	t.Run("RawRoundTrip", func(t *testing.T) {
		for _, b := range Samples(1, 64) {
			enc := c.Encode(b)
			got, err := c.DecodeRaw(enc)
			if err != nil {
				t.Fatalf("DecodeRaw(%q) failed: %v", enc, err)
			}
			if !bytes.Equal(got, b) {
				t.Fatalf("DecodeRaw(Encode(%x)) = %x", b, got)
			}
		}
	})

	t.Run("PrefixedRoundTrip", func(t *testing.T) {
		for _, b := range Samples(2, 64) {
			enc := string(c.Prefix) + c.Encode(b)
			got, err := c.Decode(enc)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", enc, err)
			}
			if !bytes.Equal(got, b) {
				t.Fatalf("Decode(%q) = %x, want %x", enc, got, b)
			}
		}
	})

	t.Run("UnprefixedRoundTrip", func(t *testing.T) {
		for _, b := range Samples(3, 64) {
			enc := c.Encode(b)
			if enc[0] == c.Prefix {
				// Indistinguishable from a prefixed string; DecodeRaw covers it.
				continue
			}
			got, err := c.Decode(enc)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", enc, err)
			}
			if !bytes.Equal(got, b) {
				t.Fatalf("Decode(%q) = %x, want %x", enc, got, b)
			}
		}
	})

	t.Run("LeadingZeroRoundTrip", func(t *testing.T) {
		if o.magnitudeOnly {
			t.Skip("codec drops leading zero bytes")
		}
		for _, b := range ZeroPrefixed(4, 32) {
			enc := c.Encode(b)
			got, err := c.DecodeRaw(enc)
			if err != nil {
				t.Fatalf("DecodeRaw(%q) failed: %v", enc, err)
			}
			if !bytes.Equal(got, b) {
				t.Fatalf("DecodeRaw(Encode(%x)) = %x", b, got)
			}
			got, err = c.Decode(string(c.Prefix) + enc)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", string(c.Prefix)+enc, err)
			}
			if !bytes.Equal(got, b) {
				t.Fatalf("Decode(%q) = %x, want %x", string(c.Prefix)+enc, got, b)
			}
		}
	})

	t.Run("RejectForeignSymbol", func(t *testing.T) {
		for _, s := range []string{"!!!!", "ab!d"} {
			if _, err := c.DecodeRaw(s); !codec.IsKind(err, codec.KindFormat) {
				t.Fatalf("DecodeRaw(%q): got err=%v want Format error", s, err)
			}
			if _, err := c.Decode(s); !codec.IsKind(err, codec.KindFormat) {
				t.Fatalf("Decode(%q): got err=%v want Format error", s, err)
			}
		}
	})

	t.Run("Registered", func(t *testing.T) {
		got, err := codec.Lookup(c.Name)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", c.Name, err)
		}
		if got.Prefix != c.Prefix {
			t.Fatalf("registered prefix %q, want %q", got.Prefix, c.Prefix)
		}
	})
}
