package base64url

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/multiformats/go-multibase"

	"xdao.co/basetools/codec"
	"xdao.co/basetools/codec/codectest"
)

func TestConformance(t *testing.T) {
	c, err := codec.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	codectest.Run(t, c)
}

func TestEncode_Vectors(t *testing.T) {
	cases := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{0xfb, 0xff}, "-_8"},
		{[]byte{1, 2, 3}, "AQID"},
		{[]byte("f"), "Zg"},
		{[]byte("fo"), "Zm8"},
		{[]byte{0xfb, 0xef, 0xbe}, "----"},
	}
	for _, tc := range cases {
		if got := Encode(tc.in); got != tc.want {
			t.Fatalf("Encode(%x) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncode_NoStandardOnlySymbols(t *testing.T) {
	for _, b := range codectest.Samples(5, 128) {
		if s := Encode(b); strings.ContainsAny(s, "+/=") {
			t.Fatalf("Encode(%x) = %q", b, s)
		}
	}
}

func TestMatchesIndependentEncoders(t *testing.T) {
	for _, b := range codectest.Samples(9, 96) {
		if got, want := Encode(b), base64.RawURLEncoding.EncodeToString(b); got != want {
			t.Fatalf("Encode(%x) = %q, want %q", b, got, want)
		}
		mb, err := multibase.Encode(multibase.Base64url, b)
		if err != nil {
			t.Fatalf("multibase.Encode failed: %v", err)
		}
		got, err := Decode(mb)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", mb, err)
		}
		if !bytes.Equal(got, b) {
			t.Fatalf("Decode(%q) = %x, want %x", mb, got, b)
		}
	}
}

func TestDecode_RestoresPadding(t *testing.T) {
	cases := map[string]string{
		"Zg":   "f",
		"Zm8":  "fo",
		"Zm9v": "foo",
		"Zg==": "f",
	}
	for in, want := range cases {
		got, err := DecodeRaw(in)
		if err != nil {
			t.Fatalf("DecodeRaw(%q) failed: %v", in, err)
		}
		if string(got) != want {
			t.Fatalf("DecodeRaw(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecode_LegacyPrefix(t *testing.T) {
	got, err := Decode("uAQID")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("Decode(uAQID) = %x", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, s := range []string{"a", "abcde", "ab$d", "Zg=a"} {
		got, err := Decode(s)
		if !codec.IsKind(err, codec.KindFormat) || codec.RuleID(err) != codec.RuleBadBase64 {
			t.Fatalf("Decode(%q): got err=%v want %s", s, err, codec.RuleBadBase64)
		}
		var cie base64.CorruptInputError
		if !errors.As(err, &cie) {
			t.Fatalf("Decode(%q): cause not preserved: %v", s, err)
		}
		if got != nil {
			t.Fatalf("Decode(%q): partial result %x", s, got)
		}
	}
}

func TestBytes_JSON(t *testing.T) {
	type doc struct {
		Hash Bytes `json:"hash"`
	}
	b, err := json.Marshal(doc{Hash: Bytes{0xfb, 0xff}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"hash":"-_8"}` {
		t.Fatalf("Marshal = %s", b)
	}

	// A leading 'u' belongs to the payload here.
	var d doc
	if err := json.Unmarshal([]byte(`{"hash":"uAQI"}`), &d); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !bytes.Equal(d.Hash, []byte{0xb8, 0x04, 0x08}) {
		t.Fatalf("Unmarshal = %x", []byte(d.Hash))
	}

	if err := json.Unmarshal([]byte(`{"hash":"!"}`), &d); !codec.IsKind(err, codec.KindFormat) {
		t.Fatalf("Unmarshal invalid: got err=%v", err)
	}
}
