// Package base64url implements unpadded URL-safe Base64 on top of the
// standard Base64 engine.
package base64url

import (
	"encoding/base64"
	"strings"

	"xdao.co/basetools/codec"
)

// Prefix is the legacy multibase marker accepted (and stripped) by Decode.
const Prefix = 'u'

const name = "base64url"

var (
	toURL = strings.NewReplacer("+", "-", "/", "_", "=", "")
	toStd = strings.NewReplacer("-", "+", "_", "/")
)

func init() {
	codec.MustRegister(codec.Codec{
		Name:        name,
		Description: "URL-safe Base64, unpadded",
		Prefix:      Prefix,
		Encode:      Encode,
		Decode:      Decode,
		DecodeRaw:   DecodeRaw,
	})
}

// Encode returns URL-safe Base64 text of b with padding removed.
func Encode(b []byte) string {
	return toURL.Replace(base64.StdEncoding.EncodeToString(b))
}

// Decode decodes URL-safe Base64 text. A single leading 'u' is treated as a
// legacy multibase prefix and removed first.
func Decode(s string) ([]byte, error) {
	if len(s) > 0 && s[0] == Prefix {
		return DecodeRaw(s[1:])
	}
	return DecodeRaw(s)
}

// DecodeRaw decodes URL-safe Base64 text with no prefix handling.
// Missing padding is restored before decoding.
func DecodeRaw(s string) ([]byte, error) {
	s = toStd.Replace(s)
	if r := len(s) % 4; r > 0 {
		s += strings.Repeat("=", 4-r)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, codec.Wrap(codec.KindFormat, codec.RuleBadBase64, name, "invalid text: "+err.Error(), err)
	}
	return b, nil
}

// Bytes marshals as unpadded URL-safe Base64 text (e.g. in JSON).
type Bytes []byte

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(Encode(b)), nil
}

func (b *Bytes) UnmarshalText(text []byte) error {
	v, err := DecodeRaw(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
