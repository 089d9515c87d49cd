// Package cid builds compact content identifiers.
//
// A CID is the byte layout
//
//	[type:1][hashType:1][hash:N][size:8, little-endian int64]
//
// rendered as Base58 text. The size field is omitted for TypeResolver.
// Hash bytes are supplied by the caller; this package never hashes content.
package cid

import (
	"encoding/binary"

	"xdao.co/basetools/base58"
	"xdao.co/basetools/codec"
)

// Type tags the kind of content a CID refers to.
type Type byte

const (
	// TypeResolver marks an identifier that resolves to other content. It
	// carries no size field.
	TypeResolver Type = 0x25
	// TypeRaw marks raw content bytes. It is the default.
	TypeRaw Type = 0x26
)

// HashType identifies the hash function that produced the digest.
type HashType byte

// HashBlake3 is the default hash type.
const HashBlake3 HashType = 0x1f

const (
	name     = "cid"
	sizeLen  = 8
	headLen  = 2
	fixedLen = headLen + sizeLen
)

// CID is a decoded content identifier. Values are never mutated after
// construction by this package.
type CID struct {
	Type     Type
	HashType HashType
	Hash     []byte
	Size     int64
}

// HasSize reports whether the layout of c carries a size field.
func (c CID) HasSize() bool { return c.Type != TypeResolver }

// Bytes returns the binary layout of c.
func (c CID) Bytes() []byte {
	n := headLen + len(c.Hash)
	if c.HasSize() {
		n += sizeLen
	}
	b := make([]byte, headLen, n)
	b[0] = byte(c.Type)
	b[1] = byte(c.HashType)
	b = append(b, c.Hash...)
	if c.HasSize() {
		b = binary.LittleEndian.AppendUint64(b, uint64(c.Size))
	}
	return b
}

// String returns the Base58 text of c.
func (c CID) String() string {
	return base58.Encode(c.Bytes())
}

// Option customizes Encode.
type Option func(*CID)

// WithType overrides the default TypeRaw.
func WithType(t Type) Option {
	return func(c *CID) { c.Type = t }
}

// WithHashType overrides the default HashBlake3.
func WithHashType(h HashType) Option {
	return func(c *CID) { c.HashType = h }
}

// New validates hash and returns a CID with defaults applied.
//
// A nil hash is rejected with a Type error; an empty, non-nil hash is valid.
func New(hash []byte, size int64, opts ...Option) (CID, error) {
	if hash == nil {
		return CID{}, codec.Errorf(codec.KindType, codec.RuleHashNotBytes, name, "hash must be a byte buffer")
	}
	c := CID{Type: TypeRaw, HashType: HashBlake3, Hash: hash, Size: size}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// Encode returns the Base58 text of the CID for hash and size.
func Encode(hash []byte, size int64, opts ...Option) (string, error) {
	c, err := New(hash, size, opts...)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Decode parses Base58 CID text produced by Encode.
//
// The type byte must be non-zero: a zero leading byte does not survive the
// Base58 encoding.
func Decode(s string) (CID, error) {
	b, err := base58.DecodeRaw(s)
	if err != nil {
		return CID{}, err
	}
	return FromBytes(b)
}

// FromBytes parses a binary CID layout. The returned hash does not alias b.
func FromBytes(b []byte) (CID, error) {
	if len(b) < headLen {
		return CID{}, codec.Errorf(codec.KindFormat, codec.RuleShortCID, name, "layout too short: %d bytes", len(b))
	}
	c := CID{Type: Type(b[0]), HashType: HashType(b[1])}
	rest := b[headLen:]
	if c.HasSize() {
		if len(b) < fixedLen {
			return CID{}, codec.Errorf(codec.KindFormat, codec.RuleShortCID, name, "layout too short for size field: %d bytes", len(b))
		}
		c.Size = int64(binary.LittleEndian.Uint64(rest[len(rest)-sizeLen:]))
		rest = rest[:len(rest)-sizeLen]
	}
	c.Hash = append([]byte{}, rest...)
	return c, nil
}
