package cid

import (
	"encoding/json"
	"errors"

	"xdao.co/basetools/base64url"
	"xdao.co/basetools/codec"
)

// Request is the JSON form of an Encode call. Absent fields are nil.
//
//	{"hash":"<base64url>","size":1024,"type":38,"hash_type":31}
type Request struct {
	Hash     *base64url.Bytes `json:"hash,omitempty"`
	Size     *int64           `json:"size,omitempty"`
	Type     *Type            `json:"type,omitempty"`
	HashType *HashType        `json:"hash_type,omitempty"`
}

// ParseRequest decodes a JSON request.
//
// A hash that is not a Base64URL string fails with a Type error.
func ParseRequest(b []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		var ute *json.UnmarshalTypeError
		var ce *codec.Error
		switch {
		case errors.As(err, &ute) && ute.Field == "hash", errors.As(err, &ce):
			return Request{}, codec.Wrap(codec.KindType, codec.RuleHashNotBytes, name, "hash must be a byte buffer", err)
		default:
			return Request{}, codec.Wrap(codec.KindValue, codec.RuleBadRequest, name, "malformed request: "+err.Error(), err)
		}
	}
	return r, nil
}

// CID validates r and applies defaults.
func (r Request) CID() (CID, error) {
	if r.Hash == nil {
		return CID{}, codec.Errorf(codec.KindType, codec.RuleHashNotBytes, name, "hash must be a byte buffer")
	}
	if r.Size == nil {
		return CID{}, codec.Errorf(codec.KindValue, codec.RuleSizeMissing, name, "size required")
	}
	var opts []Option
	if r.Type != nil {
		opts = append(opts, WithType(*r.Type))
	}
	if r.HashType != nil {
		opts = append(opts, WithHashType(*r.HashType))
	}
	return New([]byte(*r.Hash), *r.Size, opts...)
}

// Encode returns the Base58 text of the requested CID.
func (r Request) Encode() (string, error) {
	c, err := r.CID()
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// RequestFor returns the fully populated request describing c.
func RequestFor(c CID) Request {
	h := base64url.Bytes(c.Hash)
	size := c.Size
	t := c.Type
	ht := c.HashType
	return Request{Hash: &h, Size: &size, Type: &t, HashType: &ht}
}
