package cid

import (
	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/basetools/codec"
)

// IPFS returns the CIDv1 ("raw" multicodec) whose multihash wraps the digest
// of c. Only HashBlake3 digests can be expressed.
func (c CID) IPFS() (gocid.Cid, error) {
	if c.HashType != HashBlake3 {
		return gocid.Undef, codec.Errorf(codec.KindValue, codec.RuleHashUnmappable, name, "hash type 0x%02x has no multihash equivalent", byte(c.HashType))
	}
	mh, err := multihash.Encode(c.Hash, multihash.BLAKE3)
	if err != nil {
		return gocid.Undef, codec.Wrap(codec.KindValue, codec.RuleHashUnmappable, name, "multihash: "+err.Error(), err)
	}
	return gocid.NewCidV1(gocid.Raw, multihash.Multihash(mh)), nil
}

// FromIPFS converts a raw blake3 CIDv1 to a TypeRaw CID with the given size.
func FromIPFS(id gocid.Cid, size int64) (CID, error) {
	if !id.Defined() {
		return CID{}, codec.Errorf(codec.KindValue, codec.RuleHashUnmappable, name, "undefined IPFS CID")
	}
	if id.Prefix().Codec != gocid.Raw {
		return CID{}, codec.Errorf(codec.KindValue, codec.RuleHashUnmappable, name, "IPFS CID codec 0x%x is not raw", id.Prefix().Codec)
	}
	dm, err := multihash.Decode(id.Hash())
	if err != nil {
		return CID{}, codec.Wrap(codec.KindValue, codec.RuleHashUnmappable, name, "multihash: "+err.Error(), err)
	}
	if dm.Code != multihash.BLAKE3 {
		return CID{}, codec.Errorf(codec.KindValue, codec.RuleHashUnmappable, name, "multihash %s has no hash type equivalent", dm.Name)
	}
	return New(dm.Digest, size)
}
