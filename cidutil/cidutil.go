// Package cidutil derives content identifiers and classifies locator strings.
//
// Locators are opaque strings. A locator that parses as a CID refers to bytes
// in a content-addressed store; anything else (e.g. "loc://...") is treated as
// an external reference this module never dereferences.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// LocatorFor returns the canonical CID-string locator for data: CIDv1 with the
// "raw" multicodec and a sha2-256 multihash.
func LocatorFor(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid hash selections; SHA2_256 with
		// default length cannot fail.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// CIDFor returns the CIDv1 (raw + sha2-256) derived from data.
func CIDFor(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ParseLocator decodes a locator string as a CID. The second return is false
// for opaque locators that are not content identifiers.
func ParseLocator(locator string) (cid.Cid, bool) {
	id, err := cid.Decode(locator)
	if err != nil || !id.Defined() {
		return cid.Undef, false
	}
	return id, true
}
