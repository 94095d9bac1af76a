// Package storage defines the content-addressed storage collaborator the
// naming core reads and writes through.
package storage

import "github.com/ipfs/go-cid"

// CAS is a minimal content-addressable store.
//
// Contract:
//   - Put MUST be idempotent and MUST derive the returned CID from the bytes
//     written (callers supply canonical bytes).
//   - Stored objects MUST be immutable.
//   - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// NamedCAS associates a CAS with a stable backend name, for multi-backend
// orchestration that reports per-backend outcomes.
type NamedCAS struct {
	Name string
	CAS  CAS
}
