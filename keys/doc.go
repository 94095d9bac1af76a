// Package keys provides the signing collaborator: key-pair handling, public
// key string encoding, and the raw signature primitive.
//
// Stable:
//   - Pure, deterministic primitives: public key encoding, digesting,
//     Sign/Verify, role-seed derivation.
//
// Experimental:
//   - Filesystem-backed key storage (Store and related functions). These are
//     local-first conveniences, not part of the protocol contract.
package keys
