// Package compliance selects how aggressively resolution rejects ambiguity.
package compliance

// Mode controls verification during resolution.
//
// Permissive resolution treats signatures as registration-time concerns and
// resolves whatever the tables contain. Strict resolution re-verifies every
// matched record against its parent domain's verification keys and prefers
// explicit failure over silent acceptance.
type Mode int

const (
	Permissive Mode = iota
	Strict
)
