package record

import (
	"strings"
	"time"
)

// Kind discriminates stored record variants.
type Kind string

const (
	KindLeaf   Kind = "leaf"
	KindDomain Kind = "domain"
)

// Signature is one entry in a record's append-only signature list.
//
// SignerKey is the signing authority's exported public key string
// (e.g. "ed25519:<base64>"). SignedAt is truncated to whole seconds so the
// value survives serialization round trips byte-for-byte.
type Signature struct {
	SignedAt  time.Time `json:"signedAt"`
	Bytes     []byte    `json:"bytes"`
	SignerKey string    `json:"signerKey"`
}

// Core holds the identity fields and signature list shared by all record
// variants. Variants embed it rather than restating the fields.
//
// Invariant: Signatures is append-only. Re-signing under a new authority adds
// a signature; nothing ever removes or replaces one.
type Core struct {
	// FullNames is the ordered sequence of path names this record claims to
	// represent. It doubles as the "domains" component of the signable
	// payload when this record signs children of its own.
	FullNames []string `json:"fullNames"`

	// PublicLocators is the set of opaque locator strings identifying where
	// the record's content (or, for a domain, its child table) can be
	// fetched.
	PublicLocators []string `json:"publicLocators"`

	// ExpiresAt is advisory metadata. A zero time means no expiry. An
	// expired record remains resolvable unless superseded.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`

	Signatures []Signature `json:"signatures"`
}

// Record is implemented by all record variants.
type Record interface {
	Kind() Kind
	// Base returns the shared identity fields. Mutating the returned Core
	// mutates the record.
	Base() *Core
}

// LeafName is a record that points at content.
type LeafName struct {
	Core
}

func (l *LeafName) Kind() Kind  { return KindLeaf }
func (l *LeafName) Base() *Core { return &l.Core }

// Domain is a record that also owns a table of child records.
//
// Children maps a registered path-prefix key to the child's locator; child
// bodies are never embedded. VerificationKeys is the set of public keys
// authorized to sign entries registered under this domain; any one suffices.
type Domain struct {
	Core
	VerificationKeys []string          `json:"verificationKeys"`
	Children         map[string]string `json:"children,omitempty"`
}

func (d *Domain) Kind() Kind  { return KindDomain }
func (d *Domain) Base() *Core { return &d.Core }

// NewLeaf returns an unsigned leaf record.
func NewLeaf(fullNames, locators []string) *LeafName {
	return &LeafName{Core: Core{
		FullNames:      append([]string(nil), fullNames...),
		PublicLocators: append([]string(nil), locators...),
	}}
}

// NewDomain returns an unsigned domain record with an empty child table.
func NewDomain(fullNames, locators, verificationKeys []string) *Domain {
	return &Domain{
		Core: Core{
			FullNames:      append([]string(nil), fullNames...),
			PublicLocators: append([]string(nil), locators...),
		},
		VerificationKeys: append([]string(nil), verificationKeys...),
		Children:         make(map[string]string),
	}
}

// CheckSegment validates a single registration name segment.
//
// Segments must be non-empty, must not contain '/', and must not contain
// whitespace or control characters (the canonical signable encoding is
// line-oriented and would otherwise be ambiguous).
func CheckSegment(name string) error {
	if name == "" {
		return newError(KindValidation, "NT-VAL-001", "name segment must not be empty")
	}
	if strings.Contains(name, "/") {
		return newError(KindValidation, "NT-VAL-002", "name segment must not contain '/'")
	}
	for _, r := range name {
		if r < 0x21 || r == 0x7f {
			return newError(KindValidation, "NT-VAL-003", "name segment must not contain whitespace or control characters")
		}
	}
	return nil
}

// ChildNames computes a child's full names: each parent name joined with the
// segment. A parent name already ending in "/" (the root) concatenates
// without a second separator, so "/" + "people" is "/people".
func ChildNames(parentNames []string, name string) []string {
	out := make([]string, 0, len(parentNames))
	for _, p := range parentNames {
		if strings.HasSuffix(p, "/") {
			out = append(out, p+name)
			continue
		}
		out = append(out, p+"/"+name)
	}
	return out
}

// Expired reports whether the record's advisory expiry has passed. Records
// with no expiry never expire.
func (c *Core) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// Identity returns a printable identity for diagnostics: the record's first
// full name, or "<unnamed>" when it has none.
func (c *Core) Identity() string {
	if len(c.FullNames) == 0 {
		return "<unnamed>"
	}
	return c.FullNames[0]
}
