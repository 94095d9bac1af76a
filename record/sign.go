package record

import (
	"time"

	"xdao.co/nametree/keys"
)

// SignAt signs child's canonical payload for registration under domain as
// name, appending one signature. The signature list is append-only: signing
// under an additional authority accumulates, it never replaces.
//
// The signer key recorded is the signer's exported public key; verification
// later requires that key to be a member of the verifying domain's
// verification key set.
func SignAt(signer keys.Signer, domain *Domain, name string, child Record, signedAt time.Time) error {
	if signer == nil {
		return newError(KindIntegrity, "NT-SIG-001", "nil signer")
	}
	if domain == nil {
		return newError(KindIntegrity, "NT-SIG-002", "nil signing domain")
	}
	signedAt = signedAt.UTC().Truncate(time.Second)
	payload, err := Payload(child, domain.FullNames, name, signedAt)
	if err != nil {
		return err
	}
	sigBytes, err := signer.Sign(payload)
	if err != nil {
		return &Error{Kind: KindIntegrity, RuleID: "NT-SIG-003", Message: "signature primitive failed", Cause: err}
	}
	core := child.Base()
	core.Signatures = append(core.Signatures, Signature{
		SignedAt:  signedAt,
		Bytes:     sigBytes,
		SignerKey: signer.PublicKey(),
	})
	return nil
}

// Sign is SignAt with the current wall-clock time.
func Sign(signer keys.Signer, domain *Domain, name string, child Record) error {
	return SignAt(signer, domain, name, child, time.Now())
}

// Verify reports whether any of child's signatures was produced by a key in
// domain's current verification key set over the recomputed canonical
// payload.
//
// The payload is recomputed from domain's *current* full names and each
// signature's own signedAt. Consequence: verification is unstable under
// renaming. If the verifying domain's full names change after signing,
// previously valid signatures stop verifying; re-registration appends a
// fresh signature under the new names.
//
// Verify returns false rather than an error when no signature matches;
// callers that require a signed record must check the result explicitly.
func Verify(domain *Domain, name string, child Record) bool {
	if domain == nil || child == nil {
		return false
	}
	trusted := make(map[string]bool, len(domain.VerificationKeys))
	for _, k := range domain.VerificationKeys {
		trusted[k] = true
	}
	for _, sig := range child.Base().Signatures {
		if !trusted[sig.SignerKey] {
			continue
		}
		payload, err := Payload(child, domain.FullNames, name, sig.SignedAt)
		if err != nil {
			continue
		}
		if keys.Verify(sig.SignerKey, payload, sig.Bytes) {
			return true
		}
	}
	return false
}
