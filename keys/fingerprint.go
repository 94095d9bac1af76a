package keys

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns a short sha3-256 fingerprint of an exported public key
// string, for display in listings and logs. The full key string stays the
// canonical identity; the fingerprint is a human-friendly handle only.
// Malformed keys fingerprint as the empty string.
func Fingerprint(publicKey string) string {
	alg, enc, ok := strings.Cut(publicKey, ":")
	if !ok || alg == "" {
		return ""
	}
	raw, err := decodeBase64(enc)
	if err != nil || len(raw) == 0 {
		return ""
	}
	sum := sha3.Sum256(raw)
	return "sha3-256:" + hex.EncodeToString(sum[:8])
}
