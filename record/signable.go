package record

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	payloadPreamble  = "-----BEGIN NAMETREE SIGNABLE-----"
	payloadPostamble = "-----END NAMETREE SIGNABLE-----"
)

// Payload produces the canonical signable bytes for registering child under
// the given parent names at signedAt.
//
// The encoding is the single mandatory canonicalization choke point for
// signing and verification: any two encoders of the same logical record at
// the same instant MUST produce byte-identical output. Field order is fixed,
// list fields carry an explicit count, ordered fields (the parent names)
// keep their order, and set fields (keys, locators) are sorted
// lexicographically.
//
// Covered fields: signedAt, the parent's full names, the registered segment,
// the child's verification keys (empty for leaves), the child's public
// locators, and the child's advisory expiry.
func Payload(child Record, domains []string, name string, signedAt time.Time) ([]byte, error) {
	if child == nil {
		return nil, newError(KindEncode, "NT-ENC-001", "nil record")
	}
	if err := CheckSegment(name); err != nil {
		return nil, err
	}

	var verificationKeys []string
	if d, ok := child.(*Domain); ok {
		verificationKeys = d.VerificationKeys
	}

	core := child.Base()

	var sb strings.Builder
	sb.WriteString(payloadPreamble)
	sb.WriteString("\n")

	sb.WriteString("Signed-At: ")
	sb.WriteString(strconv.FormatInt(signedAt.UTC().Unix(), 10))
	sb.WriteString("\n")

	sb.WriteString("Name: ")
	sb.WriteString(name)
	sb.WriteString("\n")

	if err := writeOrdered(&sb, "Domain", domains); err != nil {
		return nil, err
	}
	if err := writeSet(&sb, "Key", verificationKeys); err != nil {
		return nil, err
	}
	if err := writeSet(&sb, "Locator", core.PublicLocators); err != nil {
		return nil, err
	}

	sb.WriteString("Expires-At: ")
	if core.ExpiresAt.IsZero() {
		sb.WriteString("never")
	} else {
		sb.WriteString(strconv.FormatInt(core.ExpiresAt.UTC().Unix(), 10))
	}
	sb.WriteString("\n")

	sb.WriteString(payloadPostamble)
	return []byte(sb.String()), nil
}

// writeOrdered emits a counted list preserving the caller's element order.
func writeOrdered(sb *strings.Builder, label string, values []string) error {
	sb.WriteString(label)
	sb.WriteString("s-Count: ")
	sb.WriteString(strconv.Itoa(len(values)))
	sb.WriteString("\n")
	for i, v := range values {
		if err := checkLineValue(v); err != nil {
			return err
		}
		sb.WriteString(label)
		sb.WriteString("-")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	return nil
}

// writeSet emits a counted list with set semantics: elements are sorted and
// de-duplicated so encoders disagree on nothing.
func writeSet(sb *strings.Builder, label string, values []string) error {
	uniq := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		uniq = append(uniq, v)
	}
	sort.Strings(uniq)
	return writeOrdered(sb, label, uniq)
}

func checkLineValue(v string) error {
	if v == "" {
		return newError(KindEncode, "NT-ENC-002", "empty value in signable payload")
	}
	if strings.ContainsAny(v, "\r\n") {
		return newError(KindEncode, "NT-ENC-003", "value must not contain newlines")
	}
	if strings.HasPrefix(v, " ") || strings.HasSuffix(v, " ") || strings.HasSuffix(v, "\t") {
		return newError(KindEncode, "NT-ENC-004", "leading or trailing whitespace forbidden")
	}
	return nil
}
