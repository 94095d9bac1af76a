// Package receipt renders canonical resolution receipts: deterministic text
// documents binding a resolution outcome to the record it produced, suitable
// for content addressing and out-of-band audit.
package receipt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"xdao.co/nametree/cidutil"
	"xdao.co/nametree/keys"
	"xdao.co/nametree/resolver"
	"xdao.co/nametree/wire"
)

const (
	Preamble  = "-----BEGIN NAMETREE RESOLUTION-----"
	Postamble = "-----END NAMETREE RESOLUTION-----"
)

// ReceiptCID returns the content identifier of a rendered receipt.
// This is an IPFS-compatible CIDv1 (raw + sha2-256) over the canonical bytes.
func ReceiptCID(receiptBytes []byte) string {
	return cidutil.LocatorFor(receiptBytes)
}

type RenderOptions struct {
	ResolverID string
	ResolvedAt time.Time // informational only; zero means omit

	// Optional receipt signing. If Signer is set, the CRYPTO section is
	// populated and the signature is computed over the receipt bytes
	// excluding the Signature: line.
	Signer keys.Signer
}

// Render produces a canonical receipt for out. Sections are always present
// and ordering is deterministic: rendering the same outcome twice yields
// byte-identical documents.
func Render(out *resolver.Outcome, opts RenderOptions) ([]byte, error) {
	resolverID := opts.ResolverID
	if resolverID == "" {
		resolverID = "nametree-resolver-reference"
	}

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	// META
	sb.WriteString("META\n")
	metaLines := []string{
		"Resolver-ID: " + resolverID,
		"Spec: nametree-receipt-1",
		"Version: 1",
	}
	if !opts.ResolvedAt.IsZero() {
		metaLines = append(metaLines, "Resolved-At: "+opts.ResolvedAt.UTC().Format(time.RFC3339))
	}
	sort.Strings(metaLines)
	for _, l := range metaLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// QUERY
	sb.WriteString("QUERY\n")
	queryLines := []string{
		"Lookups: " + strconv.Itoa(out.Lookups),
		"Origin: " + out.Origin,
		"Path: " + out.Path,
	}
	sort.Strings(queryLines)
	for _, l := range queryLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// RESULT
	sb.WriteString("RESULT\n")
	if out.Found {
		encoded, err := wire.Encode(out.Record)
		if err != nil {
			return nil, fmt.Errorf("receipt: encode result record: %w", err)
		}
		resultLines := []string{
			"Found: true",
			"Record-CID: " + cidutil.LocatorFor(encoded),
			"Record-Kind: " + string(out.Record.Kind()),
		}
		for _, loc := range sortedSet(out.Record.Base().PublicLocators) {
			resultLines = append(resultLines, "Record-Locator: "+loc)
		}
		sort.Strings(resultLines)
		for _, l := range resultLines {
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("Found: false\n")
	}
	sb.WriteString("\n")

	// CRYPTO
	sb.WriteString("CRYPTO\n")
	if opts.Signer != nil {
		cryptoLines := []string{
			"Hash-Alg: sha256",
			"Resolver-Key: " + opts.Signer.PublicKey(),
			"Signature: 0",
		}
		sort.Strings(cryptoLines)
		for _, l := range cryptoLines {
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString(Postamble)
	sb.WriteString("\n")
	doc := []byte(sb.String())

	if opts.Signer != nil {
		sig, err := sign(doc, opts.Signer)
		if err != nil {
			return nil, err
		}
		doc = []byte(strings.Replace(string(doc), "Signature: 0", "Signature: "+sig, 1))
	}
	return doc, nil
}

// VerifySignature checks a signed receipt against the resolver key it names.
// Unsigned receipts verify as false.
func VerifySignature(receiptBytes []byte) bool {
	lines := strings.Split(string(receiptBytes), "\n")
	var resolverKey, sig string
	for _, l := range lines {
		if strings.HasPrefix(l, "Resolver-Key: ") {
			resolverKey = strings.TrimPrefix(l, "Resolver-Key: ")
		}
		if strings.HasPrefix(l, "Signature: ") {
			sig = strings.TrimPrefix(l, "Signature: ")
		}
	}
	if resolverKey == "" || sig == "" || sig == "0" {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return false
	}
	scope, err := signatureScope(receiptBytes)
	if err != nil {
		return false
	}
	return keys.Verify(resolverKey, scope, raw)
}

func sign(receiptBytes []byte, signer keys.Signer) (string, error) {
	scope, err := signatureScope(receiptBytes)
	if err != nil {
		return "", err
	}
	sig, err := signer.Sign(scope)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func signatureScope(receiptBytes []byte) ([]byte, error) {
	lines := strings.Split(string(receiptBytes), "\n")
	var out []string
	removed := false
	for _, l := range lines {
		if strings.HasPrefix(l, "Signature: ") {
			if removed {
				return nil, errors.New("multiple Signature lines")
			}
			removed = true
			continue
		}
		out = append(out, l)
	}
	if !removed {
		return nil, errors.New("missing Signature line")
	}
	return []byte(strings.Join(out, "\n")), nil
}

func sortedSet(vals []string) []string {
	out := append([]string(nil), vals...)
	sort.Strings(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
