package wire

import (
	"encoding/json"
	"testing"
	"time"

	"xdao.co/nametree/record"
)

func TestEncodeDecodeLeaf(t *testing.T) {
	leaf := record.NewLeaf([]string{"/people/alice"}, []string{"loc://alice"})
	leaf.ExpiresAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	leaf.Signatures = append(leaf.Signatures, record.Signature{
		SignedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Bytes:     []byte{1, 2, 3},
		SignerKey: "ed25519:AAAA",
	})

	b, err := Encode(leaf)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	rec, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, ok := rec.(*record.LeafName)
	if !ok {
		t.Fatalf("Decode returned %T, want *record.LeafName", rec)
	}
	if got.Identity() != "/people/alice" {
		t.Fatalf("identity = %q", got.Identity())
	}
	if len(got.Signatures) != 1 || got.Signatures[0].SignerKey != "ed25519:AAAA" {
		t.Fatalf("signatures = %+v", got.Signatures)
	}
	if !got.ExpiresAt.Equal(leaf.ExpiresAt) {
		t.Fatalf("expiresAt = %v", got.ExpiresAt)
	}
}

func TestEncodeDecodeDomain(t *testing.T) {
	dom := record.NewDomain([]string{"/people"}, []string{"loc://people"}, []string{"ed25519:BBBB"})
	dom.Children["alice"] = "bafy-alice"

	b, err := Encode(dom)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	rec, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, ok := rec.(*record.Domain)
	if !ok {
		t.Fatalf("Decode returned %T, want *record.Domain", rec)
	}
	if got.Children["alice"] != "bafy-alice" {
		t.Fatalf("children = %v", got.Children)
	}
	if len(got.VerificationKeys) != 1 || got.VerificationKeys[0] != "ed25519:BBBB" {
		t.Fatalf("verification keys = %v", got.VerificationKeys)
	}
}

func TestDecodeEmptyDomainHasChildTable(t *testing.T) {
	b, err := Encode(record.NewDomain([]string{"/"}, nil, nil))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	rec, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.(*record.Domain).Children == nil {
		t.Fatal("decoded domain has nil child table")
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "----"},
		{"unknown kind", `{"version":1,"kind":"widget","body":{}}`},
		{"wrong version", `{"version":99,"kind":"leaf","body":{}}`},
		{"bad body", `{"version":1,"kind":"leaf","body":"notanobject"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode([]byte(tc.data)); err == nil {
				t.Fatalf("Decode accepted %s", tc.data)
			}
		})
	}
}

func TestEnvelopeShape(t *testing.T) {
	b, err := Encode(record.NewLeaf([]string{"/a/x"}, nil))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("envelope not an object: %v", err)
	}
	for _, field := range []string{"version", "kind", "body"} {
		if _, ok := env[field]; !ok {
			t.Fatalf("envelope missing %q: %s", field, b)
		}
	}
}

func TestKindsRegistered(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 2 || kinds[0] != record.KindDomain || kinds[1] != record.KindLeaf {
		t.Fatalf("Kinds = %v", kinds)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Register did not panic")
		}
	}()
	Register(record.KindLeaf, func(body []byte) (record.Record, error) { return nil, nil })
}
