package keys

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestEd25519SignVerify(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	signer, err := NewEd25519Signer(seed)
	if err != nil {
		t.Fatalf("NewEd25519Signer failed: %v", err)
	}

	payload := []byte("canonical payload bytes")
	sig, err := signer.Sign(payload)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify(signer.PublicKey(), payload, sig) {
		t.Fatal("Verify = false for valid signature")
	}
	if Verify(signer.PublicKey(), []byte("tampered"), sig) {
		t.Fatal("Verify accepted a tampered payload")
	}
	sig[0] ^= 0xff
	if Verify(signer.PublicKey(), payload, sig) {
		t.Fatal("Verify accepted a tampered signature")
	}
}

func TestDilithium3SignVerify(t *testing.T) {
	signer, err := GenerateDilithium3Signer(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateDilithium3Signer failed: %v", err)
	}
	if !strings.HasPrefix(signer.PublicKey(), AlgDilithium3+":") {
		t.Fatalf("unexpected public key form: %s", signer.PublicKey())
	}

	payload := []byte("canonical payload bytes")
	sig, err := signer.Sign(payload)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify(signer.PublicKey(), payload, sig) {
		t.Fatal("Verify = false for valid signature")
	}
	if Verify(signer.PublicKey(), []byte("tampered"), sig) {
		t.Fatal("Verify accepted a tampered payload")
	}
}

func TestVerifyMalformedInputs(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	signer, _ := NewEd25519Signer(seed)
	payload := []byte("payload")
	sig, _ := signer.Sign(payload)

	cases := []struct {
		name string
		key  string
	}{
		{"no algorithm prefix", "notakey"},
		{"unknown algorithm", "rsa:AAAA"},
		{"bad base64", AlgEd25519 + ":!!!"},
		{"wrong key size", AlgEd25519 + ":AAAA"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Verify(tc.key, payload, sig) {
				t.Fatalf("Verify accepted malformed key %q", tc.key)
			}
		})
	}
}

func TestDeriveRoleSeedDeterministic(t *testing.T) {
	root := bytes.Repeat([]byte{3}, 32)

	a, err := DeriveRoleSeed(root, "register")
	if err != nil {
		t.Fatalf("DeriveRoleSeed failed: %v", err)
	}
	b, err := DeriveRoleSeed(root, "register")
	if err != nil {
		t.Fatalf("DeriveRoleSeed failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same role derived different seeds")
	}

	c, err := DeriveRoleSeed(root, "mirror")
	if err != nil {
		t.Fatalf("DeriveRoleSeed failed: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatal("distinct roles derived the same seed")
	}
	if bytes.Equal(a, root) {
		t.Fatal("derived seed equals the root seed")
	}

	if _, err := DeriveRoleSeed([]byte("short"), "register"); err == nil {
		t.Fatal("DeriveRoleSeed accepted a short root seed")
	}
	if _, err := DeriveRoleSeed(root, "bad role"); err == nil {
		t.Fatal("DeriveRoleSeed accepted an invalid role")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	seed := bytes.Repeat([]byte{9}, 32)

	pub, _, err := store.InitRootKey("registry", seed, false)
	if err != nil {
		t.Fatalf("InitRootKey failed: %v", err)
	}
	if pub != PublicKeyFromSeed(seed) {
		t.Fatal("InitRootKey returned a different public key")
	}

	// Second init without overwrite must refuse.
	if _, _, err := store.InitRootKey("registry", seed, false); err == nil {
		t.Fatal("InitRootKey overwrote an existing key without --force")
	}

	rolePub, _, err := store.DeriveRoleKey("registry", "register", false)
	if err != nil {
		t.Fatalf("DeriveRoleKey failed: %v", err)
	}

	exported, err := store.ExportPublicKey("registry", "register")
	if err != nil {
		t.Fatalf("ExportPublicKey failed: %v", err)
	}
	if exported != rolePub {
		t.Fatalf("exported role key %s, derived %s", exported, rolePub)
	}

	signer, err := store.Signer("registry", "register")
	if err != nil {
		t.Fatalf("Signer failed: %v", err)
	}
	if signer.PublicKey() != rolePub {
		t.Fatal("Signer public key does not match the derived role key")
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "registry" {
		t.Fatalf("List = %+v", entries)
	}
	if len(entries[0].Roles) != 1 || entries[0].Roles[0] != "register" {
		t.Fatalf("List roles = %v", entries[0].Roles)
	}
}

func TestParseSeedHex(t *testing.T) {
	seed := bytes.Repeat([]byte{0xab}, 32)
	hexSeed := strings.Repeat("ab", 32)

	got, err := ParseSeedHex(hexSeed)
	if err != nil {
		t.Fatalf("ParseSeedHex failed: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Fatal("ParseSeedHex decoded wrong bytes")
	}
	if _, err := ParseSeedHex("0x" + hexSeed); err != nil {
		t.Fatalf("ParseSeedHex rejected 0x prefix: %v", err)
	}
	if _, err := ParseSeedHex("abcd"); err == nil {
		t.Fatal("ParseSeedHex accepted a short seed")
	}
	if _, err := ParseSeedHex("zz" + hexSeed[2:]); err == nil {
		t.Fatal("ParseSeedHex accepted non-hex input")
	}
}

func TestCheckKeyNameAndRole(t *testing.T) {
	for _, ok := range []string{"registry", "Registry-2", "a_b"} {
		if err := CheckKeyName(ok); err != nil {
			t.Fatalf("CheckKeyName(%q) failed: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a b", "a/b", "a.b", "../escape"} {
		if err := CheckKeyName(bad); err == nil {
			t.Fatalf("CheckKeyName(%q): expected error", bad)
		}
		if err := CheckRole(bad); err == nil {
			t.Fatalf("CheckRole(%q): expected error", bad)
		}
	}
}

func TestFingerprint(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	pub := PublicKeyFromSeed(seed)

	fp := Fingerprint(pub)
	if !strings.HasPrefix(fp, "sha3-256:") {
		t.Fatalf("Fingerprint = %q, want sha3-256 prefix", fp)
	}
	if fp != Fingerprint(pub) {
		t.Fatal("Fingerprint not deterministic")
	}

	other := PublicKeyFromSeed(bytes.Repeat([]byte{8}, 32))
	if Fingerprint(other) == fp {
		t.Fatal("distinct keys produced the same fingerprint")
	}

	for _, bad := range []string{"", "no-separator", ":b64only", "ed25519:%%%"} {
		if got := Fingerprint(bad); got != "" {
			t.Fatalf("Fingerprint(%q) = %q, want empty", bad, got)
		}
	}
}
