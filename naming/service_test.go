package naming

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"xdao.co/nametree/compliance"
	"xdao.co/nametree/keys"
	"xdao.co/nametree/record"
	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/memcas"
)

func testService(t *testing.T) (*Service, *record.Domain) {
	t.Helper()
	signer, err := keys.NewEd25519Signer(bytes.Repeat([]byte{1}, 32))
	if err != nil {
		t.Fatalf("NewEd25519Signer failed: %v", err)
	}
	svc := &Service{
		CAS:    memcas.New(),
		Signer: signer,
		Now:    func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	root := record.NewDomain([]string{"/"}, nil, []string{signer.PublicKey()})
	return svc, root
}

func TestServiceRegisterResolve(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()

	leaf, err := svc.RegisterLocators(ctx, root, "alice", []string{"loc://alice"})
	if err != nil {
		t.Fatalf("RegisterLocators failed: %v", err)
	}
	if leaf.Identity() != "/alice" {
		t.Fatalf("leaf identity = %q", leaf.Identity())
	}

	res, err := svc.Resolve(ctx, root, "alice")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !res.Found {
		t.Fatal("Found = false")
	}
	got := res.Record.(*record.LeafName)
	if got.PublicLocators[0] != "loc://alice" {
		t.Fatalf("locators = %v", got.PublicLocators)
	}
}

func TestServiceNestedDomains(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()

	sub := record.NewDomain(record.ChildNames(root.FullNames, "people"), nil, []string{svc.Signer.PublicKey()})
	if err := svc.Register(ctx, root, "people", sub); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.RegisterLocators(ctx, sub, "alice", []string{"loc://alice"}); err != nil {
		t.Fatalf("RegisterLocators failed: %v", err)
	}

	// Registration mutated sub's child table after sub itself was stored, so
	// re-register the updated domain before resolving through it.
	if err := svc.Register(ctx, root, "people", sub); err != nil {
		t.Fatalf("re-Register failed: %v", err)
	}

	for _, mode := range []compliance.Mode{compliance.Permissive, compliance.Strict} {
		svc.Mode = mode
		res, err := svc.Resolve(ctx, root, "people/alice")
		if err != nil {
			t.Fatalf("Resolve (mode %v) failed: %v", mode, err)
		}
		if !res.Found {
			t.Fatalf("Resolve (mode %v): Found = false", mode)
		}
	}
}

func TestServiceResolveWithReceipt(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()

	if _, err := svc.RegisterLocators(ctx, root, "alice", []string{"loc://alice"}); err != nil {
		t.Fatalf("RegisterLocators failed: %v", err)
	}
	res, err := svc.ResolveWithReceipt(ctx, root, "alice")
	if err != nil {
		t.Fatalf("ResolveWithReceipt failed: %v", err)
	}
	if len(res.Receipt) == 0 || res.ReceiptCID == "" {
		t.Fatal("missing receipt")
	}
	if !strings.Contains(string(res.Receipt), "Found: true") {
		t.Fatalf("receipt:\n%s", res.Receipt)
	}
}

func TestServiceCodedErrors(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()

	var coded *CodedError

	// No CAS configured.
	bare := &Service{Signer: svc.Signer}
	if _, err := bare.Resolve(ctx, root, "x"); !errors.As(err, &coded) || coded.Code != ErrMissingCAS {
		t.Fatalf("got %v, want MISSING_CAS", err)
	}

	// Invalid segment.
	if err := svc.Register(ctx, root, "bad/segment", record.NewLeaf(nil, nil)); !errors.As(err, &coded) || coded.Code != ErrInvalidName {
		t.Fatalf("got %v, want INVALID_NAME", err)
	}

	// Signer key not trusted by the domain.
	other := record.NewDomain([]string{"/other"}, nil, []string{"ed25519:AAAA"})
	if _, err := svc.RegisterLocators(ctx, other, "x", []string{"loc://x"}); !errors.As(err, &coded) || coded.Code != ErrIntegrity {
		t.Fatalf("got %v, want INTEGRITY", err)
	}

	// Opaque child locator cannot be dereferenced.
	root.Children["opaque"] = "loc://not-content-addressed"
	if _, err := svc.Resolve(ctx, root, "opaque"); !errors.As(err, &coded) || coded.Code != ErrInvalidLocator {
		t.Fatalf("got %v, want INVALID_LOCATOR", err)
	}
	delete(root.Children, "opaque")

	// A miss is not an error at all.
	res, err := svc.Resolve(ctx, root, "absent")
	if err != nil {
		t.Fatalf("miss errored: %v", err)
	}
	if res.Found {
		t.Fatal("miss reported Found = true")
	}
}

func TestServiceReplication(t *testing.T) {
	svc, root := testService(t)
	replica := memcas.New()
	svc.Replicas = []storage.NamedCAS{{Name: "mirror", CAS: replica}}
	ctx := context.Background()

	if _, err := svc.RegisterLocators(ctx, root, "alice", []string{"loc://alice"}); err != nil {
		t.Fatalf("RegisterLocators failed: %v", err)
	}
	svc.FlushReplication()

	if replica.Len() == 0 {
		t.Fatal("replica received nothing")
	}
}

func TestServiceTree(t *testing.T) {
	svc, root := testService(t)
	ctx := context.Background()
	if _, err := svc.RegisterLocators(ctx, root, "alice", []string{"loc://alice"}); err != nil {
		t.Fatalf("RegisterLocators failed: %v", err)
	}

	var sb strings.Builder
	if err := svc.Tree(ctx, &sb, root); err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if !strings.Contains(sb.String(), "alice [leaf]") {
		t.Fatalf("tree output:\n%s", sb.String())
	}
}
