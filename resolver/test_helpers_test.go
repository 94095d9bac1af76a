package resolver

import (
	"bytes"
	"context"
	"testing"
	"time"

	"xdao.co/nametree/keys"
	"xdao.co/nametree/record"
	"xdao.co/nametree/table"
)

// ----- test helpers -----

func newSigner(t *testing.T) *keys.Ed25519Signer {
	t.Helper()
	s, err := keys.NewEd25519Signer(bytes.Repeat([]byte{1}, 32))
	if err != nil {
		t.Fatalf("NewEd25519Signer failed: %v", err)
	}
	return s
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// fixture is a three-level tree:
//
//	/ (root)
//	└── testingtoplevel
//	    └── adomain
//	        └── item1 -> loc://item1
type fixture struct {
	tables *table.MemTables
	signer *keys.Ed25519Signer
	root   *record.Domain
	top    *record.Domain
	sub    *record.Domain
	item   *record.LeafName
}

func buildFixture(t *testing.T) *fixture {
	t.Helper()
	signer := newSigner(t)
	tables := table.NewMemTables()
	reg := &table.Registrar{Signer: signer, Tables: tables, Now: fixedClock()}
	ctx := context.Background()

	key := signer.PublicKey()
	root := record.NewDomain([]string{"/"}, nil, []string{key})
	top := record.NewDomain(record.ChildNames(root.FullNames, "testingtoplevel"), nil, []string{key})
	sub := record.NewDomain(record.ChildNames(top.FullNames, "adomain"), nil, []string{key})
	item := record.NewLeaf(record.ChildNames(sub.FullNames, "item1"), []string{"loc://item1"})

	if err := reg.Register(ctx, root, "testingtoplevel", top); err != nil {
		t.Fatalf("register testingtoplevel: %v", err)
	}
	if err := reg.Register(ctx, top, "adomain", sub); err != nil {
		t.Fatalf("register adomain: %v", err)
	}
	if err := reg.Register(ctx, sub, "item1", item); err != nil {
		t.Fatalf("register item1: %v", err)
	}

	return &fixture{tables: tables, signer: signer, root: root, top: top, sub: sub, item: item}
}

func mustResolve(t *testing.T, r *Resolver, start record.Record, path string) *Outcome {
	t.Helper()
	out, err := r.Resolve(context.Background(), start, path)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", path, err)
	}
	return out
}
