package memcas

import (
	"testing"

	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/casregistry"
	"xdao.co/nametree/storage/testkit"
)

func TestMemCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		t.Helper()
		return New()
	})
}

func TestMemCAS_Len(t *testing.T) {
	cas := New()
	if cas.Len() != 0 {
		t.Fatalf("Len = %d for empty store", cas.Len())
	}
	if _, err := cas.Put([]byte("a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := cas.Put([]byte("a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := cas.Put([]byte("b")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if cas.Len() != 2 {
		t.Fatalf("Len = %d, want 2", cas.Len())
	}
}

// A per-process store cannot serve two CLI invocations, so "mem" registers
// for daemon use only. Binaries that cannot open it should not link it.
func TestMemCAS_RegistersDaemonOnly(t *testing.T) {
	found := false
	for _, b := range casregistry.List(casregistry.UsageDaemon) {
		if b.Name == "mem" {
			found = true
		}
	}
	if !found {
		t.Fatal("mem backend not registered for daemon use")
	}
	for _, b := range casregistry.List(casregistry.UsageCLI) {
		if b.Name == "mem" {
			t.Fatal("mem backend offered for CLI use")
		}
	}
	if _, _, err := casregistry.Open("mem", casregistry.UsageCLI); err == nil {
		t.Fatal("Open(mem, UsageCLI) succeeded")
	}
}
