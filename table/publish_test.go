package table

import (
	"bytes"
	"testing"

	"xdao.co/nametree/cidutil"
	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/memcas"
)

func TestAsyncPublisherReplicates(t *testing.T) {
	a := memcas.New()
	b := memcas.New()
	p := &AsyncPublisher{Backends: []storage.NamedCAS{
		{Name: "a", CAS: a},
		{Name: "b", CAS: b},
	}}

	data := []byte("record bytes")
	p.Publish([]string{"loc://people"}, "alice", data)
	p.Wait()

	id, err := cidutil.CIDFor(data)
	if err != nil {
		t.Fatalf("CIDFor failed: %v", err)
	}
	for name, cas := range map[string]*memcas.CAS{"a": a, "b": b} {
		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("backend %q missing the record: %v", name, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("backend %q holds wrong bytes", name)
		}
	}
}

func TestAsyncPublisherMutationSafe(t *testing.T) {
	cas := memcas.New()
	p := &AsyncPublisher{Backends: []storage.NamedCAS{{Name: "m", CAS: cas}}}

	data := []byte("original")
	want, err := cidutil.CIDFor(data)
	if err != nil {
		t.Fatalf("CIDFor failed: %v", err)
	}
	p.Publish(nil, "k", data)
	// The caller may reuse the buffer immediately after Publish returns.
	copy(data, "CLOBBER!")
	p.Wait()

	got, err := cas.Get(want)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("published bytes were mutated: %q", got)
	}
}

func TestAsyncPublisherNoBackends(t *testing.T) {
	var p AsyncPublisher
	// Must be a no-op, not a panic.
	p.Publish([]string{"loc://x"}, "k", []byte("v"))
	p.Wait()
}
