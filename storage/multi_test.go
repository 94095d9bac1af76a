package storage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/nametree/cidutil"
)

// mapCAS is a minimal in-package CAS for composition tests.
type mapCAS struct {
	objects map[cid.Cid][]byte
	putErr  error
	getErr  error
}

func newMapCAS() *mapCAS { return &mapCAS{objects: map[cid.Cid][]byte{}} }

func (c *mapCAS) Put(data []byte) (cid.Cid, error) {
	if c.putErr != nil {
		return cid.Undef, c.putErr
	}
	id, err := cidutil.CIDFor(data)
	if err != nil {
		return cid.Undef, err
	}
	c.objects[id] = append([]byte(nil), data...)
	return id, nil
}

func (c *mapCAS) Get(id cid.Cid) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	b, ok := c.objects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (c *mapCAS) Has(id cid.Cid) bool {
	_, ok := c.objects[id]
	return ok
}

func TestMultiCASOrderedFallback(t *testing.T) {
	first := newMapCAS()
	second := newMapCAS()
	m := MultiCAS{Adapters: []CAS{first, second}}

	data := []byte("only in the second adapter")
	id, err := second.Put(data)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("Get returned wrong bytes")
	}
	if !m.Has(id) {
		t.Fatal("Has = false though the second adapter holds the object")
	}

	// Put writes only to the first adapter.
	other := []byte("written via multi")
	oid, err := m.Put(other)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !first.Has(oid) {
		t.Fatal("Put did not reach the first adapter")
	}
	if second.Has(oid) {
		t.Fatal("Put leaked to the second adapter")
	}
}

func TestMultiCASStopsOnRealError(t *testing.T) {
	boom := errors.New("backend exploded")
	broken := newMapCAS()
	broken.getErr = boom
	healthy := newMapCAS()
	id, _ := healthy.Put([]byte("present"))

	m := MultiCAS{Adapters: []CAS{broken, healthy}}
	if _, err := m.Get(id); !errors.Is(err, boom) {
		t.Fatalf("Get: got %v, want the backend error", err)
	}
}

func TestMultiCASEmpty(t *testing.T) {
	var m MultiCAS
	if _, err := m.Put([]byte("x")); err == nil {
		t.Fatal("Put on empty MultiCAS did not fail")
	}
	id, _ := cidutil.CIDFor([]byte("x"))
	if _, err := m.Get(id); !IsNotFound(err) {
		t.Fatalf("Get: got %v, want ErrNotFound", err)
	}
}

func TestReplicatingCASPutAll(t *testing.T) {
	a := newMapCAS()
	b := newMapCAS()
	r := ReplicatingCAS{Backends: []NamedCAS{{Name: "a", CAS: a}, {Name: "b", CAS: b}}}

	data := []byte("replicate me")
	id, perBackend, err := r.PutAll(data)
	if err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}
	want, _ := cidutil.CIDFor(data)
	if id != want {
		t.Fatalf("canonical CID mismatch: got %s want %s", id, want)
	}
	for _, name := range []string{"a", "b"} {
		if perBackend[name] != want {
			t.Fatalf("backend %q reported %s", name, perBackend[name])
		}
	}
	if !a.Has(id) || !b.Has(id) {
		t.Fatal("object missing from a replica")
	}
}

func TestReplicatingCASPropagatesWriteFailure(t *testing.T) {
	boom := errors.New("disk full")
	a := newMapCAS()
	b := newMapCAS()
	b.putErr = boom
	r := ReplicatingCAS{Backends: []NamedCAS{{Name: "a", CAS: a}, {Name: "b", CAS: b}}}

	if _, _, err := r.PutAll([]byte("data")); !errors.Is(err, boom) {
		t.Fatalf("PutAll: got %v, want the backend error", err)
	}
}

func TestReplicatingCASReadFallback(t *testing.T) {
	a := newMapCAS()
	b := newMapCAS()
	id, _ := b.Put([]byte("only in b"))
	r := ReplicatingCAS{Backends: []NamedCAS{{Name: "a", CAS: a}, {Name: "b", CAS: b}}}

	got, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "only in b" {
		t.Fatalf("Get = %q", got)
	}
	if !r.Has(id) {
		t.Fatal("Has = false")
	}
}
