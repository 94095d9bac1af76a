package bundle_test

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/nametree/cidutil"
	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/bundle"
	"xdao.co/nametree/storage/memcas"
)

func TestExportIsDeterministic(t *testing.T) {
	cas := memcas.New()
	id1, err := cas.Put([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := cas.Put([]byte("world"))
	if err != nil {
		t.Fatal(err)
	}

	opts := bundle.ExportOptions{
		IncludeIndex: true,
		Labels:       map[string]cid.Cid{"greeting": id1, "subject": id2},
	}
	var outA bytes.Buffer
	if err := bundle.Export(&outA, cas, []cid.Cid{id2, id1, id2}, opts); err != nil {
		t.Fatal(err)
	}
	var outB bytes.Buffer
	if err := bundle.Export(&outB, cas, []cid.Cid{id1, id2}, opts); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(outA.Bytes(), outB.Bytes()) {
		t.Fatal("expected deterministic bundle bytes")
	}
}

func TestImportRoundTrip(t *testing.T) {
	src := memcas.New()
	payload := []byte("payload")
	id, err := src.Put(payload)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, []cid.Cid{id}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	dst := memcas.New()
	if err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatal(err)
	}

	got, err := dst.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch after import")
	}
}

func TestImportRejectsCIDMismatch(t *testing.T) {
	good := []byte("good")
	otherCID, err := cidutil.CIDFor([]byte("other"))
	if err != nil {
		t.Fatal(err)
	}

	// Entry path names otherCID but carries the bytes of "good".
	tarBytes := makeTar(t, "blocks/"+otherCID.String(), good)

	if err := bundle.Import(bytes.NewReader(tarBytes), memcas.New()); err != storage.ErrCIDMismatch {
		t.Fatalf("Import error = %v, want ErrCIDMismatch", err)
	}
}

func TestImportUnknownEntries(t *testing.T) {
	tarBytes := makeTar(t, "notes/readme.txt", []byte("hi"))

	if err := bundle.Import(bytes.NewReader(tarBytes), memcas.New()); err == nil {
		t.Fatal("Import accepted an unknown entry")
	}
	opts := bundle.ImportOptions{IgnoreUnknown: true}
	if err := bundle.ImportWithOptions(bytes.NewReader(tarBytes), memcas.New(), opts); err != nil {
		t.Fatalf("ImportWithOptions(IgnoreUnknown) failed: %v", err)
	}
}

func TestImportRejectsDuplicateBlocks(t *testing.T) {
	payload := []byte("twice")
	id, err := cidutil.CIDFor(payload)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for i := 0; i < 2; i++ {
		writeTarEntry(t, tw, "blocks/"+id.String(), payload)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	if err := bundle.Import(bytes.NewReader(buf.Bytes()), memcas.New()); err == nil {
		t.Fatal("Import accepted a duplicate block entry")
	}
}

func makeTar(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	writeTarEntry(t, tw, name, content)
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeTarEntry(t *testing.T, tw *tar.Writer, name string, content []byte) {
	t.Helper()
	h := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(h); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
}
