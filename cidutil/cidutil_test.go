package cidutil

import (
	"strings"
	"testing"
)

func TestLocatorForStableAndContentBound(t *testing.T) {
	a := LocatorFor([]byte("hello"))
	b := LocatorFor([]byte("hello"))
	c := LocatorFor([]byte("world"))

	if a == "" {
		t.Fatal("LocatorFor returned an empty locator")
	}
	if a != b {
		t.Fatal("same bytes produced different locators")
	}
	if a == c {
		t.Fatal("different bytes produced the same locator")
	}
	// CIDv1 base32 strings start with "b".
	if !strings.HasPrefix(a, "b") {
		t.Fatalf("unexpected locator form: %s", a)
	}
}

func TestParseLocator(t *testing.T) {
	loc := LocatorFor([]byte("payload"))
	id, ok := ParseLocator(loc)
	if !ok {
		t.Fatalf("ParseLocator rejected %s", loc)
	}
	want, err := CIDFor([]byte("payload"))
	if err != nil {
		t.Fatalf("CIDFor failed: %v", err)
	}
	if id != want {
		t.Fatalf("ParseLocator = %s, want %s", id, want)
	}

	for _, opaque := range []string{"", "loc://external", "https://example.org/x", "not a cid"} {
		if _, ok := ParseLocator(opaque); ok {
			t.Fatalf("ParseLocator accepted opaque locator %q", opaque)
		}
	}
}
