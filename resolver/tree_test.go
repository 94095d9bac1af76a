package resolver

import (
	"context"
	"strings"
	"testing"
)

func TestWriteTree(t *testing.T) {
	fx := buildFixture(t)

	var sb strings.Builder
	if err := WriteTree(context.Background(), &sb, fx.tables, fx.root, "  "); err != nil {
		t.Fatalf("WriteTree failed: %v", err)
	}
	got := sb.String()
	want := "" +
		"  testingtoplevel [domain]\n" +
		"    adomain [domain]\n" +
		"      item1 [leaf]\n"
	if got != want {
		t.Fatalf("WriteTree:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteTreeLeafIsEmpty(t *testing.T) {
	fx := buildFixture(t)
	var sb strings.Builder
	if err := WriteTree(context.Background(), &sb, fx.tables, fx.item, "  "); err != nil {
		t.Fatalf("WriteTree failed: %v", err)
	}
	if sb.Len() != 0 {
		t.Fatalf("leaf tree output: %q", sb.String())
	}
}
