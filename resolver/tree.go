package resolver

import (
	"context"
	"fmt"
	"io"

	"xdao.co/nametree/record"
	"xdao.co/nametree/table"
)

// WriteTree renders the child tree rooted at rec to w, one child per line,
// indented by one copy of indent per level. Children are listed in the
// table's sorted key order. Descent is bounded by DefaultMaxDepth.
func WriteTree(ctx context.Context, w io.Writer, tables table.Provider, rec record.Record, indent string) error {
	return writeTree(ctx, w, tables, rec, indent, 0)
}

func writeTree(ctx context.Context, w io.Writer, tables table.Provider, rec record.Record, indent string, depth int) error {
	if depth >= DefaultMaxDepth {
		return ErrDepthExceeded
	}
	dom, ok := rec.(*record.Domain)
	if !ok {
		return nil
	}
	tbl, err := tables.TableFor(dom)
	if err != nil {
		return err
	}
	keys, err := tbl.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		child, hit, err := tbl.Get(ctx, key)
		if err != nil {
			return err
		}
		if !hit {
			continue
		}
		prefix := ""
		for i := 0; i <= depth; i++ {
			prefix += indent
		}
		if _, err := fmt.Fprintf(w, "%s%s [%s]\n", prefix, key, child.Kind()); err != nil {
			return err
		}
		if err := writeTree(ctx, w, tables, child, indent, depth+1); err != nil {
			return err
		}
	}
	return nil
}
