package naming

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/ipfs/go-cid"

	"xdao.co/nametree/cidutil"
	"xdao.co/nametree/record"
	"xdao.co/nametree/resolver"
	"xdao.co/nametree/storage/bundle"
	"xdao.co/nametree/wire"
)

// ExportBundle writes a deterministic block bundle holding every record
// reachable from root through its content-addressed child locators, labelled
// by resolution path. The bundle replicates the tree offline: import it into
// another store and resolve against the same root record there.
//
// The root record itself travels as a file, not as a bundle block; only its
// descendants live in the CAS.
func (s *Service) ExportBundle(ctx context.Context, root record.Record, w io.Writer) error {
	if s.CAS == nil {
		return NewError(ErrMissingCAS, "no content-addressed store configured")
	}
	var ids []cid.Cid
	labels := make(map[string]cid.Cid)
	if err := s.collectBlocks(ctx, root, "", 0, &ids, labels); err != nil {
		return err
	}
	opts := bundle.ExportOptions{Labels: labels, IncludeIndex: true}
	return mapErr(bundle.Export(w, s.CAS, ids, opts))
}

// ImportBundle stores every block of a bundle into the service store. Blocks
// are validated against their CIDs; a tampered bundle imports nothing useful.
func (s *Service) ImportBundle(r io.Reader) error {
	if s.CAS == nil {
		return NewError(ErrMissingCAS, "no content-addressed store configured")
	}
	return mapErr(bundle.Import(r, s.CAS))
}

func (s *Service) collectBlocks(ctx context.Context, rec record.Record, prefix string, depth int, ids *[]cid.Cid, labels map[string]cid.Cid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dom, ok := rec.(*record.Domain)
	if !ok {
		return nil
	}
	maxDepth := s.MaxDepth
	if maxDepth <= 0 {
		maxDepth = resolver.DefaultMaxDepth
	}
	if depth >= maxDepth {
		return mapErr(resolver.ErrDepthExceeded)
	}

	keys := make([]string, 0, len(dom.Children))
	for k := range dom.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		locator := dom.Children[key]
		id, ok := cidutil.ParseLocator(locator)
		if !ok {
			return NewError(ErrInvalidLocator, fmt.Sprintf("child %q has a non content-addressed locator", key))
		}
		b, err := s.CAS.Get(id)
		if err != nil {
			return mapErr(err)
		}
		child, err := wire.Decode(b)
		if err != nil {
			return mapErr(err)
		}
		*ids = append(*ids, id)
		labels[prefix+key] = id
		if err := s.collectBlocks(ctx, child, prefix+key+"/", depth+1, ids, labels); err != nil {
			return err
		}
	}
	return nil
}
