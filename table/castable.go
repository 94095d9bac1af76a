package table

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"xdao.co/nametree/cidutil"
	"xdao.co/nametree/record"
	"xdao.co/nametree/storage"
	"xdao.co/nametree/wire"
)

// ErrOpaqueLocator reports a child reference whose locator is not
// content-addressed; this table cannot dereference it.
var ErrOpaqueLocator = errors.New("table: locator is not content-addressed")

// CASTables is a Provider backing every domain's table with one
// content-addressed store. Child bodies live in the CAS; the domain's
// children map holds their CID-string locators.
//
// A stored domain body is an immutable snapshot. Mutating a child domain's
// table changes the child's CID, so the parent's stored locator goes stale:
// after registering under a nested domain, re-register that domain with each
// ancestor up to the root before resolving through stored records.
type CASTables struct {
	CAS storage.CAS
}

func (p CASTables) TableFor(d *record.Domain) (Table, error) {
	if p.CAS == nil {
		return nil, errors.New("table: missing CAS")
	}
	if d == nil {
		return nil, errors.New("table: nil domain")
	}
	return &CASTable{domain: d, cas: p.CAS}, nil
}

// CASTable reads and writes one domain's children through a CAS.
type CASTable struct {
	domain *record.Domain
	cas    storage.CAS
}

var _ Table = (*CASTable)(nil)

func (t *CASTable) Get(ctx context.Context, key string) (record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	locator, ok := t.domain.Children[key]
	if !ok {
		return nil, false, nil
	}
	id, ok := cidutil.ParseLocator(locator)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrOpaqueLocator, locator)
	}
	b, err := t.cas.Get(id)
	if err != nil {
		return nil, false, err
	}
	rec, err := wire.Decode(b)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (t *CASTable) Set(ctx context.Context, key string, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := wire.Encode(rec)
	if err != nil {
		return err
	}
	id, err := t.cas.Put(b)
	if err != nil {
		return err
	}
	if t.domain.Children == nil {
		t.domain.Children = make(map[string]string)
	}
	t.domain.Children[key] = id.String()
	return nil
}

func (t *CASTable) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(t.domain.Children))
	for k := range t.domain.Children {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
