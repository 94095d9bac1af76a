// Package resolver implements hierarchical path resolution over domain
// tables: longest registered prefix first, shrinking one segment per miss,
// descending recursively into the matched record.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"xdao.co/nametree/compliance"
	"xdao.co/nametree/record"
	"xdao.co/nametree/table"
)

// DefaultMaxDepth bounds recursive descents. The number of descents is
// naturally bounded by the segment count of the queried path, so the guard
// only matters for cyclic child references.
const DefaultMaxDepth = 32

// ErrDepthExceeded reports a resolution that descended past the depth bound,
// which indicates cyclic child references.
var ErrDepthExceeded = errors.New("resolver: max depth exceeded")

// Outcome is the explicit result of one resolution.
//
// Not-found is not an error: Found is false, Record is nil, and Path/Origin
// identify what was attempted for diagnostics.
type Outcome struct {
	Record record.Record
	Found  bool

	// Path is the normalized attempted path.
	Path string
	// Origin is the identity of the record resolution started from.
	Origin string
	// Lookups counts table lookups across all descents. Within any single
	// domain the loop performs at most one lookup per remaining segment.
	Lookups int
}

type Resolver struct {
	Tables table.Provider

	// MaxDepth bounds recursive descents; DefaultMaxDepth when zero.
	MaxDepth int

	// Mode selects permissive or strict resolution. Strict re-verifies each
	// matched record against its parent domain's verification keys and
	// fails loudly on an unverifiable hop.
	Mode compliance.Mode

	Log log.Interface
}

// Resolve resolves path relative to start.
//
// The zero-length path resolves to start itself. A matched record with
// leftover remainder but no child table is a terminal miss, not an error.
// Collaborator faults (storage, decoding) propagate unchanged.
func (r *Resolver) Resolve(ctx context.Context, start record.Record, path string) (*Outcome, error) {
	if start == nil {
		return nil, errors.New("resolver: nil start record")
	}
	segs, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Path:   strings.Join(segs, "/"),
		Origin: start.Base().Identity(),
	}
	rec, found, err := r.descend(ctx, start, segs, 0, out)
	if err != nil {
		return nil, err
	}
	out.Record = rec
	out.Found = found
	if !found {
		r.logger().WithFields(log.Fields{
			"path":    out.Path,
			"origin":  out.Origin,
			"lookups": out.Lookups,
		}).Info("unable to resolve")
	}
	return out, nil
}

func (r *Resolver) descend(ctx context.Context, cur record.Record, segs []string, depth int, out *Outcome) (record.Record, bool, error) {
	if len(segs) == 0 {
		return cur, true, nil
	}
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if depth >= maxDepth {
		return nil, false, ErrDepthExceeded
	}

	dom, ok := cur.(*record.Domain)
	if !ok {
		// Remainder left but the matched record has no children.
		return nil, false, nil
	}
	tbl, err := r.Tables.TableFor(dom)
	if err != nil {
		return nil, false, err
	}

	// Longest prefix first, shrinking by exactly one segment per miss. The
	// most specific registered name wins and the loop terminates in at most
	// len(segs) lookups.
	for i := len(segs); i >= 1; i-- {
		key := strings.Join(segs[:i], "/")
		out.Lookups++
		child, hit, err := tbl.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if !hit {
			continue
		}
		if r.Mode == compliance.Strict && !record.Verify(dom, key, child) {
			return nil, false, fmt.Errorf("resolver: strict mode: record %q under %q has no valid signature", key, dom.Identity())
		}
		if i == len(segs) {
			return child, true, nil
		}
		// Sole recursive step: the matched record becomes the resolution
		// root for the leftover segments. The original domain is not
		// consulted again.
		return r.descend(ctx, child, segs[i:], depth+1, out)
	}
	return nil, false, nil
}

func (r *Resolver) logger() log.Interface {
	if r.Log != nil {
		return r.Log
	}
	return &log.Logger{Handler: discard.Default, Level: log.InfoLevel}
}
