// Package bundle packs CAS blocks into a deterministic TAR archive for
// offline replication: export a record tree on one host, carry the file,
// import it elsewhere. Block bytes are validated against their CIDs on both
// sides, so a tampered bundle fails to import.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/nametree/cidutil"
	"xdao.co/nametree/storage"
)

// FormatVersion is the bundle index schema version.
const FormatVersion = 1

// TAR headers are normalized to the zero epoch so export is byte-stable.
var epochZero = time.Unix(0, 0).UTC()

// ExportOptions controls bundle export.
type ExportOptions struct {
	// Labels optionally maps names (typically resolution paths) to CIDs.
	// Informational only; importers never trust labels.
	Labels map[string]cid.Cid
	// IncludeIndex controls whether index.json is written.
	IncludeIndex bool
}

// Export writes a TAR bundle holding the blocks for the given CIDs.
//
// The output is deterministic: duplicate CIDs collapse, entries are ordered
// lexicographically, and TAR headers are normalized. Every exported block is
// re-validated against its CID before it is written.
func Export(w io.Writer, cas storage.CAS, ids []cid.Cid, opts ExportOptions) error {
	if cas == nil {
		return fmt.Errorf("bundle: nil CAS")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	ordered := make([]string, 0, len(uniq))
	for s := range uniq {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	tw := tar.NewWriter(w)

	blocks := make([]indexBlock, 0, len(ordered))
	for _, s := range ordered {
		id := uniq[s]
		b, err := cas.Get(id)
		if err != nil {
			_ = tw.Close()
			return err
		}
		got, err := cidutil.CIDFor(b)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if got.String() != id.String() {
			_ = tw.Close()
			return storage.ErrCIDMismatch
		}
		if err := writeEntry(tw, "blocks/"+id.String(), b); err != nil {
			_ = tw.Close()
			return err
		}
		blocks = append(blocks, indexBlock{CID: id.String(), Size: len(b)})
	}

	if opts.IncludeIndex {
		idx, err := renderIndex(blocks, opts.Labels)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeEntry(tw, "index.json", idx); err != nil {
			_ = tw.Close()
			return err
		}
	}

	return tw.Close()
}

// ImportOptions controls bundle import.
type ImportOptions struct {
	// IgnoreUnknown skips unrecognized TAR entries instead of failing.
	// The default is fail-closed.
	IgnoreUnknown bool
}

// Import reads a bundle from r and stores every block into cas. Unknown
// entries are an error; use ImportWithOptions to skip them.
func Import(r io.Reader, cas storage.CAS) error {
	return ImportWithOptions(r, cas, ImportOptions{})
}

// ImportWithOptions reads a bundle from r and stores every block into cas.
// Each block must match both the CID in its entry path and the CID computed
// from its bytes.
func ImportWithOptions(r io.Reader, cas storage.CAS, opts ImportOptions) error {
	if cas == nil {
		return fmt.Errorf("bundle: nil CAS")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := cleanEntryPath(h.Name)
		if name == "" {
			return fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		// The index is non-authoritative metadata; blocks carry the truth.
		if name == "index.json" {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}

		if !strings.HasPrefix(name, "blocks/") {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, derr := cid.Decode(strings.TrimPrefix(name, "blocks/"))
		if derr != nil || !id.Defined() {
			return storage.ErrInvalidCID
		}
		if _, dup := seen[id.String()]; dup {
			return fmt.Errorf("bundle: duplicate block entry: %s", id)
		}
		seen[id.String()] = struct{}{}

		payload, rerr := io.ReadAll(tr)
		if rerr != nil {
			return rerr
		}
		got, herr := cidutil.CIDFor(payload)
		if herr != nil {
			return herr
		}
		if got.String() != id.String() {
			return storage.ErrCIDMismatch
		}

		putID, perr := cas.Put(payload)
		if perr != nil {
			return perr
		}
		if putID.String() != id.String() {
			return storage.ErrCIDMismatch
		}
	}
}

type bundleIndex struct {
	Version   int          `json:"version"`
	CIDCodec  string       `json:"cidCodec"`
	Multihash string       `json:"multihash"`
	Blocks    []indexBlock `json:"blocks"`
	Labels    []indexLabel `json:"labels,omitempty"`
}

type indexBlock struct {
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

type indexLabel struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

func renderIndex(blocks []indexBlock, labels map[string]cid.Cid) ([]byte, error) {
	idx := bundleIndex{
		Version:   FormatVersion,
		CIDCodec:  "raw",
		Multihash: "sha2-256",
		Blocks:    blocks,
	}
	if len(labels) > 0 {
		names := make([]string, 0, len(labels))
		for name := range labels {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if name == "" {
				return nil, fmt.Errorf("bundle: empty label name")
			}
			id := labels[name]
			if !id.Defined() {
				return nil, storage.ErrInvalidCID
			}
			idx.Labels = append(idx.Labels, indexLabel{Name: name, CID: id.String()})
		}
	}
	// Structs and slices only, so encoding/json stays deterministic.
	b, err := json.Marshal(idx)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeEntry(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epochZero,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanEntryPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return strings.Join(parts, "/")
}
