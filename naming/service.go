package naming

import (
	"context"
	"io"
	"time"

	"github.com/apex/log"

	"xdao.co/nametree/compliance"
	"xdao.co/nametree/keys"
	"xdao.co/nametree/receipt"
	"xdao.co/nametree/record"
	"xdao.co/nametree/resolver"
	"xdao.co/nametree/storage"
	"xdao.co/nametree/table"
)

// Service bundles a content-addressed store, signing material, and resolution
// policy into one embeddable name service.
//
// CAS is required for every operation; Signer only for registration.
type Service struct {
	CAS    storage.CAS
	Signer keys.Signer

	// Replicas, when non-empty, receive registered records asynchronously.
	Replicas []storage.NamedCAS

	// MaxDepth bounds resolution descents; resolver.DefaultMaxDepth when zero.
	MaxDepth int

	Mode compliance.Mode

	// Now overrides the signing clock; nil means time.Now.
	Now func() time.Time

	Log log.Interface

	publisher *table.AsyncPublisher
}

// ResolveResult is the boundary view of a resolution outcome, optionally
// carrying a signed canonical receipt.
type ResolveResult struct {
	Found  bool          `json:"found"`
	Record record.Record `json:"record,omitempty"`

	Path    string `json:"path"`
	Origin  string `json:"origin"`
	Lookups int    `json:"lookups"`

	Receipt    []byte `json:"receipt,omitempty"`
	ReceiptCID string `json:"receiptCID,omitempty"`
}

func (s *Service) tables() (table.Provider, error) {
	if s.CAS == nil {
		return nil, NewError(ErrMissingCAS, "no content-addressed store configured")
	}
	return table.CASTables{CAS: s.CAS}, nil
}

// Register registers child under domain as name. Faults come back as coded
// errors; validation happens before any side effect.
func (s *Service) Register(ctx context.Context, domain *record.Domain, name string, child record.Record) error {
	reg, err := s.registrar()
	if err != nil {
		return err
	}
	return mapErr(reg.Register(ctx, domain, name, child))
}

// RegisterLocators wraps locators into a fresh leaf record named under the
// domain and registers it.
func (s *Service) RegisterLocators(ctx context.Context, domain *record.Domain, name string, locators []string) (*record.LeafName, error) {
	reg, err := s.registrar()
	if err != nil {
		return nil, err
	}
	leaf, err := reg.RegisterLocators(ctx, domain, name, locators)
	if err != nil {
		return nil, mapErr(err)
	}
	return leaf, nil
}

func (s *Service) registrar() (*table.Registrar, error) {
	tables, err := s.tables()
	if err != nil {
		return nil, err
	}
	if s.Signer == nil {
		return nil, NewError(ErrIntegrity, "no signer configured")
	}
	if s.publisher == nil && len(s.Replicas) > 0 {
		s.publisher = &table.AsyncPublisher{Backends: s.Replicas, Log: s.Log}
	}
	reg := &table.Registrar{
		Signer: s.Signer,
		Tables: tables,
		Now:    s.Now,
		Log:    s.Log,
	}
	if s.publisher != nil {
		reg.Publisher = s.publisher
	}
	return reg, nil
}

// Resolve resolves path relative to start. Not-found is reported through
// Found, not an error.
func (s *Service) Resolve(ctx context.Context, start record.Record, path string) (*ResolveResult, error) {
	return s.resolve(ctx, start, path, nil)
}

// ResolveWithReceipt resolves path and renders a canonical receipt bound to
// the outcome, signed with the service signer when one is configured.
func (s *Service) ResolveWithReceipt(ctx context.Context, start record.Record, path string) (*ResolveResult, error) {
	opts := &receipt.RenderOptions{ResolvedAt: s.now()()}
	if s.Signer != nil {
		opts.Signer = s.Signer
	}
	return s.resolve(ctx, start, path, opts)
}

func (s *Service) resolve(ctx context.Context, start record.Record, path string, rcpt *receipt.RenderOptions) (*ResolveResult, error) {
	tables, err := s.tables()
	if err != nil {
		return nil, err
	}
	r := &resolver.Resolver{
		Tables:   tables,
		MaxDepth: s.MaxDepth,
		Mode:     s.Mode,
		Log:      s.Log,
	}
	out, err := r.Resolve(ctx, start, path)
	if err != nil {
		return nil, mapErr(err)
	}
	res := &ResolveResult{
		Found:   out.Found,
		Record:  out.Record,
		Path:    out.Path,
		Origin:  out.Origin,
		Lookups: out.Lookups,
	}
	if rcpt != nil {
		doc, err := receipt.Render(out, *rcpt)
		if err != nil {
			return nil, mapErr(err)
		}
		res.Receipt = doc
		res.ReceiptCID = receipt.ReceiptCID(doc)
	}
	return res, nil
}

// Tree writes the child tree rooted at rec to w, two spaces per level.
func (s *Service) Tree(ctx context.Context, w io.Writer, rec record.Record) error {
	tables, err := s.tables()
	if err != nil {
		return err
	}
	return mapErr(resolver.WriteTree(ctx, w, tables, rec, "  "))
}

// FlushReplication blocks until all pending asynchronous replica writes have
// finished. Intended for shutdown paths and tests.
func (s *Service) FlushReplication() {
	if s.publisher != nil {
		s.publisher.Wait()
	}
}

func (s *Service) now() func() time.Time {
	if s.Now != nil {
		return s.Now
	}
	return time.Now
}
