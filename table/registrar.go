package table

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"xdao.co/nametree/keys"
	"xdao.co/nametree/record"
	"xdao.co/nametree/wire"
)

// Registrar implements the registration protocol: validate, sign,
// self-verify, write through the table, then replicate asynchronously.
type Registrar struct {
	Signer keys.Signer
	Tables Provider

	// Publisher, when set, receives the encoded record after a successful
	// table write. Registration does not wait on it.
	Publisher Publisher

	// Now overrides the signing clock; nil means time.Now.
	Now func() time.Time

	Log log.Interface
}

// Register registers child under domain as name.
//
// Ordering, atomic from the caller's perspective:
//  1. validate the segment (before any side effect)
//  2. sign (appends one signature to child)
//  3. self-verify; a false result is an integrity fault, never recoverable
//  4. write domain.children[name] through the table
//  5. hand the encoded record to the publisher, fire-and-forget
//
// A storage write failure surfaces unchanged; the already-appended signature
// is not rolled back. The record is simply unpublished until the caller
// retries.
func (r *Registrar) Register(ctx context.Context, domain *record.Domain, name string, child record.Record) error {
	if err := record.CheckSegment(name); err != nil {
		return err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	if err := record.SignAt(r.Signer, domain, name, child, now()); err != nil {
		return err
	}
	if !record.Verify(domain, name, child) {
		// Signing immediately followed by failed self-verification means the
		// signable encoding is broken or the signer key is not in the
		// domain's verification key set.
		return &record.Error{
			Kind:    record.KindIntegrity,
			RuleID:  "NT-REG-001",
			Message: "self-verification failed after signing; signer key not trusted by domain or encoding mismatch",
		}
	}

	tbl, err := r.Tables.TableFor(domain)
	if err != nil {
		return err
	}
	if err := tbl.Set(ctx, name, child); err != nil {
		return err
	}

	if r.Publisher != nil {
		if b, err := wire.Encode(child); err == nil {
			r.Publisher.Publish(domain.PublicLocators, name, b)
		} else {
			r.logger().WithField("name", name).WithError(err).Warn("skipping replication: encode failed")
		}
	}

	r.logger().WithFields(log.Fields{
		"domain": domain.Identity(),
		"name":   name,
		"kind":   string(child.Kind()),
	}).Debug("registered")
	return nil
}

// RegisterLocators wraps a bare locator set into a new leaf record whose full
// names are each of the domain's names extended with the segment, then
// registers it.
func (r *Registrar) RegisterLocators(ctx context.Context, domain *record.Domain, name string, locators []string) (*record.LeafName, error) {
	if err := record.CheckSegment(name); err != nil {
		return nil, err
	}
	leaf := record.NewLeaf(record.ChildNames(domain.FullNames, name), locators)
	if err := r.Register(ctx, domain, name, leaf); err != nil {
		return nil, err
	}
	return leaf, nil
}

func (r *Registrar) logger() log.Interface {
	if r.Log != nil {
		return r.Log
	}
	return &log.Logger{Handler: discard.Default, Level: log.InfoLevel}
}
