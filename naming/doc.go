// Package naming is the stable boundary API for embedding the name service.
//
// It wires the content-addressed tables, the registration protocol, and the
// resolver behind one Service value, and translates internal faults into
// coded errors suitable for API layers. Callers that need finer control use
// the table and resolver packages directly.
package naming
