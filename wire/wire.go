// Package wire serializes records for storage and normalizes fetched bytes
// back into their concrete record variant.
//
// Stored records travel as a JSON envelope carrying an explicit kind
// discriminator. Decoding dispatches through a registry mapping discriminator
// to constructor, so new record variants can register themselves without the
// codec learning about them.
package wire

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"xdao.co/nametree/record"
)

// FormatVersion is the current envelope schema version.
const FormatVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Kind    record.Kind     `json:"kind"`
	Body    json.RawMessage `json:"body"`
}

// DecodeFunc constructs a concrete record from envelope body bytes.
type DecodeFunc func(body []byte) (record.Record, error)

var (
	mu       sync.RWMutex
	decoders = map[record.Kind]DecodeFunc{}
)

// Register installs a decoder for a record kind. Registering a kind twice is
// a programming error and panics, matching build-time plugin semantics.
func Register(kind record.Kind, fn DecodeFunc) {
	if kind == "" || fn == nil {
		panic("wire: kind and decoder are required")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := decoders[kind]; exists {
		panic(fmt.Sprintf("wire: kind %q already registered", kind))
	}
	decoders[kind] = fn
}

// Kinds returns the registered discriminators, sorted.
func Kinds() []record.Kind {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]record.Kind, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func init() {
	Register(record.KindLeaf, func(body []byte) (record.Record, error) {
		var l record.LeafName
		if err := json.Unmarshal(body, &l); err != nil {
			return nil, err
		}
		return &l, nil
	})
	Register(record.KindDomain, func(body []byte) (record.Record, error) {
		var d record.Domain
		if err := json.Unmarshal(body, &d); err != nil {
			return nil, err
		}
		if d.Children == nil {
			d.Children = make(map[string]string)
		}
		return &d, nil
	})
}

// Encode serializes rec into its storage envelope.
func Encode(rec record.Record) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("wire: nil record")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: FormatVersion, Kind: rec.Kind(), Body: body})
}

// Decode normalizes stored bytes into the concrete record variant named by
// the envelope's discriminator.
func Decode(data []byte) (record.Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("wire: invalid envelope: %w", err)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("wire: unsupported envelope version %d", env.Version)
	}
	mu.RLock()
	fn, ok := decoders[env.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("wire: unknown record kind %q", env.Kind)
	}
	rec, err := fn(env.Body)
	if err != nil {
		return nil, fmt.Errorf("wire: decode %s: %w", env.Kind, err)
	}
	return rec, nil
}
