// Package casconfig opens one or more CAS backends from a JSON config file,
// composing them into a single store. The binary still picks which backends
// exist at build time via blank imports; the config picks which ones run.
package casconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/casregistry"
)

// Config describes which casregistry backends to open and how writes fan out.
//
// WritePolicy values:
//   - "first" (default): write only to the first backend; reads fall back in
//     order (storage.MultiCAS)
//   - "all": write to every backend and require CID equality
//     (storage.ReplicatingCAS)
//
// Example:
//
//	{
//	  "write_policy": "all",
//	  "backends": [
//	    {"name":"localfs", "config":{"localfs-dir":"/var/lib/nametree/cas"}},
//	    {"name":"ipfs", "config":{"ipfs-bin":"/usr/local/bin/ipfs"}}
//	  ]
//	}
//
// Per-backend config keys mirror the backend's CLI flag names.
type Config struct {
	WritePolicy string          `json:"write_policy,omitempty"`
	Backends    []BackendConfig `json:"backends"`
}

// BackendConfig selects one casregistry backend and its settings.
type BackendConfig struct {
	// Name is the casregistry backend to open (e.g. "localfs", "ipfs").
	Name string `json:"name"`
	// ID is an optional stable alias; replication reports per-backend CIDs
	// under it. Name is used when empty.
	ID     string            `json:"id,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

// LoadFile reads and validates a config from a JSON file.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("casconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		id := b.Name
		if b.ID != "" {
			id = b.ID
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("casconfig: duplicate backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	switch c.WritePolicy {
	case "", "first", "all":
		return nil
	default:
		return fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}

// Open opens every configured backend and composes them per WritePolicy.
//
// A non-empty preferred reorders that backend to the front, making it the
// write target under the "first" policy.
func (c Config) Open(usage casregistry.Usage, preferred string) (storage.CAS, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferred != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferred || ordered[i].ID == preferred {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, fmt.Errorf("casconfig: preferred backend %q not in config", preferred)
		}
		if idx != 0 {
			front := ordered[idx]
			copy(ordered[1:idx+1], ordered[0:idx])
			ordered[0] = front
		}
	}

	named := make([]storage.NamedCAS, 0, len(ordered))
	closers := make([]func() error, 0, len(ordered))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, b := range ordered {
		cas, closeFn, err := casregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		name := b.Name
		if b.ID != "" {
			name = b.ID
		}
		named = append(named, storage.NamedCAS{Name: name, CAS: cas})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	if len(named) == 1 {
		return named[0].CAS, closeAll, nil
	}

	switch c.WritePolicy {
	case "", "first":
		adapters := make([]storage.CAS, 0, len(named))
		for _, n := range named {
			adapters = append(adapters, n.CAS)
		}
		return storage.MultiCAS{Adapters: adapters}, closeAll, nil
	default: // "all"; Validate rejected everything else
		return storage.ReplicatingCAS{Backends: named}, closeAll, nil
	}
}
