package memcas

import (
	"flag"

	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/casregistry"
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:          "mem",
		Description:   "In-memory CAS (not persistent; single process only)",
		Usage:         casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (storage.CAS, func() error, error) {
			return New(), nil, nil
		},
	})
}
