package ipfs

import (
	"flag"

	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/casregistry"
)

var flagIPFSBin string

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "ipfs",
		Description: "Local Kubo IPFS repo (requires the 'ipfs' CLI)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagIPFSBin, "ipfs-bin", "", "Path to the ipfs binary (for --backend=ipfs); PATH lookup when empty")
		},
		Open: func() (storage.CAS, func() error, error) {
			return New(Options{Bin: flagIPFSBin}), nil, nil
		},
	})
}
