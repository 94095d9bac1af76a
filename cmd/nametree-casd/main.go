package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"google.golang.org/grpc"

	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/casconfig"
	"xdao.co/nametree/storage/casregistry"
	"xdao.co/nametree/storage/grpccas"

	_ "xdao.co/nametree/storage/ipfs"
	_ "xdao.co/nametree/storage/localfs"
	_ "xdao.co/nametree/storage/memcas"
)

func main() {
	fs := flag.NewFlagSet("nametree-casd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backend := fs.String("backend", "localfs", "CAS backend name")
	casConfig := fs.String("cas-config", "", "JSON CAS config file composing multiple backends (overrides -backend)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")

	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := &log.Logger{Handler: text.New(os.Stderr), Level: level}

	var cas storage.CAS
	var closeFn func() error
	if *casConfig != "" {
		cfg, cerr := casconfig.LoadFile(*casConfig)
		if cerr != nil {
			fmt.Fprintln(os.Stderr, cerr)
			os.Exit(2)
		}
		cas, closeFn, err = cfg.Open(casregistry.UsageDaemon, "")
	} else {
		cas, closeFn, err = casregistry.Open(*backend, casregistry.UsageDaemon)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		logger.WithError(err).Error("listen")
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpccas.RegisterCASServer(s, &grpccas.Server{CAS: cas})

	store := *backend
	if *casConfig != "" {
		store = "casconfig:" + *casConfig
	}
	logger.WithFields(log.Fields{
		"addr":    lis.Addr().String(),
		"backend": store,
	}).Info("nametree-casd listening")
	if err := s.Serve(lis); err != nil {
		logger.WithError(err).Error("serve")
		os.Exit(1)
	}
}
