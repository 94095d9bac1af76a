package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"xdao.co/nametree/anchors"
	"xdao.co/nametree/cidutil"
	"xdao.co/nametree/compliance"
	"xdao.co/nametree/keys"
	"xdao.co/nametree/naming"
	"xdao.co/nametree/record"
	"xdao.co/nametree/storage"
	"xdao.co/nametree/storage/casconfig"
	"xdao.co/nametree/storage/casregistry"
	"xdao.co/nametree/wire"

	_ "xdao.co/nametree/storage/grpccas"
	_ "xdao.co/nametree/storage/ipfs"
	_ "xdao.co/nametree/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "anchors":
		return cmdAnchors(args[1:], out, errOut)
	case "doc-cid":
		return cmdDocCID(args[1:], out, errOut)
	case "domain":
		return cmdDomain(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "register":
		return cmdRegister(args[1:], out, errOut)
	case "resolve":
		return cmdResolve(args[1:], out, errOut)
	case "tree":
		return cmdTree(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "nametree: decentralized naming CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  nametree key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  nametree key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  nametree key list")
	fmt.Fprintln(w, "  nametree key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  nametree anchors init --key <pubkey> [--key ...] [--meta K=V ...]")
	fmt.Fprintln(w, "  nametree anchors cid <file>")
	fmt.Fprintln(w, "  nametree domain init --full-name <name> [--full-name ...] (--key <pubkey> ... | --anchors <file>) [--locator ...] --out <file>")
	fmt.Fprintln(w, "  nametree register --domain <file> --name <segment> (--child <file> | --locator <loc> ...) --signer <name> [--signer-role <role>] [--backend <b>]")
	fmt.Fprintln(w, "  nametree resolve --root <file> --path <p> [--mode permissive|strict] [--receipt] [--backend <b>]")
	fmt.Fprintln(w, "  nametree tree --root <file> [--backend <b>]")
	fmt.Fprintln(w, "  nametree bundle export --root <file> --out <tar> [--backend <b>]")
	fmt.Fprintln(w, "  nametree bundle import --in <tar> [--backend <b>]")
	fmt.Fprintln(w, "  nametree doc-cid <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - keys are stored under ~/.nametree/keys/<name> (0600 seed files)")
	fmt.Fprintln(w, "  - record files hold the JSON wire envelope; doc-cid prints their locator")
	fmt.Fprintln(w, "  - register rewrites the domain file with the updated child table")
	fmt.Fprintln(w, "  - resolve reports NOT FOUND on exit code 3; faults exit 1")
	fmt.Fprintln(w, "  - --cas-config <json> composes multiple backends; it overrides --backend")
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func readRecord(path string) (record.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return wire.Decode(b)
}

func writeRecord(path string, rec record.Record) error {
	b, err := wire.Encode(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func readDomain(path string) (*record.Domain, error) {
	rec, err := readRecord(path)
	if err != nil {
		return nil, err
	}
	dom, ok := rec.(*record.Domain)
	if !ok {
		return nil, fmt.Errorf("%s holds a %s record, expected a domain", filepath.Base(path), rec.Kind())
	}
	return dom, nil
}

func parseMode(mode string) (compliance.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "permissive":
		return compliance.Permissive, nil
	case "strict":
		return compliance.Strict, nil
	default:
		return compliance.Permissive, fmt.Errorf("invalid --mode (expected permissive or strict)")
	}
}

// casFlags installs the shared CAS selection flags.
func casFlags(fs *flag.FlagSet, backend, configPath *string) {
	fs.StringVar(backend, "backend", "localfs", "CAS backend name")
	fs.StringVar(configPath, "cas-config", "", "JSON CAS config file composing multiple backends (overrides --backend)")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
}

func openCAS(backend, configPath string) (storage.CAS, func() error, error) {
	if configPath != "" {
		cfg, err := casconfig.LoadFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(casregistry.UsageCLI, "")
	}
	return casregistry.Open(backend, casregistry.UsageCLI)
}

func cmdDomain(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "init" {
		fmt.Fprintln(errOut, "usage: nametree domain init ...")
		return 2
	}
	fs := flag.NewFlagSet("domain init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var fullNames stringList
	var pubKeys stringList
	var locators stringList
	var anchorsPath string
	var outPath string

	fs.Var(&fullNames, "full-name", "Full name of the domain (repeatable)")
	fs.Var(&pubKeys, "key", "Verification public key (repeatable)")
	fs.Var(&locators, "locator", "Public locator for the domain record (repeatable)")
	fs.StringVar(&anchorsPath, "anchors", "", "Trust anchor file providing verification keys")
	fs.StringVar(&outPath, "out", "", "Output record file")

	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if len(fullNames) == 0 {
		fmt.Fprintln(errOut, "missing --full-name")
		return 2
	}
	if outPath == "" {
		fmt.Fprintln(errOut, "missing --out")
		return 2
	}

	verificationKeys := append([]string(nil), pubKeys...)
	if anchorsPath != "" {
		b, err := os.ReadFile(anchorsPath)
		if err != nil {
			fmt.Fprintf(errOut, "read anchors: %v\n", err)
			return 1
		}
		a, err := anchors.Parse(b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid anchors: %v\n", err)
			return 2
		}
		verificationKeys = append(verificationKeys, a.Keys...)
	}
	if len(verificationKeys) == 0 {
		fmt.Fprintln(errOut, "missing verification keys: use --key or --anchors")
		return 2
	}

	dom := record.NewDomain(fullNames, locators, verificationKeys)
	if err := writeRecord(outPath, dom); err != nil {
		fmt.Fprintf(errOut, "write domain: %v\n", err)
		return 1
	}
	b, err := wire.Encode(dom)
	if err != nil {
		fmt.Fprintf(errOut, "encode domain: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created domain: %s\n", dom.Identity())
	fmt.Fprintf(out, "Locator: %s\n", cidutil.LocatorFor(b))
	return 0
}

func cmdRegister(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var domainPath string
	var name string
	var childPath string
	var locators stringList
	var signerName string
	var signerRole string
	var backend string
	var casConfig string

	fs.StringVar(&domainPath, "domain", "", "Domain record file")
	fs.StringVar(&name, "name", "", "Name segment to register under the domain")
	fs.StringVar(&childPath, "child", "", "Child record file (omit to register bare --locator values as a leaf)")
	fs.Var(&locators, "locator", "Locator for a new leaf record (repeatable)")
	fs.StringVar(&signerName, "signer", "", "Stored key name (from 'nametree key init')")
	fs.StringVar(&signerRole, "signer-role", "", "Optional derived role key")
	casFlags(fs, &backend, &casConfig)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if domainPath == "" {
		fmt.Fprintln(errOut, "missing --domain")
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if signerName == "" {
		fmt.Fprintln(errOut, "missing --signer")
		return 2
	}
	if childPath == "" && len(locators) == 0 {
		fmt.Fprintln(errOut, "missing --child or --locator")
		return 2
	}
	if childPath != "" && len(locators) > 0 {
		fmt.Fprintln(errOut, "conflicting flags: --child cannot be combined with --locator")
		return 2
	}

	dom, err := readDomain(domainPath)
	if err != nil {
		fmt.Fprintf(errOut, "read domain: %v\n", err)
		return 1
	}

	ks, err := keys.OpenStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	signer, err := ks.Signer(signerName, signerRole)
	if err != nil {
		fmt.Fprintf(errOut, "signer: %v\n", err)
		return 2
	}

	cas, closeFn, err := openCAS(backend, casConfig)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	svc := &naming.Service{CAS: cas, Signer: signer}
	ctx := context.Background()

	if childPath != "" {
		child, err := readRecord(childPath)
		if err != nil {
			fmt.Fprintf(errOut, "read child: %v\n", err)
			return 1
		}
		if err := svc.Register(ctx, dom, name, child); err != nil {
			fmt.Fprintf(errOut, "register: %v\n", err)
			return 1
		}
		// The registration appended a signature; persist it.
		if err := writeRecord(childPath, child); err != nil {
			fmt.Fprintf(errOut, "write child: %v\n", err)
			return 1
		}
	} else {
		leaf, err := svc.RegisterLocators(ctx, dom, name, locators)
		if err != nil {
			fmt.Fprintf(errOut, "register: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Leaf: %s\n", leaf.Identity())
	}

	if err := writeRecord(domainPath, dom); err != nil {
		fmt.Fprintf(errOut, "write domain: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Registered %q under %s\n", name, dom.Identity())
	fmt.Fprintf(out, "Child locator: %s\n", dom.Children[name])
	return 0
}

func cmdResolve(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var rootPath string
	var path string
	var mode string
	var withReceipt bool
	var maxDepth int
	var backend string
	var casConfig string

	fs.StringVar(&rootPath, "root", "", "Root record file to resolve from")
	fs.StringVar(&path, "path", "", "Path to resolve, segments joined by '/'")
	fs.StringVar(&mode, "mode", "permissive", "Compliance mode: permissive or strict")
	fs.BoolVar(&withReceipt, "receipt", false, "Print a canonical resolution receipt instead of the record")
	fs.IntVar(&maxDepth, "max-depth", 0, "Resolution depth bound (0 means default)")
	casFlags(fs, &backend, &casConfig)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if rootPath == "" {
		fmt.Fprintln(errOut, "missing --root")
		return 2
	}

	m, err := parseMode(mode)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	root, err := readRecord(rootPath)
	if err != nil {
		fmt.Fprintf(errOut, "read root: %v\n", err)
		return 1
	}

	cas, closeFn, err := openCAS(backend, casConfig)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	svc := &naming.Service{CAS: cas, Mode: m, MaxDepth: maxDepth}
	ctx := context.Background()

	var res *naming.ResolveResult
	if withReceipt {
		res, err = svc.ResolveWithReceipt(ctx, root, path)
	} else {
		res, err = svc.Resolve(ctx, root, path)
	}
	if err != nil {
		fmt.Fprintf(errOut, "resolve: %v\n", err)
		return 1
	}
	if !res.Found {
		fmt.Fprintf(errOut, "NOT FOUND: %q from %s (%d lookups)\n", res.Path, res.Origin, res.Lookups)
		return 3
	}
	if withReceipt {
		fmt.Fprintf(errOut, "Receipt-CID: %s\n", res.ReceiptCID)
		_, _ = out.Write(res.Receipt)
		return 0
	}
	b, err := wire.Encode(res.Record)
	if err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	_, _ = out.Write(b)
	_, _ = fmt.Fprintln(out)
	return 0
}

func cmdTree(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var rootPath string
	var backend string
	var casConfig string

	fs.StringVar(&rootPath, "root", "", "Root record file")
	casFlags(fs, &backend, &casConfig)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if rootPath == "" {
		fmt.Fprintln(errOut, "missing --root")
		return 2
	}
	root, err := readRecord(rootPath)
	if err != nil {
		fmt.Fprintf(errOut, "read root: %v\n", err)
		return 1
	}

	cas, closeFn, err := openCAS(backend, casConfig)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	svc := &naming.Service{CAS: cas}
	fmt.Fprintf(out, "%s [%s]\n", root.Base().Identity(), root.Kind())
	if err := svc.Tree(context.Background(), out, root); err != nil {
		fmt.Fprintf(errOut, "tree: %v\n", err)
		return 1
	}
	return 0
}

func cmdBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: nametree bundle <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdBundleExport(args[1:], out, errOut)
	case "import":
		return cmdBundleImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", args[0])
		return 2
	}
}

func cmdBundleExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var rootPath string
	var outPath string
	var backend string
	var casConfig string

	fs.StringVar(&rootPath, "root", "", "Root record file; every reachable record is exported")
	fs.StringVar(&outPath, "out", "", "Output bundle file (TAR)")
	casFlags(fs, &backend, &casConfig)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if rootPath == "" {
		fmt.Fprintln(errOut, "missing --root")
		return 2
	}
	if outPath == "" {
		fmt.Fprintln(errOut, "missing --out")
		return 2
	}
	root, err := readRecord(rootPath)
	if err != nil {
		fmt.Fprintf(errOut, "read root: %v\n", err)
		return 1
	}

	cas, closeFn, err := openCAS(backend, casConfig)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(errOut, "create bundle: %v\n", err)
		return 1
	}
	svc := &naming.Service{CAS: cas}
	if err := svc.ExportBundle(context.Background(), root, f); err != nil {
		_ = f.Close()
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "write bundle: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Exported bundle: %s\n", outPath)
	return 0
}

func cmdBundleImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle import", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var inPath string
	var backend string
	var casConfig string

	fs.StringVar(&inPath, "in", "", "Bundle file (TAR) to import")
	casFlags(fs, &backend, &casConfig)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}

	cas, closeFn, err := openCAS(backend, casConfig)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "open bundle: %v\n", err)
		return 1
	}
	defer f.Close()

	svc := &naming.Service{CAS: cas}
	if err := svc.ImportBundle(f); err != nil {
		fmt.Fprintf(errOut, "import: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Imported bundle: %s\n", inPath)
	return 0
}

func cmdAnchors(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: nametree anchors <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, cid")
		return 2
	}
	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("anchors init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var pubKeys stringList
		var metaKV stringList
		fs.Var(&pubKeys, "key", "Trusted verification public key (repeatable)")
		fs.Var(&metaKV, "meta", "META line as Key=Value (repeatable)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if len(pubKeys) == 0 {
			fmt.Fprintln(errOut, "missing --key")
			return 2
		}
		meta := map[string]string{"Spec": "nametree-anchors-1", "Version": "1"}
		for _, kv := range metaKV {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(k) == "" {
				fmt.Fprintf(errOut, "invalid --meta: expected Key=Value, got %q\n", kv)
				return 2
			}
			meta[strings.TrimSpace(k)] = v
		}
		doc := anchors.Render(&anchors.Anchors{Meta: meta, Keys: pubKeys})
		if _, err := anchors.Parse(doc); err != nil {
			fmt.Fprintf(errOut, "render produced invalid anchors: %v\n", err)
			return 1
		}
		_, _ = out.Write(doc)
		return 0
	case "cid":
		fs := flag.NewFlagSet("anchors cid", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: nametree anchors cid <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read anchors: %v\n", err)
			return 1
		}
		a, err := anchors.Parse(b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid anchors: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, cidutil.LocatorFor(anchors.Render(a)))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown anchors subcommand: %s\n", args[0])
		return 2
	}
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "nametree key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  nametree key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  nametree key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  nametree key list")
	fmt.Fprintln(w, "  nametree key export --name <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under ~/.nametree/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.OpenStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	publicKey, rootPath, err := ks.InitRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", publicKey)
	fmt.Fprintf(out, "Fingerprint: %s\n", keys.Fingerprint(publicKey))
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. registrar, publisher)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.OpenStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	publicKey, rolePath, err := ks.DeriveRoleKey(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", publicKey)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var role string

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports derived role key)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	if role != "" {
		if err := keys.CheckRole(role); err != nil {
			fmt.Fprintf(errOut, "invalid --role: %v\n", err)
			return 2
		}
	}
	ks, err := keys.OpenStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	publicKey, err := ks.ExportPublicKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, publicKey)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.OpenStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.List()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		if pub, perr := ks.ExportPublicKey(e.Name, ""); perr == nil {
			fmt.Fprintf(out, "%s\t%s\n", e.Name, keys.Fingerprint(pub))
		} else {
			fmt.Fprintf(out, "%s\n", e.Name)
		}
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

func cmdDocCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("doc-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: nametree doc-cid <file>")
		return 2
	}
	path := fs.Arg(0)
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(path), err)
		return 1
	}
	_, _ = fmt.Fprintln(out, cidutil.LocatorFor(b))
	return 0
}
