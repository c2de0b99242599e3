package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm"
	"anoma.net/arm/bridge"
	"anoma.net/arm/cidutil"
	"anoma.net/arm/compliance"
	"anoma.net/arm/config"
	"anoma.net/arm/curve"
	"anoma.net/arm/encryption"
	"anoma.net/arm/keys"
	"anoma.net/arm/service"
	"anoma.net/arm/storage"
	"anoma.net/arm/storage/bundle"
	"anoma.net/arm/storage/grpccas"
	"anoma.net/arm/transaction"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "keygen":
		return cmdKeygen(args[1:], out, errOut)
	case "encrypt":
		return cmdEncrypt(args[1:], in, out, errOut)
	case "decrypt":
		return cmdDecrypt(args[1:], in, out, errOut)
	case "instance":
		return cmdInstance(args[1:], in, out, errOut)
	case "finalize":
		return cmdFinalize(args[1:], in, out, errOut)
	case "tx-id":
		return cmdTxID(args[1:], in, out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "archive":
		return cmdArchive(args[1:], in, out, errOut)
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
	fmt.Fprintln(w, "arm: resource machine crypto CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  arm keygen [--addr <host:port>]")
	fmt.Fprintln(w, "  arm encrypt --keypair <file> [--nonce-hex <24hex>] [--addr <host:port>] <payload-file|->")
	fmt.Fprintln(w, "  arm decrypt --keypair <file> [--addr <host:port>] <ciphertext-file|->")
	fmt.Fprintln(w, "  arm instance [--addr <host:port>] <compliance-unit-file|->")
	fmt.Fprintln(w, "  arm finalize [--addr <host:port>] <transaction-file|->")
	fmt.Fprintln(w, "  arm tx-id <transaction-file|->")
	fmt.Fprintln(w, "  arm archive get|export|import --config <armd.yaml> ...")
	fmt.Fprintln(w, "  arm key init --name <name> [--seed-hex <64hex>] [--force] [--dir <dir>]")
	fmt.Fprintln(w, "  arm key derive --from <name> --role <role> [--force] [--dir <dir>]")
	fmt.Fprintln(w, "  arm key list [--dir <dir>]")
	fmt.Fprintln(w, "  arm key export --name <name> [--role <role>] [--scheme ed25519|dilithium3] [--dir <dir>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keypairs, ciphertexts, units and transactions are protojson bridge terms")
	fmt.Fprintln(w, "  - with --addr the operation runs on an armd daemon, otherwise locally")
	fmt.Fprintln(w, "  - encrypt draws a random nonce unless --nonce-hex is given")
	fmt.Fprintln(w, "  - decrypt writes raw plaintext to stdout and exits 1 if the ciphertext does not open")
	fmt.Fprintln(w, "  - keys are stored under ~/.arm/keys/<name> unless --dir is set")
}

// engine is the set of operations the CLI can run locally or on a daemon.
type engine interface {
	GenerateKeypair(ctx context.Context) (curve.Keypair, error)
	Encrypt(ctx context.Context, payload []byte, kp curve.Keypair, nonce []byte) (encryption.Ciphertext, error)
	Decrypt(ctx context.Context, ct []byte, kp curve.Keypair) ([]byte, bool, error)
	ComplianceInstance(ctx context.Context, u compliance.Unit) (compliance.Instance, error)
	FinalizeTransaction(ctx context.Context, tx transaction.Transaction) (transaction.Transaction, error)
}

type local struct{}

func (local) GenerateKeypair(context.Context) (curve.Keypair, error) { return curve.GenerateKeypair(nil) }

func (local) Encrypt(_ context.Context, payload []byte, kp curve.Keypair, nonce []byte) (encryption.Ciphertext, error) {
	return encryption.EncryptWithKeypair(payload, kp, nonce)
}

func (local) Decrypt(_ context.Context, ct []byte, kp curve.Keypair) ([]byte, bool, error) {
	pt, ok := encryption.Decrypt(ct, kp.Secret)
	return pt, ok, nil
}

func (local) ComplianceInstance(_ context.Context, u compliance.Unit) (compliance.Instance, error) {
	return compliance.GetInstance(u)
}

func (local) FinalizeTransaction(_ context.Context, tx transaction.Transaction) (transaction.Transaction, error) {
	return transaction.GenerateDeltaProof(tx)
}

const rpcTimeout = 30 * time.Second

func addrFlag(fs *flag.FlagSet) *string {
	return fs.String("addr", "", "armd address; empty runs locally")
}

func openEngine(addr string) (engine, func(), error) {
	if addr == "" {
		return local{}, func() {}, nil
	}
	c, err := service.Dial(addr, service.DialOptions{Timeout: rpcTimeout})
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func readInput(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

func readTerm(path string, in io.Reader) (*structpb.Value, error) {
	b, err := readInput(path, in)
	if err != nil {
		return nil, err
	}
	return bridge.UnmarshalJSON(b)
}

func writeTerm(out io.Writer, v *structpb.Value) error {
	b, err := bridge.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func readKeypair(path string) (curve.Keypair, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return curve.Keypair{}, err
	}
	v, err := bridge.UnmarshalJSON(b)
	if err != nil {
		return curve.Keypair{}, err
	}
	return bridge.DecodeKeypair(v)
}

func cmdKeygen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	addr := addrFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	eng, done, err := openEngine(*addr)
	if err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	defer done()

	kp, err := eng.GenerateKeypair(context.Background())
	if err != nil {
		fmt.Fprintf(errOut, "keygen: %s\n", errText(err))
		return 1
	}
	if err := writeTerm(out, bridge.EncodeKeypair(kp)); err != nil {
		fmt.Fprintf(errOut, "write: %v\n", err)
		return 1
	}
	return 0
}

func cmdEncrypt(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	fs.SetOutput(errOut)
	addr := addrFlag(fs)
	keypairPath := fs.String("keypair", "", "Keypair term (recipient public key, sender ephemeral secret)")
	nonceHex := fs.String("nonce-hex", "", "Optional 12-byte nonce as 24 hex chars")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *keypairPath == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: arm encrypt --keypair <file> [--nonce-hex <24hex>] <payload-file|->")
		return 2
	}
	kp, err := readKeypair(*keypairPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --keypair: %s\n", errText(err))
		return 2
	}
	var nonce []byte
	if *nonceHex != "" {
		if nonce, err = hex.DecodeString(*nonceHex); err != nil {
			fmt.Fprintf(errOut, "invalid --nonce-hex: %v\n", err)
			return 2
		}
	} else {
		nonce = make([]byte, encryption.NonceSize)
		if _, err := rand.Read(nonce); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}
	payload, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read payload: %v\n", err)
		return 1
	}

	eng, done, err := openEngine(*addr)
	if err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	defer done()
	ct, err := eng.Encrypt(context.Background(), payload, kp, nonce)
	if err != nil {
		fmt.Fprintf(errOut, "encrypt: %s\n", errText(err))
		return 1
	}
	if err := writeTerm(out, bridge.EncodeCiphertext(ct)); err != nil {
		fmt.Fprintf(errOut, "write: %v\n", err)
		return 1
	}
	return 0
}

func cmdDecrypt(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fs.SetOutput(errOut)
	addr := addrFlag(fs)
	keypairPath := fs.String("keypair", "", "Keypair term holding the recipient secret")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *keypairPath == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: arm decrypt --keypair <file> <ciphertext-file|->")
		return 2
	}
	kp, err := readKeypair(*keypairPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --keypair: %s\n", errText(err))
		return 2
	}
	v, err := readTerm(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read ciphertext: %v\n", err)
		return 2
	}
	ct, err := bridge.DecodeCiphertext(v)
	if err != nil {
		fmt.Fprintf(errOut, "invalid ciphertext: %s\n", errText(err))
		return 2
	}

	eng, done, err := openEngine(*addr)
	if err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	defer done()
	pt, ok, err := eng.Decrypt(context.Background(), ct, kp)
	if err != nil {
		fmt.Fprintf(errOut, "decrypt: %s\n", errText(err))
		return 1
	}
	if !ok {
		fmt.Fprintln(errOut, "decryption failed")
		return 1
	}
	_, _ = out.Write(pt)
	return 0
}

func cmdInstance(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("instance", flag.ContinueOnError)
	fs.SetOutput(errOut)
	addr := addrFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: arm instance <compliance-unit-file|->")
		return 2
	}
	v, err := readTerm(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read unit: %v\n", err)
		return 2
	}
	u, err := bridge.DecodeComplianceUnit(v)
	if err != nil {
		fmt.Fprintf(errOut, "invalid unit: %s\n", errText(err))
		return 2
	}

	eng, done, err := openEngine(*addr)
	if err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	defer done()
	inst, err := eng.ComplianceInstance(context.Background(), u)
	if err != nil {
		fmt.Fprintf(errOut, "instance: %s\n", errText(err))
		return 1
	}
	if err := writeTerm(out, bridge.EncodeComplianceInstance(inst)); err != nil {
		fmt.Fprintf(errOut, "write: %v\n", err)
		return 1
	}
	return 0
}

func cmdFinalize(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("finalize", flag.ContinueOnError)
	fs.SetOutput(errOut)
	addr := addrFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: arm finalize <transaction-file|->")
		return 2
	}
	tx, code := readTransaction(fs.Arg(0), in, errOut)
	if code != 0 {
		return code
	}

	eng, done, err := openEngine(*addr)
	if err != nil {
		fmt.Fprintf(errOut, "connect: %v\n", err)
		return 1
	}
	defer done()
	final, err := eng.FinalizeTransaction(context.Background(), tx)
	if err != nil {
		fmt.Fprintf(errOut, "finalize: %s\n", errText(err))
		return 1
	}
	if err := writeTerm(out, bridge.EncodeTransaction(final)); err != nil {
		fmt.Fprintf(errOut, "write: %v\n", err)
		return 1
	}
	return 0
}

func cmdTxID(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("tx-id", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: arm tx-id <transaction-file|->")
		return 2
	}
	tx, code := readTransaction(fs.Arg(0), in, errOut)
	if code != 0 {
		return code
	}
	id, err := storage.TransactionID(tx)
	if err != nil {
		fmt.Fprintf(errOut, "tx-id: %s\n", errText(err))
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

// errText appends the rule id of arm errors.
func errText(err error) string {
	if id := arm.RuleID(err); id != "" {
		return fmt.Sprintf("%v [%s]", err, id)
	}
	return err.Error()
}

func readTransaction(path string, in io.Reader, errOut io.Writer) (transaction.Transaction, int) {
	v, err := readTerm(path, in)
	if err != nil {
		fmt.Fprintf(errOut, "read transaction: %v\n", err)
		return transaction.Transaction{}, 2
	}
	tx, err := bridge.DecodeTransaction(v)
	if err != nil {
		fmt.Fprintf(errOut, "invalid transaction: %s\n", errText(err))
		return transaction.Transaction{}, 2
	}
	return tx, 0
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
	fmt.Fprintln(w, "arm key: local prover key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  arm key init --name <name> [--seed-hex <64hex>] [--force] [--dir <dir>]")
	fmt.Fprintln(w, "  arm key derive --from <name> --role <role> [--force] [--dir <dir>]")
	fmt.Fprintln(w, "  arm key list [--dir <dir>]")
	fmt.Fprintln(w, "  arm key export --name <name> [--role <role>] [--scheme ed25519|dilithium3] [--dir <dir>]")
}

func openKeyStore(dir string, errOut io.Writer) (*keys.KeyStore, bool) {
	ks, err := keys.CreateKeyStore(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, false
	}
	return ks, true
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name, seedHex, dir string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under the key store)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional seed as 64 hex chars (for reproducible setups)")
	fs.StringVar(&dir, "dir", "", "Key store directory (default ~/.arm/keys)")
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

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, keys.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	ks, ok := openKeyStore(dir, errOut)
	if !ok {
		return 1
	}
	rootPath, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Stored root key at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from, role, dir string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. attest)")
	fs.StringVar(&dir, "dir", "", "Key store directory (default ~/.arm/keys)")
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
	ks, ok := openKeyStore(dir, errOut)
	if !ok {
		return 1
	}
	rolePath, err := ks.DeriveKeyFromRole(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Stored role key at: %s\n", rolePath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name, role, scheme, dir string

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role (if set, exports the derived role key)")
	fs.StringVar(&scheme, "scheme", keys.SchemeEd25519, "Signature scheme")
	fs.StringVar(&dir, "dir", "", "Key store directory (default ~/.arm/keys)")

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
	ks, ok := openKeyStore(dir, errOut)
	if !ok {
		return 1
	}
	id, err := ks.ExportKey(scheme, name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dir := fs.String("dir", "", "Key store directory (default ~/.arm/keys)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, ok := openKeyStore(*dir, errOut)
	if !ok {
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Name)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

func cmdArchive(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printArchiveUsage(errOut)
		return 2
	}
	switch args[0] {
	case "get":
		return cmdArchiveGet(args[1:], out, errOut)
	case "export":
		return cmdArchiveExport(args[1:], out, errOut)
	case "import":
		return cmdArchiveImport(args[1:], in, out, errOut)
	case "help", "-h", "--help":
		printArchiveUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown archive subcommand: %s\n\n", args[0])
		printArchiveUsage(errOut)
		return 2
	}
}

func printArchiveUsage(w io.Writer) {
	fmt.Fprintln(w, "arm archive: read and move archived transactions")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  arm archive get --config <armd.yaml> | --remote <host:port> <tx-id>")
	fmt.Fprintln(w, "  arm archive export --config <armd.yaml> [--index] [--out <file.tar>] <tx-id>...")
	fmt.Fprintln(w, "  arm archive import --config <armd.yaml> [--ignore-unknown] <file.tar|->")
}

// openArchive opens the archive section of an armd config file.
func openArchive(path string, errOut io.Writer) (*storage.Archive, func() error, bool) {
	if path == "" {
		fmt.Fprintln(errOut, "missing --config")
		return nil, nil, false
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return nil, nil, false
	}
	if !cfg.Archive.Enabled() {
		fmt.Fprintln(errOut, "config: no archive backends configured")
		return nil, nil, false
	}
	cas, closeFn, err := cfg.Archive.Open()
	if err != nil {
		fmt.Fprintf(errOut, "open archive: %v\n", err)
		return nil, nil, false
	}
	return storage.NewArchive(cas), closeFn, true
}

func parseIDs(args []string, errOut io.Writer) ([]cid.Cid, bool) {
	ids := make([]cid.Cid, 0, len(args))
	for _, s := range args {
		id, err := cidutil.Parse(s)
		if err != nil {
			fmt.Fprintf(errOut, "invalid tx-id %q: %v\n", s, err)
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func cmdArchiveGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "armd YAML config naming the archive")
	remote := fs.String("remote", "", "armd address serving its archive (archive.serve)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || (*configPath == "") == (*remote == "") {
		fmt.Fprintln(errOut, "usage: arm archive get --config <armd.yaml> | --remote <host:port> <tx-id>")
		return 2
	}
	ids, ok := parseIDs(fs.Args(), errOut)
	if !ok {
		return 2
	}

	var tx transaction.Transaction
	if *remote != "" {
		c, err := grpccas.Dial(*remote, grpccas.DialOptions{Timeout: rpcTimeout})
		if err != nil {
			fmt.Fprintf(errOut, "dial %s: %v\n", *remote, err)
			return 1
		}
		defer c.Close()
		tx, err = c.LoadTransaction(context.Background(), ids[0])
		if err != nil {
			fmt.Fprintf(errOut, "load: %v\n", err)
			return 1
		}
	} else {
		a, closeFn, ok := openArchive(*configPath, errOut)
		if !ok {
			return 1
		}
		defer closeFn()
		var err error
		tx, err = a.Load(ids[0])
		if err != nil {
			fmt.Fprintf(errOut, "load: %v\n", err)
			return 1
		}
	}
	if err := writeTerm(out, bridge.EncodeTransaction(tx)); err != nil {
		fmt.Fprintf(errOut, "write: %v\n", err)
		return 1
	}
	return 0
}

func cmdArchiveExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "armd YAML config naming the archive")
	outPath := fs.String("out", "", "Output file (default stdout)")
	withIndex := fs.Bool("index", false, "Include index.json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: arm archive export --config <armd.yaml> [--index] [--out <file.tar>] <tx-id>...")
		return 2
	}
	ids, ok := parseIDs(fs.Args(), errOut)
	if !ok {
		return 2
	}
	a, closeFn, ok := openArchive(*configPath, errOut)
	if !ok {
		return 1
	}
	defer closeFn()

	w := out
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(errOut, "create: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	if err := bundle.Export(w, a, ids, bundle.ExportOptions{IncludeIndex: *withIndex}); err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	return 0
}

func cmdArchiveImport(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "armd YAML config naming the archive")
	ignoreUnknown := fs.Bool("ignore-unknown", false, "Skip unknown bundle entries")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: arm archive import --config <armd.yaml> [--ignore-unknown] <file.tar|->")
		return 2
	}
	b, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read bundle: %v\n", err)
		return 1
	}
	a, closeFn, ok := openArchive(*configPath, errOut)
	if !ok {
		return 1
	}
	defer closeFn()

	ids, err := bundle.Import(bytes.NewReader(b), a, bundle.ImportOptions{IgnoreUnknown: *ignoreUnknown})
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	if err != nil {
		fmt.Fprintf(errOut, "import: %v\n", err)
		return 1
	}
	return 0
}
