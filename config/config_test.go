package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"anoma.net/arm/keys"
	"anoma.net/arm/logx"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "armd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
listen: 0.0.0.0:9000
prover:
  scheme: dilithium3
  key_name: node1
verify_cache:
  ttl: 5m
log:
  file: /tmp/armd.log
  level: debug
archive:
  write_policy: all
  backends:
    - {name: db, type: bolt, path: /tmp/tx.db}
    - {type: localfs, path: /tmp/tx}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Fatalf("listen = %q", cfg.Listen)
	}
	if cfg.Prover.Scheme != keys.SchemeDilithium3 || cfg.Prover.KeyName != "node1" {
		t.Fatalf("prover = %+v", cfg.Prover)
	}
	if cfg.Prover.Role != DefaultRole {
		t.Fatalf("role default lost: %q", cfg.Prover.Role)
	}
	if cfg.VerifyCache.TTL != 5*time.Minute {
		t.Fatalf("ttl = %v", cfg.VerifyCache.TTL)
	}
	if cfg.MaxMsgBytes != DefaultMaxMsgBytes {
		t.Fatalf("max_msg_bytes default lost: %d", cfg.MaxMsgBytes)
	}
	if len(cfg.Archive.Backends) != 2 || cfg.Archive.WritePolicy != "all" {
		t.Fatalf("archive = %+v", cfg.Archive)
	}
	opts := cfg.LogOptions()
	if opts.Level != logx.LevelDebug || opts.Color {
		t.Fatalf("log options = %+v", opts)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "listen: x\nbogus: 1\n",
		"bad scheme":     "prover: {scheme: rsa}\n",
		"bad key name":   "prover: {key_name: 'a/b'}\n",
		"bad level":      "log: {level: loud}\n",
		"bad archive":    "archive: {backends: [{type: ipfs, path: x}]}\n",
		"negative size":  "max_msg_bytes: -1\n",
		"empty listen":   "listen: ''\n",
		"negative cache": "verify_cache: {ttl: -1s}\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
