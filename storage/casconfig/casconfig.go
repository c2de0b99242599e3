// Package casconfig opens the transaction archive backends named in the
// daemon configuration.
package casconfig

import (
	"errors"
	"fmt"
	"time"

	"anoma.net/arm/storage"
	"anoma.net/arm/storage/boltcas"
	"anoma.net/arm/storage/grpccas"
	"anoma.net/arm/storage/ipfs"
	"anoma.net/arm/storage/localfs"
)

// Backend types.
const (
	TypeLocalFS = "localfs"
	TypeBolt    = "bolt"
	TypeGRPC    = "grpc"
	TypeIPFS    = "ipfs"
)

// Config describes one or more archive backends.
//
// WritePolicy is "first" (default) or "all"; see storage.WriteFirst and
// storage.WriteAll.
//
// Example:
//
//	archive:
//	  write_policy: all
//	  backends:
//	    - {name: disk, type: localfs, path: /var/lib/arm/tx}
//	    - {name: db, type: bolt, path: /var/lib/arm/tx.db}
//	    - {name: peer, type: grpc, target: 10.0.0.7:7650, timeout: 5s}
//	    - {name: kubo, type: ipfs, path: /var/lib/ipfs}
//
// Serve exposes the opened archive as the grpccas archive service on the
// daemon listener.
type Config struct {
	WritePolicy string          `yaml:"write_policy,omitempty"`
	Serve       bool            `yaml:"serve,omitempty"`
	Backends    []BackendConfig `yaml:"backends"`
}

type BackendConfig struct {
	// Name identifies the backend in errors. If empty, Type is used.
	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`

	// Target applies to grpc backends, Bin to ipfs backends (whose Path is
	// the optional IPFS_PATH repo). Timeout bounds each remote call.
	Target  string        `yaml:"target,omitempty"`
	Bin     string        `yaml:"bin,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

func (b BackendConfig) id() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Type
}

// Enabled reports whether any backend is configured.
func (c Config) Enabled() bool { return len(c.Backends) > 0 }

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		switch b.Type {
		case TypeLocalFS, TypeBolt:
			if b.Path == "" {
				return fmt.Errorf("casconfig: backend %q needs a path", b.id())
			}
		case TypeGRPC:
			if b.Target == "" {
				return fmt.Errorf("casconfig: backend %q needs a target", b.id())
			}
		case TypeIPFS:
		case "":
			return errors.New("casconfig: backend type is required")
		default:
			return fmt.Errorf("casconfig: unknown backend type %q", b.Type)
		}
		if _, ok := seen[b.id()]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", b.id())
		}
		seen[b.id()] = struct{}{}
	}
	if _, err := storage.ParsePolicy(c.WritePolicy); err != nil {
		return fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
	return nil
}

func openBackend(b BackendConfig) (storage.CAS, func() error, error) {
	switch b.Type {
	case TypeLocalFS:
		cas, err := localfs.New(b.Path)
		return cas, nil, err
	case TypeBolt:
		cas, err := boltcas.Open(b.Path)
		if err != nil {
			return nil, nil, err
		}
		return cas, cas.Close, nil
	case TypeGRPC:
		c, err := grpccas.Dial(b.Target, grpccas.DialOptions{Timeout: b.Timeout})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case TypeIPFS:
		return ipfs.New(ipfs.Options{Bin: b.Bin, Repo: b.Path, Timeout: b.Timeout}), nil, nil
	default:
		return nil, nil, fmt.Errorf("casconfig: unknown backend type %q", b.Type)
	}
}

// Open opens every backend and composes them into a storage.Set. The
// returned function closes every backend that holds resources.
func (c Config) Open() (storage.Set, func() error, error) {
	if err := c.Validate(); err != nil {
		return storage.Set{}, nil, err
	}
	policy, _ := storage.ParsePolicy(c.WritePolicy)
	set := storage.Set{Policy: policy}
	var closers []func() error
	closeAll := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	for _, b := range c.Backends {
		cas, closeFn, err := openBackend(b)
		if err != nil {
			_ = closeAll()
			return storage.Set{}, nil, fmt.Errorf("casconfig: backend %q: %w", b.id(), err)
		}
		set.Members = append(set.Members, storage.Member{Name: b.id(), CAS: cas})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}
	return set, closeAll, nil
}
