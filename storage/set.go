package storage

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"anoma.net/arm/cidutil"
)

// Policy says which members of a Set receive writes.
type Policy int

const (
	// WriteFirst writes to the first member only. A read served by a later
	// member copies the object into the first, so a local store in front of
	// a remote peer fills up on read.
	WriteFirst Policy = iota
	// WriteAll writes to every member and requires each to report the same
	// ID. A read copies the object into every member that missed it.
	WriteAll
)

// ParsePolicy maps the config names "first" (or "") and "all" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "first":
		return WriteFirst, nil
	case "all":
		return WriteAll, nil
	default:
		return 0, fmt.Errorf("storage: unknown write policy %q", s)
	}
}

func (p Policy) String() string {
	if p == WriteAll {
		return "all"
	}
	return "first"
}

// Member is a named backend of a Set.
type Member struct {
	Name string
	CAS  CAS
}

// Set composes backends into one archive store. Put only accepts objects
// that pass Check, and Get verifies every object against its ID before
// returning it, whichever member served it.
type Set struct {
	Members []Member
	Policy  Policy
}

var _ CAS = Set{}

// writers returns the members Put writes to.
func (s Set) writers() []Member {
	if s.Policy == WriteAll || len(s.Members) == 0 {
		return s.Members
	}
	return s.Members[:1]
}

func (s Set) Put(b []byte) (cid.Cid, error) {
	if len(s.Members) == 0 {
		return cid.Undef, errors.New("storage: archive set has no members")
	}
	if _, err := Check(b); err != nil {
		return cid.Undef, err
	}
	want, err := cidutil.Sum(b)
	if err != nil {
		return cid.Undef, err
	}
	for _, m := range s.writers() {
		got, err := m.CAS.Put(b)
		if err == nil && !got.Equals(want) {
			err = ErrCIDMismatch
		}
		if err != nil {
			return cid.Undef, fmt.Errorf("storage: member %q: %w", m.Name, err)
		}
	}
	return want, nil
}

// Get returns the first hit in member order. An error other than
// ErrNotFound stops the search. Writers that missed the object are filled
// from the hit when it passes Check; a failed fill still answers the read.
func (s Set) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	writers := len(s.writers())
	var missed []Member
	for i, m := range s.Members {
		b, err := m.CAS.Get(id)
		if IsNotFound(err) {
			if i < writers {
				missed = append(missed, m)
			}
			continue
		}
		if err == nil {
			err = Verify(id, b)
		}
		if err != nil {
			return nil, fmt.Errorf("storage: member %q: %w", m.Name, err)
		}
		if len(missed) > 0 {
			if _, cerr := Check(b); cerr == nil {
				for _, w := range missed {
					_, _ = w.CAS.Put(b)
				}
			}
		}
		return b, nil
	}
	return nil, ErrNotFound
}

func (s Set) Has(id cid.Cid) bool {
	for _, m := range s.Members {
		if m.CAS.Has(id) {
			return true
		}
	}
	return false
}
