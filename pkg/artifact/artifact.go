/*
Package artifact resolves compiled contracts that can be deployed.

A compiled contract (artifact) is a pair of NEF file and manifest produced by
the contract compiler. Artifacts are looked up by contract name, so for the
SimpleStorage contract a directory with SimpleStorage.nef and
SimpleStorage.manifest.json files is expected. Artifacts are immutable once
resolved, none of the users of this package should modify them.
*/
package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const (
	// NEFExt is the extension of compiled contract files.
	NEFExt = ".nef"
	// ManifestExt is the extension of contract manifest files.
	ManifestExt = ".manifest.json"
)

// ErrNotFound is returned when there is no artifact with the requested name.
var ErrNotFound = errors.New("artifact not found")

// Artifact is a compiled contract ready to be deployed.
type Artifact struct {
	// Name is the name artifact was requested with.
	Name     string
	NEF      *nef.File
	Manifest *manifest.Manifest

	NEFPath      string
	ManifestPath string
}

// Resolver maps contract name to a compiled artifact.
type Resolver interface {
	Resolve(name string) (*Artifact, error)
}

// Set is a number of artifacts resolved by name.
type Set map[string]*Artifact

// ExpectedHash returns the hash contract gets when deployed by the given
// sender.
func (a *Artifact) ExpectedHash(sender util.Uint160) util.Uint160 {
	return state.CreateContractHash(sender, a.NEF.Checksum, a.Manifest.Name)
}

// String implements the fmt.Stringer interface.
func (a *Artifact) String() string {
	if a.Manifest != nil && a.Manifest.Name != a.Name {
		return fmt.Sprintf("%s (%s)", a.Name, a.Manifest.Name)
	}
	return a.Name
}

// Get returns an artifact with the given name. It panics if there is no such
// artifact in the set which can only happen if a migration uses something it
// doesn't require.
func (s Set) Get(name string) *Artifact {
	a, ok := s[NormalizeName(name)]
	if !ok {
		panic(fmt.Sprintf("artifact %q was not required", name))
	}
	return a
}

// NormalizeName converts requested contract name into artifact name. It
// strips directories and source file extension, so "./SimpleStorage.go" is
// the same as "SimpleStorage".
func NormalizeName(name string) string {
	base := filepath.Base(name)
	if strings.HasSuffix(base, ManifestExt) {
		return strings.TrimSuffix(base, ManifestExt)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResolveAll resolves all of the given names with r. It fails on the first
// name that can't be resolved.
func ResolveAll(r Resolver, names []string) (Set, error) {
	s := make(Set, len(names))
	for _, name := range names {
		a, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		s[NormalizeName(name)] = a
	}
	return s, nil
}
