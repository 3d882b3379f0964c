package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

// DefaultCacheSize is the number of artifacts DirResolver keeps in memory.
const DefaultCacheSize = 64

// DirResolver resolves artifacts from a directory with compiled contracts.
type DirResolver struct {
	dir   string
	cache *lru.Cache
}

var errEmptyName = errors.New("empty artifact name")

// NewDirResolver creates a resolver for the given directory. The directory
// isn't checked until the first Resolve call.
func NewDirResolver(dir string) *DirResolver {
	cache, _ := lru.New(DefaultCacheSize) // Never errors for positive size.
	return &DirResolver{
		dir:   dir,
		cache: cache,
	}
}

// Dir returns directory artifacts are read from.
func (r *DirResolver) Dir() string {
	return r.dir
}

// Resolve implements the Resolver interface. The same name always resolves
// to the same *Artifact while it's in the cache.
func (r *DirResolver) Resolve(name string) (*Artifact, error) {
	name = NormalizeName(name)
	if name == "" || name == "." {
		return nil, errEmptyName
	}
	if a, ok := r.cache.Get(name); ok {
		return a.(*Artifact), nil
	}
	a, err := Read(r.dir, name)
	if err != nil {
		return nil, err
	}
	r.cache.Add(name, a)
	return a, nil
}

// Read reads artifact with the given name from dir bypassing any caches.
func Read(dir string, name string) (*Artifact, error) {
	var (
		nefPath   = filepath.Join(dir, name+NEFExt)
		manifPath = filepath.Join(dir, name+ManifestExt)
	)
	nefFile, err := readNEFFile(nefPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	m, err := readManifest(manifPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Artifact{
		Name:         name,
		NEF:          nefFile,
		Manifest:     m,
		NEFPath:      nefPath,
		ManifestPath: manifPath,
	}, nil
}

// List returns names of all complete artifacts (having both NEF and
// manifest) in the given directory, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), NEFExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), NEFExt)
		if _, err := os.Stat(filepath.Join(dir, name+ManifestExt)); err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func readNEFFile(filename string) (*nef.File, error) {
	f, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no NEF file %s", ErrNotFound, filename)
		}
		return nil, err
	}

	nefFile, err := nef.FileFromBytes(f)
	if err != nil {
		return nil, fmt.Errorf("can't parse NEF file: %w", err)
	}
	if len(nefFile.Script) == 0 {
		return nil, errors.New("empty NEF script")
	}
	return &nefFile, nil
}

func readManifest(filename string) (*manifest.Manifest, error) {
	manifestBytes, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no manifest file %s", ErrNotFound, filename)
		}
		return nil, err
	}

	m := new(manifest.Manifest)
	err = json.Unmarshal(manifestBytes, m)
	if err != nil {
		return nil, fmt.Errorf("can't parse manifest: %w", err)
	}
	if m.Name == "" {
		return nil, errors.New("manifest has no contract name")
	}
	return m, nil
}
