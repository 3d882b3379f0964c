// Package artifacttest contains helpers to create compiled contract artifacts
// for tests.
package artifacttest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"github.com/stretchr/testify/require"
)

// New creates an in-memory artifact with the given contract name and
// script. Its manifest has a single safe "get" method.
func New(t testing.TB, name string, script []byte) *artifact.Artifact {
	nefFile, err := nef.NewFile(script)
	require.NoError(t, err)

	m := manifest.DefaultManifest(name)
	m.ABI.Methods = []manifest.Method{{
		Name:       "get",
		ReturnType: smartcontract.IntegerType,
		Safe:       true,
	}}
	return &artifact.Artifact{
		Name:     name,
		NEF:      nefFile,
		Manifest: m,
	}
}

// Write creates an artifact like New does and stores it into dir.
func Write(t testing.TB, dir string, name string, script []byte) *artifact.Artifact {
	a := New(t, name, script)

	rawNEF, err := a.NEF.Bytes()
	require.NoError(t, err)
	rawManif, err := json.Marshal(a.Manifest)
	require.NoError(t, err)

	a.NEFPath = filepath.Join(dir, name+artifact.NEFExt)
	a.ManifestPath = filepath.Join(dir, name+artifact.ManifestExt)
	require.NoError(t, os.WriteFile(a.NEFPath, rawNEF, 0644))
	require.NoError(t, os.WriteFile(a.ManifestPath, rawManif, 0644))
	return a
}
