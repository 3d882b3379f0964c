package artifact_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-migrate/internal/artifacttest"
	"github.com/nspcc-dev/neo-migrate/pkg/artifact"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	for in, out := range map[string]string{
		"SimpleStorage":                    "SimpleStorage",
		"./SimpleStorage.sol":              "SimpleStorage",
		"contracts/licence/Licence.go":     "Licence",
		"build/Licence.nef":                "Licence",
		"build/Licence.manifest.json":      "Licence",
		"SimpleStorage.some.dotted.suffix": "SimpleStorage.some.dotted",
	} {
		require.Equal(t, out, artifact.NormalizeName(in), in)
	}
}

func TestDirResolver(t *testing.T) {
	dir := t.TempDir()
	expected := artifacttest.Write(t, dir, "SimpleStorage", []byte{1, 2, 3})
	r := artifact.NewDirResolver(dir)
	require.Equal(t, dir, r.Dir())

	t.Run("good", func(t *testing.T) {
		a, err := r.Resolve("./SimpleStorage.sol")
		require.NoError(t, err)
		require.Equal(t, "SimpleStorage", a.Name)
		require.Equal(t, expected.NEF.Script, a.NEF.Script)
		require.Equal(t, expected.NEF.Checksum, a.NEF.Checksum)
		require.Equal(t, "SimpleStorage", a.Manifest.Name)
		require.Equal(t, expected.NEFPath, a.NEFPath)
		require.Equal(t, expected.ManifestPath, a.ManifestPath)

		again, err := r.Resolve("SimpleStorage")
		require.NoError(t, err)
		require.True(t, a == again, "cached artifact expected")
	})
	t.Run("missing", func(t *testing.T) {
		_, err := r.Resolve("Licence")
		require.ErrorIs(t, err, artifact.ErrNotFound)
	})
	t.Run("empty name", func(t *testing.T) {
		_, err := r.Resolve("")
		require.Error(t, err)
	})
	t.Run("missing manifest", func(t *testing.T) {
		a := artifacttest.Write(t, dir, "NoManifest", []byte{1})
		require.NoError(t, os.Remove(a.ManifestPath))
		_, err := r.Resolve("NoManifest")
		require.ErrorIs(t, err, artifact.ErrNotFound)
	})
	t.Run("bad NEF", func(t *testing.T) {
		a := artifacttest.Write(t, dir, "BadNEF", []byte{1})
		require.NoError(t, os.WriteFile(a.NEFPath, []byte("not a NEF"), 0644))
		_, err := r.Resolve("BadNEF")
		require.Error(t, err)
		require.NotErrorIs(t, err, artifact.ErrNotFound)
	})
	t.Run("bad manifest", func(t *testing.T) {
		a := artifacttest.Write(t, dir, "BadManifest", []byte{1})
		require.NoError(t, os.WriteFile(a.ManifestPath, []byte("{"), 0644))
		_, err := r.Resolve("BadManifest")
		require.Error(t, err)
	})
	t.Run("unnamed manifest", func(t *testing.T) {
		a := artifacttest.Write(t, dir, "Unnamed", []byte{1})
		require.NoError(t, os.WriteFile(a.ManifestPath, []byte(`{"name":""}`), 0644))
		_, err := r.Resolve("Unnamed")
		require.Error(t, err)
	})
}

func TestResolveAll(t *testing.T) {
	dir := t.TempDir()
	artifacttest.Write(t, dir, "SimpleStorage", []byte{1})
	artifacttest.Write(t, dir, "Licence", []byte{2})
	r := artifact.NewDirResolver(dir)

	s, err := artifact.ResolveAll(r, []string{"./SimpleStorage.sol", "./Licence.sol"})
	require.NoError(t, err)
	require.Len(t, s, 2)
	require.Equal(t, "SimpleStorage", s.Get("SimpleStorage").Name)
	require.Equal(t, "Licence", s.Get("./Licence.sol").Name)
	require.Panics(t, func() { s.Get("Other") })

	_, err = artifact.ResolveAll(r, []string{"SimpleStorage", "Other"})
	require.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	artifacttest.Write(t, dir, "SimpleStorage", []byte{1})
	artifacttest.Write(t, dir, "Licence", []byte{2})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Orphan.nef"), []byte{1}, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.nef"), 0755))

	names, err := artifact.List(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"Licence", "SimpleStorage"}, names)

	_, err = artifact.List(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestExpectedHash(t *testing.T) {
	a := artifacttest.New(t, "Licence", []byte{1, 2, 3})
	sender := util.Uint160{1, 2, 3}
	require.Equal(t, state.CreateContractHash(sender, a.NEF.Checksum, "Licence"), a.ExpectedHash(sender))
	require.NotEqual(t, a.ExpectedHash(sender), a.ExpectedHash(util.Uint160{3, 2, 1}))
	require.Equal(t, "Licence", a.String())

	a.Name = "licence"
	require.Equal(t, "licence (Licence)", a.String())
}
