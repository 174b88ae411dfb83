package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileFileName)
	lock := NewLockfile(" app ", "lox")
	lock.Packages = append(lock.Packages,
		&LockedPackage{Name: "zeta", Version: "path", Source: "path:../zeta", Checksum: "aa", Dir: "/tmp/zeta"},
		nil,
		&LockedPackage{Name: "alpha", Version: "v1.0.0@abc", Source: "git+https://example.com/alpha.git@abc", Checksum: " bb "},
	)

	require.NoError(t, WriteLockfile(lock, path))

	loaded, err := LoadLockfile(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "app", loaded.Root)
	require.Equal(t, "lox", loaded.Tool)
	require.Equal(t, lock.Generated, loaded.Generated)
	require.Len(t, loaded.Packages, 2)
	require.Equal(t, "alpha", loaded.Packages[0].Name)
	require.Equal(t, "bb", loaded.Packages[0].Checksum)
	require.Equal(t, "zeta", loaded.Packages[1].Name)
	require.Empty(t, loaded.Packages[1].Dir, "Dir must not be persisted")

	pkg, ok := loaded.Find("zeta")
	require.True(t, ok)
	require.Equal(t, "path:../zeta", pkg.Source)
	_, ok = loaded.Find("missing")
	require.False(t, ok)
}

func TestLockfileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileFileName)
	require.NoError(t, os.WriteFile(path, []byte("root: app\nextra: true\n"), 0o644))
	_, err := LoadLockfile(path)
	require.Error(t, err)
}

func TestWriteLockfileRequiresPath(t *testing.T) {
	require.Error(t, WriteLockfile(NewLockfile("app", "lox"), ""))
	require.Error(t, WriteLockfile(nil, "x"))
}

func TestNilLockfileFind(t *testing.T) {
	var lock *Lockfile
	_, ok := lock.Find("anything")
	require.False(t, ok)
}
