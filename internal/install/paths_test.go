package install

import (
	"path/filepath"
	"testing"

	"github.com/clearlinux/soar/internal/corepath"
	"github.com/clearlinux/soar/internal/store"
)

func testPaths(t *testing.T) *corepath.Paths {
	t.Helper()
	root := t.TempDir()
	p, err := corepath.New(root, filepath.Join(root, "bin"), filepath.Join(root, "cache"))
	if err != nil {
		t.Fatalf("corepath.New: %v", err)
	}
	return p
}

func TestStagingPathForStableAcrossCalls(t *testing.T) {
	p := testPaths(t)
	r := store.ResolvedPackage{
		Repository: "main",
		Collection: "bin",
		Package:    &store.Package{Name: "curl", Family: "glibc", BinaryName: "curl"},
	}

	a := StagingPathFor(p, r)
	b := StagingPathFor(p, r)
	if a != b {
		t.Errorf("StagingPathFor is not stable: %q != %q", a, b)
	}
	want := filepath.Join(p.PackagesTmp, "glibc-curl.part")
	if a != want {
		t.Errorf("StagingPathFor = %q, want %q", a, want)
	}
}

// The install directory name is prefixed by the first 8 hex of the
// checksum so distinct versions coexist without collision.
func TestDerivePathsLayout(t *testing.T) {
	p := testPaths(t)
	r := store.ResolvedPackage{
		Repository: "main",
		Collection: "bin",
		Package:    &store.Package{Name: "curl", Family: "glibc", BinaryName: "curl"},
	}
	checksum := "deadbeef00112233445566778899aabbccddeeff00112233445566778899aa"

	paths := DerivePaths(p, r, checksum)

	wantDir := filepath.Join(p.Packages, "deadbeef-glibc-curl")
	if paths.InstallDir != wantDir {
		t.Errorf("InstallDir = %q, want %q", paths.InstallDir, wantDir)
	}
	if paths.InstallPath != filepath.Join(wantDir, "curl") {
		t.Errorf("InstallPath = %q, want %q", paths.InstallPath, filepath.Join(wantDir, "curl"))
	}
	if paths.SymlinkPath != filepath.Join(p.Bin, "curl") {
		t.Errorf("SymlinkPath = %q, want %q", paths.SymlinkPath, filepath.Join(p.Bin, "curl"))
	}
}

// Short checksums (e.g. in tests) must not panic when sliced to 8
// bytes.
func TestDerivePathsShortChecksum(t *testing.T) {
	p := testPaths(t)
	r := store.ResolvedPackage{
		Repository: "main",
		Collection: "bin",
		Package:    &store.Package{Name: "htop", BinaryName: "htop"},
	}
	paths := DerivePaths(p, r, "ab")
	want := filepath.Join(p.Packages, "ab-htop")
	if paths.InstallDir != want {
		t.Errorf("InstallDir = %q, want %q", paths.InstallDir, want)
	}
}
