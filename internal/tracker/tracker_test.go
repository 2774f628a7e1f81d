package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/clearlinux/soar/internal/store"
)

func testResolved(repo, collection, name, family string) store.ResolvedPackage {
	return store.ResolvedPackage{
		Repository: repo,
		Collection: collection,
		Package:    &store.Package{Name: name, Family: family, BinaryName: name, Version: "1.0"},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "latest"))

	r := testResolved("main", "bin", "htop", "")
	if err := tr.Register(r, "deadbeef", 1024, time.Unix(1700000000, 0)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	installed, err := tr.IsInstalled(r)
	if err != nil {
		t.Fatalf("IsInstalled: %v", err)
	}
	if !installed {
		t.Fatal("IsInstalled = false, want true after Register")
	}

	rec, ok, err := tr.Lookup(r)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("Lookup reported not found")
	}
	if rec.Checksum != "deadbeef" || rec.SizeBytes != 1024 {
		t.Errorf("Lookup record = %+v, unexpected fields", rec)
	}
	if rec.InstallTimestamp != 1700000000 {
		t.Errorf("InstallTimestamp = %d, want 1700000000", rec.InstallTimestamp)
	}
}

// Registering the same (repository, collection, full_name) twice must
// update in place, not append a second record.
func TestRegisterUpdatesInPlace(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "latest"))
	r := testResolved("main", "bin", "htop", "")

	if err := tr.Register(r, "aaaa", 10, time.Unix(1, 0)); err != nil {
		t.Fatalf("Register 1: %v", err)
	}
	if err := tr.Register(r, "bbbb", 20, time.Unix(2, 0)); err != nil {
		t.Fatalf("Register 2: %v", err)
	}

	all, err := tr.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len(All()) = %d, want 1 (update-in-place)", len(all))
	}
	if all[0].Checksum != "bbbb" {
		t.Errorf("Checksum = %q, want bbbb", all[0].Checksum)
	}
}

// Register followed by Unregister of the same
// ResolvedPackage leaves the tracker with no record of it.
func TestUnregisterRemovesRecord(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "latest"))
	r := testResolved("main", "bin", "htop", "")

	if err := tr.Register(r, "deadbeef", 1, time.Unix(1, 0)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := tr.Unregister(r); err != nil {
		t.Fatalf("Unregister: %v", err)
	}

	installed, err := tr.IsInstalled(r)
	if err != nil {
		t.Fatalf("IsInstalled: %v", err)
	}
	if installed {
		t.Error("IsInstalled = true after Unregister, want false")
	}
}

func TestUnregisterAbsentIsError(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "latest"))
	r := testResolved("main", "bin", "htop", "")

	if err := tr.Unregister(r); err == nil {
		t.Fatal("Unregister on absent record returned nil error, want ErrNotInstalled")
	}
}

func TestMatchHonorsExact(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "latest"))

	plain := testResolved("main", "bin", "curl", "")
	glibc := testResolved("main", "bin", "curl", "glibc")
	if err := tr.Register(plain, "aaaa", 1, time.Unix(1, 0)); err != nil {
		t.Fatalf("Register plain: %v", err)
	}
	if err := tr.Register(glibc, "bbbb", 2, time.Unix(2, 0)); err != nil {
		t.Fatalf("Register glibc: %v", err)
	}

	wide, err := tr.Match("", "curl", "", false)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(wide) != 2 {
		t.Errorf("Match widened = %d records, want 2", len(wide))
	}

	narrow, err := tr.Match("", "curl", "", true)
	if err != nil {
		t.Fatalf("Match exact: %v", err)
	}
	if len(narrow) != 1 || narrow[0].Family != "" {
		t.Errorf("Match exact = %+v, want only the family-less record", narrow)
	}

	byFamily, err := tr.Match("glibc", "curl", "", false)
	if err != nil {
		t.Fatalf("Match by family: %v", err)
	}
	if len(byFamily) != 1 || byFamily[0].Family != "glibc" {
		t.Errorf("Match by family = %+v, want only the glibc record", byFamily)
	}
}

func TestFindByPrefix(t *testing.T) {
	dir := t.TempDir()
	tr := New(filepath.Join(dir, "latest"))

	a := testResolved("main", "bin", "htop", "")
	b := testResolved("main", "bin", "curl", "glibc")
	if err := tr.Register(a, "deadbeef00", 1, time.Unix(1, 0)); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if err := tr.Register(b, "deadc0de00", 2, time.Unix(2, 0)); err != nil {
		t.Fatalf("Register b: %v", err)
	}

	matches, err := tr.FindByPrefix("deadbeef")
	if err != nil {
		t.Fatalf("FindByPrefix: %v", err)
	}
	if len(matches) != 1 || matches[0].FullName != "htop" {
		t.Errorf("FindByPrefix(deadbeef) = %+v, want single htop record", matches)
	}
}

// Persistence survives a reload through a fresh Tracker backed by
// the same path, rewritten atomically.
func TestPersistenceAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest")
	tr1 := New(path)
	r := testResolved("main", "bin", "htop", "")
	if err := tr1.Register(r, "deadbeef", 1, time.Unix(42, 0)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tr2 := New(path)
	rec, ok, err := tr2.Lookup(r)
	if err != nil {
		t.Fatalf("Lookup on reloaded tracker: %v", err)
	}
	if !ok {
		t.Fatal("reloaded tracker lost the record")
	}
	if rec.InstallTimestamp != 42 {
		t.Errorf("InstallTimestamp after reload = %d, want 42", rec.InstallTimestamp)
	}
}

func TestIsInstalledOnMissingFileIsFalse(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "does-not-exist", "latest"))
	r := testResolved("main", "bin", "htop", "")
	installed, err := tr.IsInstalled(r)
	if err != nil {
		t.Fatalf("IsInstalled on missing tracker file: %v", err)
	}
	if installed {
		t.Error("IsInstalled = true with no tracker file on disk")
	}
}
