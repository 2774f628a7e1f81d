package digest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashFileIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact")
	if err := os.WriteFile(path, []byte("hello soar"), 0644); err != nil {
		t.Fatal(err)
	}

	sum1, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %s", err)
	}
	sum2, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %s", err)
	}
	if sum1 != sum2 {
		t.Errorf("HashFile is not deterministic: %q != %q", sum1, sum2)
	}
	if len(sum1) != 64 {
		t.Errorf("HashFile digest length = %d, want 64 (lowercase hex blake3)", len(sum1))
	}
}

func TestHashFileDiffersOnContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	if err := os.WriteFile(a, []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("two"), 0644); err != nil {
		t.Fatal(err)
	}

	sumA, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	sumB, err := HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if sumA == sumB {
		t.Error("different file contents hashed to the same digest")
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact")
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	sum, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := Verify(path, sum)
	if err != nil || !ok {
		t.Errorf("Verify with correct sum = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = Verify(path, "0000000000000000000000000000000000000000000000000000000000000000")
	if err != nil {
		t.Errorf("Verify with wrong sum returned an error: %s", err)
	}
	if ok {
		t.Error("Verify with wrong sum should report false, not error")
	}
}

func TestPromoteMovesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "staging")
	dst := filepath.Join(dir, "final")

	if err := os.WriteFile(src, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Promote(src, dst); err != nil {
		t.Fatalf("Promote: %s", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("staging file should be gone after Promote")
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "v1" {
		t.Fatalf("destination contents = (%q, %v), want v1", data, err)
	}

	// Promoting a second time over an existing destination should succeed.
	if err := os.WriteFile(src, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Promote(src, dst); err != nil {
		t.Fatalf("Promote over existing destination: %s", err)
	}
	data, err = os.ReadFile(dst)
	if err != nil || string(data) != "v2" {
		t.Fatalf("destination after re-promote = (%q, %v), want v2", data, err)
	}
}

func TestIsTaggedWithoutXattrSupport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// On filesystems without xattr support (or before Tag is called),
	// IsTagged must degrade to false rather than erroring the caller.
	if IsTagged(path) {
		t.Error("untagged file reported as tagged")
	}
}
