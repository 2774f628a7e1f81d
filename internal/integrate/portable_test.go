package integrate

import (
	"os"
	"path/filepath"
	"testing"
)

// portable and portable_home together is rejected before any
// filesystem mutation.
func TestApplyPortableRejectsPortableWithSplitForm(t *testing.T) {
	dir := t.TempDir()
	installPath := filepath.Join(dir, "curl")
	if err := os.WriteFile(installPath, []byte("x"), 0755); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	opts := PortableOptions{Portable: true, PortableHomeSet: true, PortableHome: ""}
	if err := ApplyPortable(installPath, "curl", opts); err == nil {
		t.Fatal("ApplyPortable accepted portable + portable_home, want error")
	}

	if _, err := os.Stat(installPath + ".home"); err == nil {
		t.Error("ApplyPortable created .home sibling despite rejecting the combination")
	}
}

func TestApplyPortableEmptyValueCreatesSibling(t *testing.T) {
	dir := t.TempDir()
	installPath := filepath.Join(dir, "curl")

	opts := PortableOptions{Portable: true}
	if err := ApplyPortable(installPath, "curl", opts); err != nil {
		t.Fatalf("ApplyPortable: %v", err)
	}

	for _, suffix := range []string{".home", ".config"} {
		fi, err := os.Stat(installPath + suffix)
		if err != nil {
			t.Fatalf("stat %s%s: %v", installPath, suffix, err)
		}
		if !fi.IsDir() {
			t.Errorf("%s%s is not a directory", installPath, suffix)
		}
	}
}

func TestApplyPortableNamedValueSymlinksSibling(t *testing.T) {
	dir := t.TempDir()
	installPath := filepath.Join(dir, "curl")
	externalRoot := filepath.Join(dir, "external")

	opts := PortableOptions{PortableHomeSet: true, PortableHome: externalRoot}
	if err := ApplyPortable(installPath, "curl", opts); err != nil {
		t.Fatalf("ApplyPortable: %v", err)
	}

	target, err := os.Readlink(installPath + ".home")
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	want := filepath.Join(externalRoot, "curl.home")
	if target != want {
		t.Errorf("symlink target = %q, want %q", target, want)
	}

	fi, err := os.Stat(want)
	if err != nil || !fi.IsDir() {
		t.Errorf("target directory %s does not exist or is not a directory", want)
	}
}

func TestApplyPortableNoopWhenNothingRequested(t *testing.T) {
	dir := t.TempDir()
	installPath := filepath.Join(dir, "curl")
	if err := ApplyPortable(installPath, "curl", PortableOptions{}); err != nil {
		t.Fatalf("ApplyPortable: %v", err)
	}
	if _, err := os.Stat(installPath + ".home"); err == nil {
		t.Error("ApplyPortable created .home sibling with no options requested")
	}
}
