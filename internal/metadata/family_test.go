package metadata

import "testing"

func TestDeriveFamily(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/x86_64/glibc/curl", "glibc"},
		{"https://example.com/x86_64/musl/curl", "musl"},
		{"https://example.com/x86_64/curl", ""},
		{"https://example.com/curl", ""},
		{"https://example.com/aarch64/valve/steam", "valve"},
		{"https://example.com/any/noarch/hello", ""},
		{"not-a-url-at-all", ""},
		{"https://example.com/Glibc/curl", "Glibc"},
	}
	for _, c := range cases {
		if got := DeriveFamily(c.url); got != c.want {
			t.Errorf("DeriveFamily(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

// Family derivation must not depend on catalog iteration order --
// it is a pure function of the URL alone, so calling it repeatedly (in
// any order) must always agree.
func TestDeriveFamilyStableAcrossOrder(t *testing.T) {
	urls := []string{
		"https://example.com/x86_64/glibc/curl",
		"https://example.com/x86_64/musl/curl",
		"https://example.com/aarch64/valve/steam",
	}
	first := make([]string, len(urls))
	for i, u := range urls {
		first[i] = DeriveFamily(u)
	}
	for i := len(urls) - 1; i >= 0; i-- {
		if got := DeriveFamily(urls[i]); got != first[i] {
			t.Errorf("DeriveFamily(%q) changed across call order: got %q, want %q", urls[i], got, first[i])
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"HTOP":  "htop",
		"Curl":  "curl",
		"steam": "steam",
		"":      "",
	}
	for in, want := range cases {
		if got := normalizeName(in); got != want {
			t.Errorf("normalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWirePackageNormalize(t *testing.T) {
	w := wirePackage{
		Pkg:         "CURL",
		DownloadURL: "https://example.com/x86_64/glibc/curl",
		Bsum:        "deadbeef",
	}
	p := w.normalize()
	if p.Name != "curl" {
		t.Errorf("Name = %q, want curl", p.Name)
	}
	if p.Family != "glibc" {
		t.Errorf("Family = %q, want glibc", p.Family)
	}
	if p.BinaryName != "curl" {
		t.Errorf("BinaryName defaulted to %q, want curl (falls back to Name)", p.BinaryName)
	}
}
