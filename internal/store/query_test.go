package store

import "testing"

func TestParseQuery(t *testing.T) {
	cases := []struct {
		in   string
		want Query
	}{
		{"htop", Query{Name: "htop"}},
		{"valve/steam", Query{Family: "valve", Name: "steam"}},
		{"htop#bincache", Query{Name: "htop", Collection: "bincache"}},
		{"valve/steam#pkgforge", Query{Family: "valve", Name: "steam", Collection: "pkgforge"}},
		{"HTOP", Query{Name: "htop"}},
		{"a/b/c", Query{Family: "a", Name: "b/c"}},
	}

	for _, c := range cases {
		got := ParseQuery(c.in)
		if got != c.want {
			t.Errorf("ParseQuery(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseQueryStringRoundTrip(t *testing.T) {
	inputs := []string{"htop", "valve/steam", "htop#bincache", "valve/steam#pkgforge"}
	for _, in := range inputs {
		q1 := ParseQuery(in)
		q2 := ParseQuery(q1.String())
		if q1 != q2 {
			t.Errorf("round trip broke: ParseQuery(%q)=%+v, ParseQuery(String())=%+v", in, q1, q2)
		}
	}
}

func TestPackageFullName(t *testing.T) {
	p := &Package{Name: "steam", Family: "valve"}
	if got := p.FullName("/"); got != "valve/steam" {
		t.Errorf("FullName(/) = %q, want valve/steam", got)
	}
	if got := p.FullName("-"); got != "valve-steam" {
		t.Errorf("FullName(-) = %q, want valve-steam", got)
	}

	plain := &Package{Name: "htop"}
	if got := plain.FullName("/"); got != "htop" {
		t.Errorf("FullName with no family = %q, want htop", got)
	}
}

func TestBsumIsNull(t *testing.T) {
	cases := []struct {
		bsum string
		want bool
	}{
		{"", true},
		{"null", true},
		{"NULL", true},
		{"deadbeef", false},
	}
	for _, c := range cases {
		p := &Package{Bsum: c.bsum}
		if got := p.BsumIsNull(); got != c.want {
			t.Errorf("BsumIsNull(%q) = %v, want %v", c.bsum, got, c.want)
		}
	}
}

func TestProvidesList(t *testing.T) {
	p := &Package{Provides: "vim, vi , editor"}
	got := p.ProvidesList()
	want := []string{"vim", "vi", "editor"}
	if len(got) != len(want) {
		t.Fatalf("ProvidesList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ProvidesList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProvidesListEmpty(t *testing.T) {
	p := &Package{}
	if got := p.ProvidesList(); got != nil {
		t.Errorf("ProvidesList() on empty field = %v, want nil", got)
	}
}
