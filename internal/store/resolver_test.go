package store

import (
	"testing"

	"github.com/clearlinux/soar/internal/prompt"
	"github.com/pkg/errors"
)

func buildTestStore() *PackageStore {
	s := NewPackageStore()
	s.Put("main", RepositoryPackages{
		"bincache": CollectionPackages{
			"htop": []*Package{{Name: "htop", Family: "", Version: "3.2.1"}},
			"steam": []*Package{
				{Name: "steam", Family: "valve", Version: "1.0"},
				{Name: "steam", Family: "flatpak", Version: "1.0-fp"},
			},
		},
		"pkgforge": CollectionPackages{
			"htop": []*Package{{Name: "htop", Family: "", Version: "3.3.0"}},
		},
	})
	return s
}

func TestGetPackagesByName(t *testing.T) {
	s := buildTestStore()
	got := s.GetPackages(Query{Name: "htop"})
	if len(got) != 2 {
		t.Fatalf("GetPackages(htop) returned %d results, want 2", len(got))
	}
}

func TestGetPackagesFiltersByCollection(t *testing.T) {
	s := buildTestStore()
	got := s.GetPackages(Query{Name: "htop", Collection: "pkgforge"})
	if len(got) != 1 || got[0].Package.Version != "3.3.0" {
		t.Fatalf("GetPackages(htop#pkgforge) = %+v, want single 3.3.0 match", got)
	}
}

func TestGetPackagesFiltersByFamily(t *testing.T) {
	s := buildTestStore()
	got := s.GetPackages(Query{Name: "steam", Family: "valve"})
	if len(got) != 1 || got[0].Package.Family != "valve" {
		t.Fatalf("GetPackages(valve/steam) = %+v, want single valve match", got)
	}
}

func TestResolveOneUnambiguous(t *testing.T) {
	s := buildTestStore()
	rp, err := s.ResolveOne(Query{Name: "steam", Family: "valve"}, false, prompt.FirstWins{})
	if err != nil {
		t.Fatalf("ResolveOne: %s", err)
	}
	if rp.Package.Family != "valve" {
		t.Errorf("resolved to %+v, want valve family", rp)
	}
}

func TestResolveOneUnknownCollection(t *testing.T) {
	s := buildTestStore()
	_, err := s.ResolveOne(Query{Name: "htop", Collection: "nope"}, false, prompt.FirstWins{})
	if err == nil {
		t.Fatal("expected an error for an unknown collection suffix")
	}
	if !errors.Is(err, ErrInvalidCollection) {
		t.Errorf("error = %v, want ErrInvalidCollection", err)
	}
}

func TestResolveOneNoMatch(t *testing.T) {
	s := buildTestStore()
	if _, err := s.ResolveOne(Query{Name: "nonexistent"}, false, prompt.FirstWins{}); err == nil {
		t.Error("expected an error resolving a nonexistent package")
	}
}

func TestResolveOneAmbiguousYesPicksFirst(t *testing.T) {
	s := buildTestStore()
	rp, err := s.ResolveOne(Query{Name: "steam"}, true, prompt.FirstWins{})
	if err != nil {
		t.Fatalf("ResolveOne: %s", err)
	}
	if rp.Package.Family != "valve" {
		t.Errorf("yes=true should pick first candidate, got %+v", rp)
	}
}

func TestResolveOneAmbiguousPrompts(t *testing.T) {
	s := buildTestStore()
	rp, err := s.ResolveOne(Query{Name: "steam"}, false, prompt.FirstWins{})
	if err != nil {
		t.Fatalf("ResolveOne: %s", err)
	}
	// FirstWins.Choose always returns index 0.
	if rp.Package.Family != "valve" {
		t.Errorf("expected FirstWins to choose index 0, got %+v", rp)
	}
}
