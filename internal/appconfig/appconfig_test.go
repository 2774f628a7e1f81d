package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"soar_root": "/tmp/soar",
		"repositories": [{"name": "main", "url": "https://example.com"}]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ParallelLimit != defaultParallelLimit {
		t.Errorf("ParallelLimit = %d, want default %d", cfg.ParallelLimit, defaultParallelLimit)
	}
	if cfg.SearchLimit != defaultSearchLimit {
		t.Errorf("SearchLimit = %d, want default %d", cfg.SearchLimit, defaultSearchLimit)
	}
	if !cfg.ParallelEnabled() {
		t.Error("ParallelEnabled() = false with no parallel key, want true")
	}
}

func TestParallelExplicitFalseSticks(t *testing.T) {
	path := writeConfig(t, `{
		"soar_root": "/tmp/soar",
		"parallel": false,
		"repositories": [{"name": "main", "url": "https://example.com"}]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ParallelEnabled() {
		t.Error("ParallelEnabled() = true despite parallel: false")
	}
}

func TestLoadExpandsEnvInPaths(t *testing.T) {
	t.Setenv("SOAR_TEST_ROOT", "/opt/soar-data")
	path := writeConfig(t, `{
		"soar_root": "$SOAR_TEST_ROOT/root",
		"repositories": [{"name": "main", "url": "https://example.com"}]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SoarRoot != "/opt/soar-data/root" {
		t.Errorf("SoarRoot = %q, want /opt/soar-data/root", cfg.SoarRoot)
	}
}

func TestLoadRejectsNoRepositories(t *testing.T) {
	path := writeConfig(t, `{"soar_root": "/tmp/soar", "repositories": []}`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load with no repositories returned nil error")
	}
}

func TestLoadRejectsDuplicateRepositoryNames(t *testing.T) {
	path := writeConfig(t, `{
		"soar_root": "/tmp/soar",
		"repositories": [
			{"name": "main", "url": "https://a.example.com"},
			{"name": "main", "url": "https://b.example.com"}
		]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load with duplicate repository names returned nil error")
	}
}

func TestLoadRejectsRepositoryMissingURL(t *testing.T) {
	path := writeConfig(t, `{
		"soar_root": "/tmp/soar",
		"repositories": [{"name": "main"}]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load with a repository missing url returned nil error")
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.json")); err == nil {
		t.Fatal("Load on missing file returned nil error")
	}
}

func TestLoadMalformedJSONIsError(t *testing.T) {
	path := writeConfig(t, `{not valid json`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load on malformed JSON returned nil error")
	}
}
