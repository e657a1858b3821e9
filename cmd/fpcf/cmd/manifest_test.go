package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestLoadManifestEmptyPathYieldsZeroValue(t *testing.T) {
	m, err := loadManifest("")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(m.Workers, 0))
	qt.Assert(t, qt.Equals(len(m.Scenarios), 0))
}

func TestLoadManifestRejectsUnknownScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("workers: 2\nscenarios: [\"not-a-scenario\"]\n"), 0o644)))

	_, err := loadManifest(path)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestLoadManifestAcceptsKnownScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("workers: 8\nscenarios: [\"linear-chain\", \"join\"]\n"), 0o644)))

	m, err := loadManifest(path)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(m.Workers, 8))
	qt.Assert(t, qt.DeepEquals(m.Scenarios, []string{"linear-chain", "join"}))
}

func TestResolveScenariosDefaultsToEveryKnownScenario(t *testing.T) {
	names, workers := resolveScenarios(Manifest{})
	qt.Assert(t, qt.Equals(workers, 4))
	qt.Assert(t, qt.Equals(len(names), 6))
}

func TestResolveScenariosHonorsManifest(t *testing.T) {
	names, workers := resolveScenarios(Manifest{Workers: 16, Scenarios: []string{"fallback"}})
	qt.Assert(t, qt.Equals(workers, 16))
	qt.Assert(t, qt.DeepEquals(names, []string{"fallback"}))
}
