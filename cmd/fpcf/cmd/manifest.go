package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fpcfgo/fpcf/internal/demoanalyses"
)

// Manifest is the YAML-shaped configuration `run` loads: which
// demo scenarios to run and how many workers to give each phase. Absent
// Scenarios means "every known scenario", mirroring the scheduler's own
// "no phase config means run everything registered" default.
type Manifest struct {
	Workers   int      `yaml:"workers"`
	Scenarios []string `yaml:"scenarios"`
}

// loadManifest reads and validates a scheduler manifest from path. An empty
// path is not an error: it yields the zero Manifest, which resolveScenarios
// expands to every known scenario at the default worker count.
func loadManifest(path string) (Manifest, error) {
	var m Manifest
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	for _, name := range m.Scenarios {
		if !knownScenario(name) {
			return Manifest{}, fmt.Errorf("manifest %s: unknown scenario %q", path, name)
		}
	}
	return m, nil
}

func knownScenario(name string) bool {
	for _, n := range demoanalyses.Names {
		if n == name {
			return true
		}
	}
	return false
}

// resolveScenarios returns the scenario names and worker count a manifest
// (possibly the zero value) resolves to.
func resolveScenarios(m Manifest) ([]string, int) {
	names := m.Scenarios
	if len(names) == 0 {
		names = demoanalyses.Names
	}
	workers := m.Workers
	if workers < 1 {
		workers = 4
	}
	return names, workers
}
