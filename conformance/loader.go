package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultTestPath is where scenario YAML files live, relative to this
// package's own directory (go test's working directory).
const DefaultTestPath = "../testdata/conformance"

// LoadedScenario pairs a scenario with the file and suite it came from, for
// readable subtest names.
type LoadedScenario struct {
	File     string
	Suite    Suite
	Scenario Scenario
}

// LoadAll walks dir and loads every scenario from every .yaml file in it.
func LoadAll(dir string) ([]LoadedScenario, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("conformance: test directory %s: %w", abs, err)
	}

	var loaded []LoadedScenario
	err = filepath.Walk(abs, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		scenarios, loadErr := loadFile(path)
		if loadErr != nil {
			relPath, _ := filepath.Rel(abs, path)
			return fmt.Errorf("conformance: %s: %w", relPath, loadErr)
		}

		relPath, _ := filepath.Rel(abs, path)
		for _, s := range scenarios {
			loaded = append(loaded, LoadedScenario{File: relPath, Suite: s.Suite, Scenario: s.Scenario})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func loadFile(path string) ([]LoadedScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}

	scenarios := make([]LoadedScenario, 0, len(suite.Scenarios))
	for _, sc := range suite.Scenarios {
		scenarios = append(scenarios, LoadedScenario{Suite: suite, Scenario: sc})
	}
	return scenarios, nil
}
