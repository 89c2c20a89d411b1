package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScenariosDir is where generated scenarios are stored and looked up.
const ScenariosDir = "scenarios"

// GenerateScenarioPath creates a timestamped scenario filename
func GenerateScenarioPath() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(ScenariosDir, fmt.Sprintf("scenario_%s.yaml", timestamp))
}

// FindLatestScenario finds the most recent scenario file in dir
func FindLatestScenario(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var scenarios []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		scenarios = append(scenarios, candidate{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	if len(scenarios) == 0 {
		return "", fmt.Errorf("no scenario files found in %s", dir)
	}

	// Newest first
	sort.Slice(scenarios, func(i, j int) bool {
		return scenarios[i].modTime.After(scenarios[j].modTime)
	})

	return scenarios[0].path, nil
}
