// Package submissions discovers graded allocation functions. A submission
// is a JSON manifest binding a registered strategy constructor to an
// external identity; the engine itself never touches the filesystem.
package submissions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tantralabs/arbiter/logger"
	"github.com/tantralabs/arbiter/models"
)

// Factory builds an allocation function from manifest parameters.
type Factory func(params map[string]float64) (models.AllocationFunc, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes a strategy constructor available to manifests under the
// given name. Registering the same name twice panics; that is a wiring
// bug, not a runtime condition.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("submissions: strategy %q registered twice", name))
	}
	registry[name] = factory
}

// Manifest is one submission file on disk.
type Manifest struct {
	Name     string             `json:"name"`
	ID       string             `json:"id"`
	Strategy string             `json:"strategy"`
	Params   map[string]float64 `json:"params"`
}

// LoadError records a submission that could not be loaded. Load-time
// errors are distinct from runtime backtest failures and never abort
// discovery of the remaining submissions.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%v: %v", e.Path, e.Err)
}

// LoadDir reads every .json manifest in dir, in file-name order, and
// resolves each against the registry. Malformed or unresolvable manifests
// are returned as LoadErrors alongside the successfully loaded set.
func LoadDir(dir string) ([]models.Submission, []LoadError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	var subs []models.Submission
	var failed []LoadError
	for _, path := range paths {
		sub, err := loadManifest(path)
		if err != nil {
			logger.Errorf("Skipping submission %v: %v\n", path, err)
			failed = append(failed, LoadError{Path: path, Err: err})
			continue
		}
		subs = append(subs, sub)
	}
	return subs, failed, nil
}

func loadManifest(path string) (models.Submission, error) {
	var sub models.Submission
	raw, err := os.ReadFile(path)
	if err != nil {
		return sub, err
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return sub, err
	}
	if manifest.Name == "" || manifest.Strategy == "" {
		return sub, fmt.Errorf("manifest must set name and strategy")
	}

	mu.RLock()
	factory, ok := registry[manifest.Strategy]
	mu.RUnlock()
	if !ok {
		return sub, fmt.Errorf("unknown strategy %q", manifest.Strategy)
	}
	fn, err := factory(manifest.Params)
	if err != nil {
		return sub, err
	}
	return models.Submission{Name: manifest.Name, ID: manifest.ID, Fn: fn}, nil
}
