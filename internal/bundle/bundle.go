// Package bundle embeds the sample datasets shipped with svustats.
package bundle

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Tyorden/svustats/internal/loader"
	"github.com/Tyorden/svustats/internal/model"
)

// ErrDatasetNotFound is returned for a name with no embedded dataset.
var ErrDatasetNotFound = errors.New("bundled dataset not found")

//go:embed data/*.json
var files embed.FS

type entry struct {
	once sync.Once
	ds   *model.Dataset
	err  error
}

var (
	mu      sync.Mutex
	entries = map[string]*entry{}
)

// Names returns the names of the embedded datasets, sorted.
func Names() []string {
	dir, err := files.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(dir))
	for _, f := range dir {
		names = append(names, strings.TrimSuffix(f.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is an embedded dataset.
func Has(name string) bool {
	_, err := files.Open(path(name))
	return err == nil
}

func path(name string) string {
	return "data/" + strings.ToLower(strings.TrimSpace(name)) + ".json"
}

// Load returns the embedded dataset called name. Each dataset is decoded
// and validated once; later calls share the result, which must not be
// modified.
func Load(name string) (*model.Dataset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !Has(key) {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrDatasetNotFound, name, strings.Join(Names(), ", "))
	}

	mu.Lock()
	e, ok := entries[key]
	if !ok {
		e = &entry{}
		entries[key] = e
	}
	mu.Unlock()

	e.once.Do(func() {
		e.ds, e.err = decode(key)
	})
	return e.ds, e.err
}

func decode(name string) (*model.Dataset, error) {
	data, err := files.ReadFile(path(name))
	if err != nil {
		return nil, err
	}
	ds, err := loader.Decode(bytes.NewReader(data), loader.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("bundled %s: %w", name, err)
	}
	if _, err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("bundled %s: %w", name, err)
	}
	return ds, nil
}
