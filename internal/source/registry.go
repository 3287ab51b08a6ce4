package source

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Loader)
	mu       sync.RWMutex
)

// Register adds a loader to the registry.
func Register(loader Loader) {
	mu.Lock()
	defer mu.Unlock()
	registry[loader.Kind()] = loader
}

// Get retrieves a loader by kind.
func Get(kind string) (Loader, error) {
	mu.RLock()
	defer mu.RUnlock()

	loader, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind: %s", kind)
	}
	return loader, nil
}

// List returns all registered source kinds, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// All returns all registered loaders, sorted by kind.
func All() []Loader {
	mu.RLock()
	defer mu.RUnlock()

	loaders := make([]Loader, 0, len(registry))
	for _, loader := range registry {
		loaders = append(loaders, loader)
	}
	sort.Slice(loaders, func(i, j int) bool {
		return loaders[i].Kind() < loaders[j].Kind()
	})
	return loaders
}
