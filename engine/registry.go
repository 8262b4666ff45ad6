package engine

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Engine)
)

// Register makes an engine available under its name. Engines call it from
// their package init, users select them by name and blank-import the
// package. Register panics if the engine is nil or the name is taken.
func Register(e Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if e == nil {
		panic("engine: Register engine is nil")
	}

	name := e.Name()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("engine: Register called twice for %q", name))
	}

	registry[name] = e
}

// Lookup returns the engine registered under name.
func Lookup(name string) (Engine, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[name]

	return e, ok
}

// Names returns the sorted names of all registered engines.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
