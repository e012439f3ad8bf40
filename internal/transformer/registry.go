package transformer

// registry.go keeps the named presets that can be selected with the cdn.preset option

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu      sync.RWMutex
	presets = map[string]Transformer{
		"cloudinary": Cloudinary{},
		"imagekit":   ImageKit{},
		"imgix":      Imgix{},
	}
)

// Register adds a named preset.  It returns an error if the name is empty or already used.
func Register(name string, t Transformer) error {
	if name == "" {
		return fmt.Errorf("cannot register a preset with no name")
	}
	if t == nil {
		return fmt.Errorf("cannot register nil transformer as preset %q", name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := presets[name]; exists {
		return fmt.Errorf("preset %q already registered", name)
	}
	presets[name] = t
	return nil
}

// Lookup returns the preset with the given name, or nil if there is none
func Lookup(name string) Transformer {
	mu.RLock()
	defer mu.RUnlock()
	return presets[name]
}

// Names returns the names of all presets in alphabetical order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	r := make([]string, 0, len(presets))
	for name := range presets {
		r = append(r, name)
	}
	sort.Strings(r)
	return r
}
