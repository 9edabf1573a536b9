package module

import (
	"fmt"
	"go/token"
	"path"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Symbols maps exported identifiers of a host module to their values.
// Functions are stored as-is (func([]string) for entry points).
type Symbols map[string]any

// Module is a natively compiled module resolvable by name.
type Module struct {
	Name    string
	Symbols Symbols
}

// Registry is the parent tier of every resolution context: modules compiled
// into the launcher binary, looked up by import path.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]Module{}}
}

// Register installs a module. Returns an error if the name already exists.
func (r *Registry) Register(name string, symbols Symbols) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("module: name is required")
	}
	if len(symbols) == 0 {
		return fmt.Errorf("module: symbols are required for %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module: %s already registered", name)
	}
	copied := make(Symbols, len(symbols))
	for k, v := range symbols {
		copied[k] = v
	}
	r.modules[name] = Module{Name: name, Symbols: copied}
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(name string, symbols Symbols) {
	if err := r.Register(name, symbols); err != nil {
		panic(err)
	}
}

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (Module, error) {
	if r == nil {
		return Module{}, fmt.Errorf("module: unknown module %s", name)
	}
	r.mu.RLock()
	mod, ok := r.modules[name]
	r.mu.RUnlock()
	if !ok {
		return Module{}, fmt.Errorf("module: unknown module %s", name)
	}
	return mod, nil
}

// Names returns a sorted list of registered module names.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exports renders every module in the binary-package form the interpreter
// consumes, so interpreted code can import registered modules. Only
// exported identifiers are included.
func (r *Registry) Exports() map[string]map[string]reflect.Value {
	exports := map[string]map[string]reflect.Value{}
	if r == nil {
		return exports
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, mod := range r.modules {
		syms := make(map[string]reflect.Value, len(mod.Symbols))
		for id, value := range mod.Symbols {
			if !IsExported(id) || value == nil {
				continue
			}
			syms[id] = reflect.ValueOf(value)
		}
		exports[name+"/"+path.Base(name)] = syms
	}
	return exports
}

// IsExported reports whether id would be exported by Go's naming rule.
func IsExported(id string) bool {
	return token.IsExported(id)
}
