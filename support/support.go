// Package support is the launcher code that stays visible to launched
// applications. Interpreted packages import it as
// "github.com/kingrea/bootstrap/support" to reach the resolution context
// they were started from.
package support

import (
	"io/fs"
	"reflect"
	"sync"
)

// ImportPath is the path launched applications import this package by.
const ImportPath = "github.com/kingrea/bootstrap/support"

// Context is the view of a module-resolution context exposed to
// applications: an ordered file system plus the location list behind it.
type Context interface {
	fs.FS
	Locations() []string
}

var (
	mu      sync.Mutex
	current Context
)

// Current returns the ambient resolution context, or nil outside a launch.
func Current() Context {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Enter installs c as the ambient context and returns a function restoring
// the one that was active before. Launches do not nest safely.
func Enter(c Context) (restore func()) {
	mu.Lock()
	prev := current
	current = c
	mu.Unlock()
	return func() {
		mu.Lock()
		current = prev
		mu.Unlock()
	}
}

// ReadResource reads name from the ambient context.
func ReadResource(name string) ([]byte, error) {
	c := Current()
	if c == nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return fs.ReadFile(c, name)
}

// Locations lists the ambient context's locations in resolution order.
func Locations() []string {
	c := Current()
	if c == nil {
		return nil
	}
	return c.Locations()
}

// Symbols exports this package to the interpreter, keyed the way yaegi
// expects binary packages ("<import path>/<package name>").
var Symbols = map[string]map[string]reflect.Value{
	ImportPath + "/support": {
		"Current":      reflect.ValueOf(Current),
		"ReadResource": reflect.ValueOf(ReadResource),
		"Locations":    reflect.ValueOf(Locations),
		"Context":      reflect.ValueOf((*Context)(nil)),
	},
}
