// Package entrypoint finds a launchable entry point inside a resolution
// context, validates its shape and calls it.
package entrypoint

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"reflect"
	"sort"
	"strings"

	"github.com/kingrea/bootstrap/internal/classpath"
	"github.com/kingrea/bootstrap/internal/failure"
	"github.com/kingrea/bootstrap/internal/module"
)

// SymbolName is the conventional name of an entry point.
const SymbolName = "Main"

// Resolver is the resolution context an entry point is located in: a local
// package tier backed by a parent registry.
type Resolver interface {
	fs.FS
	Locations() []string
	Package(importPath string) (*classpath.Package, error)
	SourceFS() fs.FS
	Parent() *module.Registry
}

// Descriptor is a located entry point that passed every shape check.
type Descriptor struct {
	Module      string
	Symbol      string
	PackageName string
	Location    string

	resolver Resolver
	source   *classpath.Package
	host     func([]string)
}

// Name returns the fully-qualified symbol name.
func (d *Descriptor) Name() string {
	return d.Module + "." + d.Symbol
}

// Interpreted reports whether the entry point comes from a package archive
// or resource root rather than from the parent registry.
func (d *Descriptor) Interpreted() bool {
	return d.source != nil
}

type candidate struct {
	name     string
	exported bool
	static   bool
	void     bool
	value    reflect.Value
}

// Locate resolves name in r and validates its entry symbol. Checks run in a
// fixed order and the first failure is returned.
func Locate(name string, r Resolver) (*Descriptor, error) {
	pkg, localErr := r.Package(name)
	if pkg != nil {
		return locateSource(name, pkg, r)
	}
	mod, err := r.Parent().Lookup(name)
	if err != nil {
		return nil, failure.Wrap(failure.ErrMainClassNotFound, name,
			fmt.Sprintf("Main class '%s' not found.", name), errors.Join(localErr, err))
	}
	return locateHost(name, mod, r)
}

func locateSource(name string, pkg *classpath.Package, r Resolver) (*Descriptor, error) {
	fset := token.NewFileSet()
	var pkgName string
	var cands []candidate
	for _, file := range pkg.Files {
		f, err := parser.ParseFile(fset, pkg.Location.Path+"!"+file.Name, file.Data, parser.SkipObjectResolution)
		if err != nil {
			return nil, failure.Wrap(failure.ErrMainClassNotFound, name,
				fmt.Sprintf("Main class '%s' cannot be loaded: %v", name, err), err)
		}
		if pkgName == "" {
			pkgName = f.Name.Name
		}
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || !strings.EqualFold(fd.Name.Name, SymbolName) || !takesArgs(fd.Type.Params) {
				continue
			}
			cands = append(cands, candidate{
				name:     fd.Name.Name,
				exported: fd.Name.IsExported(),
				static:   fd.Recv == nil,
				void:     fd.Type.Results == nil || len(fd.Type.Results.List) == 0,
			})
		}
	}
	c, err := selectEntry(name, cands)
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		Module:      name,
		Symbol:      c.name,
		PackageName: pkgName,
		Location:    pkg.Location.String(),
		resolver:    r,
		source:      pkg,
	}, nil
}

// takesArgs reports whether a parameter list is exactly one []string.
func takesArgs(params *ast.FieldList) bool {
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) > 1 {
		return false
	}
	arr, ok := params.List[0].Type.(*ast.ArrayType)
	if !ok || arr.Len != nil {
		return false
	}
	elt, ok := arr.Elt.(*ast.Ident)
	return ok && elt.Name == "string"
}

var (
	stringSlice = reflect.TypeOf([]string(nil))
	entryFunc   = reflect.TypeOf(func([]string) {})
)

func locateHost(name string, mod module.Module, r Resolver) (*Descriptor, error) {
	var cands []candidate
	for id, sym := range mod.Symbols {
		if !strings.EqualFold(id, SymbolName) || sym == nil {
			continue
		}
		v := reflect.ValueOf(sym)
		t := v.Type()
		if t.Kind() != reflect.Func || t.IsVariadic() {
			continue
		}
		c := candidate{name: id, exported: module.IsExported(id), void: t.NumOut() == 0, value: v}
		switch {
		case t.NumIn() == 1 && t.In(0) == stringSlice:
			c.static = true
		case t.NumIn() == 2 && t.In(1) == stringSlice:
			// A method expression: the first parameter is the receiver.
		default:
			continue
		}
		cands = append(cands, c)
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].name < cands[j].name })
	c, err := selectEntry(name, cands)
	if err != nil {
		return nil, err
	}
	fn := c.value.Convert(entryFunc).Interface().(func([]string))
	return &Descriptor{
		Module:      name,
		Symbol:      c.name,
		PackageName: mod.Name,
		Location:    "registry:" + mod.Name,
		resolver:    r,
		host:        fn,
	}, nil
}

// selectEntry narrows the candidates one check at a time: accessibility,
// then static-ness, then return type.
func selectEntry(name string, cands []candidate) (candidate, error) {
	if len(cands) == 0 {
		return candidate{}, failure.New(failure.ErrMainMethodNotFound, name,
			fmt.Sprintf("Main class '%s' does not contain main-method.", name))
	}
	checks := []struct {
		keep func(candidate) bool
		kind error
		msg  string
	}{
		{func(c candidate) bool { return c.exported }, failure.ErrMainMethodNotAccessible, "Main method '%s.%s' is not public."},
		{func(c candidate) bool { return c.static }, failure.ErrMainMethodNotStatic, "Main method '%s.%s' is not static."},
		{func(c candidate) bool { return c.void }, failure.ErrMainMethodNotVoid, "Main method '%s.%s' does not return void."},
	}
	for _, check := range checks {
		var kept []candidate
		for _, c := range cands {
			if check.keep(c) {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			symbol := name + "." + cands[0].name
			return candidate{}, failure.New(check.kind, symbol, fmt.Sprintf(check.msg, name, cands[0].name))
		}
		cands = kept
	}
	return cands[0], nil
}
