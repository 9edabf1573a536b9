package classpath

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/kingrea/bootstrap/internal/module"
)

// BuildOptions lists everything that goes into one resolution context.
type BuildOptions struct {
	Fs            afero.Fs
	LibraryRoots  []string
	ResourceRoots []string
	Suffix        string
	Parent        *module.Registry
	Logger        *log.Logger
}

// Context is an ordered, immutable set of locations with a parent registry
// consulted when a module is not found locally. It implements fs.FS: a name
// resolves against the first location that has it.
type Context struct {
	locations []Location
	backends  []*backend
	parent    *module.Registry
}

// Build assembles the resolution context: resource roots in the order given,
// then the archives scanned from each library root. Missing roots contribute
// nothing. Entries are not deduplicated across the two groups.
func Build(opts BuildOptions) (*Context, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	paths := append([]string(nil), opts.ResourceRoots...)
	for _, root := range opts.LibraryRoots {
		archives, err := Scan(fsys, root, suffix)
		if err != nil {
			return nil, err
		}
		logger.Debug("scanned library root", "root", root, "archives", len(archives))
		paths = append(paths, archives...)
	}

	ctx := &Context{parent: opts.Parent}
	for _, p := range paths {
		kind := KindDirectory
		if info, err := fsys.Stat(p); err == nil && info.Mode().IsRegular() {
			kind = KindArchive
		}
		loc, err := toLocation(p, kind)
		if err != nil {
			return nil, err
		}
		logger.Debug("added location", "location", loc.String(), "kind", loc.Kind)
		ctx.locations = append(ctx.locations, loc)
		ctx.backends = append(ctx.backends, &backend{loc: loc, fs: fsys, logger: logger})
	}
	return ctx, nil
}

// Locations returns the context's locations in resolution order.
func (c *Context) Locations() []string {
	out := make([]string, len(c.locations))
	for i, loc := range c.locations {
		out[i] = loc.String()
	}
	return out
}

// Entries returns the structured locations in resolution order.
func (c *Context) Entries() []Location {
	return append([]Location(nil), c.locations...)
}

// Parent returns the fallback registry, which may be nil.
func (c *Context) Parent() *module.Registry {
	return c.parent
}

// Open implements fs.FS.
func (c *Context) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	for _, b := range c.backends {
		fsys := b.open()
		if fsys == nil {
			continue
		}
		if f, err := fsys.Open(name); err == nil {
			return f, nil
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Close releases any archive opened while resolving.
func (c *Context) Close() error {
	var errs []error
	for _, b := range c.backends {
		if err := b.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SourceFile is one Go source file of a package.
type SourceFile struct {
	Name string
	Data []byte
}

// Package is a Go package resolved inside the context's own locations.
type Package struct {
	ImportPath string
	Location   Location
	Files      []SourceFile
}

// Package resolves importPath against the local locations only. The first
// location holding Go sources for that directory wins.
func (c *Context) Package(importPath string) (*Package, error) {
	if !fs.ValidPath(importPath) || importPath == "." {
		return nil, fmt.Errorf("classpath: invalid module name %q", importPath)
	}
	for _, b := range c.backends {
		fsys := b.open()
		if fsys == nil {
			continue
		}
		names := goFiles(fsys, importPath)
		if len(names) == 0 {
			continue
		}
		pkg := &Package{ImportPath: importPath, Location: b.loc}
		for _, name := range names {
			data, err := fs.ReadFile(fsys, path.Join(importPath, name))
			if err != nil {
				return nil, fmt.Errorf("classpath: read %s in %s: %w", name, b.loc, err)
			}
			pkg.Files = append(pkg.Files, SourceFile{Name: name, Data: data})
		}
		return pkg, nil
	}
	return nil, fmt.Errorf("classpath: no package %s in %d locations: %w", importPath, len(c.backends), fs.ErrNotExist)
}

// SourceFS exposes the context as a GOPATH rooted at ".": "src/<import path>"
// maps to the location that holds Go sources for that import path.
func (c *Context) SourceFS() fs.FS {
	return sourceFS{c}
}

type sourceFS struct{ c *Context }

func (s sourceFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." || name == "src" {
		return s.c.Open(".")
	}
	rest, ok := strings.CutPrefix(name, "src/")
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	for _, dir := range []string{rest, path.Dir(rest)} {
		for _, b := range s.c.backends {
			fsys := b.open()
			if fsys == nil || len(goFiles(fsys, dir)) == 0 {
				continue
			}
			if f, err := fsys.Open(rest); err == nil {
				return f, nil
			}
		}
	}
	return s.c.Open(rest)
}

func goFiles(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		names = append(names, name)
	}
	return names
}

// backend opens its location on first use. A location that cannot be opened
// resolves nothing.
type backend struct {
	loc    Location
	fs     afero.Fs
	logger *log.Logger

	once sync.Once
	fsys fs.FS
	file afero.File
}

func (b *backend) open() fs.FS {
	b.once.Do(func() {
		if b.loc.Kind == KindDirectory {
			info, err := b.fs.Stat(b.loc.Path)
			if err != nil || !info.IsDir() {
				return
			}
			b.fsys = afero.NewIOFS(afero.NewBasePathFs(b.fs, b.loc.Path))
			return
		}
		f, err := b.fs.Open(b.loc.Path)
		if err != nil {
			b.logger.Warn("cannot open archive", "location", b.loc.String(), "err", err)
			return
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			b.logger.Warn("cannot stat archive", "location", b.loc.String(), "err", err)
			return
		}
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			f.Close()
			b.logger.Warn("cannot read archive", "location", b.loc.String(), "err", err)
			return
		}
		b.file = f
		b.fsys = zr
	})
	return b.fsys
}

func (b *backend) close() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}
