// Package launcher boots a separately packaged application: it scans library
// directories for package archives, builds a resolution context from them,
// locates the named entry point and invokes it with the process arguments.
//
// A minimal launcher binary:
//
//	b := launcher.New()
//	b.AddLibraryDirectory("lib")
//	if err := b.Run(context.Background(), "example.com/app", os.Args[1:]); err != nil {
//		fmt.Fprintln(os.Stderr, "Error:", err)
//		os.Exit(1)
//	}
package launcher

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/kingrea/bootstrap/internal/classpath"
	"github.com/kingrea/bootstrap/internal/entrypoint"
	"github.com/kingrea/bootstrap/internal/failure"
	"github.com/kingrea/bootstrap/internal/module"
)

// DefaultArchiveSuffix is the file suffix of package archives.
const DefaultArchiveSuffix = classpath.DefaultSuffix

// Registry holds natively compiled modules consulted when a name is not
// found in the scanned packages.
type Registry = module.Registry

// Symbols maps the exported identifiers of a registered module to values.
type Symbols = module.Symbols

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return module.NewRegistry()
}

// Bootstrap collects library and resource directories and launches entry
// points from them. One Bootstrap may be launched several times, but not
// concurrently.
type Bootstrap struct {
	fs           afero.Fs
	logger       *log.Logger
	registry     *Registry
	suffix       string
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	env          []string
	libraryDirs  []string
	resourceDirs []string
}

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithFs sets the file system scanned and read. Defaults to the OS.
func WithFs(fsys afero.Fs) Option {
	return func(b *Bootstrap) { b.fs = fsys }
}

// WithLogger sets the logger for launch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(b *Bootstrap) { b.logger = l }
}

// WithRegistry sets the parent registry of every resolution context.
func WithRegistry(r *Registry) Option {
	return func(b *Bootstrap) { b.registry = r }
}

// WithArchiveSuffix sets the suffix identifying package archives.
func WithArchiveSuffix(suffix string) Option {
	return func(b *Bootstrap) { b.suffix = suffix }
}

// WithStdio sets the streams handed to interpreted applications.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(b *Bootstrap) {
		b.stdin, b.stdout, b.stderr = stdin, stdout, stderr
	}
}

// WithEnv sets the environment seen by interpreted applications.
func WithEnv(env []string) Option {
	return func(b *Bootstrap) { b.env = env }
}

// New returns a Bootstrap with no directories registered.
func New(opts ...Option) *Bootstrap {
	b := &Bootstrap{
		fs:       afero.NewOsFs(),
		logger:   log.New(io.Discard),
		registry: module.NewRegistry(),
		suffix:   classpath.DefaultSuffix,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddLibraryDirectory registers a directory scanned recursively for package
// archives. The directory need not exist yet.
func (b *Bootstrap) AddLibraryDirectory(dir string) error {
	dir, err := classpath.Resolve(dir)
	if err != nil {
		return err
	}
	b.libraryDirs = append(b.libraryDirs, dir)
	return nil
}

// AddResourceDirectory registers a location added to the resolution context
// as-is, without scanning.
func (b *Bootstrap) AddResourceDirectory(dir string) error {
	dir, err := classpath.Resolve(dir)
	if err != nil {
		return err
	}
	b.resourceDirs = append(b.resourceDirs, dir)
	return nil
}

// Run launches mainName with args. Launcher failures are returned as *Error.
// If the application panics, Run panics with the same value once the
// resolution context has been released.
func (b *Bootstrap) Run(ctx context.Context, mainName string, args []string) error {
	if strings.TrimSpace(mainName) == "" {
		return failure.New(failure.ErrMainClassNotSpecified, "", "main class not specified.")
	}
	rc, err := classpath.Build(classpath.BuildOptions{
		Fs:            b.fs,
		LibraryRoots:  b.libraryDirs,
		ResourceRoots: b.resourceDirs,
		Suffix:        b.suffix,
		Parent:        b.registry,
		Logger:        b.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			b.logger.Warn("closing resolution context", "err", err)
		}
	}()

	desc, err := entrypoint.Locate(mainName, rc)
	if err != nil {
		return err
	}
	b.logger.Debug("located entry point", "symbol", desc.Name(), "location", desc.Location, "interpreted", desc.Interpreted())

	return Translate(entrypoint.Invoke(ctx, desc, args, entrypoint.InvokeOptions{
		Stdin:  b.stdin,
		Stdout: b.stdout,
		Stderr: b.stderr,
		Env:    b.env,
		Logger: b.logger,
	}))
}
