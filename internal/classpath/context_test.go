package classpath

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kingrea/bootstrap/internal/failure"
	"github.com/kingrea/bootstrap/internal/module"
	"github.com/kingrea/bootstrap/internal/testutil"
)

const appSource = `package app

func Main(args []string) {}
`

func buildContext(t *testing.T, opts BuildOptions) *Context {
	t.Helper()
	ctx, err := Build(opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func paths(entries []Location) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestBuildOrdersResourcesBeforeArchives(t *testing.T) {
	root := t.TempDir()
	conf := testutil.WriteTree(t, filepath.Join(root, "conf"), map[string]string{"app.properties": "a=1"})
	lib1 := filepath.Join(root, "lib1")
	lib2 := filepath.Join(root, "lib2")
	a := testutil.WriteArchive(t, filepath.Join(lib1, "a.zip"), map[string]string{"example.com/app/main.go": appSource})
	b := testutil.WriteArchive(t, filepath.Join(lib2, "nested", "b.zip"), map[string]string{"example.com/util/util.go": "package util\n"})

	ctx := buildContext(t, BuildOptions{
		LibraryRoots:  []string{lib1, filepath.Join(root, "missing"), lib2},
		ResourceRoots: []string{conf},
	})
	if diff := cmp.Diff([]string{conf, a, b}, paths(ctx.Entries())); diff != "" {
		t.Fatalf("location order mismatch (-want +got):\n%s", diff)
	}
	kinds := []Kind{KindDirectory, KindArchive, KindArchive}
	for i, loc := range ctx.Entries() {
		if loc.Kind != kinds[i] {
			t.Fatalf("location %d: expected %s, got %s", i, kinds[i], loc.Kind)
		}
	}
	if got := ctx.Locations()[0]; !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/") {
		t.Fatalf("expected directory URL, got %s", got)
	}
}

func TestBuildNormalizesRelativeRoots(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, filepath.Join(root, "conf"), map[string]string{"x.txt": "x"})
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	ctx := buildContext(t, BuildOptions{ResourceRoots: []string{"conf/../conf"}})
	got := ctx.Entries()[0].Path
	if !filepath.IsAbs(got) || filepath.Base(got) != "conf" {
		t.Fatalf("expected absolute normalized path, got %s", got)
	}
}

func TestBuildReportsPathConversionFailure(t *testing.T) {
	prev := absPath
	absPath = func(string) (string, error) { return "", errors.New("getwd failed") }
	t.Cleanup(func() { absPath = prev })

	_, err := Build(BuildOptions{ResourceRoots: []string{"conf"}})
	if !errors.Is(err, failure.ErrPathConversion) {
		t.Fatalf("expected path conversion failure, got %v", err)
	}
}

func TestResourceRootWithoutPackagesIsResolvable(t *testing.T) {
	root := t.TempDir()
	conf := testutil.WriteTree(t, filepath.Join(root, "conf"), map[string]string{"settings/app.yaml": "name: demo\n"})
	ctx := buildContext(t, BuildOptions{
		LibraryRoots:  []string{filepath.Join(root, "lib")},
		ResourceRoots: []string{conf},
	})
	data, err := fs.ReadFile(ctx, "settings/app.yaml")
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if string(data) != "name: demo\n" {
		t.Fatalf("unexpected resource contents %q", data)
	}
	if _, err := fs.ReadFile(ctx, "settings/missing.yaml"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestFirstLocationWins(t *testing.T) {
	root := t.TempDir()
	conf := testutil.WriteTree(t, filepath.Join(root, "conf"), map[string]string{"app.txt": "from conf"})
	testutil.WriteArchive(t, filepath.Join(root, "lib", "a.zip"), map[string]string{"app.txt": "from archive", "only.txt": "archive"})
	ctx := buildContext(t, BuildOptions{LibraryRoots: []string{filepath.Join(root, "lib")}, ResourceRoots: []string{conf}})

	for name, want := range map[string]string{"app.txt": "from conf", "only.txt": "archive"} {
		data, err := fs.ReadFile(ctx, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != want {
			t.Fatalf("%s: expected %q, got %q", name, want, data)
		}
	}
}

func TestPackageResolvesFromArchive(t *testing.T) {
	root := t.TempDir()
	conf := testutil.WriteTree(t, filepath.Join(root, "conf"), map[string]string{"example.com/app/app.yaml": "resources only"})
	archive := testutil.WriteArchive(t, filepath.Join(root, "lib", "a.zip"), map[string]string{
		"example.com/app/main.go":      appSource,
		"example.com/app/main_test.go": "package app\n",
		"example.com/app/README.md":    "docs",
	})
	ctx := buildContext(t, BuildOptions{LibraryRoots: []string{filepath.Join(root, "lib")}, ResourceRoots: []string{conf}})

	pkg, err := ctx.Package("example.com/app")
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	if pkg.Location.Path != archive {
		t.Fatalf("expected package from %s, got %s", archive, pkg.Location.Path)
	}
	if len(pkg.Files) != 1 || pkg.Files[0].Name != "main.go" {
		t.Fatalf("expected only main.go, got %+v", pkg.Files)
	}

	src := ctx.SourceFS()
	if _, err := fs.ReadFile(src, "src/example.com/app/main.go"); err != nil {
		t.Fatalf("read through source fs: %v", err)
	}
	entries, err := fs.ReadDir(src, "src/example.com/app")
	if err != nil {
		t.Fatalf("read dir through source fs: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected the archive's package dir, got %d entries", len(entries))
	}

	if _, err := ctx.Package("example.com/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist for missing package, got %v", err)
	}
}

func TestBrokenArchiveResolvesNothing(t *testing.T) {
	root := t.TempDir()
	lib := testutil.WriteTree(t, filepath.Join(root, "lib"), map[string]string{"broken.zip": "not a zip"})
	testutil.WriteArchive(t, filepath.Join(lib, "good.zip"), map[string]string{"example.com/app/main.go": appSource})
	ctx := buildContext(t, BuildOptions{LibraryRoots: []string{lib}})
	if len(ctx.Entries()) != 2 {
		t.Fatalf("expected both archives listed, got %v", ctx.Locations())
	}
	if _, err := ctx.Package("example.com/app"); err != nil {
		t.Fatalf("expected good archive to resolve: %v", err)
	}
}

func TestResourceArchiveIsNotDeduplicated(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "lib")
	archive := testutil.WriteArchive(t, filepath.Join(lib, "a.zip"), map[string]string{"x.txt": "x"})
	ctx := buildContext(t, BuildOptions{LibraryRoots: []string{lib}, ResourceRoots: []string{archive}})
	if diff := cmp.Diff([]string{archive, archive}, paths(ctx.Entries())); diff != "" {
		t.Fatalf("location mismatch (-want +got):\n%s", diff)
	}
	if ctx.Entries()[0].Kind != KindArchive {
		t.Fatalf("expected resource archive to be treated as an archive")
	}
}

func TestParentIsKept(t *testing.T) {
	reg := module.NewRegistry()
	ctx := buildContext(t, BuildOptions{Parent: reg})
	if ctx.Parent() != reg {
		t.Fatalf("expected parent registry to be kept")
	}
	if len(ctx.Locations()) != 0 {
		t.Fatalf("expected empty context, got %v", ctx.Locations())
	}
}
