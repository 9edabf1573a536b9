package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaultsWhenNothingSet(t *testing.T) {
	cfg, err := Load(LoadOptions{Dir: t.TempDir(), Lookup: envOf(nil)})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MainClass != "" {
		t.Fatalf("expected no main class, got %q", cfg.MainClass)
	}
	if diff := cmp.Diff([]string{"."}, cfg.LibraryDirs); diff != "" {
		t.Fatalf("library dirs mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.ResourceDirs) != 0 || cfg.ArchiveSuffix != ".zip" || cfg.Debug || cfg.Path != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	sep := string(os.PathListSeparator)
	cfg, err := Load(LoadOptions{Dir: t.TempDir(), Lookup: envOf(map[string]string{
		"BOOTSTRAP_MAINCLASS":      " example.com/app ",
		"BOOTSTRAP_LIBDIR":         "lib" + sep + sep + "vendor/lib",
		"BOOTSTRAP_RESOURCEDIR":    "conf",
		"BOOTSTRAP_ARCHIVE_SUFFIX": ".jar",
		"BOOTSTRAP_DEBUG":          "true",
	})})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MainClass != "example.com/app" {
		t.Fatalf("wrong main class %q", cfg.MainClass)
	}
	if diff := cmp.Diff([]string{"lib", "vendor/lib"}, cfg.LibraryDirs); diff != "" {
		t.Fatalf("library dirs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"conf"}, cfg.ResourceDirs); diff != "" {
		t.Fatalf("resource dirs mismatch (-want +got):\n%s", diff)
	}
	if cfg.ArchiveSuffix != ".jar" || !cfg.Debug {
		t.Fatalf("unexpected settings: %+v", cfg)
	}
}

func TestLoadParsesYamlAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
main_class: example.com/from-file
library_dirs:
  - lib
  - /opt/shared/lib
resource_dirs: conf
log_file: logs/bootstrap.log
`)
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(LoadOptions{Dir: dir, Lookup: envOf(map[string]string{"BOOTSTRAP_MAINCLASS": "example.com/from-env"})})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MainClass != "example.com/from-env" {
		t.Fatalf("expected environment to win, got %q", cfg.MainClass)
	}
	want := []string{filepath.Join(dir, "lib"), filepath.Clean("/opt/shared/lib")}
	if diff := cmp.Diff(want, cfg.LibraryDirs); diff != "" {
		t.Fatalf("library dirs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "conf")}, cfg.ResourceDirs); diff != "" {
		t.Fatalf("resource dirs mismatch (-want +got):\n%s", diff)
	}
	if cfg.LogFile != filepath.Join(dir, "logs", "bootstrap.log") {
		t.Fatalf("log file not resolved: %s", cfg.LogFile)
	}
	if cfg.Path != filepath.Join(dir, FileName) {
		t.Fatalf("expected config path to be recorded, got %q", cfg.Path)
	}
}

func TestLoadExplicitConfigFileMustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := Load(LoadOptions{ConfigFile: missing, Lookup: envOf(nil)}); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
	if _, err := Load(LoadOptions{Lookup: envOf(map[string]string{"BOOTSTRAP_CONFIG": missing})}); err == nil {
		t.Fatalf("expected error for missing BOOTSTRAP_CONFIG file")
	}
}

func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("archive_suffix: \"  \"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(LoadOptions{Dir: dir, Lookup: envOf(nil)}); err == nil {
		t.Fatalf("expected validation error but got none")
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("main_class: [unterminated\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(LoadOptions{Dir: dir, Lookup: envOf(nil)}); err == nil {
		t.Fatalf("expected parse error but got none")
	}
}
