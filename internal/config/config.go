// internal/config/config.go
//
// This package reads the launcher's few settings: which entry point to
// start, where to look for package archives and how to log. Settings come
// from BOOTSTRAP_* environment variables, optionally backed by a YAML file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable the launcher reads.
	EnvPrefix = "BOOTSTRAP"

	// FileName is the config file looked up in the working directory.
	FileName = "bootstrap.yaml"

	defaultArchiveSuffix = ".zip"
)

// Config holds the launcher settings.
type Config struct {
	MainClass     string   `mapstructure:"main_class"`
	LibraryDirs   []string `mapstructure:"library_dirs"`
	ResourceDirs  []string `mapstructure:"resource_dirs"`
	ArchiveSuffix string   `mapstructure:"archive_suffix"`
	Debug         bool     `mapstructure:"debug"`
	LogFile       string   `mapstructure:"log_file"`

	// Path is the config file that was read, empty when none was.
	Path string `mapstructure:"-"`
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile is read exclusively when set; it must exist.
	ConfigFile string
	// Dir is searched for FileName when ConfigFile is empty. Defaults to cwd.
	Dir string
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// env maps config keys to their environment variables.
var env = map[string]string{
	"main_class":     "BOOTSTRAP_MAINCLASS",
	"library_dirs":   "BOOTSTRAP_LIBDIR",
	"resource_dirs":  "BOOTSTRAP_RESOURCEDIR",
	"archive_suffix": "BOOTSTRAP_ARCHIVE_SUFFIX",
	"debug":          "BOOTSTRAP_DEBUG",
	"log_file":       "BOOTSTRAP_LOG_FILE",
}

// Load resolves the launcher settings. Environment variables win over the
// config file, which wins over defaults.
func Load(opts LoadOptions) (*Config, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	v := viper.New()
	v.SetDefault("library_dirs", []string{"."})
	v.SetDefault("resource_dirs", []string{})
	v.SetDefault("archive_suffix", defaultArchiveSuffix)
	v.SetDefault("debug", false)

	path := strings.TrimSpace(opts.ConfigFile)
	if path == "" {
		if p, ok := lookup(EnvPrefix + "_CONFIG"); ok && strings.TrimSpace(p) != "" {
			path = strings.TrimSpace(p)
		}
	}
	required := path != ""
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, FileName)
	}
	resolvedPath, err := loadYAMLIntoViper(v, path, required)
	if err != nil {
		return nil, err
	}

	for key, name := range env {
		raw, ok := lookup(name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		switch key {
		case "library_dirs", "resource_dirs":
			v.Set(key, splitList(raw))
		default:
			v.Set(key, strings.TrimSpace(raw))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode settings: %w", err)
	}
	cfg.Path = resolvedPath
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings the launcher cannot work with. A missing main
// class is not checked here; the caller reports it with usage text.
func (c *Config) Validate() error {
	if c.ArchiveSuffix == "" {
		return fmt.Errorf("archive_suffix must not be empty")
	}
	return nil
}

func (c *Config) normalize() {
	c.MainClass = strings.TrimSpace(c.MainClass)
	c.ArchiveSuffix = strings.TrimSpace(c.ArchiveSuffix)
	c.LibraryDirs = compact(c.LibraryDirs)
	c.ResourceDirs = compact(c.ResourceDirs)
	if len(c.LibraryDirs) == 0 {
		c.LibraryDirs = []string{"."}
	}
}

// loadYAMLIntoViper decodes path and merges it into v. Relative directories
// in the file resolve against the file's own directory.
func loadYAMLIntoViper(v *viper.Viper, path string, required bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return "", nil
		}
		return "", fmt.Errorf("config: read %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("config: parse %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for _, key := range []string{"library_dirs", "resource_dirs"} {
		if dirs, ok := raw[key]; ok {
			raw[key] = resolveDirs(base, dirs)
		}
	}
	if file, ok := raw["log_file"].(string); ok {
		raw["log_file"] = resolvePath(base, file)
	}
	if err := v.MergeConfigMap(raw); err != nil {
		return "", fmt.Errorf("config: merge %s: %w", path, err)
	}
	return path, nil
}

// resolveDirs accepts either a single directory or a list of them.
func resolveDirs(base string, value any) []string {
	var dirs []string
	switch typed := value.(type) {
	case string:
		dirs = []string{typed}
	case []any:
		for _, item := range typed {
			if s, ok := item.(string); ok {
				dirs = append(dirs, s)
			}
		}
	}
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if resolved := resolvePath(base, dir); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func splitList(raw string) []string {
	return compact(filepath.SplitList(raw))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
