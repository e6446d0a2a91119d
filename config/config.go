// Package config loads dbmldoc settings from YAML files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lucasefe/dbmldoc"
)

// Environment variables read by ApplyEnv.
const (
	EnvTitle         = "DBMLDOC_TITLE"
	EnvExcludeTables = "DBMLDOC_EXCLUDE_TABLES"
	EnvSchemas       = "DBMLDOC_SCHEMAS"
	EnvAllSchemas    = "DBMLDOC_ALL_SCHEMAS"
	EnvLogLevel      = "DBMLDOC_LOG_LEVEL"
	EnvDatabaseURL   = "DATABASE_URL"
)

// FileNames are the names LoadFromDir looks for, in order.
var FileNames = []string{"dbmldoc.yaml", "dbmldoc.yml", ".dbmldoc.yaml", ".dbmldoc.yml"}

// File is the content of a dbmldoc configuration file.
type File struct {
	dbmldoc.Config `yaml:",inline"`

	// DatabaseURL is the connection string used by introspect.
	DatabaseURL string `yaml:"database_url,omitempty"`
	LogLevel    string `yaml:"log_level"`
	// Workers bounds batch parallelism. Zero uses every CPU.
	Workers int `yaml:"workers,omitempty"`
	// CacheSize is the number of rendered documents kept by watch.
	CacheSize int `yaml:"cache_size,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *File {
	return &File{
		Config:    *dbmldoc.DefaultConfig(),
		LogLevel:  "info",
		CacheSize: dbmldoc.DefaultCacheSize,
	}
}

// Load reads a configuration file. Keys missing from the file keep their
// default values.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	file := Default()
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return file, nil
}

// LoadFromDir loads the first of FileNames found in dir, or the defaults.
func LoadFromDir(dir string) (*File, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return Default(), nil
}

// Save writes file as YAML to path.
func Save(file *File, path string) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file with the variables that lookup reports as set.
// Pass os.LookupEnv to read the process environment.
func (f *File) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTitle); ok {
		f.Title = v
	}
	if v, ok := lookup(EnvExcludeTables); ok {
		f.ExcludeTables = SplitList(v)
	}
	if v, ok := lookup(EnvSchemas); ok {
		f.Schemas = SplitList(v)
	}
	if v, ok := lookup(EnvAllSchemas); ok && v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAllSchemas, err)
		}
		f.IncludeAllSchemas = all
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		f.LogLevel = v
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		f.DatabaseURL = v
	}
	return nil
}

// SplitList splits a comma-separated list, trimming spaces and dropping
// empty items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
