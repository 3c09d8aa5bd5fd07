// Package config is the ambient configuration loader for cmd/einops-cli:
// flag bindings for interactive use, plus an optional JSON file for
// scripted runs, after the teacher's own cmd/zerfoo-train pattern of flags
// plus a `-config <file>.json`. cmd/einops-cli loads the file onto the
// defaults first and then parses the subcommand's flags, so a flag given on
// the command line takes precedence over the file.
package config

import (
	"encoding/json"
	"flag"
	"os"
)

// Config holds the settings cmd/einops-cli reads beyond the pattern and
// tensor data supplied on the command line. Only the two cache capacities
// are applied by the commands; DefaultAxisLengths, Backend, Verbose and
// Extensions are loaded but no command reads them (every command runs on a
// float64 backend).
type Config struct {
	RecipeCacheCapacity int               `json:"recipe_cache_capacity"`
	CookedCacheCapacity int               `json:"cooked_cache_capacity"`
	DefaultAxisLengths  map[string]int    `json:"default_axis_lengths"`
	Backend             string            `json:"backend"` // "float32" or "float64"
	Verbose             bool              `json:"verbose"`
	Extensions          map[string]string `json:"extensions"`
}

// Default returns the configuration used when no flags or config file
// override it: the cache capacities spec.md §9 names (256 recipes, 1024
// cooked recipes) and a float64 backend.
func Default() *Config {
	return &Config{
		RecipeCacheCapacity: 256,
		CookedCacheCapacity: 1024,
		DefaultAxisLengths:  make(map[string]int),
		Backend:             "float64",
	}
}

// BindFlags registers c's fields on fs, using c's current values as the flag
// defaults, so values already loaded with LoadJSON stay in effect unless a
// flag on the command line overrides them.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.RecipeCacheCapacity, "recipe-cache-capacity", c.RecipeCacheCapacity, "capacity of the process-wide recipe cache")
	fs.IntVar(&c.CookedCacheCapacity, "cooked-cache-capacity", c.CookedCacheCapacity, "capacity of the process-wide cooked-recipe cache")
	fs.StringVar(&c.Backend, "backend", c.Backend, "element type backend name (recorded only; commands always run on float64)")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "verbose flag (recorded only; no command reads it)")
}

// LoadJSON reads path and merges it onto c. Fields the file omits keep
// their current values; the file only overrides what it mentions.
func (c *Config) LoadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}
