// Package config provides typed access to loosely-structured engine
// configuration loaded from YAML or JSON files.
//
// Config wraps a map[string]any; accessor methods return a default when a
// key is missing or not convertible to the requested type, so partial
// configuration files are always usable.
package config
