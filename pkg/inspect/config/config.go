package config

import (
	"time"
)

// Config is a read-only view over loosely-typed settings. Accessors never
// fail: a missing key or a value of the wrong type yields the caller's
// default, so a partial settings file is always usable.
type Config struct {
	data map[string]any
}

// New wraps an existing map. A nil map behaves as an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw exposes the underlying map. Callers must treat it as read-only.
func (c Config) Raw() map[string]any {
	return c.data
}

// Any returns the raw value for key, or def when absent.
func (c Config) Any(key string, def any) any {
	if v, ok := c.data[key]; ok {
		return v
	}
	return def
}

// String returns the string value for key.
func (c Config) String(key, def string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the boolean value for key.
func (c Config) Bool(key string, def bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the integer value for key. YAML decodes whole numbers as int
// and JSON decodes all numbers as float64, so both are accepted; a float
// with a fractional part is rejected rather than truncated.
func (c Config) Int(key string, def int) int {
	switch v := c.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return def
}

// Float returns the float64 value for key. Integer values are widened.
func (c Config) Float(key string, def float64) float64 {
	switch v := c.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Duration returns the duration value for key. Strings are parsed with
// time.ParseDuration ("500ms", "2s"); bare numbers are read as seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	switch v := c.data[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case time.Duration:
		return v
	}
	return def
}
