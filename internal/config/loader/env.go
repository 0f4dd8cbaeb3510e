package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of every recognised environment variable.
const DefaultEnvPrefix = "BLOCKLANE_"

// DefaultEnvSections are the sections unmapped variables may name.
var DefaultEnvSections = []string{"index", "history", "logging"}

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix   string            // e.g. "BLOCKLANE_"
	mapping  map[string]string // env var -> config path
	sections map[string]bool   // sections open to unmapped variables
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "BLOCKLANE_").
func NewEnvLoader(prefix string) *EnvLoader {
	l := &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
	}
	for _, section := range DefaultEnvSections {
		l.AddSection(section)
	}
	return l
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable
// mappings. It reads only mapped variables until sections are added.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "BLOCK_CAPACITY": "index.block_capacity",
		prefix + "MAX_LEVELS":     "index.max_levels",
		prefix + "LEVELING":       "index.leveling",
		prefix + "SEED":           "index.seed",
		prefix + "NODE_LIMIT":     "index.node_limit",
		prefix + "MAX_UNDO":       "history.max_undo",
		prefix + "LOG_LEVEL":      "logging.level",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}

	// Unmapped prefixed variables name their section first:
	// BLOCKLANE_INDEX_MAX_LEVELS -> index.max_levels. Unknown sections are
	// left alone so unrelated variables sharing the prefix do no harm.
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if _, mapped := l.mapping[name]; mapped {
			continue
		}
		path := l.envToPath(name)
		if section, _, _ := strings.Cut(path, "."); !l.sections[section] {
			continue
		}
		setByPath(config, path, parseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// AddSection lets unmapped variables set keys of section.
func (l *EnvLoader) AddSection(section string) {
	if l.sections == nil {
		l.sections = make(map[string]bool)
	}
	l.sections[section] = true
}

// envToPath converts BLOCKLANE_INDEX_NODE_LIMIT to index.node_limit.
// Names without a setting part return "".
func (l *EnvLoader) envToPath(env string) string {
	section, setting, ok := strings.Cut(strings.TrimPrefix(env, l.prefix), "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return strings.ToLower(section) + "." + strings.ToLower(setting)
}

// parseValue converts an environment string into the type TOML would give
// the same literal. Integers are tried before booleans so "0" and "1" stay
// numeric. Integers above math.MaxInt64 come back as uint64.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
