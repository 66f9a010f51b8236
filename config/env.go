package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR} and ${VAR:default} syntax
var envVarPattern = regexp.MustCompile(`^\$\{([A-Z_][A-Z0-9_]*)(:[^}]*)?\}$`)

// resolveEnvValues walks a decoded YAML tree and substitutes ${VAR} string
// values with the environment's value, or the inline default when the
// variable is unset. A reference without a default to an unset variable is
// an error rather than a silently empty value.
func resolveEnvValues(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return resolveEnvVar(v)
	case map[string]any:
		resolved := make(map[string]any, len(v))
		for k, val := range v {
			r, err := resolveEnvValues(val)
			if err != nil {
				return nil, err
			}
			resolved[k] = r
		}
		return resolved, nil
	case []any:
		resolved := make([]any, len(v))
		for i, val := range v {
			r, err := resolveEnvValues(val)
			if err != nil {
				return nil, err
			}
			resolved[i] = r
		}
		return resolved, nil
	default:
		return value, nil
	}
}

func resolveEnvVar(value string) (any, error) {
	matches := envVarPattern.FindStringSubmatch(value)
	if matches == nil {
		return value, nil
	}

	varName := matches[1]
	defaultPart := matches[2]

	if envValue, exists := os.LookupEnv(varName); exists {
		return envValue, nil
	}
	if defaultPart != "" {
		return strings.TrimPrefix(defaultPart, ":"), nil
	}
	return nil, fmt.Errorf("required environment variable not set: %s", varName)
}
