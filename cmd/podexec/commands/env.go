package commands

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"
)

var envKeyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseEnvSpecs parses KEY=VALUE specs, a bare KEY takes the value from the current
// environment.
func parseEnvSpecs(specs []string) (map[string]string, error) {
	env := map[string]string{}
	for _, spec := range specs {
		key, value, hasValue := strings.Cut(spec, "=")
		if !envKeyRegexp.MatchString(key) {
			return nil, fmt.Errorf("invalid environment variable name %q", key)
		}

		if !hasValue {
			v, ok := os.LookupEnv(key)
			if !ok {
				return nil, fmt.Errorf("environment variable %q is not set", key)
			}
			value = v
		}

		env[key] = value
	}

	return env, nil
}

// scriptWithEnv prepends the exports of env to script, sorted by key.
func scriptWithEnv(env map[string]string, script string) string {
	if len(env) == 0 {
		return script
	}

	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(env)) {
		fmt.Fprintf(&b, "export %s=%s\n", k, shellQuote(env[k]))
	}
	b.WriteString(script)

	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
