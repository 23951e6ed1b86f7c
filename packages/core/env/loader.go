package env

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

type Environment struct {
	Name      string
	Variables map[string]any
}

// LoadEnvironment selects envName from the configured environments. String
// values have ${VAR} references expanded from the OS environment. An unknown
// name is an error only when environments are configured at all.
func LoadEnvironment(envName string, configEnvs map[string]map[string]any) (*Environment, error) {
	env := &Environment{
		Name:      envName,
		Variables: make(map[string]any),
	}

	if len(configEnvs) == 0 {
		return env, nil
	}

	vars, ok := configEnvs[envName]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q (available: %s)", envName, strings.Join(names(configEnvs), ", "))
	}
	for k, v := range vars {
		if s, isString := v.(string); isString {
			env.Variables[k] = ExpandOS(s)
			continue
		}
		env.Variables[k] = v
	}

	return env, nil
}

// ExpandOS replaces ${VAR} with the value of the OS variable VAR. Bare $VAR is
// left untouched.
func ExpandOS(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		b.WriteString(os.Getenv(s[start+2 : start+end]))
		s = s[start+end+1:]
	}
}

func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// StringMap widens a string map for MergeVariables.
func StringMap(m map[string]string) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func LoadSystemEnv(prefix string) map[string]any {
	result := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, found := strings.Cut(e, "=")
		if !found {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}

func names(envs map[string]map[string]any) []string {
	out := make([]string, 0, len(envs))
	for name := range envs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
