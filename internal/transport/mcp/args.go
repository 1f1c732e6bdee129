package mcp

import (
	"fmt"

	"github.com/spf13/cast"
)

// Argument accessors over the raw MCP argument map. The protocol already
// validated shapes against the declared schema; these only convert loose
// JSON scalars (every number arrives as float64).

func argString(args map[string]any, key string) string {
	return cast.ToString(args[key])
}

func argInt(args map[string]any, key string) int {
	return cast.ToInt(args[key])
}

func requireString(args map[string]any, key string) (string, error) {
	s := cast.ToString(args[key])
	if s == "" {
		return "", fmt.Errorf("argument %q is required", key)
	}
	return s, nil
}

func requireInt64(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("argument %q is required", key)
	}
	n, err := cast.ToInt64E(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("argument %q must be a positive id", key)
	}
	return n, nil
}

// setIfPresent copies an argument into the mutation payload when the
// caller supplied it, leaving absent fields untouched in the CRM.
func setIfPresent(fields map[string]any, args map[string]any, keys ...string) {
	for _, key := range keys {
		if v, ok := args[key]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			fields[key] = v
		}
	}
}
