package util

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// SliceToMap splits "key=value" entries. Entries without "=" map to an empty value.
func SliceToMap(slice []string) map[string]string {
	return lo.SliceToMap(slice, func(s string) (string, string) {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 1 {
			return strings.TrimSpace(parts[0]), ""
		}
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	})
}

// ParseOptions turns "key=value" entries into typed model options.
// Values are read as int, float, bool, then fall back to string.
func ParseOptions(slice []string) (map[string]any, error) {
	if len(slice) == 0 {
		return nil, nil
	}
	if bad, found := lo.Find(slice, func(s string) bool {
		key, _, ok := strings.Cut(s, "=")
		return !ok || strings.TrimSpace(key) == ""
	}); found {
		return nil, errors.Errorf("invalid option %q, expected key=value", bad)
	}
	return lo.MapValues(SliceToMap(slice), func(v string, _ string) any {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		return v
	}), nil
}
