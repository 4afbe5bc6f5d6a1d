package readmodel

import (
	"time"

	"github.com/example/supermall/internal/infrastructure/store"
)

func str(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}

func boolean(f map[string]any, key string) bool {
	b, _ := f[key].(bool)
	return b
}

func float(f map[string]any, key string) float64 {
	n, _ := number(f[key])
	return n
}

func integer(f map[string]any, key string) int {
	n, _ := number(f[key])
	return int(n)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// timestamp accepts native times and the string form text backends store.
func timestamp(f map[string]any, key string) *time.Time {
	switch t := f[key].(type) {
	case time.Time:
		u := t.UTC()
		return &u
	case string:
		if parsed, ok := store.ParseTime(t); ok {
			return &parsed
		}
	}
	return nil
}
