package memory

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/anonto42/moments/backend/internal/store"
)

var errNotNumeric = errors.New("increment on non-numeric value")

// normalize converts Go values into the small set of types the store keeps:
// nil, bool, string, int64, float64, time.Time, []any and map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int64, float64, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		return copyMap(x)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func applyUpdate(doc map[string]any, u store.Update, now time.Time) error {
	switch u.Kind {
	case store.KindSet:
		doc[u.Field] = normalize(u.Value)
	case store.KindServerTimestamp:
		doc[u.Field] = now
	case store.KindIncrement:
		switch cur := doc[u.Field].(type) {
		case nil:
			doc[u.Field] = u.Delta
		case int64:
			doc[u.Field] = cur + u.Delta
		case float64:
			doc[u.Field] = cur + float64(u.Delta)
		default:
			return errNotNumeric
		}
	case store.KindArrayUnion:
		arr, _ := doc[u.Field].([]any)
		for _, v := range u.Values {
			v = normalize(v)
			if !containsValue(arr, v) {
				arr = append(arr, v)
			}
		}
		if arr == nil {
			arr = []any{}
		}
		doc[u.Field] = arr
	case store.KindArrayRemove:
		arr, _ := doc[u.Field].([]any)
		kept := make([]any, 0, len(arr))
		for _, e := range arr {
			remove := false
			for _, v := range u.Values {
				if equal(e, normalize(v)) {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, e)
			}
		}
		doc[u.Field] = kept
	}
	return nil
}

func containsValue(arr []any, v any) bool {
	for _, e := range arr {
		if equal(e, v) {
			return true
		}
	}
	return false
}

func matchesAll(doc map[string]any, filters []store.Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc map[string]any, f store.Filter) bool {
	field, ok := doc[f.Field]
	if !ok {
		return false
	}
	value := normalize(f.Value)

	switch f.Op {
	case store.OpEqual:
		return equal(field, value)
	case store.OpNotEqual:
		return field != nil && !equal(field, value)
	case store.OpLess, store.OpLessOrEqual, store.OpGreater, store.OpGreaterOrEqual:
		c, ok := compare(field, value)
		if !ok {
			return false
		}
		switch f.Op {
		case store.OpLess:
			return c < 0
		case store.OpLessOrEqual:
			return c <= 0
		case store.OpGreater:
			return c > 0
		default:
			return c >= 0
		}
	case store.OpArrayContains:
		arr, _ := field.([]any)
		return containsValue(arr, value)
	case store.OpArrayContainsAny:
		arr, _ := field.([]any)
		candidates, _ := value.([]any)
		for _, c := range candidates {
			if containsValue(arr, c) {
				return true
			}
		}
		return false
	case store.OpIn:
		candidates, _ := value.([]any)
		return containsValue(candidates, field)
	case store.OpNotIn:
		candidates, _ := value.([]any)
		return field != nil && !containsValue(candidates, field)
	}
	return false
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two scalars of the same kind. Numbers compare across int64 and float64.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}

	x, ok := toFloat(a)
	if !ok {
		return 0, false
	}
	y, ok := toFloat(b)
	if !ok {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
