// internal/common/templating/templating.go
package templating

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Resolver returns the value for one placeholder key.
type Resolver func(key string) (interface{}, bool)

// Render substitutes every {{key}} in tmpl. Resolvers are tried in order and
// the first hit wins; a key no resolver knows renders as an empty string.
func Render(tmpl string, resolvers ...Resolver) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		for _, r := range resolvers {
			if v, ok := r(key); ok {
				return Format(v)
			}
		}
		return ""
	})
}

// Lookup walks a dotted path such as "qualification_engine.opportunity_score".
func Lookup(data map[string]interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	current := interface{}(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

// Map resolves keys as dotted paths into data.
func Map(data map[string]interface{}) Resolver {
	return func(key string) (interface{}, bool) {
		return Lookup(data, key)
	}
}

// Prefixed resolves "prefix.path" keys against data.
func Prefixed(prefix string, data map[string]interface{}) Resolver {
	return func(key string) (interface{}, bool) {
		rest, ok := strings.CutPrefix(key, prefix+".")
		if !ok {
			return nil, false
		}
		return Lookup(data, rest)
	}
}

// Value resolves exactly one key.
func Value(name string, v interface{}) Resolver {
	return func(key string) (interface{}, bool) {
		if key != name {
			return nil, false
		}
		return v, true
	}
}

// ToMap converts a JSON-tagged value into the generic form templates read.
func ToMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal template data: %w", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal template data: %w", err)
	}
	return out, nil
}

// Format renders a template value the way it reads in an email body.
func Format(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Format(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(val, ",")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
