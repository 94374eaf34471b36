package skills

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError lists every parameter issue found for one call.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Issues, "; ")
}

// Validate checks raw arguments against the declared parameters and returns
// the coerced values. Keys that are not declared are dropped. Issues are
// reported in declaration order.
func Validate(params []Param, raw map[string]any) (Params, error) {
	out := make(Params, len(params))
	var issues []string

	for _, p := range params {
		v, present := raw[p.Name]
		if !present || v == nil {
			if !p.Optional {
				issues = append(issues, fmt.Sprintf("%s: required", p.Name))
			}
			continue
		}
		coerced, err := coerce(p.Kind, v)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", p.Name, err))
			continue
		}
		out[p.Name] = coerced
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return out, nil
}

func coerce(kind Kind, v any) (any, error) {
	switch kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %s", typeName(v))
		}
		return s, nil

	case KindNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", n.String())
			}
			return f, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", n)
			}
			return f, nil
		}
		return nil, fmt.Errorf("expected number, got %s", typeName(v))

	case KindBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, fmt.Errorf("expected boolean, got %q", b)
		}
		return nil, fmt.Errorf("expected boolean, got %s", typeName(v))

	case KindStrings:
		switch a := v.(type) {
		case []string:
			return a, nil
		case []any:
			out := make([]string, 0, len(a))
			for i, item := range a {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("item %d: expected string, got %s", i, typeName(item))
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			var out []string
			if err := json.Unmarshal([]byte(a), &out); err != nil {
				return nil, fmt.Errorf("expected array of strings, got %q", a)
			}
			return out, nil
		}
		return nil, fmt.Errorf("expected array of strings, got %s", typeName(v))

	case KindObject:
		switch o := v.(type) {
		case map[string]any:
			return o, nil
		case string:
			if strings.TrimSpace(o) == "" {
				return map[string]any{}, nil
			}
			var out map[string]any
			if err := json.Unmarshal([]byte(o), &out); err != nil {
				return nil, fmt.Errorf("expected JSON object, got %q", o)
			}
			return out, nil
		}
		return nil, fmt.Errorf("expected object, got %s", typeName(v))
	}

	// Unknown kinds are treated as strings, matching their exported schema.
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, fmt.Errorf("expected string, got %s", typeName(v))
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
