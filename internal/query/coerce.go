package query

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// CheckOp reports whether op can be applied to a field of the given kind.
// Bools and ids only compare for equality, string arrays only support
// membership (eq) and overlap (in).
func CheckOp(field string, kind Kind, op Op) error {
	switch {
	case op == OpEq || op == OpIn:
		return nil
	case kind == KindBool, kind == KindID, kind == KindStringArray, kind == KindRelation:
		return &Error{Key: field, Reason: "operator " + string(op) + " not supported"}
	}
	return nil
}

// Coerce converts a translated literal into the Go type a field of kind
// holds: string, float64, bool, time.Time, or a uuid string for ids.
func Coerce(field string, kind Kind, raw any) (any, error) {
	switch kind {
	case KindString, KindStringArray:
		switch v := raw.(type) {
		case string:
			return v, nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}

	case KindNumber:
		switch v := raw.(type) {
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, nil
			}
		}

	case KindBool:
		if v, ok := raw.(bool); ok {
			return v, nil
		}

	case KindTime:
		if s, ok := raw.(string); ok {
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t, nil
				}
			}
		}

	case KindID:
		if s, ok := raw.(string); ok {
			if _, err := uuid.Parse(s); err == nil {
				return s, nil
			}
		}
	}

	return nil, &Error{Key: field, Reason: fmt.Sprintf("cannot use %v", raw)}
}

// CoerceList is Coerce over the values of an in predicate.
func CoerceList(field string, kind Kind, raw any) ([]any, error) {
	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}

	out := make([]any, 0, len(items))
	for _, it := range items {
		v, err := Coerce(field, kind, it)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
