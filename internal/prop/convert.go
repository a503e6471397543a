package prop

import (
	"fmt"
)

// FromAny converts a decoded YAML/JSON/CEL value into a Value.
//
// Floats are accepted only when they carry an integral value (YAML decoders
// and CEL evaluation surface integers as float64 in places); anything with a
// fractional part is an error rather than a silent rounding.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		return Int(val), nil
	case bool:
		return Bool(val), nil
	case float64:
		n := int64(val)
		if float64(n) != val {
			return nil, fmt.Errorf("non-integral number %v is forbidden in property bags", val)
		}
		return Int(n), nil
	case float32:
		return FromAny(float64(val))
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			pv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = pv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			pv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = pv
		}
		return obj, nil
	case map[any]any:
		// yaml.v3 produces this shape for some nested mappings.
		obj := make(Object, len(val))
		for k, elem := range val {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string map key %v", k)
			}
			pv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", ks, err)
			}
			obj[ks] = pv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported property type: %T", v)
	}
}

// ObjectFromAny converts a decoded map into an Object.
func ObjectFromAny(m map[string]any) (Object, error) {
	v, err := FromAny(m)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return obj, nil
}

// ToAny converts a Value into plain Go types for CEL evaluation and
// display serialization. Int becomes int64, Object map[string]any.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		return val.ToMap()
	default:
		return nil
	}
}

// ToMap converts an Object into a map[string]any.
func (obj Object) ToMap() map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = ToAny(v)
	}
	return out
}
