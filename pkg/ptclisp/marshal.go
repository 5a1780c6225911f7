package ptclisp

import (
	"fmt"
	"math/big"

	"github.com/andreasronge/ptc-runner-sub009/internal/values"
)

// ToValue converts a plain Go value (the shape produced by encoding/json's
// Unmarshal into interface{}, plus int/int64 for caller convenience) into a
// runtime value, the host-boundary half of the marshaller the teacher's own
// pkg/embed/marshaller.go provides for its reflect-based embedding API. Ours
// is a closed, reflection-free conversion since the runtime's value set
// (§3.2) is a fixed enum of Go types rather than arbitrary host structs.
func ToValue(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool, string, float64, *big.Int, values.Keyword:
		return t, nil
	case int:
		return big.NewInt(int64(t)), nil
	case int64:
		return big.NewInt(t), nil
	case map[string]interface{}:
		m := values.NewMap()
		for k, raw := range t {
			cv, err := ToValue(raw)
			if err != nil {
				return nil, err
			}
			m = m.Assoc(k, cv)
		}
		return m, nil
	case []interface{}:
		items := make([]interface{}, len(t))
		for i, raw := range t {
			cv, err := ToValue(raw)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = cv
		}
		return &values.Vector{Items: items}, nil
	default:
		return nil, fmt.Errorf("ptclisp: cannot convert %T to a runtime value", v)
	}
}

// mapToValue converts a string-keyed Go map into a runtime Map, defaulting a
// nil input to an empty Map.
func mapToValue(m map[string]interface{}) (*values.Map, error) {
	if m == nil {
		return values.NewMap(), nil
	}
	v, err := ToValue(m)
	if err != nil {
		return nil, err
	}
	vm, _ := v.(*values.Map)
	return vm, nil
}
