package evaluator

import "github.com/andreasronge/ptc-runner-sub009/internal/values"

// toItems adapts the collection protocol: vectors iterate their elements,
// sets their members, maps their [k v] entries (spec §4.3's map/filter
// semantics), nil is the empty sequence.
func toItems(v interface{}) ([]interface{}, bool) {
	switch c := v.(type) {
	case *values.Vector:
		return c.Items, true
	case *values.Set:
		return c.Items, true
	case *values.Map:
		out := make([]interface{}, len(c.Entries))
		for i, e := range c.Entries {
			out[i] = &values.Vector{Items: []interface{}{e.Key, e.Value}}
		}
		return out, true
	case nil:
		return nil, true
	default:
		return nil, false
	}
}

func isMapEntry(v interface{}) (*values.Vector, bool) {
	vec, ok := v.(*values.Vector)
	if !ok || len(vec.Items) != 2 {
		return nil, false
	}
	return vec, true
}
