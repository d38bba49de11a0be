// Package wire models the numeric-attribute mail-service wire format: the
// dynamic, duck-typed instance maps the REST accessor returns, the static
// per-type model that describes how to read them, and the codec that
// translates between numeric wire keys and named fields.
package wire

// Instance is a wire instance: a mapping from numeric attribute id (as
// text) to an untyped value. Values arrive as JSON — strings, numbers,
// booleans, arrays, nested maps, or base64-encoded bytes — and may also be
// wrapped in a one-element list at any aggregation point.
type Instance map[string]any

// UnwrapSingleElementArray tolerates the wire's habit of wrapping any
// value in a one-element list. A multi-element list, nil, and any
// non-list value all pass through unchanged.
func UnwrapSingleElementArray(v any) any {
	list, ok := v.([]any)
	if !ok || len(list) != 1 {
		return v
	}
	return list[0]
}

// StringAttr reads a wire attribute as a string, unwrapping a
// single-element list first. Returns "" if the attribute is missing, nil,
// or not a string.
func (inst Instance) StringAttr(id string) string {
	v := UnwrapSingleElementArray(inst[id])
	s, _ := v.(string)
	return s
}

// AggregationAttr reads a wire attribute that is itself a nested
// aggregation (map), unwrapping a single-element list first. Returns nil
// if the attribute is missing or not a map.
func (inst Instance) AggregationAttr(id string) Instance {
	v := UnwrapSingleElementArray(inst[id])
	agg, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return Instance(agg)
}

// TupleIDAttr reads a wire attribute expected to hold a tuple id — a
// two-element [listId, elementId] array — and joins it into the
// "listId/elementId" path form the REST accessor expects. Returns "" if
// the attribute is missing or not a two-element array of strings.
func (inst Instance) TupleIDAttr(id string) string {
	v := UnwrapSingleElementArray(inst[id])
	parts, ok := v.([]any)
	if !ok || len(parts) != 2 {
		return ""
	}
	listID, ok1 := parts[0].(string)
	elementID, ok2 := parts[1].(string)
	if !ok1 || !ok2 {
		return ""
	}
	return listID + "/" + elementID
}

// AggregationSliceAttr reads a wire attribute expected to be a list of aggregations
// (e.g. a User's memberships), tolerating a bare single aggregation that
// arrived unwrapped.
func (inst Instance) AggregationSliceAttr(id string) []Instance {
	raw, ok := inst[id]
	if !ok || raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		if agg, ok := raw.(map[string]any); ok {
			return []Instance{Instance(agg)}
		}
		return nil
	}
	out := make([]Instance, 0, len(list))
	for _, elem := range list {
		if agg, ok := elem.(map[string]any); ok {
			out = append(out, Instance(agg))
		}
	}
	return out
}
