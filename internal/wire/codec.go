package wire

// BuildRequestBody builds a numeric-attribute-keyed request body from a
// set of named values, using nameToID to resolve each name to its wire
// attribute id. Unknown names are ignored — callers are expected to pass
// only names the target endpoint's id table covers.
func BuildRequestBody(nameToID map[string]string, fields map[string]any) Instance {
	body := make(Instance, len(fields))
	for name, value := range fields {
		id, ok := nameToID[name]
		if !ok {
			continue
		}
		body[id] = value
	}
	return body
}

// Normalize maps a raw wire instance's numeric keys to the named fields
// declared in values (a TypeModel's Values table, or a service response's
// ad-hoc attribute table), for the attributes this client actually
// addresses by name. Service-private keys (leading underscore, e.g.
// "_format") are dropped. Attribute ids with no declared field name are
// copied through under their original numeric id unchanged — association
// ids the client passes along without interpreting.
func Normalize(values map[string]AttributeModel, inst Instance) map[string]any {
	out := make(map[string]any, len(inst))
	for id, value := range inst {
		if len(id) > 0 && id[0] == '_' {
			continue
		}
		if attr, ok := values[id]; ok && attr.FieldName != "" {
			out[attr.FieldName] = value
			continue
		}
		out[id] = value
	}
	return out
}
