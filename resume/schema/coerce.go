package schema

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// CoerceScalars rewrites numbers and booleans found where s expects a
// string into their text form, e.g. "graduation_year": 2019 becomes "2019".
// Structural mismatches (arrays, objects) are left for Validate to report.
// Payloads that are not valid JSON are returned unchanged.
func (s *Schema) CoerceScalars(raw []byte) []byte {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	out, changed := s.coerce(v)
	if !changed {
		return raw
	}
	b, err := json.Marshal(out)
	if err != nil {
		return raw
	}
	return b
}

func (s *Schema) coerce(v any) (any, bool) {
	if s == nil {
		return v, false
	}
	switch s.Type {
	case TypeString:
		switch t := v.(type) {
		case json.Number:
			return t.String(), true
		case bool:
			return strconv.FormatBool(t), true
		}
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return v, false
		}
		changed := false
		for i, item := range items {
			var c bool
			if items[i], c = s.Items.coerce(item); c {
				changed = true
			}
		}
		return items, changed
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return v, false
		}
		changed := false
		for _, p := range s.Properties {
			val, present := obj[p.Name]
			if !present {
				continue
			}
			var c bool
			if obj[p.Name], c = p.Schema.coerce(val); c {
				changed = true
			}
		}
		return obj, changed
	}
	return v, false
}
