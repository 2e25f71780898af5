package sanitizer

import (
	"encoding/json"
	"strings"
)

// walkJSON parses raw as a JSON document and walks it as a tagged variant
// tree of {Object, Array, String, Number, Bool, Null} (spec §9: "dynamic
// field walking... re-expressed as a tagged-variant walk"). Every string
// leaf is passed through transformString. Any object key found in
// fieldDenylist (case-insensitive) has its value replaced with the field
// marker regardless of shape; that value is not recursed into.
//
// Returns ok=false if raw does not parse as JSON, in which case callers fall
// back to whole-body string scanning.
func (s *Sanitizer) walkJSON(raw []byte, transformString func(string) string) (out []byte, ok bool) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	walked := s.walkValue(doc, transformString)
	reserialized, err := json.Marshal(walked)
	if err != nil {
		return nil, false
	}
	return reserialized, true
}

func (s *Sanitizer) walkValue(v any, transformString func(string) string) any {
	switch val := v.(type) {
	case string:
		return transformString(val)
	case []any:
		for i, item := range val {
			val[i] = s.walkValue(item, transformString)
		}
		return val
	case map[string]any:
		for k, item := range val {
			if s.isDenylistedField(k) {
				val[k] = s.fieldMarkerFor(item)
				continue
			}
			val[k] = s.walkValue(item, transformString)
		}
		return val
	default:
		// Number, Bool, Null pass through unchanged.
		return v
	}
}

// isDenylistedField reports whether name (case-insensitive) is a configured
// sensitive field name.
func (s *Sanitizer) isDenylistedField(name string) bool {
	_, ok := s.fieldDenylist[strings.ToLower(name)]
	return ok
}

// fieldMarkerFor returns the replacement for a denylisted field's value.
// Object/array values are collapsed to the marker string too: spec §4.1
// step 3 calls for replacing "its value (of any shape)".
func (s *Sanitizer) fieldMarkerFor(_ any) string {
	return fieldNameMarker
}

const fieldNameMarker = "SANITIZED_FIELD"
