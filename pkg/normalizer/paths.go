package normalizer

import "strings"

// Accessor reads a string value at a fixed key path inside a mapping.
type Accessor struct {
	Name string
	Keys []string
}

// Lookup returns the value at the accessor's path when it is a non-blank
// string. Intermediate values must all be mappings.
func (a Accessor) Lookup(m map[string]any) (string, bool) {
	s, ok := a.str(m)
	if !ok || isBlank(s) {
		return "", false
	}
	return s, true
}

func (a Accessor) str(m map[string]any) (string, bool) {
	var cur any = m
	for _, k := range a.Keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = obj[k]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

func newAccessor(path string) Accessor {
	return Accessor{Name: path, Keys: strings.Split(path, ".")}
}

// accessors is checked in order; every hit becomes a candidate.
// The first six are the documented output locations, the rest are older
// layouts and transport wrappers kept as low-priority fallbacks.
var accessors = []Accessor{
	newAccessor("data.outputs.output"),
	newAccessor("outputs.output"),
	newAccessor("output"),
	newAccessor("html"),
	newAccessor("answer"),
	newAccessor("text"),

	newAccessor("data.outputs.html"),
	newAccessor("data.outputs.text"),
	newAccessor("data.output"),
	newAccessor("data"),
	newAccessor("output_text"),
	newAccessor("outputs.html"),
	newAccessor("raw_text"),
}

// Accessors returns the accessor table in priority order.
func Accessors() []Accessor {
	out := make([]Accessor, len(accessors))
	copy(out, accessors)
	return out
}
