package readmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// FeatureKind tags which variant a FeatureValue holds.
type FeatureKind int

const (
	FeatureAbsent FeatureKind = iota
	FeatureBool
	FeatureNumber
	FeatureText
)

// FeatureValue is a product feature: boolean, number or text. The zero value
// is the absent sentinel, which is distinct from a false boolean.
type FeatureValue struct {
	kind FeatureKind
	b    bool
	n    float64
	s    string
}

func BoolFeature(b bool) FeatureValue      { return FeatureValue{kind: FeatureBool, b: b} }
func NumberFeature(n float64) FeatureValue { return FeatureValue{kind: FeatureNumber, n: n} }
func TextFeature(s string) FeatureValue    { return FeatureValue{kind: FeatureText, s: s} }

func (v FeatureValue) Kind() FeatureKind { return v.kind }
func (v FeatureValue) Present() bool     { return v.kind != FeatureAbsent }

// Bool returns the boolean and whether v is a boolean.
func (v FeatureValue) Bool() (bool, bool) { return v.b, v.kind == FeatureBool }

// Text renders numbers and text verbatim. Booleans and absent values render empty.
func (v FeatureValue) Text() string {
	switch v.kind {
	case FeatureNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case FeatureText:
		return v.s
	}
	return ""
}

// FeatureValueOf converts a decoded document value. nil yields the absent sentinel.
func FeatureValueOf(raw any) FeatureValue {
	switch t := raw.(type) {
	case nil:
		return FeatureValue{}
	case bool:
		return BoolFeature(t)
	case string:
		return TextFeature(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return NumberFeature(f)
		}
		return TextFeature(t.String())
	}
	if f, ok := number(raw); ok {
		return NumberFeature(f)
	}
	return TextFeature(fmt.Sprint(raw))
}

func (v FeatureValue) raw() any {
	switch v.kind {
	case FeatureBool:
		return v.b
	case FeatureNumber:
		return v.n
	case FeatureText:
		return v.s
	}
	return nil
}

func (v FeatureValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw())
}

// Features is an ordered feature map. Key order is insertion order.
type Features struct {
	keys   []string
	values map[string]FeatureValue
}

// Set adds or replaces a feature. Absent values are ignored.
func (f *Features) Set(key string, v FeatureValue) {
	if !v.Present() {
		return
	}
	if f.values == nil {
		f.values = make(map[string]FeatureValue)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
}

// Get returns the value for key, or the absent sentinel.
func (f Features) Get(key string) FeatureValue {
	return f.values[key]
}

// Keys returns the feature keys in order.
func (f Features) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f Features) Len() int { return len(f.keys) }

// FeaturesFromMap builds Features from an unordered map; keys are sorted.
func FeaturesFromMap(m map[string]any) Features {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var f Features
	for _, k := range keys {
		f.Set(k, FeatureValueOf(m[k]))
	}
	return f
}

// Map returns the features as plain values, the form written to the store.
func (f Features) Map() map[string]any {
	out := make(map[string]any, len(f.keys))
	for _, k := range f.keys {
		out[k] = f.values[k].raw()
	}
	return out
}

// MarshalJSON writes an object in key order.
func (f Features) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object, keeping the document's key order.
// Nested objects and arrays are rejected.
func (f *Features) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = Features{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("features: expected object")
	}

	out := Features{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if _, isDelim := tok.(json.Delim); isDelim {
			return fmt.Errorf("features: %q must be a boolean, number or string", key)
		}
		out.Set(key, FeatureValueOf(tok))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}
