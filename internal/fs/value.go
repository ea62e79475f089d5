package fs

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// ParamValue is a sealed interface representing a transform parameter value.
// Only ParamNumber, ParamBool, and ParamString implement it. The union is
// closed on purpose: every consumer (encoder, grammar, resolver) switches
// exhaustively over these three cases.
type ParamValue interface {
	paramValue() // Sealed - only these types implement it

	// Render returns the canonical textual form of the value. Two values
	// render equal if and only if the resolver treats them as agreeing.
	Render() string
}

// ParamNumber is a numeric parameter value.
// Rendering rounds to 6 fractional digits to absorb platform float drift.
type ParamNumber float64

func (ParamNumber) paramValue() {}

// Render formats the number with at most 6 fractional digits and no
// locale-dependent separators. Trailing zeros are dropped, so 24.0
// renders as "24".
func (n ParamNumber) Render() string {
	r := math.Round(float64(n)*1e6) / 1e6
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ParamBool is a boolean parameter value. Renders as "true" or "false".
type ParamBool bool

func (ParamBool) paramValue() {}

func (b ParamBool) Render() string {
	if b {
		return "true"
	}
	return "false"
}

// ParamString is a string parameter value. Renders verbatim after NFC
// normalization.
type ParamString string

func (ParamString) paramValue() {}

func (s ParamString) Render() string {
	return norm.NFC.String(string(s))
}

// CoerceParam converts a raw textual value into its tagged form:
// exactly "true"/"false" becomes ParamBool, a finite number becomes
// ParamNumber, anything else stays ParamString. This is the single
// coercion rule shared by the FS grammar and the curation compiler.
func CoerceParam(raw string) ParamValue {
	switch raw {
	case "true":
		return ParamBool(true)
	case "false":
		return ParamBool(false)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return ParamNumber(f)
	}
	return ParamString(raw)
}

// Params is a parameter map keyed by parameter name.
// Use SortedKeys for deterministic iteration.
type Params map[string]ParamValue

// SortedKeys returns the parameter names in lexicographic (byte) order.
// Parameter keys are restricted to ASCII by the grammar, so byte order
// and code-point order coincide.
func (p Params) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy. ParamValues are immutable, so a shallow
// copy is a deep copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// MarshalJSON emits parameters with sorted keys and natural JSON types
// (numbers as numbers, booleans as booleans).
func (p Params) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range p.SortedKeys() {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := marshalParamValue(p[k])
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", k, err)
		}
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

func marshalParamValue(v ParamValue) ([]byte, error) {
	switch val := v.(type) {
	case ParamNumber:
		// Marshal through the canonical renderer so JSON and FS strings
		// agree on the rounded form.
		return []byte(val.Render()), nil
	case ParamBool:
		return []byte(val.Render()), nil
	case ParamString:
		return json.Marshal(string(val))
	default:
		return nil, fmt.Errorf("unsupported param value type: %T", v)
	}
}

// UnmarshalJSON decodes a JSON object into tagged parameter values.
// JSON numbers become ParamNumber, booleans ParamBool, strings ParamString.
// Nested objects, arrays, and null are rejected: the union is closed.
func (p *Params) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = make(Params, len(raw))
	for k, v := range raw {
		pv, err := unmarshalParamValue(v)
		if err != nil {
			return fmt.Errorf("param %q: %w", k, err)
		}
		(*p)[k] = pv
	}
	return nil
}

func unmarshalParamValue(data []byte) (ParamValue, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return ParamString(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return ParamBool(b), nil
	case 'n':
		return nil, fmt.Errorf("null is not a valid param value")
	case '[', '{':
		return nil, fmt.Errorf("containers are not valid param values")
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return ParamNumber(f), nil
	}
}
