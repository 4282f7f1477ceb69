package circuit

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Values binds parameter names to per-batch values.
//
// Every slice has length 1 (broadcast over the batch) or B. Bindings are
// supplied fresh at every evaluation and never stored inside operators.
//
// Example:
//
//	values := circuit.Values{
//	    "theta": {math.Pi / 2},          // shared by every batch element
//	    "t":     {0, math.Pi / 4, 1.0},  // one value per batch element
//	}
type Values map[string][]float64

// Clone returns a deep copy of the bindings.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for name, vals := range v {
		out[name] = slices.Clone(vals)
	}
	return out
}

// Names returns the bound parameter names in sorted order.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Param is a scalar operator parameter: either a name resolved from Values at
// evaluation time, or literal per-batch values.
type Param struct {
	Name   string    // Parameter name; empty for literals.
	Values []float64 // Literal per-batch values; ignored when Name is set.
}

// Named returns a parameter resolved from the bindings under name.
func Named(name string) Param {
	return Param{Name: name}
}

// Literal returns a fixed parameter with one value or one value per batch
// element.
func Literal(values ...float64) Param {
	return Param{Values: values}
}

// IsNamed reports whether the parameter is resolved from the bindings.
func (p Param) IsNamed() bool {
	return p.Name != ""
}

// Resolve returns the per-batch values of the parameter.
func (p Param) Resolve(values Values) ([]float64, error) {
	if !p.IsNamed() {
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("%w: literal parameter without values", ErrValidation)
		}
		return p.Values, nil
	}
	vals, ok := values[p.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnboundParameter, p.Name)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %q bound to no values", ErrValidation, p.Name)
	}
	return vals, nil
}

// String returns the name, or the literal values.
func (p Param) String() string {
	if p.IsNamed() {
		return p.Name
	}
	parts := make([]string, len(p.Values))
	for i, v := range p.Values {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(parts, ",")
}

// appendNames appends the names of params not already present in names.
func appendNames(names []string, params ...Param) []string {
	for _, p := range params {
		if p.IsNamed() && !slices.Contains(names, p.Name) {
			names = append(names, p.Name)
		}
	}
	return names
}

// mergeNames appends the entries of extra not already present in names.
func mergeNames(names, extra []string) []string {
	for _, n := range extra {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}
