package graph

import (
	"sort"
	"strings"
)

// TargetBandDescriptors is the parameter whose value is always appended to
// the parameters element as a raw XML fragment instead of being wrapped in an
// element of its own
const TargetBandDescriptors = "targetBandDescriptors"

// Parameter is a single named operator parameter. A nil Value is written as an
// empty element when the node is created and leaves an existing value
// untouched when a node is merged.
type Parameter struct {
	Name  string
	Value *string
}

// Parameters is an ordered set of operator parameters
type Parameters []Parameter

// Param creates a parameter with a value
func Param(name, value string) Parameter {
	return Parameter{Name: name, Value: &value}
}

// EmptyParam creates a parameter with no value
func EmptyParam(name string) Parameter {
	return Parameter{Name: name}
}

// IsFragment reports whether the value is an embedded XML fragment
func (p Parameter) IsFragment() bool {
	return p.Value != nil && strings.HasPrefix(*p.Value, "<")
}

// ParamsFromMap builds Parameters from a map, ordered by name
func ParamsFromMap(values map[string]string) Parameters {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make(Parameters, len(names))
	for i, name := range names {
		params[i] = Param(name, values[name])
	}
	return params
}

// Get returns the value of the named parameter
func (ps Parameters) Get(name string) (string, bool) {
	for _, p := range ps {
		if p.Name == name {
			if p.Value == nil {
				return "", true
			}
			return *p.Value, true
		}
	}
	return "", false
}

// Merge returns a copy of ps with every parameter in overrides applied on top:
// existing names are replaced in place, new names are appended
func (ps Parameters) Merge(overrides Parameters) Parameters {
	merged := append(Parameters{}, ps...)
	for _, o := range overrides {
		replaced := false
		for i := range merged {
			if merged[i].Name == o.Name {
				if o.Value != nil {
					merged[i] = o
				}
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, o)
		}
	}
	return merged
}

// Map flattens the parameters into a map; empty parameters map to ""
func (ps Parameters) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		if p.Value == nil {
			m[p.Name] = ""
		} else {
			m[p.Name] = *p.Value
		}
	}
	return m
}
