package ontology

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// Scope is the granularity at which an attribute value must stay consistent.
type Scope string

const (
	ScopeAnnotation Scope = "annotation"
	ScopeFrame      Scope = "frame"
	ScopeObject     Scope = "object"
)

// ParseScope converts a string to a Scope constant.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeAnnotation, ScopeFrame, ScopeObject:
		return Scope(s), nil
	}
	return "", errors.Newf("unknown scope %q", s)
}

// defaultSensorTypes apply when a declaration names no sensor_types.
var defaultSensorTypes = []scene.SensorType{scene.SensorCamera, scene.SensorLidar, scene.SensorRadar}

// Spec holds the declaration fields shared by every attribute type.
type Spec struct {
	Scope       Scope
	Optional    bool
	SensorTypes []scene.SensorType
}

// AppliesTo reports whether annotations of sensor kind t must carry the
// attribute.
func (s Spec) AppliesTo(t scene.SensorType) bool {
	for _, st := range s.SensorTypes {
		if st == t {
			return true
		}
	}
	return false
}

// Attribute is a parsed attribute declaration.
type Attribute interface {
	// TypeName is the declaration discriminator, e.g. "multi-select".
	TypeName() string
	Spec() Spec
	// CheckTypeAndValue validates one annotation's value.
	CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue
	// CheckScope compares the values of two annotations that share the
	// attribute's scope key. first is the earlier annotation in scene order.
	CheckScope(name string, first, second any, firstIDs, secondIDs issue.Identifiers) []issue.Issue
}

// variant registers one attribute type. Variants are tried in registry order
// and the first whose supports predicate accepts a declaration parses it.
type variant struct {
	typeName string
	parse    func(spec Spec, decl map[string]any) (Attribute, error)
}

func (v variant) supports(decl map[string]any) bool {
	name, ok := attributeTypeName(decl)
	return ok && name == v.typeName
}

var registry = []variant{
	{"boolean", func(s Spec, _ map[string]any) (Attribute, error) { return &Boolean{base{s}}, nil }},
	{"integer", func(s Spec, _ map[string]any) (Attribute, error) { return &Integer{base{s}}, nil }},
	{"number", func(s Spec, _ map[string]any) (Attribute, error) { return &Numeric{base{s}}, nil }},
	{"string", func(s Spec, _ map[string]any) (Attribute, error) { return &String{base{s}}, nil }},
	{"vector", func(s Spec, _ map[string]any) (Attribute, error) { return &Vector{base{s}}, nil }},
	{"single-select", parseSingleSelect},
	{"multi-select", parseMultiSelect},
}

// TypeNames returns the supported attribute type discriminators in
// registration order.
func TypeNames() []string {
	names := make([]string, 0, len(registry))
	for _, v := range registry {
		names = append(names, v.typeName)
	}
	return names
}

// attributeTypeName extracts the discriminator from either
// `attribute_type: boolean` or `attribute_type: {type: boolean}`.
func attributeTypeName(decl map[string]any) (string, bool) {
	switch at := decl["attribute_type"].(type) {
	case string:
		return at, true
	case map[string]any:
		name, ok := at["type"].(string)
		return name, ok
	}
	return "", false
}

// ParseAttribute builds the attribute type matching decl. Every failure is a
// configuration error.
func ParseAttribute(decl map[string]any) (Attribute, error) {
	spec, err := parseSpec(decl)
	if err != nil {
		return nil, err
	}
	for _, v := range registry {
		if v.supports(decl) {
			return v.parse(spec, decl)
		}
	}
	name, _ := attributeTypeName(decl)
	return nil, errors.Configurationf("unsupported attribute_type %q (supported: %s)",
		name, strings.Join(TypeNames(), ", "))
}

func parseSpec(decl map[string]any) (Spec, error) {
	spec := Spec{Scope: ScopeAnnotation, SensorTypes: defaultSensorTypes}

	if v, ok := decl["optional"]; ok {
		b, ok := v.(bool)
		if !ok {
			return Spec{}, errors.Configurationf("optional must be a boolean, got %v", v)
		}
		spec.Optional = b
	}
	if v, ok := decl["scope"]; ok {
		s, _ := v.(string)
		scope, err := ParseScope(s)
		if err != nil {
			return Spec{}, errors.Mark(err, errors.ErrConfiguration)
		}
		spec.Scope = scope
	}
	if v, ok := decl["sensor_types"]; ok {
		list, ok := v.([]any)
		if !ok {
			return Spec{}, errors.Configurationf("sensor_types must be a list, got %v", v)
		}
		spec.SensorTypes = make([]scene.SensorType, 0, len(list))
		for _, e := range list {
			s, _ := e.(string)
			switch st := scene.SensorType(s); st {
			case scene.SensorCamera, scene.SensorLidar, scene.SensorRadar:
				spec.SensorTypes = append(spec.SensorTypes, st)
			default:
				return Spec{}, errors.Configurationf("unknown sensor type %v in sensor_types", e)
			}
		}
	}
	return spec, nil
}

// base carries the shared declaration fields and the default scope check.
type base struct {
	spec Spec
}

func (b *base) Spec() Spec { return b.spec }

func (b *base) CheckScope(name string, first, second any, firstIDs, secondIDs issue.Identifiers) []issue.Issue {
	if b.spec.Scope == ScopeAnnotation || reflect.DeepEqual(first, second) {
		return nil
	}
	ids := secondIDs
	ids.Attribute = name
	return []issue.Issue{issue.New(issue.TypeAttributeScope, ids, fmt.Sprintf(
		"Attribute '%s' is %s-scoped but annotation %s (frame %s) has value %s while annotation %s (frame %s) has value %s.",
		name, b.spec.Scope,
		firstIDs.Annotation, frameString(firstIDs.Frame), formatValue(first),
		secondIDs.Annotation, frameString(secondIDs.Frame), formatValue(second),
	))}
}

func typeIssue(name string, value any, want string, ids issue.Identifiers) []issue.Issue {
	ids.Attribute = name
	return []issue.Issue{issue.New(issue.TypeAttributeType, ids, fmt.Sprintf(
		"Attribute '%s' is of type %s (should be %s).", name, valueTypeName(value), want))}
}

// Boolean accepts true or false.
type Boolean struct{ base }

func (*Boolean) TypeName() string { return "boolean" }

func (a *Boolean) CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue {
	if _, ok := value.(bool); !ok {
		return typeIssue(name, value, "boolean", ids)
	}
	return nil
}

// Integer accepts whole numbers.
type Integer struct{ base }

func (*Integer) TypeName() string { return "integer" }

func (a *Integer) CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue {
	f, ok := toFloat(value)
	if !ok || f != float64(int64(f)) {
		return typeIssue(name, value, "integer", ids)
	}
	return nil
}

// Numeric accepts any number.
type Numeric struct{ base }

func (*Numeric) TypeName() string { return "number" }

func (a *Numeric) CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue {
	if _, ok := toFloat(value); !ok {
		return typeIssue(name, value, "number", ids)
	}
	return nil
}

// String accepts any string.
type String struct{ base }

func (*String) TypeName() string { return "string" }

func (a *String) CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue {
	if _, ok := value.(string); !ok {
		return typeIssue(name, value, "string", ids)
	}
	return nil
}

// Vector accepts a list of numbers.
type Vector struct{ base }

func (*Vector) TypeName() string { return "vector" }

func (a *Vector) CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue {
	switch v := value.(type) {
	case []float64:
		return nil
	case []string:
		if len(v) == 0 {
			return nil
		}
	case []any:
		for _, e := range v {
			if _, ok := toFloat(e); !ok {
				return typeIssue(name, value, "list of numbers", ids)
			}
		}
		return nil
	}
	return typeIssue(name, value, "list of numbers", ids)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func valueTypeName(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case string:
		return "string"
	case []string, []float64, []any:
		return "list"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return "'" + x + "'"
	case []string:
		return "[" + quoteJoin(x) + "]"
	}
	return fmt.Sprintf("%v", v)
}

func frameString(f *int) string {
	if f == nil {
		return "?"
	}
	return strconv.Itoa(*f)
}

// quoteJoin renders values as 'a', 'b', 'c' in the given order.
func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}

func sortedOptions(options map[string]bool) []string {
	out := make([]string, 0, len(options))
	for o := range options {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}
