package ontology

import (
	"fmt"
	"strconv"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
)

// SingleSelect accepts exactly one of a fixed set of string options.
type SingleSelect struct {
	base
	Options map[string]bool
}

func (*SingleSelect) TypeName() string { return "single-select" }

// NumericOptions reports whether every option is a decimal number, e.g. the
// ordinal options of an "order" attribute.
func (a *SingleSelect) NumericOptions() bool {
	if len(a.Options) == 0 {
		return false
	}
	for o := range a.Options {
		if _, err := strconv.ParseFloat(o, 64); err != nil {
			return false
		}
	}
	return true
}

func (a *SingleSelect) CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue {
	s, ok := value.(string)
	if !ok {
		// Tools export ordinal options as numbers; accept them when every
		// option is numeric.
		f, isNum := toFloat(value)
		if !isNum || !a.NumericOptions() {
			return typeIssue(name, value, "string", ids)
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if !a.Options[s] {
		return valueIssue(name, s, a.Options, ids)
	}
	return nil
}

// MultiSelect accepts a list of string options. A bare string is read as a
// one-element list, which some annotation tools emit.
type MultiSelect struct {
	base
	Options map[string]bool
}

func (*MultiSelect) TypeName() string { return "multi-select" }

func (a *MultiSelect) CheckTypeAndValue(name string, value any, ids issue.Identifiers) []issue.Issue {
	values, ok := asStringList(value)
	if !ok {
		return typeIssue(name, value, "list of strings", ids)
	}
	for _, v := range values {
		if !a.Options[v] {
			return valueIssue(name, v, a.Options, ids)
		}
	}
	return nil
}

func (a *MultiSelect) CheckScope(name string, first, second any, firstIDs, secondIDs issue.Identifiers) []issue.Issue {
	if l, ok := asStringList(first); ok {
		first = l
	}
	if l, ok := asStringList(second); ok {
		second = l
	}
	return a.base.CheckScope(name, first, second, firstIDs, secondIDs)
}

func asStringList(v any) ([]string, bool) {
	switch x := v.(type) {
	case string:
		return []string{x}, true
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func valueIssue(name, value string, options map[string]bool, ids issue.Identifiers) []issue.Issue {
	ids.Attribute = name
	return []issue.Issue{issue.New(issue.TypeAttributeValue, ids, fmt.Sprintf(
		"Attribute '%s' has an undefined value '%s' (defined options: %s).",
		name, value, quoteJoin(sortedOptions(options))))}
}

func parseSingleSelect(spec Spec, decl map[string]any) (Attribute, error) {
	options, err := parseOptions(decl)
	if err != nil {
		return nil, err
	}
	return &SingleSelect{base: base{spec}, Options: options}, nil
}

func parseMultiSelect(spec Spec, decl map[string]any) (Attribute, error) {
	options, err := parseOptions(decl)
	if err != nil {
		return nil, err
	}
	return &MultiSelect{base: base{spec}, Options: options}, nil
}

// parseOptions reads attribute_type.options. Numeric YAML scalars are kept in
// their canonical decimal form.
func parseOptions(decl map[string]any) (map[string]bool, error) {
	at, ok := decl["attribute_type"].(map[string]any)
	if !ok {
		return nil, errors.Configurationf("select attribute requires attribute_type.options")
	}
	list, ok := at["options"].([]any)
	if !ok || len(list) == 0 {
		return nil, errors.Configurationf("attribute_type.options must be a non-empty list")
	}
	options := make(map[string]bool, len(list))
	for _, e := range list {
		s, ok := optionString(e)
		if !ok {
			return nil, errors.Configurationf("attribute_type.options: %v is not a string", e)
		}
		options[s] = true
	}
	return options, nil
}

func optionString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}
