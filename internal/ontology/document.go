package ontology

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
)

// Document is a decoded ontology file. Top-level keys are class names and
// each class maps attribute names to declarations:
//
//	track:
//	  railSide:
//	    attribute_type: {type: single-select, options: [leftRail, rightRail]}
//	    scope: annotation
//	    sensor_types: [camera]
//	person:
//	  isDummy:
//	    attribute_type: boolean
//
// A class with no attributes may be null or an empty mapping.
type Document map[string]any

// LoadFile reads the YAML (or JSON) ontology at path.
func LoadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ontology: open %s", path)
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "ontology: %s", path)
	}
	return doc, nil
}

// Load decodes an ontology document from r.
func Load(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, nil
		}
		return nil, errors.Wrap(err, "decode")
	}
	return doc, nil
}

var (
	attributeKeys = map[string]bool{
		"attribute_type": true, "optional": true, "scope": true,
		"sensor_types": true, "description": true,
	}
	attributeTypeKeys = map[string]bool{"type": true, "options": true, "description": true}
)

// ValidateDocument walks doc and returns one schema issue per structural
// violation, identified by its dotted document path. The walk order is
// sorted by key so the result is reproducible.
func ValidateDocument(doc Document) []issue.Issue {
	var issues []issue.Issue
	report := func(path, format string, args ...any) {
		issues = append(issues, issue.NewSchema(path, fmt.Sprintf(format, args...)))
	}

	for _, className := range sortedKeys(doc) {
		if doc[className] == nil {
			continue
		}
		attrs, ok := asMap(doc[className])
		if !ok {
			report(className, "must be a mapping of attribute name to declaration")
			continue
		}
		for _, attrName := range sortedKeys(attrs) {
			path := className + "." + attrName
			decl, ok := asMap(attrs[attrName])
			if !ok {
				report(path, "must be a mapping")
				continue
			}
			validateAttribute(path, decl, report)
		}
	}
	return issues
}

func validateAttribute(path string, decl map[string]any, report func(string, string, ...any)) {
	for _, k := range sortedKeys(decl) {
		if !attributeKeys[k] {
			report(path+"."+k, "unknown attribute field %q", k)
		}
	}

	typeName, ok := attributeTypeName(decl)
	switch {
	case decl["attribute_type"] == nil:
		report(path+".attribute_type", "field is required")
	case !ok:
		report(path+".attribute_type", "must be a type name or a mapping with a type field")
	case !knownType(typeName):
		report(path+".attribute_type", "unsupported type %q (supported: %s)", typeName, strings.Join(TypeNames(), ", "))
	}
	if at, isMap := asMap(decl["attribute_type"]); isMap {
		for _, k := range sortedKeys(at) {
			if !attributeTypeKeys[k] {
				report(path+".attribute_type."+k, "unknown attribute_type field %q", k)
			}
		}
		if typeName == "single-select" || typeName == "multi-select" {
			validateOptions(path+".attribute_type.options", at["options"], report)
		}
	} else if typeName == "single-select" || typeName == "multi-select" {
		report(path+".attribute_type.options", "field is required for %s", typeName)
	}

	if v, ok := decl["optional"]; ok {
		if _, isBool := v.(bool); !isBool {
			report(path+".optional", "must be a boolean")
		}
	}
	if v, ok := decl["scope"]; ok {
		s, _ := v.(string)
		if _, err := ParseScope(s); err != nil {
			report(path+".scope", "must be one of annotation, frame, object")
		}
	}
	if v, ok := decl["sensor_types"]; ok {
		list, isList := v.([]any)
		if !isList {
			report(path+".sensor_types", "must be a list")
			return
		}
		for i, e := range list {
			switch e {
			case "camera", "lidar", "radar":
			default:
				report(fmt.Sprintf("%s.sensor_types.%d", path, i), "must be one of camera, lidar, radar")
			}
		}
	}
}

func validateOptions(path string, v any, report func(string, string, ...any)) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		report(path, "must be a non-empty list")
		return
	}
	for i, e := range list {
		if _, ok := optionString(e); !ok {
			report(fmt.Sprintf("%s.%d", path, i), "must be a string")
		}
	}
}

func knownType(name string) bool {
	for _, v := range registry {
		if v.typeName == name {
			return true
		}
	}
	return false
}

// asMap accepts both Document and plain decoded mappings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	}
	return nil, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
