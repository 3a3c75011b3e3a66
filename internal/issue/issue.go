// Package issue defines the validation finding record produced by every
// checker and its serialized form.
package issue

import (
	"github.com/google/uuid"

	"github.com/dshills/railcheck/internal/errors"
)

// Type is the closed set of finding kinds.
type Type string

const (
	TypeAnnotationSensorMismatch    Type = "AnnotationSensorMismatch"
	TypeAttributeMissing            Type = "AttributeMissing"
	TypeAttributeScope              Type = "AttributeScopeInconsistency"
	TypeAttributeType               Type = "AttributeTypeIssue"
	TypeAttributeUndefined          Type = "AttributeUndefined"
	TypeAttributeValue              Type = "AttributeValueIssue"
	TypeEgoTrackBothRails           Type = "EgoTrackBothRails"
	TypeEmptyFrames                 Type = "EmptyFramesIssue"
	TypeHorizonCrossed              Type = "HorizonCrossedIssue"
	TypeObjectTypeUndefined         Type = "ObjectTypeUndefined"
	TypeSchema                      Type = "SchemaIssue"
	TypeSensorIDUnknown             Type = "SensorIdUnknown"
	TypeSensorTypeWrong             Type = "SensorTypeWrong"
	TypeTransitionIdenticalStartEnd Type = "TransitionIdenticalStartEnd"
)

var types = []Type{
	TypeAnnotationSensorMismatch,
	TypeAttributeMissing,
	TypeAttributeScope,
	TypeAttributeType,
	TypeAttributeUndefined,
	TypeAttributeValue,
	TypeEgoTrackBothRails,
	TypeEmptyFrames,
	TypeHorizonCrossed,
	TypeObjectTypeUndefined,
	TypeSchema,
	TypeSensorIDUnknown,
	TypeSensorTypeWrong,
	TypeTransitionIdenticalStartEnd,
}

// Types returns every finding kind in declaration order.
func Types() []Type {
	return append([]Type(nil), types...)
}

// ParseType converts a string to a Type constant.
// Returns an error for unrecognized values.
func ParseType(s string) (Type, error) {
	for _, t := range types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.Newf("issue: unknown type %q", s)
}

// IsAttribute reports whether t belongs to the ontology attribute family.
func (t Type) IsAttribute() bool {
	switch t {
	case TypeAttributeMissing, TypeAttributeScope, TypeAttributeType,
		TypeAttributeUndefined, TypeAttributeValue:
		return true
	}
	return false
}

// Identifiers locates a finding inside a scene. Unset fields are the zero
// value; Frame is a pointer because frame 0 is a valid frame.
type Identifiers struct {
	Frame          *int
	Sensor         string
	Object         uuid.UUID
	ObjectType     string
	Annotation     uuid.UUID
	AnnotationType string
	Attribute      string
}

// Frame returns a frame reference for use in Identifiers.
func Frame(id int) *int {
	return &id
}

// Serialize returns the identifiers as a record holding only the set fields.
func (ids Identifiers) Serialize() map[string]any {
	out := make(map[string]any)
	if ids.Frame != nil {
		out["frame"] = *ids.Frame
	}
	if ids.Sensor != "" {
		out["sensor"] = ids.Sensor
	}
	if ids.Object != uuid.Nil {
		out["object"] = ids.Object.String()
	}
	if ids.ObjectType != "" {
		out["object_type"] = ids.ObjectType
	}
	if ids.Annotation != uuid.Nil {
		out["annotation"] = ids.Annotation.String()
	}
	if ids.AnnotationType != "" {
		out["annotation_type"] = ids.AnnotationType
	}
	if ids.Attribute != "" {
		out["attribute"] = ids.Attribute
	}
	return out
}

// Issue is one validation finding. Issues are values; a checker builds them
// and nothing modifies them afterwards.
type Issue struct {
	Type        Type
	Identifiers Identifiers
	// SchemaPath locates schema-level findings, which have no scene
	// identifiers. It is empty for every other type.
	SchemaPath string
	Reason     string
}

// New returns an issue located by ids.
func New(t Type, ids Identifiers, reason string) Issue {
	return Issue{Type: t, Identifiers: ids, Reason: reason}
}

// NewSchema returns a schema-level issue located by a document path.
func NewSchema(path, reason string) Issue {
	return Issue{Type: TypeSchema, SchemaPath: path, Reason: reason}
}

// Serialized is the export record of an issue. Identifiers holds either a
// map[string]any of set identifier fields or, for schema issues, the bare
// document path string.
type Serialized struct {
	Type        string `json:"type"`
	Identifiers any    `json:"identifiers"`
	Reason      string `json:"reason"`
}

// Serialize converts i to its export record.
func (i Issue) Serialize() Serialized {
	s := Serialized{Type: string(i.Type), Reason: i.Reason}
	if i.Type == TypeSchema {
		s.Identifiers = i.SchemaPath
	} else {
		s.Identifiers = i.Identifiers.Serialize()
	}
	return s
}

// SerializeAll serializes issues in order.
func SerializeAll(issues []Issue) []Serialized {
	out := make([]Serialized, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Serialize())
	}
	return out
}
