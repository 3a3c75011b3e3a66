package issue_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
)

func TestSerialize_Identifiers(t *testing.T) {
	anno := uuid.MustParse("0b3e2c1a-1f1e-4c55-9d1c-62a3f2b1e9a0")
	i := issue.New(issue.TypeAnnotationSensorMismatch, issue.Identifiers{
		Frame:          issue.Frame(0),
		Sensor:         "cam0",
		Annotation:     anno,
		AnnotationType: "Cuboid",
	}, "Annotation type 'Cuboid' not allowed for sensor type 'camera'.")

	got := i.Serialize()
	want := issue.Serialized{
		Type: "AnnotationSensorMismatch",
		Identifiers: map[string]any{
			"frame":           0,
			"sensor":          "cam0",
			"annotation":      anno.String(),
			"annotation_type": "Cuboid",
		},
		Reason: "Annotation type 'Cuboid' not allowed for sensor type 'camera'.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Serialize mismatch (-want +got):\n%s", diff)
	}
	if errs := issue.ValidateSerialized(got); len(errs) != 0 {
		t.Errorf("ValidateSerialized: %v", errs)
	}
}

func TestSerialize_Schema(t *testing.T) {
	i := issue.NewSchema("person.age.scope", "scope must be one of annotation, frame, object")
	got := i.Serialize()
	if got.Identifiers != "person.age.scope" {
		t.Errorf("Identifiers = %v, want bare path string", got.Identifiers)
	}
	if errs := issue.ValidateSerialized(got); len(errs) != 0 {
		t.Errorf("ValidateSerialized: %v", errs)
	}
}

func TestSerialize_EmptyIdentifiers(t *testing.T) {
	got := issue.New(issue.TypeEmptyFrames, issue.Identifiers{}, "x").Serialize()
	ids, ok := got.Identifiers.(map[string]any)
	if !ok || len(ids) != 0 {
		t.Errorf("Identifiers = %#v, want empty map", got.Identifiers)
	}
}

func TestValidateSerialized_JSONDecoded(t *testing.T) {
	i := issue.New(issue.TypeEmptyFrames, issue.Identifiers{Frame: issue.Frame(12), Sensor: "lidar"}, "empty")
	b, err := json.Marshal(i.Serialize())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded issue.Serialized
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if errs := issue.ValidateSerialized(decoded); len(errs) != 0 {
		t.Errorf("ValidateSerialized(decoded): %v", errs)
	}
}

func TestValidateSerialized_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   issue.Serialized
	}{
		{"unknown type", issue.Serialized{Type: "Nope", Identifiers: map[string]any{}, Reason: "r"}},
		{"empty reason", issue.Serialized{Type: "EmptyFramesIssue", Identifiers: map[string]any{}}},
		{"string ids on non-schema", issue.Serialized{Type: "EmptyFramesIssue", Identifiers: "x", Reason: "r"}},
		{"unknown key", issue.Serialized{Type: "EmptyFramesIssue", Identifiers: map[string]any{"camera": "x"}, Reason: "r"}},
		{"fractional frame", issue.Serialized{Type: "EmptyFramesIssue", Identifiers: map[string]any{"frame": 1.5}, Reason: "r"}},
		{"numeric sensor", issue.Serialized{Type: "EmptyFramesIssue", Identifiers: map[string]any{"sensor": 3}, Reason: "r"}},
		{"nil ids", issue.Serialized{Type: "EmptyFramesIssue", Reason: "r"}},
	}
	for _, c := range cases {
		if errs := issue.ValidateSerialized(c.in); len(errs) == 0 {
			t.Errorf("%s: expected validation errors", c.name)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range issue.Types() {
		got, err := issue.ParseType(string(typ))
		if err != nil || got != typ {
			t.Errorf("ParseType(%q) = %q, %v", typ, got, err)
		}
	}
	_, err := issue.ParseType("HorizonCrossed")
	if err == nil {
		t.Fatal("ParseType(HorizonCrossed) succeeded, want error")
	}
	if want := `issue: unknown type "HorizonCrossed"`; err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
	// Unknown types are data errors, not configuration failures.
	if errors.IsConfiguration(err) {
		t.Errorf("error %v is marked as configuration", err)
	}
	if !strings.Contains(fmt.Sprintf("%+v", err), "issue.ParseType") {
		t.Errorf("error carries no stack trace:\n%+v", err)
	}
}

func TestType_IsAttribute(t *testing.T) {
	attr := map[issue.Type]bool{
		issue.TypeAttributeMissing:   true,
		issue.TypeAttributeScope:     true,
		issue.TypeAttributeType:      true,
		issue.TypeAttributeUndefined: true,
		issue.TypeAttributeValue:     true,
	}
	for _, typ := range issue.Types() {
		if got := typ.IsAttribute(); got != attr[typ] {
			t.Errorf("%s.IsAttribute() = %v, want %v", typ, got, attr[typ])
		}
	}
}

func TestIssue_StructuralEquality(t *testing.T) {
	a := issue.New(issue.TypeHorizonCrossed, issue.Identifiers{Sensor: "rgb_center"}, "r")
	b := issue.New(issue.TypeHorizonCrossed, issue.Identifiers{Sensor: "rgb_center"}, "r")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("independently built issues differ:\n%s", diff)
	}
}
