package ontology

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/railcheck/internal/issue"
)

func schemaPaths(issues []issue.Issue) []string {
	var out []string
	for _, i := range issues {
		if i.Type != issue.TypeSchema {
			continue
		}
		out = append(out, i.SchemaPath)
	}
	return out
}

func TestValidateDocument(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []string
	}{
		{"valid", ontologyYAML, nil},
		{"empty document", "", nil},
		{"class without attributes", "person:\ntrack: {}\n", nil},
		{"class not a mapping", "person: [a, b]\n", []string{"person"}},
		{"declaration not a mapping", "person:\n  age: adult\n", []string{"person.age"}},
		{
			"bad attribute fields",
			"c:\n  x:\n    attribute_type: colour\n    scope: scene\n    optional: 1\n    sensor_types: [camera, sonar]\n    colour: red\n",
			[]string{
				"c.x.colour",
				"c.x.attribute_type",
				"c.x.optional",
				"c.x.scope",
				"c.x.sensor_types.1",
			},
		},
		{"missing attribute_type", "c:\n  x: {optional: true}\n", []string{"c.x.attribute_type"}},
		{"select without options", "c:\n  x: {attribute_type: single-select}\n", []string{"c.x.attribute_type.options"}},
		{
			"select with bad option",
			"c:\n  x:\n    attribute_type: {type: multi-select, options: [a, {b: c}]}\n",
			[]string{"c.x.attribute_type.options.1"},
		},
	}
	for _, c := range cases {
		doc, err := Load(strings.NewReader(c.src))
		if err != nil {
			t.Fatalf("%s: Load: %v", c.name, err)
		}
		got := schemaPaths(ValidateDocument(doc))
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("%s: schema paths mismatch (-want +got):\n%s", c.name, diff)
		}
	}
}

func TestValidateDocument_Reproducible(t *testing.T) {
	doc, err := Load(strings.NewReader("b: 1\na: 2\nc: 3\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(want, schemaPaths(ValidateDocument(doc))); diff != "" {
			t.Fatalf("run %d: order mismatch (-want +got):\n%s", i, diff)
		}
	}
}

// osdar26Excerpt follows the layout of the shipped OSDAR26 ontology: class
// names at the top level, attribute names directly below them.
const osdar26Excerpt = `
person:
  occlusion:
    attribute_type:
      type: single-select
      options: [0-25 %, 25-50 %, 50-75 %, 75-99 %, 100 %]
  isDummy:
    attribute_type: boolean
  connectedTo:
    attribute_type: string
    optional: true
    scope: object
crowd:
  occlusion:
    attribute_type:
      type: single-select
      options: [0-25 %, 25-50 %, 50-75 %, 75-99 %, 100 %]
track:
  railSide:
    attribute_type:
      type: single-select
      options: [leftRail, rightRail]
    sensor_types: [camera, lidar]
  isEgoTrack:
    attribute_type: boolean
    optional: true
switch:
`

func TestOSDAR26Layout(t *testing.T) {
	doc, err := Load(strings.NewReader(osdar26Excerpt))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if issues := ValidateDocument(doc); len(issues) != 0 {
		t.Fatalf("ValidateDocument: %v", issues)
	}
	o, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	classes := make([]string, 0, len(o.Classes))
	for name := range o.Classes {
		classes = append(classes, name)
	}
	sort.Strings(classes)
	if diff := cmp.Diff([]string{"crowd", "person", "switch", "track"}, classes); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}

	occlusion, ok := o.Classes["person"].Attributes["occlusion"].(*SingleSelect)
	if !ok {
		t.Fatalf("person.occlusion = %T, want *SingleSelect", o.Classes["person"].Attributes["occlusion"])
	}
	if !occlusion.Options["75-99 %"] || len(occlusion.Options) != 5 {
		t.Errorf("person.occlusion options = %v", occlusion.Options)
	}
	if got := o.Classes["person"].Attributes["connectedTo"].Spec().Scope; got != ScopeObject {
		t.Errorf("person.connectedTo scope = %q, want object", got)
	}
	if n := len(o.Classes["switch"].Attributes); n != 0 {
		t.Errorf("switch has %d attributes, want 0", n)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontology.yaml")
	if err := os.WriteFile(path, []byte(ontologyYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := asMap(doc["person"]); !ok {
		t.Errorf("person = %T, want mapping", doc["person"])
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) succeeded, want error")
	}
}

func TestLoad_JSON(t *testing.T) {
	doc, err := Load(strings.NewReader(`{"c": {"x": {"attribute_type": "boolean"}}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if issues := ValidateDocument(doc); len(issues) != 0 {
		t.Errorf("ValidateDocument: %v", issues)
	}
}
