package scene

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

const sceneJSON = `{
  "sensors": [
    {"id": "rgb_center", "type": "camera",
     "extrinsics": {"position": [0.1, -0.2, 2.0], "rotation": [0.7071067811865476, 0, 0, 0.7071067811865476]},
     "intrinsics": {"camera_matrix": [1000, 0, 960, 0, 0, 1000, 540, 0, 0, 0, 1, 0], "distortion": [0, 0, 0, 0, 0], "width_px": 1920, "height_px": 1080}},
    {"id": "lidar", "type": "LIDAR"}
  ],
  "objects": [
    {"id": "5d8c6e2a-6a36-4a4e-9dc1-8b52f4d5e0a1", "name": "track_0001", "type": "track"}
  ],
  "frames": [
    {"id": 7, "annotations": []},
    {"id": 2, "annotations": [
      {"id": "0b3e2c1a-1f1e-4c55-9d1c-62a3f2b1e9a0", "type": "poly2d", "sensor": "rgb_center",
       "object": "5d8c6e2a-6a36-4a4e-9dc1-8b52f4d5e0a1",
       "attributes": {"railSide": "leftRail", "isEgoTrack": true, "tags": ["a", "b"], "vec": [1, 2.5]},
       "points": [[10, 600], [20, 700]]}
    ]}
  ]
}`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(sceneJSON), "scene.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "scene.json" {
		t.Errorf("Name = %q, want scene.json", s.Name)
	}

	var frameIDs []int
	for _, f := range s.Frames {
		frameIDs = append(frameIDs, f.ID)
	}
	if diff := cmp.Diff([]int{2, 7}, frameIDs); diff != "" {
		t.Errorf("frame order mismatch (-want +got):\n%s", diff)
	}

	cam, ok := s.Sensor("rgb_center")
	if !ok {
		t.Fatal("Sensor(rgb_center) not found")
	}
	if cam.Type != SensorCamera {
		t.Errorf("camera type = %q, want camera", cam.Type)
	}
	if cam.Intrinsics == nil || cam.Intrinsics.Fy() != 1000 || cam.Intrinsics.Cy() != 540 {
		t.Errorf("intrinsics = %+v, want fy=1000 cy=540", cam.Intrinsics)
	}
	if cam.Extrinsics == nil || cam.Extrinsics.Rotation.W == 0 {
		t.Errorf("extrinsics = %+v, want rotation set", cam.Extrinsics)
	}
	if lidar, _ := s.Sensor("lidar"); lidar.Type != SensorLidar {
		t.Errorf("lidar type = %q, want lidar", lidar.Type)
	}

	a := s.Frames[0].Annotations[0]
	if a.Type != AnnotationPoly2d {
		t.Errorf("annotation type = %q, want Poly2d", a.Type)
	}
	want := map[string]any{
		"railSide":   "leftRail",
		"isEgoTrack": true,
		"tags":       []string{"a", "b"},
		"vec":        []float64{1, 2.5},
	}
	if diff := cmp.Diff(want, a.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Point{{X: 10, Y: 600}, {X: 20, Y: 700}}, a.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if obj, ok := s.Object(a.ObjectID); !ok || obj.Type != "track" {
		t.Errorf("Object(%s) = %+v, %v; want track", a.ObjectID, obj, ok)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"bad json":          `{`,
		"unknown sensor":    `{"sensors":[{"id":"x","type":"sonar"}]}`,
		"short matrix":      `{"sensors":[{"id":"c","type":"camera","intrinsics":{"camera_matrix":[1,2,3]}}]}`,
		"bad object id":     `{"objects":[{"id":"nope","type":"track"}]}`,
		"bad annotation":    `{"frames":[{"id":0,"annotations":[{"id":"nope","type":"bbox"}]}]}`,
		"unknown anno type": `{"frames":[{"id":0,"annotations":[{"id":"0b3e2c1a-1f1e-4c55-9d1c-62a3f2b1e9a0","type":"mesh","object":"5d8c6e2a-6a36-4a4e-9dc1-8b52f4d5e0a1"}]}]}`,
		"duplicate frame":   `{"frames":[{"id":0},{"id":0}]}`,
		"duplicate sensor":  `{"sensors":[{"id":"a","type":"radar"},{"id":"a","type":"radar"}]}`,
	}
	for name, doc := range cases {
		if _, err := Load(strings.NewReader(doc), name); err == nil {
			t.Errorf("%s: Load succeeded, want error", name)
		}
	}
}

func TestParseAnnotationType(t *testing.T) {
	cases := map[string]AnnotationType{
		"bbox":    AnnotationBbox,
		"Poly2d":  AnnotationPoly2d,
		" SEG3D ": AnnotationSeg3d,
		"cuboid":  AnnotationCuboid,
		"num":     AnnotationNum,
		"poly3d":  AnnotationPoly3d,
	}
	for in, want := range cases {
		got, err := ParseAnnotationType(in)
		if err != nil || got != want {
			t.Errorf("ParseAnnotationType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestScene_MissingLookups(t *testing.T) {
	s, err := New("empty", nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.Sensor("rgb_center"); ok {
		t.Error("Sensor on empty scene found something")
	}
	if _, ok := s.Object(uuid.New()); ok {
		t.Error("Object on empty scene found something")
	}
}

func TestAnnotation_AttributeNames(t *testing.T) {
	a := Annotation{Attributes: map[string]any{"b": 1.0, "a": true, "c": "x"}}
	if diff := cmp.Diff([]string{"a", "b", "c"}, a.AttributeNames()); diff != "" {
		t.Errorf("AttributeNames mismatch (-want +got):\n%s", diff)
	}
}
