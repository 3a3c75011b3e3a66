package checks

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

var (
	trackObj      = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
	transitionObj = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000002")
	personObj     = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000003")
)

var testObjects = []scene.Object{
	{ID: trackObj, Name: "track_0001", Type: "track"},
	{ID: transitionObj, Name: "transition_0001", Type: "transition"},
	{ID: personObj, Name: "person_0001", Type: "person"},
}

// levelCamera looks straight at the horizon with fy=1000 and cy=540.
func levelCamera(id string) scene.Sensor {
	half := math.Pi / 4
	return scene.Sensor{
		ID:   id,
		Type: scene.SensorCamera,
		Extrinsics: &scene.Transform{
			Position: scene.Point{Z: 2},
			Rotation: scene.Quaternion{X: math.Sin(half), W: math.Cos(half)},
		},
		Intrinsics: &scene.IntrinsicsPinhole{
			CameraMatrix: [12]float64{1000, 0, 960, 0, 0, 1000, 540, 0, 0, 0, 1, 0},
			Width:        1920,
			Height:       1080,
		},
	}
}

func newScene(t *testing.T, sensors []scene.Sensor, frames ...scene.Frame) *scene.Scene {
	t.Helper()
	s, err := scene.New("test", sensors, testObjects, frames)
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	return s
}

func annotation(typ scene.AnnotationType, sensor string, object uuid.UUID, attrs map[string]any, points ...scene.Point) scene.Annotation {
	return scene.Annotation{
		ID:         uuid.New(),
		Type:       typ,
		SensorID:   sensor,
		ObjectID:   object,
		Attributes: attrs,
		Points:     points,
	}
}

// rail returns an ego track rail polygon spanning y from lo to hi.
func rail(sensor, side string, lo, hi float64) scene.Annotation {
	return annotation(scene.AnnotationPoly2d, sensor, trackObj,
		map[string]any{"railSide": side, "isEgoTrack": true},
		scene.Point{X: 900, Y: lo}, scene.Point{X: 910, Y: hi})
}

func issueTypes(issues []issue.Issue) []issue.Type {
	out := make([]issue.Type, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Type)
	}
	return out
}
