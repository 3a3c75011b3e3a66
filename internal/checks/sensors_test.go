package checks

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

func TestSensorNames(t *testing.T) {
	s := newScene(t, []scene.Sensor{
		{ID: "rgb_center", Type: scene.SensorCamera},
		{ID: "lidar", Type: scene.SensorRadar},
		{ID: "thermal_top", Type: scene.SensorCamera},
		{ID: "rgb_12mp_middle", Type: scene.SensorCamera},
	})
	want := []issue.Issue{
		issue.New(issue.TypeSensorTypeWrong, issue.Identifiers{Sensor: "lidar"},
			"Sensor 'lidar' has type 'radar' (expected 'lidar')."),
		issue.New(issue.TypeSensorIDUnknown, issue.Identifiers{Sensor: "thermal_top"},
			"Sensor id 'thermal_top' is not part of the known sensor catalogue."),
	}
	if diff := cmp.Diff(want, SensorNames(s)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
