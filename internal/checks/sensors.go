package checks

import (
	"fmt"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// knownSensors is the sensor catalogue of the OSDAR23 and OSDAR26 rigs.
var knownSensors = map[string]scene.SensorType{
	"rgb_center":           scene.SensorCamera,
	"rgb_left":             scene.SensorCamera,
	"rgb_right":            scene.SensorCamera,
	"rgb_highres_center":   scene.SensorCamera,
	"rgb_highres_left":     scene.SensorCamera,
	"rgb_highres_right":    scene.SensorCamera,
	"rgb_longrange_center": scene.SensorCamera,
	"rgb_longrange_left":   scene.SensorCamera,
	"rgb_longrange_right":  scene.SensorCamera,
	"ir_center":            scene.SensorCamera,
	"ir_left":              scene.SensorCamera,
	"ir_right":             scene.SensorCamera,
	"lidar":                scene.SensorLidar,
	"radar":                scene.SensorRadar,
	"gps_imu":              scene.SensorGpsImu,

	"rgb_12mp_left":   scene.SensorCamera,
	"rgb_12mp_middle": scene.SensorCamera,
	"rgb_12mp_right":  scene.SensorCamera,
	"rgb_5mp_left":    scene.SensorCamera,
	"rgb_5mp_middle":  scene.SensorCamera,
	"rgb_5mp_right":   scene.SensorCamera,
	"ir_middle":       scene.SensorCamera,
	"lidar_merged":    scene.SensorLidar,
	"radar_cartesian": scene.SensorRadar,
}

// SensorNames reports sensors whose id is not in the rig catalogue or whose
// kind differs from the catalogue entry.
func SensorNames(s *scene.Scene) []issue.Issue {
	var issues []issue.Issue
	for _, sensor := range s.Sensors {
		ids := issue.Identifiers{Sensor: sensor.ID}
		want, known := knownSensors[sensor.ID]
		switch {
		case !known:
			issues = append(issues, issue.New(issue.TypeSensorIDUnknown, ids,
				fmt.Sprintf("Sensor id '%s' is not part of the known sensor catalogue.", sensor.ID)))
		case want != sensor.Type:
			issues = append(issues, issue.New(issue.TypeSensorTypeWrong, ids,
				fmt.Sprintf("Sensor '%s' has type '%s' (expected '%s').", sensor.ID, sensor.Type, want)))
		}
	}
	return issues
}
