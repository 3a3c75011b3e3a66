package checks

import (
	"strings"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// EmptyFrames reports, per frame, every sensor that must be annotated but has
// no annotation in that frame. Middle/center cameras and all lidars must be
// annotated; side cameras, radars and GPS/IMU units are exempt.
func EmptyFrames(s *scene.Scene) []issue.Issue {
	required := requiredSensors(s)
	var issues []issue.Issue
	for _, frame := range s.Frames {
		annotated := make(map[string]bool)
		for _, a := range frame.Annotations {
			annotated[a.SensorID] = true
		}
		for _, id := range required {
			if annotated[id] {
				continue
			}
			issues = append(issues, issue.New(issue.TypeEmptyFrames,
				issue.Identifiers{Frame: issue.Frame(frame.ID), Sensor: id},
				"There are no annotations in this sensor frame."))
		}
	}
	return issues
}

// requiredSensors matches "_middle"/"_center" with the underscore, unlike
// isCenterCamera; "rgb_center" qualifies and "center" alone does not.
func requiredSensors(s *scene.Scene) []string {
	var ids []string
	for _, sensor := range s.Sensors {
		switch sensor.Type {
		case scene.SensorCamera:
			if strings.Contains(sensor.ID, "_middle") || strings.Contains(sensor.ID, "_center") {
				ids = append(ids, sensor.ID)
			}
		case scene.SensorLidar:
			ids = append(ids, sensor.ID)
		}
	}
	return ids
}
