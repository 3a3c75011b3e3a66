package checks

import (
	"fmt"
	"strings"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// allowedAnnotationTypes lists the geometry each sensor kind can produce.
// Sensor kinds without an entry accept anything.
var allowedAnnotationTypes = map[scene.SensorType][]scene.AnnotationType{
	scene.SensorCamera: {scene.AnnotationBbox, scene.AnnotationPoly2d},
	scene.SensorLidar:  {scene.AnnotationCuboid, scene.AnnotationPoly3d, scene.AnnotationSeg3d},
	scene.SensorRadar:  {scene.AnnotationBbox, scene.AnnotationCuboid},
}

// AnnotationSensorMismatch reports annotations whose type cannot be produced
// by their sensor's kind. Annotations bound to a sensor that is not in the
// scene are skipped.
func AnnotationSensorMismatch(s *scene.Scene) []issue.Issue {
	var issues []issue.Issue
	for _, frame := range s.Frames {
		for _, a := range frame.Annotations {
			sensor, ok := s.Sensor(a.SensorID)
			if !ok {
				continue
			}
			allowed, ok := allowedAnnotationTypes[sensor.Type]
			if !ok || containsType(allowed, a.Type) {
				continue
			}
			issues = append(issues, issue.New(issue.TypeAnnotationSensorMismatch,
				issue.Identifiers{
					Frame:          issue.Frame(frame.ID),
					Sensor:         a.SensorID,
					Annotation:     a.ID,
					AnnotationType: string(a.Type),
				},
				fmt.Sprintf("Annotation type '%s' not allowed for sensor type '%s'. Allowed types: %s.",
					a.Type, sensor.Type, joinTypes(allowed)),
			))
		}
	}
	return issues
}

func containsType(types []scene.AnnotationType, t scene.AnnotationType) bool {
	for _, at := range types {
		if at == t {
			return true
		}
	}
	return false
}

func joinTypes(types []scene.AnnotationType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
