// Package checks implements the independent scene validation passes.
//
// Every checker is a pure function of a scene (and its own parameters): it
// never modifies the scene, holds no state between calls, and returns its
// findings in scene order (frame order, then annotation declaration order).
// Any subset of checkers may run, in any order or concurrently.
//
// Several checkers infer a sensor's role from its id. Ids containing
// "center" or "middle" name the forward-facing cameras; "left" and "right"
// name side cameras. This naming is part of the data contract.
package checks

import (
	"strings"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// annotationIDs returns the identifiers shared by annotation-level findings.
func annotationIDs(s *scene.Scene, frame int, a scene.Annotation) issue.Identifiers {
	ids := issue.Identifiers{
		Frame:      issue.Frame(frame),
		Sensor:     a.SensorID,
		Object:     a.ObjectID,
		Annotation: a.ID,
	}
	if obj, ok := s.Object(a.ObjectID); ok {
		ids.ObjectType = obj.Type
	}
	return ids
}

// isCenterCamera reports whether a camera id names a forward-facing camera.
func isCenterCamera(id string) bool {
	return strings.Contains(id, "center") || strings.Contains(id, "middle")
}
