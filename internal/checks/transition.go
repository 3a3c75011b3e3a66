package checks

import (
	"fmt"
	"reflect"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// TransitionEndpoints reports transition annotations whose startTrack and
// endTrack attributes are both set and equal. A transition missing either
// attribute is not reported.
func TransitionEndpoints(s *scene.Scene) []issue.Issue {
	var issues []issue.Issue
	for _, frame := range s.Frames {
		for _, a := range frame.Annotations {
			obj, ok := s.Object(a.ObjectID)
			if !ok || obj.Type != "transition" {
				continue
			}
			start, hasStart := a.Attribute("startTrack")
			end, hasEnd := a.Attribute("endTrack")
			if !hasStart || !hasEnd || start == nil || !reflect.DeepEqual(start, end) {
				continue
			}
			issues = append(issues, issue.New(issue.TypeTransitionIdenticalStartEnd,
				issue.Identifiers{
					Frame:      issue.Frame(frame.ID),
					Sensor:     a.SensorID,
					Object:     a.ObjectID,
					Annotation: a.ID,
					Attribute:  "startTrack",
				},
				fmt.Sprintf("This transition's startTrack and endTrack are identical: %v.", start)))
		}
	}
	return issues
}
