package checks

import (
	"fmt"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/horizon"
	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// HorizonOptions tunes the horizon check.
type HorizonOptions struct {
	// Inclination is the assumed maximum track grade in radians, added to the
	// camera pitch.
	Inclination float64
	// TolerancePercent shifts the horizon up by a share of its row.
	TolerancePercent float64
	// SkipUncalibrated skips cameras without extrinsics or intrinsics
	// instead of failing the check.
	SkipUncalibrated bool
}

// DefaultHorizonOptions assumes a grade of 1 m per 100 m.
func DefaultHorizonOptions() HorizonOptions {
	return HorizonOptions{Inclination: 0.01}
}

var horizonObjectTypes = map[string]bool{"track": true, "transition": true}

// Horizon reports track and transition polygons on cameras with a vertex
// above the camera's horizon. Only the first offending vertex of each
// annotation is reported. A camera that cannot produce a horizon fails the
// check with a configuration error unless opts.SkipUncalibrated is set.
func Horizon(s *scene.Scene, opts HorizonOptions) ([]issue.Issue, error) {
	lines := make(map[string]horizon.Func)
	var issues []issue.Issue

	for _, frame := range s.Frames {
		for _, a := range frame.Annotations {
			if a.Type != scene.AnnotationPoly2d {
				continue
			}
			sensor, ok := s.Sensor(a.SensorID)
			if !ok || sensor.Type != scene.SensorCamera {
				continue
			}
			obj, ok := s.Object(a.ObjectID)
			if !ok || !horizonObjectTypes[obj.Type] {
				continue
			}

			line, seen := lines[sensor.ID]
			if !seen {
				calc, err := horizon.NewCalculator(sensor)
				switch {
				case err == nil:
					line = horizon.Buffer(calc.Line(opts.Inclination), opts.TolerancePercent)
				case opts.SkipUncalibrated && errors.IsConfiguration(err):
					line = nil
				default:
					return nil, err
				}
				lines[sensor.ID] = line
			}
			if line == nil {
				continue
			}

			for _, p := range a.Points {
				if y := line(p.X); p.Y < y {
					issues = append(issues, issue.New(issue.TypeHorizonCrossed,
						annotationIDs(s, frame.ID, a),
						fmt.Sprintf("The point (%g, %g) is above the expected horizon line (%g < %g).",
							p.X, p.Y, p.Y, y)))
					break
				}
			}
		}
	}
	return issues, nil
}
