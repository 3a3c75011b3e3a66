package checks

import (
	"fmt"
	"math"

	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// Legacy exports mark the ego track by a track id attribute instead of
// isEgoTrack; these are the keys and values that mean "ego track".
var (
	legacyTrackIDKeys = []string{"trackID", "trackId", "TrackID", "onTrack"}
	legacyEgoValues   = []any{0.0, "0", "ego_track"}
)

// EgoTrackBothRails checks, for every center camera and frame, that the left
// and right rails of the ego track line up: their Y extents must overlap,
// and at the lower of the two maximum Y values exactly one left and one right
// rail must cross that row. Frames with rails on only one side are not
// reported.
func EgoTrackBothRails(s *scene.Scene) []issue.Issue {
	var cameras []string
	for _, sensor := range s.SensorsOfType(scene.SensorCamera) {
		if isCenterCamera(sensor.ID) {
			cameras = append(cameras, sensor.ID)
		}
	}
	if len(cameras) == 0 {
		return nil
	}

	var issues []issue.Issue
	for _, frame := range s.Frames {
		for _, cam := range cameras {
			left, right := egoRails(s, frame, cam)
			if i, ok := checkRails(frame.ID, cam, left, right); ok {
				issues = append(issues, i)
			}
		}
	}
	return issues
}

func egoRails(s *scene.Scene, frame scene.Frame, cam string) (left, right []scene.Annotation) {
	for _, a := range frame.Annotations {
		if a.SensorID != cam || a.Type != scene.AnnotationPoly2d || !isEgoTrack(s, a) {
			continue
		}
		switch side, _ := a.Attribute("railSide"); side {
		case "leftRail":
			left = append(left, a)
		case "rightRail":
			right = append(right, a)
		}
	}
	return left, right
}

func checkRails(frame int, cam string, left, right []scene.Annotation) (issue.Issue, bool) {
	if len(left) == 0 || len(right) == 0 {
		return issue.Issue{}, false
	}
	leftMin, leftMax, okL := yRange(left)
	rightMin, rightMax, okR := yRange(right)
	if !okL || !okR {
		return issue.Issue{}, false
	}

	if leftMin > rightMax || rightMin > leftMax {
		return issue.New(issue.TypeEgoTrackBothRails,
			issue.Identifiers{Frame: issue.Frame(frame), Sensor: cam},
			fmt.Sprintf("Ego track rails for sensor %s don't have overlapping y ranges. "+
				"Left: (%.1f to %.1f), right: (%.1f to %.1f).",
				cam, leftMin, leftMax, rightMin, rightMax)), true
	}

	commonY := math.Min(leftMax, rightMax)
	nLeft, nRight := crossing(left, commonY), crossing(right, commonY)
	if nLeft == 1 && nRight == 1 {
		return issue.Issue{}, false
	}
	return issue.New(issue.TypeEgoTrackBothRails,
		issue.Identifiers{Frame: issue.Frame(frame), Sensor: cam, Attribute: "railSide"},
		fmt.Sprintf("For sensor %s, not exactly 2 ego track rails at y=%.1f. "+
			"Found %d left rail(s) and %d right rail(s).",
			cam, commonY, nLeft, nRight)), true
}

// crossing counts the rails whose Y extent contains y.
func crossing(rails []scene.Annotation, y float64) int {
	n := 0
	for _, r := range rails {
		if lo, hi, ok := yRange([]scene.Annotation{r}); ok && lo <= y && y <= hi {
			n++
		}
	}
	return n
}

func yRange(rails []scene.Annotation) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range rails {
		for _, p := range r.Points {
			lo = math.Min(lo, p.Y)
			hi = math.Max(hi, p.Y)
			ok = true
		}
	}
	return lo, hi, ok
}

func isEgoTrack(s *scene.Scene, a scene.Annotation) bool {
	if _, ok := s.Object(a.ObjectID); !ok {
		return false
	}
	if v, ok := a.Attribute("isEgoTrack"); ok {
		return truthy(v)
	}
	for _, key := range legacyTrackIDKeys {
		v, ok := a.Attribute(key)
		if !ok {
			continue
		}
		for _, ego := range legacyEgoValues {
			if v == ego {
				return true
			}
		}
	}
	return false
}

// truthy follows the usual truth test of decoded JSON values: false, zero,
// the empty string, empty lists and null are false. Any other string,
// including "false" or "0", is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []string:
		return len(x) > 0
	case []float64:
		return len(x) > 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}
