// Package scene holds the parsed annotation scene consumed by the checkers.
//
// A Scene is an arena: sensors, objects and frames are stored once and every
// cross-reference (annotation → sensor, annotation → object) is a lookup by
// id. Lookups report whether the id resolved; a dangling reference is never a
// panic. Frames are kept in ascending id order and annotations in declaration
// order so that every pass over a scene is reproducible.
package scene

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/railcheck/internal/errors"
)

// SensorType is the kind of a sensor.
type SensorType string

const (
	SensorCamera SensorType = "camera"
	SensorLidar  SensorType = "lidar"
	SensorRadar  SensorType = "radar"
	SensorGpsImu SensorType = "gps_imu"
)

// ParseSensorType converts a string to a SensorType constant.
func ParseSensorType(s string) (SensorType, error) {
	switch SensorType(s) {
	case SensorCamera, SensorLidar, SensorRadar, SensorGpsImu:
		return SensorType(s), nil
	}
	return "", errors.Newf("scene: unknown sensor type %q", s)
}

// AnnotationType is the geometric variant of an annotation.
type AnnotationType string

const (
	AnnotationBbox   AnnotationType = "Bbox"
	AnnotationCuboid AnnotationType = "Cuboid"
	AnnotationPoly2d AnnotationType = "Poly2d"
	AnnotationPoly3d AnnotationType = "Poly3d"
	AnnotationSeg3d  AnnotationType = "Seg3d"
	AnnotationNum    AnnotationType = "Num"
)

var annotationTypes = map[string]AnnotationType{
	"bbox":   AnnotationBbox,
	"cuboid": AnnotationCuboid,
	"poly2d": AnnotationPoly2d,
	"poly3d": AnnotationPoly3d,
	"seg3d":  AnnotationSeg3d,
	"num":    AnnotationNum,
}

// ParseAnnotationType normalizes the spelling of an annotation type
// ("poly2d", "Poly2d", " POLY2D ") to its constant.
func ParseAnnotationType(s string) (AnnotationType, error) {
	if t, ok := annotationTypes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", errors.Newf("scene: unknown annotation type %q", s)
}

// Point is an image (X, Y) or world (X, Y, Z) coordinate.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Quaternion is a rotation in x, y, z, w order.
type Quaternion struct {
	X, Y, Z, W float64
}

// Transform is a sensor pose relative to the vehicle frame.
type Transform struct {
	Position Point
	Rotation Quaternion
}

// IntrinsicsPinhole is the pinhole calibration of a camera. CameraMatrix is
// the 3×4 projection matrix in row-major order.
type IntrinsicsPinhole struct {
	CameraMatrix [12]float64
	Distortion   []float64
	Width        int
	Height       int
}

func (i IntrinsicsPinhole) Fx() float64 { return i.CameraMatrix[0] }
func (i IntrinsicsPinhole) Cx() float64 { return i.CameraMatrix[2] }
func (i IntrinsicsPinhole) Fy() float64 { return i.CameraMatrix[5] }
func (i IntrinsicsPinhole) Cy() float64 { return i.CameraMatrix[6] }

// Sensor is one recording device of a scene. Only cameras carry calibration.
type Sensor struct {
	ID         string
	Type       SensorType
	Extrinsics *Transform
	Intrinsics *IntrinsicsPinhole
}

// Object is one real-world entity tracked across frames.
type Object struct {
	ID   uuid.UUID
	Name string
	Type string
}

// Annotation is one labeled geometric instance of an object seen by a sensor.
// Attribute values are bool, float64, string, []string, []float64 or []any.
type Annotation struct {
	ID         uuid.UUID
	Type       AnnotationType
	SensorID   string
	ObjectID   uuid.UUID
	Attributes map[string]any
	Points     []Point
}

// Attribute returns the named attribute value and whether it is set.
func (a Annotation) Attribute(name string) (any, bool) {
	v, ok := a.Attributes[name]
	return v, ok
}

// AttributeNames returns the attribute names of a in sorted order.
func (a Annotation) AttributeNames() []string {
	names := make([]string, 0, len(a.Attributes))
	for name := range a.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Frame is one timestamped set of annotations.
type Frame struct {
	ID          int
	Annotations []Annotation
}

// Scene is one annotated recording session.
type Scene struct {
	Name    string
	Sensors []Sensor
	Objects []Object
	Frames  []Frame

	sensorIdx map[string]int
	objectIdx map[uuid.UUID]int
}

// New builds a Scene, indexing sensors and objects by id and sorting frames by
// id. Duplicate sensor, object, frame or annotation ids are rejected.
func New(name string, sensors []Sensor, objects []Object, frames []Frame) (*Scene, error) {
	s := &Scene{
		Name:      name,
		Sensors:   sensors,
		Objects:   objects,
		Frames:    append([]Frame(nil), frames...),
		sensorIdx: make(map[string]int, len(sensors)),
		objectIdx: make(map[uuid.UUID]int, len(objects)),
	}
	for i, sensor := range sensors {
		if _, dup := s.sensorIdx[sensor.ID]; dup {
			return nil, errors.Newf("scene: duplicate sensor %q", sensor.ID)
		}
		s.sensorIdx[sensor.ID] = i
	}
	for i, obj := range objects {
		if _, dup := s.objectIdx[obj.ID]; dup {
			return nil, errors.Newf("scene: duplicate object %s", obj.ID)
		}
		s.objectIdx[obj.ID] = i
	}
	sort.SliceStable(s.Frames, func(i, j int) bool { return s.Frames[i].ID < s.Frames[j].ID })
	seenAnno := make(map[uuid.UUID]bool)
	for i, f := range s.Frames {
		if i > 0 && s.Frames[i-1].ID == f.ID {
			return nil, errors.Newf("scene: duplicate frame %d", f.ID)
		}
		for _, a := range f.Annotations {
			if seenAnno[a.ID] {
				return nil, errors.Newf("scene: frame %d: duplicate annotation %s", f.ID, a.ID)
			}
			seenAnno[a.ID] = true
		}
		// Annotation ids are unique per frame only.
		clear(seenAnno)
	}
	return s, nil
}

// Sensor looks up a sensor by id.
func (s *Scene) Sensor(id string) (Sensor, bool) {
	i, ok := s.sensorIdx[id]
	if !ok {
		return Sensor{}, false
	}
	return s.Sensors[i], true
}

// Object looks up an object by id.
func (s *Scene) Object(id uuid.UUID) (Object, bool) {
	i, ok := s.objectIdx[id]
	if !ok {
		return Object{}, false
	}
	return s.Objects[i], true
}

// SensorsOfType returns the sensors of kind t in declaration order.
func (s *Scene) SensorsOfType(t SensorType) []Sensor {
	var out []Sensor
	for _, sensor := range s.Sensors {
		if sensor.Type == t {
			out = append(out, sensor)
		}
	}
	return out
}
