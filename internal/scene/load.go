package scene

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/railcheck/internal/errors"
)

// document is the on-disk JSON shape of a scene. Arrays preserve the
// declaration order that checkers rely on.
type document struct {
	Sensors []sensorDoc `json:"sensors"`
	Objects []objectDoc `json:"objects"`
	Frames  []frameDoc  `json:"frames"`
}

type sensorDoc struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Extrinsics *extrinsicsDoc `json:"extrinsics,omitempty"`
	Intrinsics *intrinsicsDoc `json:"intrinsics,omitempty"`
}

type extrinsicsDoc struct {
	Position [3]float64 `json:"position"`
	// Quaternion in x, y, z, w order.
	Rotation [4]float64 `json:"rotation"`
}

type intrinsicsDoc struct {
	CameraMatrix []float64 `json:"camera_matrix"`
	Distortion   []float64 `json:"distortion"`
	Width        int       `json:"width_px"`
	Height       int       `json:"height_px"`
}

type objectDoc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type frameDoc struct {
	ID          int             `json:"id"`
	Annotations []annotationDoc `json:"annotations"`
}

type annotationDoc struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Sensor     string         `json:"sensor"`
	Object     string         `json:"object"`
	Attributes map[string]any `json:"attributes"`
	Points     [][]float64    `json:"points"`
}

// LoadFile reads and parses the scene at path. The scene is named after the
// file's base name.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "scene: open %s", path)
	}
	defer f.Close()

	s, err := Load(f, filepath.Base(path))
	if err != nil {
		return nil, errors.Wrapf(err, "scene: %s", path)
	}
	return s, nil
}

// Load parses a scene document from r.
func Load(r io.Reader, name string) (*Scene, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	sensors := make([]Sensor, 0, len(doc.Sensors))
	for _, sd := range doc.Sensors {
		sensor, err := sd.toSensor()
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}

	objects := make([]Object, 0, len(doc.Objects))
	for _, od := range doc.Objects {
		id, err := uuid.Parse(od.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "object %q", od.ID)
		}
		objects = append(objects, Object{ID: id, Name: od.Name, Type: od.Type})
	}

	frames := make([]Frame, 0, len(doc.Frames))
	for _, fd := range doc.Frames {
		frame := Frame{ID: fd.ID, Annotations: make([]Annotation, 0, len(fd.Annotations))}
		for _, ad := range fd.Annotations {
			a, err := ad.toAnnotation()
			if err != nil {
				return nil, errors.Wrapf(err, "frame %d", fd.ID)
			}
			frame.Annotations = append(frame.Annotations, a)
		}
		frames = append(frames, frame)
	}

	return New(name, sensors, objects, frames)
}

func (sd sensorDoc) toSensor() (Sensor, error) {
	typ, err := ParseSensorType(strings.ToLower(sd.Type))
	if err != nil {
		return Sensor{}, errors.Wrapf(err, "sensor %q", sd.ID)
	}
	sensor := Sensor{ID: sd.ID, Type: typ}
	if sd.Extrinsics != nil {
		p, q := sd.Extrinsics.Position, sd.Extrinsics.Rotation
		sensor.Extrinsics = &Transform{
			Position: Point{X: p[0], Y: p[1], Z: p[2]},
			Rotation: Quaternion{X: q[0], Y: q[1], Z: q[2], W: q[3]},
		}
	}
	if sd.Intrinsics != nil {
		if len(sd.Intrinsics.CameraMatrix) != 12 {
			return Sensor{}, errors.Newf("sensor %q: camera_matrix has %d elements, want 12",
				sd.ID, len(sd.Intrinsics.CameraMatrix))
		}
		in := &IntrinsicsPinhole{
			Distortion: sd.Intrinsics.Distortion,
			Width:      sd.Intrinsics.Width,
			Height:     sd.Intrinsics.Height,
		}
		copy(in.CameraMatrix[:], sd.Intrinsics.CameraMatrix)
		sensor.Intrinsics = in
	}
	return sensor, nil
}

func (ad annotationDoc) toAnnotation() (Annotation, error) {
	id, err := uuid.Parse(ad.ID)
	if err != nil {
		return Annotation{}, errors.Wrapf(err, "annotation %q", ad.ID)
	}
	typ, err := ParseAnnotationType(ad.Type)
	if err != nil {
		return Annotation{}, errors.Wrapf(err, "annotation %s", id)
	}
	objID, err := uuid.Parse(ad.Object)
	if err != nil {
		return Annotation{}, errors.Wrapf(err, "annotation %s: object %q", id, ad.Object)
	}

	a := Annotation{
		ID:         id,
		Type:       typ,
		SensorID:   ad.Sensor,
		ObjectID:   objID,
		Attributes: make(map[string]any, len(ad.Attributes)),
	}
	for name, v := range ad.Attributes {
		a.Attributes[name] = normalizeValue(v)
	}
	for i, p := range ad.Points {
		switch len(p) {
		case 2:
			a.Points = append(a.Points, Point{X: p[0], Y: p[1]})
		case 3:
			a.Points = append(a.Points, Point{X: p[0], Y: p[1], Z: p[2]})
		default:
			return Annotation{}, errors.Newf("annotation %s: point %d has %d coordinates", id, i, len(p))
		}
	}
	return a, nil
}

// normalizeValue narrows homogeneous JSON lists to []string or []float64.
// Mixed lists stay []any so type checks can report them.
func normalizeValue(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	if len(list) == 0 {
		return []string{}
	}
	switch list[0].(type) {
	case string:
		out := make([]string, 0, len(list))
		for _, e := range list {
			s, ok := e.(string)
			if !ok {
				return list
			}
			out = append(out, s)
		}
		return out
	case float64:
		out := make([]float64, 0, len(list))
		for _, e := range list {
			f, ok := e.(float64)
			if !ok {
				return list
			}
			out = append(out, f)
		}
		return out
	}
	return list
}
