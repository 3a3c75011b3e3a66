// Package horizon derives the image row above which ground-level features of
// a camera image cannot project.
//
// The camera is assumed to have zero roll, so the horizon is a horizontal
// line: its row depends only on the camera pitch and the vertical pinhole
// parameters. Pitch close to ±90° makes tan diverge; such cameras are not
// special-cased and yield a horizon far outside the image.
package horizon

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/scene"
)

// Func maps an image X coordinate to the horizon Y coordinate.
type Func func(x float64) float64

// Calculator holds the pitch and vertical intrinsics of one camera.
type Calculator struct {
	sensorID string
	fy       float64
	cy       float64
	// pitch is the optical axis tilt below horizontal, in radians.
	pitch float64
}

// NewCalculator returns a calculator for cam. It fails with a configuration
// error when cam lacks extrinsics or pinhole intrinsics.
func NewCalculator(cam scene.Sensor) (*Calculator, error) {
	if cam.Extrinsics == nil {
		return nil, errors.Configurationf("horizon: camera %q: extrinsics required", cam.ID)
	}
	if cam.Intrinsics == nil {
		return nil, errors.Configurationf("horizon: camera %q: intrinsics required", cam.ID)
	}

	r := cam.Extrinsics.Rotation
	q := quat.Number{Real: r.W, Imag: r.X, Jmag: r.Y, Kmag: r.Z}
	n := quat.Abs(q)
	if n == 0 {
		return nil, errors.Configurationf("horizon: camera %q: rotation quaternion is zero", cam.ID)
	}
	rot := RotationMatrix(quat.Scale(1/n, q))

	// Optical axis (camera +Z) in world coordinates.
	var forward mat.VecDense
	forward.MulVec(rot.T(), mat.NewVecDense(3, []float64{0, 0, 1}))

	return &Calculator{
		sensorID: cam.ID,
		fy:       cam.Intrinsics.Fy(),
		cy:       cam.Intrinsics.Cy(),
		pitch:    math.Asin(-forward.AtVec(2)),
	}, nil
}

// RotationMatrix returns the 3×3 rotation matrix of the unit quaternion q.
func RotationMatrix(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

// PitchDegrees returns the camera pitch in degrees; positive looks downward.
func (c *Calculator) PitchDegrees() float64 {
	return c.pitch * 180 / math.Pi
}

// Y returns the horizon row for an additional inclination in radians.
// Positive inclination moves the horizon up, widening the tolerance for
// uphill track.
func (c *Calculator) Y(inclination float64) float64 {
	return c.cy - math.Tan(c.pitch+inclination)*c.fy
}

// Line returns the horizon as a function of X. The X argument is ignored.
func (c *Calculator) Line(inclination float64) Func {
	y := c.Y(inclination)
	return func(float64) float64 { return y }
}

// Buffer shifts a horizon line upward by tolerancePercent of its row.
func Buffer(f Func, tolerancePercent float64) Func {
	if tolerancePercent == 0 {
		return f
	}
	factor := 1 - tolerancePercent/100
	return func(x float64) float64 { return f(x) * factor }
}
