package gpu

import "math"

// Mat4 is a column-major 4x4 matrix, laid out as OpenGL expects it.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Scale returns a matrix scaling x and y.
func Scale(sx, sy float32) Mat4 {
	m := Identity()
	m[0] = sx
	m[5] = sy
	return m
}

// RotateZ returns a counter-clockwise rotation about the Z axis. Multiples of
// 90 degrees are exact.
func RotateZ(degrees int) Mat4 {
	var c, s float32
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		c, s = 1, 0
	case 90:
		c, s = 0, 1
	case 180:
		c, s = -1, 0
	case 270:
		c, s = 0, -1
	default:
		sin, cos := math.Sincos(float64(degrees) * math.Pi / 180)
		c, s = float32(cos), float32(sin)
	}
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// Mul returns m*n, so n is applied to a vertex first.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * n[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Apply transforms the point (x, y, 0, 1) and returns x and y.
func (m Mat4) Apply(x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

// Inverse2D inverts the xy part of an affine matrix. ok is false when the
// matrix is singular.
func (m Mat4) Inverse2D() (inv Mat4, ok bool) {
	a, b := m[0], m[4]
	c, d := m[1], m[5]
	tx, ty := m[12], m[13]

	det := a*d - b*c
	if det == 0 {
		return Mat4{}, false
	}
	ia, ib := d/det, -b/det
	ic, id := -c/det, a/det

	inv = Identity()
	inv[0], inv[4] = ia, ib
	inv[1], inv[5] = ic, id
	inv[12] = -(ia*tx + ib*ty)
	inv[13] = -(ic*tx + id*ty)
	return inv, true
}
