package shade

// Derivatives are screen-space partial derivatives of the varyings, taken
// across the fragment's 2x2 quad.
type Derivatives struct {
	DX Varyings // change per pixel step in +x
	DY Varyings // change per pixel step in +y
}

// Fwidth returns |DX| + |DY| per component.
func (d Derivatives) Fwidth() Varyings {
	return d.DX.Abs().Add(d.DY.Abs())
}

// QuadDerivatives computes coarse derivatives from the interpolated varyings
// of one 2x2 quad, laid out as
//
//	q[0] q[1]
//	q[2] q[3]
//
// Every fragment in the quad shares the result. The execution engine must
// evaluate all four lanes, including lanes outside the triangle.
func QuadDerivatives(q [4]Varyings) Derivatives {
	return Derivatives{
		DX: q[1].Sub(q[0]),
		DY: q[2].Sub(q[0]),
	}
}

// Fragment is the interpolated view of a triangle at one pixel.
type Fragment struct {
	Varyings
	Derivatives
	// X and Y are the pixel coordinates.
	X, Y int
	// FrontFacing reports whether the triangle winds counter-clockwise on
	// screen.
	FrontFacing bool
}
