package circuit

import (
	"math"
	"math/cmplx"
)

// parametric creates a gate whose target matrix depends on params. derivs[i]
// is the derivative of block with respect to params[i].
func parametric(name string, targets []int, params []Param, block kernel, derivs ...kernel) *Primitive {
	return &Primitive{
		name:    name,
		targets: targets,
		params:  params,
		block:   block,
		derivs:  derivs,
		unitary: true,
		err:     checkSupport(name, targets),
	}
}

func halfAngle(theta float64) (c, s complex128) {
	return complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
}

func rxMatrix(p []float64) []complex128 {
	c, s := halfAngle(p[0])
	return []complex128{c, -1i * s, -1i * s, c}
}

func rxDeriv(p []float64) []complex128 {
	c, s := halfAngle(p[0])
	return []complex128{-s / 2, -1i * c / 2, -1i * c / 2, -s / 2}
}

func ryMatrix(p []float64) []complex128 {
	c, s := halfAngle(p[0])
	return []complex128{c, -s, s, c}
}

func ryDeriv(p []float64) []complex128 {
	c, s := halfAngle(p[0])
	return []complex128{-s / 2, -c / 2, c / 2, -s / 2}
}

func rzMatrix(p []float64) []complex128 {
	e := cmplx.Exp(complex(0, -p[0]/2))
	return []complex128{e, 0, 0, cmplx.Conj(e)}
}

func rzDeriv(p []float64) []complex128 {
	e := cmplx.Exp(complex(0, -p[0]/2))
	return []complex128{-0.5i * e, 0, 0, 0.5i * cmplx.Conj(e)}
}

func phaseMatrix(p []float64) []complex128 {
	return []complex128{1, 0, 0, cmplx.Exp(complex(0, p[0]))}
}

func phaseDeriv(p []float64) []complex128 {
	return []complex128{0, 0, 0, 1i * cmplx.Exp(complex(0, p[0]))}
}

// RX rotates about the X axis: exp(-i theta X / 2).
func RX(q int, theta Param) *Primitive {
	return parametric("RX", []int{q}, []Param{theta}, rxMatrix, rxDeriv)
}

// RY rotates about the Y axis: exp(-i theta Y / 2).
func RY(q int, theta Param) *Primitive {
	return parametric("RY", []int{q}, []Param{theta}, ryMatrix, ryDeriv)
}

// RZ rotates about the Z axis: exp(-i theta Z / 2).
func RZ(q int, theta Param) *Primitive {
	return parametric("RZ", []int{q}, []Param{theta}, rzMatrix, rzDeriv)
}

// PHASE applies diag(1, exp(i theta)).
func PHASE(q int, theta Param) *Primitive {
	return parametric("PHASE", []int{q}, []Param{theta}, phaseMatrix, phaseDeriv)
}

// U is the general single-qubit rotation RZ(omega) RY(theta) RZ(phi).
func U(q int, phi, theta, omega Param) *Primitive {
	// Entries share the phases exp(-+i(phi+omega)/2) and exp(-+i(phi-omega)/2).
	entries := func(p []float64) (plus, minus complex128, c, s float64) {
		plus = cmplx.Exp(complex(0, -(p[0]+p[2])/2))
		minus = cmplx.Exp(complex(0, (p[0]-p[2])/2))
		return plus, minus, math.Cos(p[1] / 2), math.Sin(p[1] / 2)
	}
	block := func(p []float64) []complex128 {
		plus, minus, c, s := entries(p)
		return []complex128{
			plus * complex(c, 0), -minus * complex(s, 0),
			cmplx.Conj(minus) * complex(s, 0), cmplx.Conj(plus) * complex(c, 0),
		}
	}
	dPhi := func(p []float64) []complex128 {
		m := block(p)
		return []complex128{-0.5i * m[0], 0.5i * m[1], -0.5i * m[2], 0.5i * m[3]}
	}
	dTheta := func(p []float64) []complex128 {
		plus, minus, c, s := entries(p)
		return []complex128{
			-plus * complex(s/2, 0), -minus * complex(c/2, 0),
			cmplx.Conj(minus) * complex(c/2, 0), -cmplx.Conj(plus) * complex(s/2, 0),
		}
	}
	dOmega := func(p []float64) []complex128 {
		m := block(p)
		return []complex128{-0.5i * m[0], -0.5i * m[1], 0.5i * m[2], 0.5i * m[3]}
	}
	return parametric("U", []int{q}, []Param{phi, theta, omega}, block, dPhi, dTheta, dOmega)
}

// CRX applies RX(theta) to target when control is 1.
func CRX(control, target int, theta Param) *Primitive {
	return controlled("CRX", RX(target, theta), control)
}

// CRY applies RY(theta) to target when control is 1.
func CRY(control, target int, theta Param) *Primitive {
	return controlled("CRY", RY(target, theta), control)
}

// CRZ applies RZ(theta) to target when control is 1.
func CRZ(control, target int, theta Param) *Primitive {
	return controlled("CRZ", RZ(target, theta), control)
}

// CPHASE applies PHASE(theta) to target when control is 1.
func CPHASE(control, target int, theta Param) *Primitive {
	return controlled("CPHASE", PHASE(target, theta), control)
}
