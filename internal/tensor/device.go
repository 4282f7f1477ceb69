package tensor

import "math"

// Device represents a compute device.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// Precision selects the floating point width used to store amplitudes and
// operator matrices. Arithmetic always runs in complex128; Complex64 values are
// rounded to single precision at storage boundaries.
type Precision int

// Supported precisions.
const (
	Complex128 Precision = iota
	Complex64
)

// String returns the precision name.
func (p Precision) String() string {
	switch p {
	case Complex128:
		return "complex128"
	case Complex64:
		return "complex64"
	default:
		return "unknown"
	}
}

// RealTolerance returns the absolute tolerance that is meaningful for values
// stored at this precision.
func (p Precision) RealTolerance() float64 {
	if p == Complex64 {
		return 1e-5
	}
	return 1e-10
}

// round converts v to the storage precision.
func (p Precision) round(v complex128) complex128 {
	if p == Complex64 {
		return complex128(complex64(v))
	}
	return v
}

// closeTo reports whether a and b are equal within atol + rtol*|b|.
func closeTo(a, b complex128, rtol, atol float64) bool {
	diff := a - b
	return math.Hypot(real(diff), imag(diff)) <= atol+rtol*math.Hypot(real(b), imag(b))
}
