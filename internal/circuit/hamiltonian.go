package circuit

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/born-ml/qsim/internal/tensor"
)

// PauliString returns the tensor product of Pauli gates named by s, where s[q]
// is one of I, X, Y, Z for qubit q. Identity factors are omitted; the
// all-identity string yields I(0).
func PauliString(s string) (Operator, error) {
	var factors []Operator
	for q, ch := range strings.ToUpper(s) {
		switch ch {
		case 'I':
		case 'X':
			factors = append(factors, X(q))
		case 'Y':
			factors = append(factors, Y(q))
		case 'Z':
			factors = append(factors, Z(q))
		default:
			return nil, fmt.Errorf("%w: invalid Pauli string %q", ErrValidation, s)
		}
	}
	switch len(factors) {
	case 0:
		return I(0), nil
	case 1:
		return factors[0], nil
	default:
		return NewSequence(factors...), nil
	}
}

// RandomPauliHamiltonian returns sum_k c_k P_k over nTerms random Pauli
// strings on nQubits qubits with Gaussian coefficients c_k. Every term acts
// non-trivially on at least one qubit. The result is Hermitian.
func RandomPauliHamiltonian(nQubits, nTerms int, rng *rand.Rand) (*Add, error) {
	if nQubits < 1 || nTerms < 1 {
		return nil, fmt.Errorf("%w: random Hamiltonian with %d qubits and %d terms", ErrValidation, nQubits, nTerms)
	}
	const paulis = "IXYZ"
	terms := make([]Operator, 0, nTerms)
	for len(terms) < nTerms {
		var sb strings.Builder
		for q := 0; q < nQubits; q++ {
			sb.WriteByte(paulis[rng.Intn(len(paulis))])
		}
		s := sb.String()
		if strings.Count(s, "I") == nQubits {
			continue
		}
		op, err := PauliString(s)
		if err != nil {
			return nil, err
		}
		terms = append(terms, NewScale(op, Literal(rng.NormFloat64())))
	}
	return NewAdd(terms...), nil
}

// RandomHermitian returns a batch of random Hermitian matrices H = A + A†
// with Gaussian entries in A.
func RandomHermitian(nQubits, batch int, rng *rand.Rand) *tensor.Matrix {
	dim := 1 << nQubits
	size := dim * dim
	data := make([]complex128, size*batch)
	for b := 0; b < batch; b++ {
		a := make([]complex128, size)
		for i := range a {
			a[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				data[b*size+r*dim+c] = a[r*dim+c] + complex(real(a[c*dim+r]), -imag(a[c*dim+r]))
			}
		}
	}
	m, _ := tensor.NewMatrix(dim, batch, data)
	return m
}
