package ecm

import (
	"fmt"
	"math/big"
)

// InverseNotFound is raised when an inversion attempt meets gcd(x,n) > 1.
// The nearest ECM engine recovers by computing gcd(X, N); a result strictly
// between 1 and N is the round's factor.
type InverseNotFound struct {
	X *big.Int
	N *big.Int
}

func newInverseNotFound(x, n *big.Int) *InverseNotFound {
	return &InverseNotFound{X: new(big.Int).Mod(x, n), N: new(big.Int).Set(n)}
}

func (e *InverseNotFound) Error() string {
	return fmt.Sprintf("ecm: inverse of %s (mod %s) not found", e.X, e.N)
}

// Factor returns gcd(X, N), the candidate factor this failure reveals.
func (e *InverseNotFound) Factor() *big.Int {
	return new(big.Int).GCD(nil, nil, e.X, e.N)
}

// CurveInitFail is raised by a parametrization rejecting its inputs; the
// curve-sampling loop recovers by drawing a new seed. When the rejection
// itself exposes a proper factor of the modulus (a discriminant sharing a
// factor with n, say), Factor carries it so the caller can short-circuit
// the search instead of redrawing.
type CurveInitFail struct {
	Reason string
	Factor *big.Int
}

func (e *CurveInitFail) Error() string {
	if e.Reason == "" {
		return "ecm: curve parametrization rejected"
	}
	return "ecm: curve parametrization rejected: " + e.Reason
}
