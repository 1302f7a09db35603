package ecm

// Brent-Suyama continuation: instead of computing Q*p for every prime p
// in Stage 2's window from scratch, walk an arithmetic progression
// a, a+d, a+2d, ... through the fixed degree-6 polynomial
// P(x) = x^6 + 6x^4 + 9x^2 + 2 (chosen because gcd(P(a)-P(b), ...) tends
// to expose more factors per step than a+b or a-b alone) and advance a
// forward-difference table instead of re-evaluating P or re-multiplying Q
// at every step. Since scalar multiplication by a fixed point Q is a group
// homomorphism from Z to the curve, the finite-difference identity
// Δ^j(Q·P)(a) = Q·(Δ^j P)(a) lets the same difference-table trick run
// directly on EC points: build the table once with a handful of scalar
// multiplications, then advance it with only point additions.

import "math/big"

const brentSuyamaDegree = 6

// ApplyPolynomial evaluates P(x) = x^6 + 6x^4 + 9x^2 + 2 (mod n).
func ApplyPolynomial(x, n *big.Int) *big.Int {
	x2 := new(big.Int).Mul(x, x)
	x2.Mod(x2, n)
	x4 := new(big.Int).Mul(x2, x2)
	x4.Mod(x4, n)
	x6 := new(big.Int).Mul(x4, x2)
	x6.Mod(x6, n)

	res := new(big.Int).Set(x6)
	term := new(big.Int).Mul(x4, big.NewInt(6))
	res.Add(res, term)
	term.Mul(x2, big.NewInt(9))
	res.Add(res, term)
	res.Add(res, two)
	return res.Mod(res, n)
}

// GetDifferenceSeq returns the forward-difference table
// [P(a), ΔP(a), Δ²P(a), ..., Δ⁶P(a)] for step size d, seeded from the
// brentSuyamaDegree+1 raw evaluations P(a), P(a+d), ..., P(a+6d).
func GetDifferenceSeq(a, d, n *big.Int) []*big.Int {
	vals := make([]*big.Int, brentSuyamaDegree+1)
	x := new(big.Int).Set(a)
	for i := range vals {
		vals[i] = ApplyPolynomial(x, n)
		x = new(big.Int).Add(x, d)
	}
	for level := 1; level <= brentSuyamaDegree; level++ {
		for i := brentSuyamaDegree; i >= level; i-- {
			diff := new(big.Int).Sub(vals[i], vals[i-1])
			vals[i] = diff.Mod(diff, n)
		}
	}
	return vals[:brentSuyamaDegree+1]
}

// StepDifferenceSeq advances a forward-difference table by one position
// along the progression, returning the new table in a fresh slice (seq
// itself is left unchanged). seq[0] is the
// new evaluation point's polynomial value; the constant top entry
// (seq[brentSuyamaDegree]) never changes since P has degree
// brentSuyamaDegree.
func StepDifferenceSeq(seq []*big.Int, n *big.Int) []*big.Int {
	next := make([]*big.Int, len(seq))
	copy(next, seq)
	for i := 0; i < len(next)-1; i++ {
		s := new(big.Int).Add(next[i], next[i+1])
		next[i] = s.Mod(s, n)
	}
	return next
}

// GetDifferenceSeqPoints builds the EC-point analogue of GetDifferenceSeq:
// Q scaled by each entry of P's forward-difference table at a, step d.
func GetDifferenceSeqPoints(curve *WeierstrassCurve, q Point, a, d *big.Int) ([]Point, error) {
	n := curve.N
	scalars := make([]*big.Int, brentSuyamaDegree+1)
	x := new(big.Int).Set(a)
	for i := range scalars {
		scalars[i] = ApplyPolynomial(x, n)
		x = new(big.Int).Add(x, d)
	}

	// Each scalars[i] is independent but shares the same base point q, so
	// this is exactly the multi-scalar, single-point case MulPtMulti
	// batches: one shared InvMulti call per double-and-add round across
	// all brentSuyamaDegree+1 scalars instead of each seed point paying
	// for its own MulExn.
	pts, err := MulPtMulti(q, curve, scalars)
	if err != nil {
		return nil, err
	}

	for level := 1; level <= brentSuyamaDegree; level++ {
		for i := brentSuyamaDegree; i >= level; i-- {
			neg := Point{X: pts[i-1].X, Y: negMod(pts[i-1].Y, n)}
			diff, err := curve.AddExn(pts[i], neg)
			if err != nil {
				return nil, err
			}
			pts[i] = diff
		}
	}
	return pts[:brentSuyamaDegree+1], nil
}

// StepDifferenceSeqPoints advances an EC-point forward-difference table by
// one position, using ordinary point addition at each level.
func StepDifferenceSeqPoints(curve *WeierstrassCurve, pts []Point) ([]Point, error) {
	next := make([]Point, len(pts))
	copy(next, pts)
	for i := 0; i < len(next)-1; i++ {
		s, err := curve.AddExn(next[i], next[i+1])
		if err != nil {
			return nil, err
		}
		next[i] = s
	}
	return next, nil
}

func negMod(y, n *big.Int) *big.Int {
	if y.Sign() == 0 {
		return big.NewInt(0)
	}
	r := new(big.Int).Sub(n, y)
	return r.Mod(r, n)
}
