package ecm

// This file operates on short Weierstrass curves y^2 = x^3 + a*x + b over
// Z/n, where n is the composite integer being factored rather than a
// prime field. Every division that would be silent under crypto/elliptic's
// ModInverse (which returns 0 on a non-invertible input) instead surfaces
// as *InverseNotFound — that failure is not an error condition for ECM, it
// is the factor the whole algorithm is looking for.

import "math/big"

// Point is an affine point on a WeierstrassCurve. The point at infinity is
// represented as (0,0), matching the convention used throughout this
// package: (0,0) never lies on a curve with nonzero b mod n.
type Point struct {
	X, Y *big.Int
}

// Infinity is the identity element of the curve group.
var Infinity = Point{X: big.NewInt(0), Y: big.NewInt(0)}

func (p Point) isInfinity() bool { return p.X.Sign() == 0 && p.Y.Sign() == 0 }

// WeierstrassCurve is y^2 = x^3 + A*x + B over Z/N.
type WeierstrassCurve struct {
	A, B, N *big.Int
}

// discriminant returns 4A^3 + 27B^2 mod n, whose invertibility mod n is
// the curve's non-singularity condition.
func (c *WeierstrassCurve) discriminant() *big.Int {
	a3 := new(big.Int).Exp(c.A, threeInt, nil)
	a3.Mul(a3, big.NewInt(4))
	b2 := new(big.Int).Mul(c.B, c.B)
	b2.Mul(b2, big.NewInt(27))
	d := new(big.Int).Add(a3, b2)
	return d.Mod(d, c.N)
}

// RandomWeierstrassCurve draws a uniformly random point (x0,y0) and slope
// parameter a in [0,n), then solves b = y0^2 - x0^3 - a*x0 mod n so that
// (x0,y0) lies on the resulting curve by construction. It fails with
// *CurveInitFail if the discriminant is not invertible mod n; when the
// discriminant's gcd with n is a proper factor, that factor is attached to
// the error so the caller can short-circuit the search instead of retrying.
func RandomWeierstrassCurve(n *big.Int, randInt func(max *big.Int) *big.Int) (*WeierstrassCurve, Point, error) {
	x0 := randInt(n)
	y0 := randInt(n)
	a := randInt(n)

	x03 := new(big.Int).Exp(x0, threeInt, nil)
	ax0 := new(big.Int).Mul(a, x0)
	b := new(big.Int).Mul(y0, y0)
	b.Sub(b, x03)
	b.Sub(b, ax0)
	b.Mod(b, n)

	curve := &WeierstrassCurve{A: a, B: b, N: n}
	delta := curve.discriminant()
	g := Gcd(delta, n)
	switch {
	case g.Cmp(n) == 0:
		return nil, Point{}, &CurveInitFail{Reason: "singular curve (discriminant ≡ 0)"}
	case g.Cmp(one) > 0:
		return nil, Point{}, &CurveInitFail{Reason: "discriminant shares a factor with n: " + g.String(), Factor: g}
	}
	return curve, Point{X: x0, Y: y0}, nil
}

// AddExn returns P+Q, failing with *InverseNotFound when the chord slope's
// denominator is not invertible mod n — the classic ECM "accidental
// factor" event.
func (c *WeierstrassCurve) AddExn(p, q Point) (Point, error) {
	if p.isInfinity() {
		return q, nil
	}
	if q.isInfinity() {
		return p, nil
	}
	n := c.N
	if p.X.Cmp(q.X) == 0 {
		sum := new(big.Int).Add(p.Y, q.Y)
		sum.Mod(sum, n)
		if sum.Sign() == 0 {
			return Infinity, nil
		}
		return c.DoubleExn(p)
	}

	num := new(big.Int).Sub(q.Y, p.Y)
	den := new(big.Int).Sub(q.X, p.X)
	den.Mod(den, n)
	invDen, err := Inv(den, n)
	if err != nil {
		return Point{}, err
	}
	lambda := new(big.Int).Mul(num, invDen)
	lambda.Mod(lambda, n)
	return c.finishAdd(p, q, lambda), nil
}

// DoubleExn returns 2*P, failing with *InverseNotFound on the same terms
// as AddExn.
func (c *WeierstrassCurve) DoubleExn(p Point) (Point, error) {
	if p.isInfinity() || p.Y.Sign() == 0 {
		return Infinity, nil
	}
	n := c.N
	num := new(big.Int).Mul(p.X, p.X)
	num.Mul(num, threeInt)
	num.Add(num, c.A)
	den := new(big.Int).Lsh(p.Y, 1)
	den.Mod(den, n)
	invDen, err := Inv(den, n)
	if err != nil {
		return Point{}, err
	}
	lambda := new(big.Int).Mul(num, invDen)
	lambda.Mod(lambda, n)
	return c.finishAdd(p, p, lambda), nil
}

func (c *WeierstrassCurve) finishAdd(p, q Point, lambda *big.Int) Point {
	n := c.N
	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, p.X)
	x3.Sub(x3, q.X)
	x3.Mod(x3, n)
	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.Y)
	y3.Mod(y3, n)
	return Point{X: x3, Y: y3}
}

// MulExn returns k*P via left-to-right double-and-add, each step calling
// Inv individually. Use MulPtMulti instead when several scalars need to
// be applied to the same point at once — it amortizes every round's
// inversions into one InvMulti call. A negative k negates P first.
func (c *WeierstrassCurve) MulExn(k *big.Int, p Point) (Point, error) {
	if k.Sign() == 0 || p.isInfinity() {
		return Infinity, nil
	}
	if k.Sign() < 0 {
		k = new(big.Int).Neg(k)
		p = Point{X: p.X, Y: negMod(p.Y, c.N)}
	}
	acc := p
	for i := k.BitLen() - 2; i >= 0; i-- {
		var err error
		acc, err = c.DoubleExn(acc)
		if err != nil {
			return Point{}, err
		}
		if k.Bit(i) == 1 {
			acc, err = c.AddExn(acc, p)
			if err != nil {
				return Point{}, err
			}
		}
	}
	return acc, nil
}

// MulPtMulti computes ks[i]*P for every i on a single curve, batching the
// modular inversions of every in-flight scalar multiplication's
// double-and-add steps into as few InvMulti calls as the longest scalar
// needs (spec 4.5's "generator protocol": "mul_multi... drives many
// scalar multiplications concurrently at the yield boundary and feeds
// them batched inverses... so the m scalar multiplications of average
// depth L use O(log(mL)) modular inverses rather than O(mL)"). Negative
// entries of ks negate P before starting, matching MulExn's convention.
// Each round advances only the multiplications still mid-flight (shorter
// scalars drop out of the batch early), so this is the two-pass form spec
// section 9 describes as "simpler to reason about" than the coroutine
// form: the set of steps every scalar needs is known upfront from its bit
// length.
func MulPtMulti(p Point, curve *WeierstrassCurve, ks []*big.Int) ([]Point, error) {
	n := curve.N
	m := len(ks)
	acc := make([]Point, m)
	base := make([]Point, m)
	lastStep := make([]int, m) // round index of the final double-and-add step this k needs, or -1
	absKs := make([]*big.Int, m)

	maxStep := -1
	for i, k := range ks {
		if k.Sign() == 0 {
			acc[i] = Infinity
			base[i] = p
			lastStep[i] = -1
			absKs[i] = zero
			continue
		}
		ak := new(big.Int).Abs(k)
		absKs[i] = ak
		if k.Sign() < 0 {
			base[i] = Point{X: p.X, Y: negMod(p.Y, n)}
		} else {
			base[i] = p
		}
		acc[i] = base[i]
		lastStep[i] = ak.BitLen() - 2
		if lastStep[i] > maxStep {
			maxStep = lastStep[i]
		}
	}

	for bit := maxStep; bit >= 0; bit-- {
		var doubleIdx []int
		for i := range ks {
			if lastStep[i] >= bit {
				doubleIdx = append(doubleIdx, i)
			}
		}
		if err := batchDoubleAt(acc, curve, n, doubleIdx); err != nil {
			return nil, err
		}
		var addIdx []int
		for _, i := range doubleIdx {
			if absKs[i].Bit(bit) == 1 {
				addIdx = append(addIdx, i)
			}
		}
		if err := batchAddAt(acc, base, curve, n, addIdx); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// batchDoubleAt doubles acc[i] in place for every i in idx, in one batched
// inversion pass over just that subset; entries not in idx are untouched.
func batchDoubleAt(acc []Point, curve *WeierstrassCurve, n *big.Int, idx []int) error {
	var active []int
	var dens []*big.Int
	for _, i := range idx {
		p := acc[i]
		if p.isInfinity() || p.Y.Sign() == 0 {
			acc[i] = Infinity
			continue
		}
		active = append(active, i)
		d := new(big.Int).Lsh(p.Y, 1)
		dens = append(dens, d.Mod(d, n))
	}
	if len(active) == 0 {
		return nil
	}
	invs, err := InvMulti(dens, n)
	if err != nil {
		return err
	}
	for j, i := range active {
		p := acc[i]
		num := new(big.Int).Mul(p.X, p.X)
		num.Mul(num, threeInt)
		num.Add(num, curve.A)
		lambda := new(big.Int).Mul(num, invs[j])
		lambda.Mod(lambda, n)
		acc[i] = curve.finishAdd(p, p, lambda)
	}
	return nil
}

// batchAddAt adds base[i] onto acc[i] in place for every i in idx, in one
// batched inversion pass, falling back to AddExn on the rare coincidence
// that acc[i] and base[i] share an x-coordinate.
func batchAddAt(acc, base []Point, curve *WeierstrassCurve, n *big.Int, idx []int) error {
	var active []int
	var dens []*big.Int
	var coincident []int
	for _, i := range idx {
		p, q := acc[i], base[i]
		switch {
		case p.isInfinity():
			acc[i] = q
		case q.isInfinity():
			// acc[i] already holds p
		case p.X.Cmp(q.X) == 0:
			coincident = append(coincident, i)
		default:
			active = append(active, i)
			d := new(big.Int).Sub(q.X, p.X)
			dens = append(dens, d.Mod(d, n))
		}
	}
	for _, i := range coincident {
		r, err := curve.AddExn(acc[i], base[i])
		if err != nil {
			return err
		}
		acc[i] = r
	}
	if len(active) == 0 {
		return nil
	}
	invs, err := InvMulti(dens, n)
	if err != nil {
		return err
	}
	for j, i := range active {
		p, q := acc[i], base[i]
		num := new(big.Int).Sub(q.Y, p.Y)
		lambda := new(big.Int).Mul(num, invs[j])
		lambda.Mod(lambda, n)
		x3 := new(big.Int).Mul(lambda, lambda)
		x3.Sub(x3, p.X)
		x3.Sub(x3, q.X)
		x3.Mod(x3, n)
		y3 := new(big.Int).Sub(p.X, x3)
		y3.Mul(y3, lambda)
		y3.Sub(y3, p.Y)
		y3.Mod(y3, n)
		acc[i] = Point{X: x3, Y: y3}
	}
	return nil
}
