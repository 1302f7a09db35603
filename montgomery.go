package ecm

// Montgomery curves (B*y^2 = x^3 + A*x^2 + x over Z/N) represented in XZ
// projective coordinates, where a point (x,z) stands for the affine
// x-coordinate x/z. Only x-coordinates are tracked: the differential
// addition/doubling formulas below never need y, which is what makes the
// Montgomery ladder cheaper per step than the Weierstrass double-and-add
// in weierstrass.go. Stage 1 of the XZECM and PolyevalECM engines in
// engine.go runs on these curves; PolyevalECM's Stage 2 converts the
// resulting point to Weierstrass form via ToWeierstrass.

import "math/big"

// MontgomeryPoint is an XZ projective point; X/Z is the affine x-coordinate.
type MontgomeryPoint struct {
	X, Z *big.Int
}

// MontgomeryCurve is B*y^2 = x^3 + A*x^2 + x over Z/N, stored via the
// precomputed ladder constant a24 = (A+2)/4 mod N.
type MontgomeryCurve struct {
	A, N *big.Int
	a24  *big.Int
}

// badSigmas lists the Suyama parameter values that degenerate the curve
// (A undefined or A ≡ ±2, the singular cases).
var badSigmas = map[int64]bool{0: true, 1: true, -1: true, 3: true, -3: true, 5: true, -5: true}

// SuyamaCurve builds a Montgomery curve and starting point from a sigma
// parameter using Suyama's parametrization, which guarantees the curve's
// group order is divisible by 12. Fails with *CurveInitFail when sigma is
// one of the degenerate values, when the resulting A ≡ ±2 (mod n) (a curve
// of additive or singular multiplicative reduction), or when A+2 shares a
// proper factor with n (that factor is attached to the error). Fails with
// *InverseNotFound when 4*u^3*v is not invertible mod n.
func SuyamaCurve(sigma, n *big.Int) (*MontgomeryCurve, MontgomeryPoint, error) {
	if sigma.IsInt64() && badSigmas[sigma.Int64()] {
		return nil, MontgomeryPoint{}, &CurveInitFail{Reason: "sigma in the degenerate set"}
	}

	u := new(big.Int).Mul(sigma, sigma)
	u.Sub(u, big.NewInt(5))
	u.Mod(u, n)
	v := new(big.Int).Lsh(sigma, 2)
	v.Mod(v, n)

	uCubed := new(big.Int).Exp(u, threeInt, nil)
	uCubed.Mod(uCubed, n)
	vCubed := new(big.Int).Exp(v, threeInt, nil)
	vCubed.Mod(vCubed, n)

	denomC := new(big.Int).Lsh(uCubed, 2)
	denomC.Mul(denomC, v)
	denomC.Mod(denomC, n)
	invC, err := Inv(denomC, n)
	if err != nil {
		return nil, MontgomeryPoint{}, err
	}

	vMinusU := new(big.Int).Sub(v, u)
	numC := new(big.Int).Exp(vMinusU, threeInt, nil)
	three3uv := new(big.Int).Mul(threeInt, u)
	three3uv.Add(three3uv, v)
	numC.Mul(numC, three3uv)
	numC.Mod(numC, n)

	c := new(big.Int).Mul(numC, invC)
	c.Mod(c, n)

	a := new(big.Int).Sub(c, two)
	a.Mod(a, n)

	// A ≡ 2 or A ≡ -2 (mod n) is the additive/singular-multiplicative
	// reduction case outright, independent of whether A+2 happens to share
	// a nontrivial factor with n.
	aMinus2 := new(big.Int).Sub(a, two)
	aMinus2.Mod(aMinus2, n)
	if aMinus2.Sign() == 0 {
		return nil, MontgomeryPoint{}, &CurveInitFail{Reason: "A == 2 (mod n)"}
	}
	aPlus2 := new(big.Int).Add(a, two)
	aPlus2.Mod(aPlus2, n)
	if aPlus2.Sign() == 0 {
		return nil, MontgomeryPoint{}, &CurveInitFail{Reason: "A == -2 (mod n)"}
	}

	gcdCheck := Gcd(aPlus2, n)
	if gcdCheck.Cmp(one) > 0 && gcdCheck.Cmp(n) < 0 {
		return nil, MontgomeryPoint{}, &CurveInitFail{Reason: "A+2 shares a factor with n: " + gcdCheck.String(), Factor: gcdCheck}
	}

	four := big.NewInt(4)
	invFour, err := Inv(four, n)
	if err != nil {
		return nil, MontgomeryPoint{}, err
	}
	a24 := new(big.Int).Mul(aPlus2, invFour)
	a24.Mod(a24, n)

	curve := &MontgomeryCurve{A: a, N: n, a24: a24}
	p0 := MontgomeryPoint{X: uCubed, Z: vCubed}
	return curve, p0, nil
}

// dbl doubles an XZ point: X' = (X+Z)^2*(X-Z)^2, Z' = 4XZ*((X-Z)^2 + a24*4XZ).
func (c *MontgomeryCurve) dbl(p MontgomeryPoint) MontgomeryPoint {
	n := c.N
	xzAdd := new(big.Int).Add(p.X, p.Z)
	xzAdd.Mod(xzAdd, n)
	xzSub := new(big.Int).Sub(p.X, p.Z)
	xzSub.Mod(xzSub, n)
	addSq := new(big.Int).Mul(xzAdd, xzAdd)
	addSq.Mod(addSq, n)
	subSq := new(big.Int).Mul(xzSub, xzSub)
	subSq.Mod(subSq, n)

	xNew := new(big.Int).Mul(addSq, subSq)
	xNew.Mod(xNew, n)

	diff := new(big.Int).Sub(addSq, subSq)
	diff.Mod(diff, n)
	t := new(big.Int).Mul(c.a24, diff)
	t.Add(t, subSq)
	t.Mod(t, n)
	zNew := new(big.Int).Mul(diff, t)
	zNew.Mod(zNew, n)
	return MontgomeryPoint{X: xNew, Z: zNew}
}

// diffAdd computes P+Q given P, Q and P-Q (the "differential addition"
// the Montgomery ladder relies on to avoid needing y).
func (c *MontgomeryCurve) diffAdd(p, q, diff MontgomeryPoint) MontgomeryPoint {
	n := c.N
	u := new(big.Int).Sub(p.X, p.Z)
	v := new(big.Int).Add(q.X, q.Z)
	u.Mod(u, n)
	v.Mod(v, n)
	uv := new(big.Int).Mul(u, v)

	u2 := new(big.Int).Add(p.X, p.Z)
	v2 := new(big.Int).Sub(q.X, q.Z)
	u2.Mod(u2, n)
	v2.Mod(v2, n)
	uv2 := new(big.Int).Mul(u2, v2)

	add := new(big.Int).Add(uv, uv2)
	add.Mod(add, n)
	sub := new(big.Int).Sub(uv, uv2)
	sub.Mod(sub, n)

	addSq := new(big.Int).Mul(add, add)
	subSq := new(big.Int).Mul(sub, sub)

	xNew := new(big.Int).Mul(diff.Z, addSq)
	xNew.Mod(xNew, n)
	zNew := new(big.Int).Mul(diff.X, subSq)
	zNew.Mod(zNew, n)
	return MontgomeryPoint{X: xNew, Z: zNew}
}

// LadderExn computes k*P via the Montgomery ladder, a constant-structure
// algorithm that maintains the invariant (acc, acc+base) at every step.
// There is no inversion inside the ladder itself — Check is what
// surfaces a factor, by inspecting gcd(Z, N) once the ladder is done.
func (c *MontgomeryCurve) LadderExn(k *big.Int, p MontgomeryPoint) MontgomeryPoint {
	r0 := MontgomeryPoint{X: big.NewInt(1), Z: big.NewInt(0)} // identity
	r1 := p
	for i := k.BitLen() - 1; i >= 0; i-- {
		if k.Bit(i) == 0 {
			r1 = c.diffAdd(r0, r1, p)
			r0 = c.dbl(r0)
		} else {
			r0 = c.diffAdd(r0, r1, p)
			r1 = c.dbl(r1)
		}
	}
	return r0
}

// Check inspects an XZ point for an accidentally-discovered factor:
// gcd(Z, N) strictly between 1 and N means Z was not invertible mod N,
// exactly the event ECM's Stage 1 is trying to provoke.
func (c *MontgomeryCurve) Check(p MontgomeryPoint) (*big.Int, bool) {
	g := Gcd(p.Z, c.N)
	if g.Cmp(one) > 0 && g.Cmp(c.N) < 0 {
		return g, true
	}
	return nil, false
}

// ToWeierstrass converts this Montgomery curve and a point p on it to
// short Weierstrass form, so Stage 2's polynomial and point machinery —
// built for y^2 = x^3+ax+b — can take over after Stage 1 (spec 4.6).
// Normalizes x_norm = X/Z, computes B = x_norm^3 + A*x_norm^2 + x_norm,
// and takes y_norm = 1 (since only the x-coordinate survives in XZ
// form), producing a point (t,v) and curve coefficients (a,b) that both
// depend on which point was converted: different points on the same
// Montgomery curve yield different Weierstrass curves.
func (c *MontgomeryCurve) ToWeierstrass(p MontgomeryPoint) (*WeierstrassCurve, Point, error) {
	n := c.N
	zInv, err := Inv(p.Z, n)
	if err != nil {
		return nil, Point{}, err
	}
	xNorm := new(big.Int).Mul(p.X, zInv)
	xNorm.Mod(xNorm, n)

	xNorm2 := new(big.Int).Mul(xNorm, xNorm)
	xNorm2.Mod(xNorm2, n)
	xNorm3 := new(big.Int).Mul(xNorm2, xNorm)
	xNorm3.Mod(xNorm3, n)
	aXNorm2 := new(big.Int).Mul(c.A, xNorm2)

	b := new(big.Int).Add(xNorm3, aXNorm2)
	b.Add(b, xNorm)
	b.Mod(b, n)

	bInv, err := Inv(b, n)
	if err != nil {
		return nil, Point{}, err
	}

	threeB := new(big.Int).Mul(threeInt, b)
	threeB.Mod(threeB, n)
	threeBInv, err := Inv(threeB, n)
	if err != nil {
		return nil, Point{}, err
	}

	t := new(big.Int).Mul(xNorm, bInv)
	aOver3B := new(big.Int).Mul(c.A, threeBInv)
	t.Add(t, aOver3B)
	t.Mod(t, n)

	v := new(big.Int).Set(bInv)

	// a = (3-A^2)/(3*B^2). Spec 4.6 writes this denominator as "(3B)^2",
	// but completing the cube (x = B*t - A/3) gives a coefficient scaling
	// as 1/B^2, not 1/(3B)^2 — an off-by-a-factor-of-3 akin to the
	// sigma precedence oddity spec section 9 already flags. b's formula,
	// "(3B)^3" = 27*B^3, does match the derivation exactly, so only a's
	// denominator is corrected here; see DESIGN.md.
	threeInv, err := Inv(threeInt, n)
	if err != nil {
		return nil, Point{}, err
	}
	bInvSq := new(big.Int).Mul(bInv, bInv)
	bInvSq.Mod(bInvSq, n)
	aSq := new(big.Int).Mul(c.A, c.A)
	threeMinusASq := new(big.Int).Sub(threeInt, aSq)
	a := new(big.Int).Mul(threeMinusASq, threeInv)
	a.Mul(a, bInvSq)
	a.Mod(a, n)

	threeBInvSq := new(big.Int).Mul(threeBInv, threeBInv)
	threeBInvSq.Mod(threeBInvSq, n)
	threeBInvCubed := new(big.Int).Mul(threeBInvSq, threeBInv)
	threeBInvCubed.Mod(threeBInvCubed, n)
	aCubed := new(big.Int).Mul(aSq, c.A)
	twoACubed := new(big.Int).Mul(two, aCubed)
	nineA := new(big.Int).Mul(big.NewInt(9), c.A)
	numB := new(big.Int).Sub(twoACubed, nineA)
	curveB := new(big.Int).Mul(numB, threeBInvCubed)
	curveB.Mod(curveB, n)

	return &WeierstrassCurve{A: a, B: curveB, N: n}, Point{X: t, Y: v}, nil
}
