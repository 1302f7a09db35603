package ecm

// ECM-Engines: the three Stage-2 continuations described in spec section
// 4.9, all sharing the same curve-sampling loop and Stage 1. They differ
// only in what Stage 2 accumulates and tests:
//
//   - NaiveECM tests every wheel-step point directly through Weierstrass
//     point addition, relying on the inversion AddExn already performs to
//     trip *InverseNotFound the moment Stage 2 succeeds.
//   - XZECM (accumulated product) stays in Montgomery XZ coordinates
//     and multiplies a running product of cross-differences, testing
//     gcd(product, n) once per wheel step instead of once per candidate.
//   - PolyevalECM converts the post-Stage-1 point to an affine
//     Weierstrass curve (montgomery.go's ToWeierstrass) and runs the
//     Brent-Suyama continuation (brentsuyama.go) there: fixed residue
//     points Q*P(j) and a moving finite-difference table feed a
//     product/remainder tree (polyeval.go) so an entire Stage-2 window is
//     tested with O(M(d) log d) polynomial work instead of O(d) point
//     operations.

import (
	"math/big"
	"math/rand"
	"sync/atomic"
)

// maxCurveAttempts bounds the curve-sampling loop shared by all three
// engines (spec 4.9 #1: "up to 20 attempts").
const maxCurveAttempts = 20

// sampleCurve draws Suyama curves until one is non-degenerate, or gives up
// after maxCurveAttempts. A discriminant-type rejection that itself
// reveals a factor of n is surfaced immediately instead of triggering a
// redraw.
func sampleCurve(n *big.Int, rng *rand.Rand) (*MontgomeryCurve, MontgomeryPoint, *big.Int, error) {
	lo := big.NewInt(6)
	hi := new(big.Int).Sub(n, big.NewInt(6))
	for attempt := 0; attempt < maxCurveAttempts; attempt++ {
		sigma := randBigInRange(rng, lo, hi)
		curve, p0, err := SuyamaCurve(sigma, n)
		if err == nil {
			return curve, p0, nil, nil
		}
		if inv, ok := err.(*InverseNotFound); ok {
			g := inv.Factor()
			if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
				return nil, MontgomeryPoint{}, g, nil
			}
			continue
		}
		if init, ok := err.(*CurveInitFail); ok && init.Factor != nil {
			return nil, MontgomeryPoint{}, init.Factor, nil
		}
		// otherwise *CurveInitFail with no factor: redraw.
	}
	return nil, MontgomeryPoint{}, nil, nil
}

// stage1 multiplies p0 by the product of p^floor(log_p(B1)) over every
// prime p < B1, checking for an accidental factor (gcd(Z,n) != 1) after
// each prime's contribution so a mid-stage success terminates early
// instead of continuing to grind through the remaining primes.
func stage1(curve *MontgomeryCurve, p0 MontgomeryPoint, b1 int64) (MontgomeryPoint, *big.Int) {
	pt := p0
	for _, p := range PrimeGen.Primes(b1) {
		e := 0
		for pw := p; pw <= b1; pw *= p {
			e++
		}
		exp := new(big.Int).Exp(big.NewInt(p), big.NewInt(int64(e)), nil)
		pt = curve.LadderExn(exp, pt)
		if g, found := curve.Check(pt); found {
			return pt, g
		}
	}
	return pt, nil
}

// wheelResidues returns every residue in (0, wheel) coprime to wheel, in
// ascending order. Montgomery XZ and polyeval only need the half-period
// [1, wheel/2] because X/Z is symmetric under point negation; Weierstrass
// arithmetic tracks y too, so NaiveECM walks the full period.
func wheelResidues(wheel int64, halfPeriod bool) []int64 {
	limit := wheel
	if halfPeriod {
		limit = wheel / 2
	}
	var out []int64
	for j := int64(1); j <= limit; j++ {
		if Gcd(big.NewInt(j), big.NewInt(wheel)).Cmp(one) == 0 {
			out = append(out, j)
		}
	}
	return out
}

// --- NaiveECM -------------------------------------------------------------

// NaiveECM runs both stages on an affine Weierstrass curve, sampled via
// RandomWeierstrassCurve rather than the Suyama parametrization the other
// two engines use (spec 4.9 #1 names both curve-sampling forms as
// alternatives, "draw σ (Suyama) or (x0,y0,a) (Weierstrass)"): Stage 1 is
// an ordinary double-and-add scalar multiplication by the same
// prime-power schedule as stage1, and Stage 2 walks the wheel testing
// every wheel-coprime residue around each step through direct point
// addition, relying on AddExn's inversion to surface *InverseNotFound the
// moment Stage 2 succeeds.
func NaiveECM(n *big.Int, opts Options) (*big.Int, bool) {
	residues := wheelResidues(opts.Wheel, false)
	var round int64
	return runRounds(n, opts, func(n *big.Int, rng *rand.Rand) (*big.Int, bool) {
		r := atomic.AddInt64(&round, 1)
		log.Debugf("naive ecm: round %d sampling curve", r)
		curve, q, err := RandomWeierstrassCurve(n, func(max *big.Int) *big.Int {
			return randBigInRange(rng, zero, new(big.Int).Sub(max, one))
		})
		if err != nil {
			if init, ok := err.(*CurveInitFail); ok && init.Factor != nil {
				return init.Factor, true
			}
			return nil, false
		}

		log.Debugf("naive ecm: round %d stage 1", r)
		q, factor := weierstrassStage1(curve, q, opts.B1)
		if factor != nil {
			return factor, true
		}

		log.Debugf("naive ecm: round %d stage 2", r)
		if factor := naiveStage2(curve, q, opts.B1, opts.B2, opts.Wheel, residues); factor != nil {
			return factor, true
		}
		return nil, false
	})
}

// weierstrassStage1 is stage1's affine-curve counterpart: it multiplies q
// by the product of p^floor(log_p(B1)) over every prime p < B1, checking
// after each prime for the inversion failure that signals a factor.
func weierstrassStage1(curve *WeierstrassCurve, q Point, b1 int64) (Point, *big.Int) {
	pt := q
	for _, p := range PrimeGen.Primes(b1) {
		e := 0
		for pw := p; pw <= b1; pw *= p {
			e++
		}
		exp := new(big.Int).Exp(big.NewInt(p), big.NewInt(int64(e)), nil)
		next, err := curve.MulExn(exp, pt)
		if err != nil {
			return Point{}, factorFromErr(err)
		}
		pt = next
	}
	return pt, nil
}

// naiveStage2 walks step = wheel*Q across [B1,B2], testing current +
// residueQ and current - residueQ (the two wheel-period images of each
// coprime residue j) at every step via ordinary Weierstrass addition.
func naiveStage2(wc *WeierstrassCurve, q Point, b1, b2, wheel int64, residues []int64) *big.Int {
	c1, c2 := b1/wheel, b2/wheel
	step, err := wc.MulExn(big.NewInt(wheel), q)
	if err != nil {
		return factorFromErr(err)
	}
	current, err := wc.MulExn(big.NewInt(c1*wheel), q)
	if err != nil {
		return factorFromErr(err)
	}

	ks := make([]*big.Int, len(residues))
	for i, j := range residues {
		ks[i] = big.NewInt(j)
	}
	jPoints, err := MulPtMulti(q, wc, ks)
	if err != nil {
		return factorFromErr(err)
	}

	for c := c1; c <= c2; c++ {
		for _, jp := range jPoints {
			if _, err := wc.AddExn(current, jp); err != nil {
				return factorFromErr(err)
			}
			negJP := Point{X: jp.X, Y: negMod(jp.Y, wc.N)}
			if _, err := wc.AddExn(current, negJP); err != nil {
				return factorFromErr(err)
			}
		}
		next, err := wc.AddExn(current, step)
		if err != nil {
			return factorFromErr(err)
		}
		current = next
	}
	return nil
}

func factorFromErr(err error) *big.Int {
	if inv, ok := err.(*InverseNotFound); ok {
		g := inv.Factor()
		return g
	}
	return nil
}

// --- XZStage2 (accumulated product) ---------------------------------------

// XZECM runs ECM Stage 1 followed by the accumulated-product Stage 2: for
// each wheel step c, it multiplies a running product of cross
// differences x_j*z_c - x_c over every precomputed residue point jQ, and
// tests gcd(product, n) once per step rather than once per candidate. A
// gcd equal to n (two factors both dividing the accumulated product)
// falls back to scanning the block term-by-term.
func XZECM(n *big.Int, opts Options) (*big.Int, bool) {
	residues := wheelResidues(opts.Wheel, true)
	var round int64
	return runRounds(n, opts, func(n *big.Int, rng *rand.Rand) (*big.Int, bool) {
		r := atomic.AddInt64(&round, 1)
		log.Debugf("xz ecm: round %d sampling curve", r)
		curve, p0, factor, err := sampleCurve(n, rng)
		if err != nil {
			return nil, false
		}
		if factor != nil {
			return factor, true
		}
		if curve == nil {
			return nil, false
		}

		log.Debugf("xz ecm: round %d stage 1", r)
		pt, factor := stage1(curve, p0, opts.B1)
		if factor != nil {
			return factor, true
		}

		log.Debugf("xz ecm: round %d stage 2", r)
		jPoints := make([]MontgomeryPoint, len(residues))
		for i, j := range residues {
			jPoints[i] = curve.LadderExn(big.NewInt(j), pt)
			if g, found := curve.Check(jPoints[i]); found {
				return g, true
			}
		}

		jXs, err := normalizeX(jPoints, n)
		if err != nil {
			if inv, ok := err.(*InverseNotFound); ok {
				return inv.Factor(), true
			}
			return nil, false
		}

		if factor := xzStage2(curve, pt, jXs, opts.B1, opts.B2, opts.Wheel); factor != nil {
			return factor, true
		}
		return nil, false
	})
}

// xzStage2 walks cQ forward by wheel*Q using differential addition,
// keeping both cQ and cQ-wheel*Q (the "previous" point diffAdd needs as
// its third argument) in hand at every step, per spec 4.9's note that
// the Montgomery variant must track that pair. jXs holds the affine
// x-coordinate of every residue point jQ (normalized once up front via
// normalizeX): the cross-difference term x_j*z_c - x_c only vanishes at
// an ECM collision when x_j is affine, since jQ ≡ ±cQ (mod p) gives
// X_jQ*Z_cQ ≡ X_cQ*Z_jQ (mod p), not X_jQ*Z_cQ ≡ X_cQ (mod p).
func xzStage2(curve *MontgomeryCurve, q MontgomeryPoint, jXs []*big.Int, b1, b2, wheel int64) *big.Int {
	n := curve.N
	c1, c2 := b1/wheel, b2/wheel

	wheelQ := curve.LadderExn(big.NewInt(wheel), q)
	cur := curve.LadderExn(big.NewInt(c1*wheel), q)
	prev := curve.LadderExn(big.NewInt((c1-1)*wheel), q)

	for c := c1; c <= c2; c++ {
		s := big.NewInt(1)
		for _, jx := range jXs {
			t := new(big.Int).Mul(jx, cur.Z)
			t.Sub(t, cur.X)
			t.Mod(t, n)
			s.Mul(s, t)
			s.Mod(s, n)
		}
		g := Gcd(s, n)
		if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
			return g
		}
		if g.Cmp(n) == 0 {
			for _, jx := range jXs {
				t := new(big.Int).Mul(jx, cur.Z)
				t.Sub(t, cur.X)
				t.Mod(t, n)
				gt := Gcd(t, n)
				if gt.Cmp(one) > 0 && gt.Cmp(n) < 0 {
					return gt
				}
			}
		}

		next := curve.diffAdd(cur, wheelQ, prev)
		prev = cur
		cur = next
	}
	return nil
}

// --- PolyevalStage2 --------------------------------------------------------

// PolyevalECM runs ECM Stage 1 in Montgomery XZ coordinates, then converts
// to an affine Weierstrass curve (spec 4.6) for the Brent-Suyama + polyeval
// Stage 2 continuation, exactly as the original does (ecm_polyeval.py's
// `ecm` converts via `mnt.to_weierstrass` before building its k_ls from
// `apply_polynomial`/`get_difference_seq` and calling `wst.mul_pt_multi`):
// degree-6 Brent-Suyama evaluation picks the fixed residue points Q*P(j),
// the moving points advance one wheel step at a time through the
// finite-difference table instead of a fresh scalar multiplication each
// step, and F(x) = prod_j (x - x_j) is tested against a running H := H*G
// mod F via the reciprocal tree, finishing with a single remainder-tree
// evaluation of H at F's leaves.
func PolyevalECM(n *big.Int, opts Options) (*big.Int, bool) {
	residues := wheelResidues(opts.Wheel, true)
	var round int64
	return runRounds(n, opts, func(n *big.Int, rng *rand.Rand) (*big.Int, bool) {
		r := atomic.AddInt64(&round, 1)
		log.Debugf("polyeval ecm: round %d sampling curve", r)
		curve, p0, factor, err := sampleCurve(n, rng)
		if err != nil {
			return nil, false
		}
		if factor != nil {
			return factor, true
		}
		if curve == nil {
			return nil, false
		}

		log.Debugf("polyeval ecm: round %d stage 1", r)
		pt, factor := stage1(curve, p0, opts.B1)
		if factor != nil {
			return factor, true
		}

		wc, wq, err := curve.ToWeierstrass(pt)
		if err != nil {
			if inv, ok := err.(*InverseNotFound); ok {
				return inv.Factor(), true
			}
			return nil, false
		}

		log.Debugf("polyeval ecm: round %d stage 2", r)
		factorOut, err := polyevalStage2(wc, wq, residues, opts.B1, opts.B2, opts.Wheel)
		if err != nil {
			if inv, ok := err.(*InverseNotFound); ok {
				return inv.Factor(), true
			}
			return nil, false
		}
		if factorOut != nil {
			return factorOut, true
		}
		return nil, false
	})
}

// normalizeX realizes the affine x-coordinate of every XZ point in pts in
// one batched inversion pass via InvMulti.
func normalizeX(pts []MontgomeryPoint, n *big.Int) ([]*big.Int, error) {
	zs := make([]*big.Int, len(pts))
	for i, p := range pts {
		zs[i] = p.Z
	}
	zInvs, err := InvMulti(zs, n)
	if err != nil {
		return nil, err
	}
	xs := make([]*big.Int, len(pts))
	for i, p := range pts {
		x := new(big.Int).Mul(p.X, zInvs[i])
		xs[i] = x.Mod(x, n)
	}
	return xs, nil
}

// polyevalStage2 implements the block-at-a-time Brent-Suyama/polyeval
// continuation: the fixed residue points Q*P(j) (j ranging over residues,
// P the degree-6 Brent-Suyama polynomial) fix F(x) = prod_j (x - x_j); the
// moving point walks forward one wheel step at a time via a
// finite-difference table (GetDifferenceSeqPoints/StepDifferenceSeqPoints)
// instead of a fresh scalar multiplication per step, and each block's worth
// of moving x-coordinates contributes a block product G folded into the
// running H mod F.
func polyevalStage2(curve *WeierstrassCurve, q Point, residues []int64, b1, b2, wheel int64) (*big.Int, error) {
	n := curve.N
	blockSize := 1
	for blockSize*2 <= len(residues) {
		blockSize *= 2
	}
	if blockSize == 0 {
		blockSize = 1
	}

	residueScalars := make([]*big.Int, len(residues))
	for i, j := range residues {
		residueScalars[i] = ApplyPolynomial(big.NewInt(j), n)
	}
	residuePts, err := MulPtMulti(q, curve, residueScalars)
	if err != nil {
		return nil, err
	}

	fLeaves := make([]Polynomial, len(residuePts))
	for i, p := range residuePts {
		negX := new(big.Int).Neg(p.X)
		negX.Mod(negX, n)
		fLeaves[i] = NewPoly([]*big.Int{negX, one}, n)
	}
	fTree := buildProductTree(fLeaves, n)
	fRecip, err := buildRecipTree(fTree)
	if err != nil {
		return nil, err
	}
	f := fTree.root()
	fRecipRoot, err := f.Recip()
	if err != nil {
		return nil, err
	}

	c1, c2 := b1/wheel, b2/wheel
	diffSeq, err := GetDifferenceSeqPoints(curve, q, big.NewInt(c1*wheel), big.NewInt(wheel))
	if err != nil {
		return nil, err
	}

	h := NewPolyInt64(n, 1)
	blockXs := make([]*big.Int, 0, blockSize)

	flush := func() error {
		if len(blockXs) == 0 {
			return nil
		}
		gLeaves := make([]Polynomial, len(blockXs))
		for i, x := range blockXs {
			negX := new(big.Int).Neg(x)
			negX.Mod(negX, n)
			gLeaves[i] = NewPoly([]*big.Int{negX, one}, n)
		}
		g := buildProductTree(gLeaves, n).root()
		h = h.Mul(g).ModWithRecip(f, fRecipRoot)
		blockXs = blockXs[:0]
		return nil
	}

	for c := c1; c <= c2; c++ {
		blockXs = append(blockXs, diffSeq[0].X)
		if len(blockXs) == blockSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		diffSeq, err = StepDifferenceSeqPoints(curve, diffSeq)
		if err != nil {
			return nil, err
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	leafVals, err := remainderTreeLeaves(h, fTree, fRecip)
	if err != nil {
		return nil, err
	}
	acc := big.NewInt(1)
	for _, v := range leafVals {
		acc.Mul(acc, v)
		acc.Mod(acc, n)
	}
	g := Gcd(acc, n)
	if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
		return g, nil
	}
	if g.Cmp(n) == 0 {
		for _, v := range leafVals {
			gt := Gcd(v, n)
			if gt.Cmp(one) > 0 && gt.Cmp(n) < 0 {
				return gt, nil
			}
		}
	}
	return nil, nil
}

// ECM is the package's secondary entry point (spec section 6): it runs
// the accumulated-product XZ engine, the fastest of the three for most
// composite sizes, escalating through at most rounds curve seeds. n must
// be >= 12; B1 must be < B2.
func ECM(n *big.Int, rounds int, b1, b2 int64, wheel int64) (*big.Int, bool) {
	if wheel == 0 {
		wheel = 2310
	}
	opts := Options{Rounds: rounds, B1: b1, B2: b2, Wheel: wheel}
	return XZECM(n, opts)
}
