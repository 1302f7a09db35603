package ecm

import (
	"fmt"
	"math/big"
)

// Polynomial is an element of (Z/n)[x], stored low-degree-first:
// f(x) = Coeff[0] + Coeff[1]*x + ... + Coeff[d]*x^d (mod N).
// The highest-index coefficient is always non-zero unless the polynomial
// is the zero polynomial, which is represented as Coeff == [0].
type Polynomial struct {
	Coeff []*big.Int
	N     *big.Int
}

// NewPoly builds a polynomial from coefficients already reduced mod n,
// auto-trimming trailing zeros.
func NewPoly(coeff []*big.Int, n *big.Int) Polynomial {
	return Polynomial{Coeff: coeff, N: n}.trim()
}

// NewPolyInt64 builds a polynomial from plain int64 coefficients.
func NewPolyInt64(n *big.Int, vals ...int64) Polynomial {
	c := make([]*big.Int, len(vals))
	for i, v := range vals {
		c[i] = new(big.Int).Mod(big.NewInt(v), n)
	}
	return NewPoly(c, n)
}

func (p Polynomial) Deg() int { return len(p.Coeff) - 1 }

func (p Polynomial) isZero() bool {
	return len(p.Coeff) == 1 && p.Coeff[0].Sign() == 0
}

// trim drops trailing zero coefficients, preserving the [0] sentinel for
// the zero polynomial.
func (p Polynomial) trim() Polynomial {
	c := p.Coeff
	last := len(c) - 1
	for last > 0 && c[last].Sign() == 0 {
		last--
	}
	return Polynomial{Coeff: c[:last+1], N: p.N}
}

// Equal reports coefficient-wise equality under a matching modulus.
func (p Polynomial) Equal(q Polynomial) bool {
	if p.N.Cmp(q.N) != 0 || len(p.Coeff) != len(q.Coeff) {
		return false
	}
	for i := range p.Coeff {
		if p.Coeff[i].Cmp(q.Coeff[i]) != 0 {
			return false
		}
	}
	return true
}

func (p Polynomial) String() string {
	return fmt.Sprintf("Polynomial(%v, mod %s)", p.Coeff, p.N)
}

// Slice returns the polynomial with coefficients p.Coeff[i:j], shifted down
// so that coefficient i becomes the constant term (the terms of degree
// i..j-1 divided by x^i).
func (p Polynomial) Slice(i, j int) Polynomial {
	if j > len(p.Coeff) {
		j = len(p.Coeff)
	}
	if i > j {
		i = j
	}
	if i == j {
		return NewPoly([]*big.Int{big.NewInt(0)}, p.N)
	}
	return NewPoly(append([]*big.Int(nil), p.Coeff[i:j]...), p.N)
}

// Upper returns p[k:], the "upper part" used throughout the reciprocal and
// division machinery below.
func (p Polynomial) Upper(k int) Polynomial { return p.Slice(k, len(p.Coeff)) }

func addRaw(a, b []*big.Int, n *big.Int) []*big.Int {
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	res := make([]*big.Int, size)
	for i := 0; i < size; i++ {
		var v *big.Int
		switch {
		case i < len(a) && i < len(b):
			v = new(big.Int).Add(a[i], b[i])
		case i < len(a):
			v = new(big.Int).Set(a[i])
		default:
			v = new(big.Int).Set(b[i])
		}
		res[i] = v.Mod(v, n)
	}
	return res
}

func subRaw(a, b []*big.Int, n *big.Int) []*big.Int {
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	res := make([]*big.Int, size)
	for i := 0; i < size; i++ {
		var v *big.Int
		switch {
		case i < len(a) && i < len(b):
			v = new(big.Int).Sub(a[i], b[i])
		case i < len(a):
			v = new(big.Int).Set(a[i])
		default:
			v = new(big.Int).Neg(b[i])
		}
		res[i] = v.Mod(v, n)
	}
	return res
}

// mulRaw multiplies two coefficient lists by Kronecker substitution: each
// coefficient is packed into a fixed-width k-bit slot (wide enough that no
// partial product can carry into its neighbor), the two packed values are
// multiplied as plain big integers — handing the asymptotic cost to
// math/big's Karatsuba/Toom-Cook multiplier — and each k-bit window of the
// product is unpacked back into a coefficient mod n.
func mulRaw(a, b []*big.Int, n *big.Int) []*big.Int {
	outLen := len(a) + len(b) - 1
	nMinus1 := new(big.Int).Sub(n, one)
	bound := new(big.Int).Mul(nMinus1, nMinus1)
	bound.Mul(bound, big.NewInt(int64(outLen)))
	bound.Add(bound, one)
	k := bound.BitLen()
	if k == 0 {
		k = 1
	}
	k = ((k + 7) / 8) * 8 // round up to a byte boundary
	mask := new(big.Int).Sub(new(big.Int).Lsh(one, uint(k)), one)

	pack := func(coeffs []*big.Int) *big.Int {
		acc := new(big.Int)
		for i := len(coeffs) - 1; i >= 0; i-- {
			acc.Lsh(acc, uint(k))
			acc.Or(acc, coeffs[i])
		}
		return acc
	}

	ta := pack(a)
	var tb *big.Int
	if sameCoeffs(a, b) {
		tb = ta
	} else {
		tb = pack(b)
	}
	product := new(big.Int).Mul(ta, tb)

	res := make([]*big.Int, outLen)
	tmp := new(big.Int).Set(product)
	for i := 0; i < outLen; i++ {
		window := new(big.Int).And(tmp, mask)
		res[i] = window.Mod(window, n)
		tmp.Rsh(tmp, uint(k))
	}
	return res
}

func sameCoeffs(a, b []*big.Int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func padRaw(c []*big.Int, length int) []*big.Int {
	if len(c) >= length {
		return c
	}
	out := make([]*big.Int, length)
	copy(out, c)
	for i := len(c); i < length; i++ {
		out[i] = big.NewInt(0)
	}
	return out
}

// Add returns p+q mod n.
func (p Polynomial) Add(q Polynomial) Polynomial {
	return NewPoly(addRaw(p.Coeff, q.Coeff, p.N), p.N)
}

// Sub returns p-q mod n.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	return NewPoly(subRaw(p.Coeff, q.Coeff, p.N), p.N)
}

// Mul returns p*q mod n.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	return NewPoly(mulRaw(p.Coeff, q.Coeff, p.N), p.N)
}

// Eval returns p(x) mod n.
func (p Polynomial) Eval(x *big.Int) *big.Int {
	ans := new(big.Int).Set(p.Coeff[p.Deg()])
	for i := p.Deg() - 1; i >= 0; i-- {
		ans.Mul(ans, x)
		ans.Add(ans, p.Coeff[i])
		ans.Mod(ans, p.N)
	}
	return ans
}

// DivMod divides p by divisor, returning p = quo*divisor + rem with
// deg(rem) < deg(divisor). It uses the reciprocal-polynomial method:
// repeatedly compute a quotient term from the top of the remaining
// dividend against recip(divisor), subtract term*divisor, and iterate
// until the remainder's degree drops below deg(divisor).
func (p Polynomial) DivMod(divisor Polynomial) (quo, rem Polynomial, err error) {
	if len(p.Coeff) < len(divisor.Coeff) {
		return NewPoly([]*big.Int{big.NewInt(0)}, p.N), p, nil
	}
	divisorRecip, err := divisor.Recip()
	if err != nil {
		return Polynomial{}, Polynomial{}, err
	}
	d := divisor.Deg()
	dividend := p
	quo = NewPoly([]*big.Int{big.NewInt(0)}, p.N)
	for {
		term := dividend.Upper(d).Mul(divisorRecip).Upper(d)
		quo = quo.Add(term)
		rem = dividend.Sub(term.Mul(divisor))
		if len(rem.Coeff) < len(divisor.Coeff) || rem.isZero() {
			break
		}
		dividend = rem
	}
	return quo, rem, nil
}

// ModWithRecip reduces p modulo divisor given a precomputed reciprocal of
// divisor, skipping the quotient accumulation DivMod performs. Callers
// that need the remainder against the same divisor many times (the
// remainder tree in polyeval.go) compute the reciprocal once and reuse it
// here for every leaf.
func (p Polynomial) ModWithRecip(divisor, divisorRecip Polynomial) Polynomial {
	if len(p.Coeff) < len(divisor.Coeff) {
		return p
	}
	d := divisor.Deg()
	dividend := p
	var rem Polynomial
	for {
		term := dividend.Upper(d).Mul(divisorRecip).Upper(d)
		rem = dividend.Sub(term.Mul(divisor))
		if len(rem.Coeff) < len(divisor.Coeff) || rem.isZero() {
			break
		}
		dividend = rem
	}
	return rem
}

// Recip computes recip(f)(x) = floor(x^(2d)/f(x)) in (Z/n)[x] for f of
// degree d, via Montgomery's RECIP algorithm: build the power-series
// inverse of the coefficient-reversed polynomial by Newton iteration,
// doubling the known precision each step, then reverse the result back
// into a degree-d polynomial. Fails with *InverseNotFound iff
// gcd(leading coefficient of f, n) > 1.
func (p Polynomial) Recip() (Polynomial, error) {
	n := p.N
	d := p.Deg()
	invLead, err := Inv(p.Coeff[d], n)
	if err != nil {
		return Polynomial{}, err
	}

	// fRev is f with its coefficients reversed: fRev[i] = f[d-i], i.e. the
	// coefficients of x^d * f(1/x).
	fRev := make([]*big.Int, d+1)
	for i := 0; i <= d; i++ {
		fRev[i] = p.Coeff[d-i]
	}

	g := []*big.Int{invLead}
	for len(g) < d+1 {
		newLen := 2 * len(g)
		if newLen > d+1 {
			newLen = d + 1
		}
		fTrunc := fRev
		if len(fTrunc) > newLen {
			fTrunc = fTrunc[:newLen]
		}
		gPadded := padRaw(g, newLen)
		t := mulRaw(fTrunc, gPadded, n)
		if len(t) > newLen {
			t = t[:newLen]
		}
		twoMinusT := make([]*big.Int, newLen)
		for i := 0; i < newLen; i++ {
			var v *big.Int
			if i < len(t) {
				v = new(big.Int).Neg(t[i])
			} else {
				v = new(big.Int)
			}
			if i == 0 {
				v.Add(v, two)
			}
			twoMinusT[i] = v.Mod(v, n)
		}
		gNew := mulRaw(gPadded, twoMinusT, n)
		if len(gNew) > newLen {
			gNew = gNew[:newLen]
		}
		g = gNew
	}

	rev := make([]*big.Int, d+1)
	for i := 0; i <= d; i++ {
		rev[i] = g[d-i]
	}
	return NewPoly(rev, n), nil
}
