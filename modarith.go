package ecm

import "math/big"

// Gcd returns the non-negative greatest common divisor of a and b.
func Gcd(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// Inv returns the unique y in [0,n) with x*y ≡ 1 (mod n), using the extended
// Euclidean algorithm. It fails with *InverseNotFound when gcd(x,n) > 1; the
// caller can then recover a factor via (*InverseNotFound).Factor().
func Inv(x, n *big.Int) (*big.Int, error) {
	a := new(big.Int).Mod(x, n)
	b := new(big.Int).Set(n)
	ta, tb := big.NewInt(1), big.NewInt(0)
	q, r := new(big.Int), new(big.Int)
	for a.Sign() > 0 {
		q.DivMod(b, a, r)
		b.Set(a)
		a.Set(r)
		ta, tb = new(big.Int).Sub(tb, new(big.Int).Mul(q, ta)), ta
	}
	if modArithDebug {
		check := new(big.Int).Mod(new(big.Int).Sub(new(big.Int).Mul(tb, x), b), n)
		if check.Sign() != 0 {
			panic("ecm: Bezout identity violated")
		}
	}
	if b.Cmp(one) != 0 {
		return nil, newInverseNotFound(x, n)
	}
	return tb.Mod(tb, n), nil
}

// modArithDebug gates the Bezout-identity assertion in Inv. Off by default;
// enable it in tests that want the extra check.
var modArithDebug = false

// InvMulti computes the modular inverse of every element of xs in one pass,
// using Montgomery's trick: a single prefix-product inversion fans out to
// every individual inverse with O(len(xs)) multiplications instead of
// O(len(xs)) inversions. Results are returned in the same order as xs,
// matching the element-wise contract callers rely on (unlike a
// value-keyed map, which silently collapses duplicate input values).
//
// On failure, the returned *InverseNotFound carries some element of xs
// with gcd(x,n) > 1 — not necessarily the first one encountered.
func InvMulti(xs []*big.Int, n *big.Int) ([]*big.Int, error) {
	d := len(xs)
	if d == 0 {
		return nil, nil
	}
	if d == 1 {
		inv, err := Inv(xs[0], n)
		if err != nil {
			return nil, err
		}
		return []*big.Int{inv}, nil
	}

	prefix := make([]*big.Int, d)
	acc := big.NewInt(1)
	for i, x := range xs {
		acc = new(big.Int).Mod(new(big.Int).Mul(acc, x), n)
		prefix[i] = acc
	}

	rootInv, err := Inv(prefix[d-1], n)
	if err != nil {
		// The batched product is non-invertible; scan for a concrete
		// offending element so the caller still gets a usable factor.
		for _, x := range xs {
			xm := new(big.Int).Mod(x, n)
			g := Gcd(xm, n)
			if g.Cmp(one) > 0 {
				return nil, newInverseNotFound(x, n)
			}
		}
		return nil, err
	}

	res := make([]*big.Int, d)
	run := rootInv
	for i := d - 1; i > 0; i-- {
		res[i] = new(big.Int).Mod(new(big.Int).Mul(run, prefix[i-1]), n)
		run = new(big.Int).Mod(new(big.Int).Mul(run, xs[i]), n)
	}
	res[0] = run
	return res, nil
}

// IRoot returns r such that r**d == x exactly, and ok == true. If x is not
// a perfect d-th power, ok is false and r is the integer part of the root.
// Requires x >= 0 and d >= 1.
func IRoot(x *big.Int, d int) (r *big.Int, ok bool) {
	if x.Sign() < 0 || d < 1 {
		panic("ecm: IRoot requires x >= 0 and d >= 1")
	}
	if x.Sign() == 0 {
		return big.NewInt(0), true
	}
	if d == 1 {
		return new(big.Int).Set(x), true
	}
	if d == 2 {
		r := new(big.Int).Sqrt(x)
		sq := new(big.Int).Mul(r, r)
		return r, sq.Cmp(x) == 0
	}

	dBig := big.NewInt(int64(d))
	dMinus1 := big.NewInt(int64(d - 1))

	// Newton's method, seeded from the bit length so it converges in a
	// handful of iterations regardless of the size of x.
	guessBits := (x.BitLen()+d-1)/d + 1
	cur := new(big.Int).Lsh(big.NewInt(1), uint(guessBits))
	for {
		pow := new(big.Int).Exp(cur, dMinus1, nil)
		next := new(big.Int).Div(x, pow)
		next.Add(next, new(big.Int).Mul(dMinus1, cur))
		next.Div(next, dBig)
		if next.Cmp(cur) >= 0 {
			break
		}
		cur = next
	}
	check := new(big.Int).Exp(cur, dBig, nil)
	return cur, check.Cmp(x) == 0
}

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)
