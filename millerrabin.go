package ecm

import "math/big"

var (
	two      = big.NewInt(2)
	threeInt = big.NewInt(3)
)

// MillerRabin reports whether n passes the Miller-Rabin compositeness test
// against every witness in witnesses. A true result means n is (probably)
// prime; false means n is definitely composite.
func MillerRabin(n *big.Int, witnesses []*big.Int) bool {
	if n.Cmp(two) == 0 || n.Cmp(threeInt) == 0 {
		return true
	}
	if n.Cmp(two) < 0 || n.Bit(0) == 0 {
		return false
	}

	nMinus1 := new(big.Int).Sub(n, one)
	d := new(big.Int).Set(nMinus1)
	r := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		r++
	}

	nMinus2 := new(big.Int).Sub(n, two)
	for _, a := range witnesses {
		if a.Cmp(two) < 0 || a.Cmp(nMinus2) > 0 {
			continue
		}
		x := new(big.Int).Exp(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
			continue
		}
		composite := true
		for i := 0; i < r-1; i++ {
			x.Mul(x, x)
			x.Mod(x, n)
			if x.Cmp(nMinus1) == 0 {
				composite = false
				break
			}
		}
		if composite {
			return false
		}
	}
	return true
}

// DefaultWitnesses returns the first k primes as big.Int witnesses, so
// callers get a deterministic, scalable witness set instead of a fixed
// literal list.
func DefaultWitnesses(k int) []*big.Int {
	primes := PrimeGen.Primes(16)
	for int64(len(primes)) < int64(k) {
		primes = PrimeGen.Primes(primes[len(primes)-1]*2 + 16)
	}
	out := make([]*big.Int, k)
	for i := 0; i < k; i++ {
		out[i] = big.NewInt(primes[i])
	}
	return out
}

// ProbablePrimes yields probable primes in [from, from+span) by first
// sieving out multiples of every prime below sieveBound, then running
// Miller-Rabin with witnesses on the survivors.
func ProbablePrimes(from *big.Int, span int64, sieveBound int64, witnesses []*big.Int) []*big.Int {
	marked := make([]bool, span)
	for _, p := range PrimeGen.Primes(sieveBound) {
		pBig := big.NewInt(p)
		rem := new(big.Int).Mod(from, pBig).Int64()
		start := int64(0)
		if rem != 0 {
			start = p - rem
		}
		// p itself can fall inside [from, from+span) when the window is
		// small or starts near p; it's prime, not a multiple to mark.
		if new(big.Int).Add(from, big.NewInt(start)).Cmp(pBig) == 0 {
			start += p
		}
		for i := start; i < span; i += p {
			marked[i] = true
		}
	}
	var out []*big.Int
	for i := int64(0); i < span; i++ {
		if marked[i] {
			continue
		}
		candidate := new(big.Int).Add(from, big.NewInt(i))
		if MillerRabin(candidate, witnesses) {
			out = append(out, candidate)
		}
	}
	return out
}
