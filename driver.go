package ecm

// Driver orchestrates the whole factorization: trial division by small
// primes, perfect-power detection, Miller-Rabin primality testing, and an
// escalating ECM schedule (spec section 4.10), recursing on every factor
// ECM finds until the worklist is empty.

import (
	"errors"
	"math"
	"math/big"
)

// smallPrimeBound is the trial-division cutoff; spec 4.10 step 1.
const smallPrimeBound = 1033

// Schedule is one rung of the driver's escalating ECM effort ladder.
type Schedule struct {
	Rounds int
	B1, B2 int64
	Wheel  int64
}

// DefaultSchedule is the driver's default four-rung escalation, carried
// verbatim from the original implementation this spec was distilled from
// (wheel_sieve/factorize.py's explicit tuples).
var DefaultSchedule = []Schedule{
	{Rounds: 10, B1: 2_000, B2: 50_000, Wheel: 210},
	{Rounds: 40, B1: 11_000, B2: 600_000, Wheel: 2310},
	{Rounds: 100, B1: 50_000, B2: 4_000_000, Wheel: 2310},
	{Rounds: 200, B1: 250_000, B2: 40_000_000, Wheel: 2310},
}

// FactorMap maps a factor's decimal string to its multiplicity. big.Int
// is not a valid map key type in Go (it compares by pointer, not value),
// so every public factor map in this package is keyed by decimal string;
// use Int to recover the *big.Int.
type FactorMap map[string]int

// Int parses a FactorMap key back into a *big.Int. Panics if s is not a
// key this package produced, since that indicates a programming error
// rather than bad input.
func (FactorMap) Int(s string) *big.Int {
	return bigFromDecimal(s)
}

func (m FactorMap) add(n *big.Int, mult int) {
	m[n.String()] += mult
}

// worklistItem is a pending composite (or not-yet-tested) residue, along
// with the outer multiplicity it contributes to the final factorization
// once resolved.
type worklistItem struct {
	Value *big.Int
	Mult  int
}

// ErrInvalidInput is returned by Factorize when N < 2 (spec section 7).
var ErrInvalidInput = errors.New("ecm: factorize requires N >= 2")

// Factorize returns the prime factorization of N as far as the default
// ECM schedule can push it, plus a residue map of composites it could not
// split (spec section 6's primary entry point). witnesses defaults to
// the first 100 primes when nil.
func Factorize(n *big.Int, witnesses []*big.Int) (primeFactors, unresolved FactorMap, err error) {
	return FactorizeWithSchedule(n, witnesses, DefaultSchedule)
}

// FactorizeWithSchedule is Factorize with an explicit ECM escalation
// ladder, exposed so callers (and tests) can trade thoroughness for
// speed without touching the package default.
func FactorizeWithSchedule(n *big.Int, witnesses []*big.Int, schedule []Schedule) (primeFactors, unresolved FactorMap, err error) {
	if n.Cmp(two) < 0 {
		return nil, nil, ErrInvalidInput
	}
	if witnesses == nil {
		witnesses = DefaultWitnesses(100)
	}

	primeFactors = FactorMap{}
	unresolved = FactorMap{}

	log.Infof("factorize: trial division up to %d", smallPrimeBound)
	residue := new(big.Int).Set(n)
	var worklist []worklistItem

	for _, p := range PrimeGen.Primes(smallPrimeBound) {
		pBig := big.NewInt(p)
		count := 0
		for residue.Cmp(one) > 0 {
			q, r := new(big.Int).QuoRem(residue, pBig, new(big.Int))
			if r.Sign() != 0 {
				break
			}
			residue = q
			count++
		}
		if count > 0 {
			primeFactors.add(pBig, count)
		}
	}

	if residue.Cmp(one) > 0 {
		log.Debugf("factorize: residue after trial division: %s", residue)
		worklist = append(worklist, worklistItem{Value: residue, Mult: 1})
	}

	for len(worklist) > 0 {
		item := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		c, m := item.Value, item.Mult

		if c.Cmp(one) == 0 {
			continue
		}

		if MillerRabin(c, witnesses) {
			log.Debugf("factorize: %s is prime (mult %d)", c, m)
			primeFactors.add(c, m)
			absorbPrime(&worklist, primeFactors, c)
			continue
		}

		if base, power, ok := perfectPower(c); ok {
			log.Debugf("factorize: %s is a perfect %d-th power of %s", c, power, base)
			worklist = append(worklist, worklistItem{Value: base, Mult: m * power})
			continue
		}

		log.Infof("factorize: running ECM schedule on %s", c)
		factor, found := runSchedule(c, schedule)
		if !found {
			log.Infof("factorize: schedule exhausted for %s, marking unresolved", c)
			unresolved.add(c, m)
			continue
		}
		other := new(big.Int).Div(c, factor)
		log.Infof("factorize: %s = %s * %s", c, factor, other)
		worklist = append(worklist, worklistItem{Value: factor, Mult: m})
		worklist = append(worklist, worklistItem{Value: other, Mult: m})
	}

	return primeFactors, unresolved, nil
}

// runSchedule tries ECM at each successively more expensive schedule rung
// until one of them returns a non-trivial factor of c, or the ladder is
// exhausted. It uses the XZ accumulated-product engine, the default
// ECM() entry point's choice.
func runSchedule(c *big.Int, schedule []Schedule) (*big.Int, bool) {
	for i, s := range schedule {
		log.Debugf("factorize: schedule rung %d/%d (B1=%d, B2=%d) on %s", i+1, len(schedule), s.B1, s.B2, c)
		if f, ok := ECM(c, s.Rounds, s.B1, s.B2, s.Wheel); ok {
			if f.Cmp(one) > 0 && f.Cmp(c) < 0 {
				return f, true
			}
		}
	}
	return nil, false
}

// absorbPrime removes every factor of p from the pending worklist once p
// is confirmed prime, crediting the extracted multiplicity directly to
// primeFactors instead of leaving those items to be independently
// rediscovered by trial division or Miller-Rabin later (spec 4.10 step
// 3: "absorb any existing worklist entries divisible by c").
func absorbPrime(worklist *[]worklistItem, primeFactors FactorMap, p *big.Int) {
	kept := (*worklist)[:0]
	for _, item := range *worklist {
		v := new(big.Int).Set(item.Value)
		extracted := 0
		for {
			q, r := new(big.Int).QuoRem(v, p, new(big.Int))
			if r.Sign() != 0 {
				break
			}
			v = q
			extracted++
		}
		if extracted > 0 {
			primeFactors.add(p, extracted*item.Mult)
			if v.Cmp(one) == 0 {
				continue
			}
			item.Value = v
		}
		kept = append(kept, item)
	}
	*worklist = kept
}

// perfectPower tests, in ascending order, whether c is a perfect d-th power
// for each prime d < floor(bitlen(c)*log10(2)) + 2 (a bound just above
// log10(c)), returning the first exact root found: the smallest such prime
// exponent and its base. Spec
// 4.10 step 3's base-recursion fix: the caller re-queues (base, m*power),
// not (base, m+power).
func perfectPower(c *big.Int) (base *big.Int, power int, ok bool) {
	log10c := math.Log10(2) * float64(c.BitLen())
	limit := int64(log10c) + 2
	for _, d := range PrimeGen.Primes(limit) {
		if d < 2 {
			continue
		}
		r, exact := IRoot(c, int(d))
		if exact && r.Cmp(one) > 0 {
			return r, int(d), true
		}
	}
	return nil, 0, false
}
