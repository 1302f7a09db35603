package ecm

import (
	"math/big"
	"math/rand"
	"time"
)

// Options configures an ECM round or a full factorize call. The zero value
// is not valid on its own; use DefaultOptions and override fields, or rely
// on the schedule table in driver.go, which builds its own Options per
// escalation step.
type Options struct {
	Rounds     int          // maximum curve seeds to try before giving up
	B1         int64        // Stage-1 smoothness bound
	B2         int64        // Stage-2 bound, must be > B1
	Wheel      int64        // Stage-2 step; must be a primorial (30, 210, 2310)
	Witnesses  []*big.Int   // Miller-Rabin witnesses; defaults to the first 100 primes
	Seed       int64        // PRNG seed; 0 means "seed from the clock"
	Parallel   int          // number of curve rounds to run concurrently; <=1 means sequential
}

// DefaultOptions returns the first rung of the driver's escalating ECM
// schedule (spec section 4.10): a cheap, fast-rejecting configuration
// suitable for peeling off small-to-medium factors before trying harder.
func DefaultOptions() Options {
	return Options{
		Rounds: 10,
		B1:     2_000,
		B2:     50_000,
		Wheel:  210,
	}
}

// newRand builds the PRNG an ECM call draws curve seeds from. A zero Seed
// means "not reproducible", matching the Seed config option's documented
// "optional" nature.
func (o Options) newRand() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (o Options) witnesses() []*big.Int {
	if o.Witnesses != nil {
		return o.Witnesses
	}
	return DefaultWitnesses(100)
}

// randBigInRange returns a uniform random value in [lo, hi].
func randBigInRange(rng *rand.Rand, lo, hi *big.Int) *big.Int {
	span := new(big.Int).Sub(hi, lo)
	span.Add(span, one)
	v := new(big.Int).Rand(rng, span)
	return v.Add(v, lo)
}
