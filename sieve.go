package ecm

import (
	"math"
	"sync"
)

// wheel30Residues holds the residues mod 30 that are coprime to 2, 3 and 5 —
// the classic 2-3-5 wheel used to skip 22 of every 30 candidates.
var wheel30Residues = [8]int64{1, 7, 11, 13, 17, 19, 23, 29}

// Sieve is a stateful, append-only wheel sieve. It caches an ascending list
// of primes starting with [2,3,5] and grows it monotonically, re-sieving
// only the newly requested range. It is process-wide mutable state, so
// every method is safe for concurrent use (needed once ECM rounds run in
// parallel via Options.Parallel).
type Sieve struct {
	mu     sync.Mutex
	primes []int64 // ascending, always starts 2, 3, 5, ...
	limit  int64   // primes below limit are guaranteed complete
}

// MaxSegment bounds the size of a single re-sieve partition, in candidates
// considered (not bytes); larger ranges are swept in successive partitions
// to cap the working set.
const MaxSegment = 8_000_000

// NewSieve returns a sieve pre-seeded with the wheel base primes.
func NewSieve() *Sieve {
	return &Sieve{primes: []int64{2, 3, 5}, limit: 5}
}

// PrimeGen is the package-wide prime cache. It never shrinks during the
// process lifetime.
var PrimeGen = NewSieve()

// ExtendTo grows the cache so that every prime below upper is present.
// It is a no-op if the cache is already extended far enough.
func (s *Sieve) ExtendTo(upper int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extendLocked(upper)
}

func (s *Sieve) extendLocked(upper int64) {
	for s.limit < upper {
		next := s.limit + MaxSegment
		if next > upper {
			next = upper
		}
		s.sieveSegmentLocked(s.limit, next)
		s.limit = next
	}
}

// sieveSegmentLocked extends s.primes with every prime in [lo, hi), using
// the primes already known (which must cover up to sqrt(hi)) to cross off
// composites among the wheel candidates.
func (s *Sieve) sieveSegmentLocked(lo, hi int64) {
	if hi <= lo {
		return
	}
	needed := int64(math.Sqrt(float64(hi))) + 1
	if needed > s.limit {
		// Recurse to build up the small-prime base first; this terminates
		// because needed << hi for any hi worth segmenting.
		s.extendLocked(needed)
		// That recursion already appended every prime in [lo, s.limit);
		// resume after it so no prime is appended twice.
		if s.limit > lo {
			lo = s.limit
		}
		if lo >= hi {
			return
		}
	}

	start := lo
	if start < 2 {
		start = 2
	}
	composite := make([]bool, hi-start)
	markFrom := func(p int64) {
		base := (start / p) * p
		if base < start {
			base += p
		}
		if base < p*p {
			base = p * p
		}
		for m := base; m < hi; m += p {
			if m >= start {
				composite[m-start] = true
			}
		}
	}
	for _, p := range s.primes {
		if p*p >= hi {
			break
		}
		markFrom(p)
	}
	for n := start; n < hi; n++ {
		if composite[n-start] {
			continue
		}
		if n <= 5 {
			continue // 2,3,5 are pre-seeded
		}
		r := n % 30
		onWheel := false
		for _, w := range wheel30Residues {
			if r == w {
				onWheel = true
				break
			}
		}
		if !onWheel {
			continue
		}
		s.primes = append(s.primes, n)
	}
}

// Primes returns every prime in [2, upper) in ascending order, extending
// the cache as needed.
func (s *Sieve) Primes(upper int64) []int64 {
	s.ExtendTo(upper)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.primes))
	for _, p := range s.primes {
		if p >= upper {
			break
		}
		out = append(out, p)
	}
	return out
}

// SieveRange emits every prime in [a, b) in ascending order, in a single
// pass using memory proportional to the partition size rather than to b
// itself — the sieve's primes-in-[a,b) contract.
func (s *Sieve) SieveRange(a, b int64) []int64 {
	if b <= a {
		return nil
	}
	var out []int64
	for lo := a; lo < b; {
		hi := lo + MaxSegment
		if hi > b {
			hi = b
		}
		out = append(out, s.rangeSegment(lo, hi)...)
		lo = hi
	}
	return out
}

func (s *Sieve) rangeSegment(lo, hi int64) []int64 {
	needed := int64(math.Sqrt(float64(hi))) + 1
	s.ExtendTo(needed)

	s.mu.Lock()
	basePrimes := make([]int64, 0, len(s.primes))
	for _, p := range s.primes {
		if p*p >= hi {
			break
		}
		basePrimes = append(basePrimes, p)
	}
	s.mu.Unlock()

	start := lo
	if start < 2 {
		start = 2
	}
	composite := make([]bool, hi-start)
	for _, p := range basePrimes {
		base := (start / p) * p
		if base < start {
			base += p
		}
		if base < p*p {
			base = p * p
		}
		for m := base; m < hi; m += p {
			composite[m-start] = true
		}
	}
	var out []int64
	for n := start; n < hi; n++ {
		if !composite[n-start] {
			out = append(out, n)
		}
	}
	return out
}

// WheelSieveCount returns the number of primes in [lbound, ubound).
func WheelSieveCount(lbound, ubound int64) int64 {
	return int64(len(PrimeGen.SieveRange(lbound, ubound)))
}
