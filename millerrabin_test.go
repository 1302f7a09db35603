package ecm

import (
	"math/big"
	"testing"
)

// Spec section 8 scenario 5, restricted to a tractable range: every
// composite below 20000 is rejected and every prime in that range is
// accepted, using the first 10 primes as witnesses.
func TestMillerRabinAgreesWithSieveBelow20000(t *testing.T) {
	witnesses := DefaultWitnesses(10)
	primes := PrimeGen.Primes(20000)
	isPrime := make(map[int64]bool, len(primes))
	for _, p := range primes {
		isPrime[p] = true
	}

	for n := int64(2); n < 20000; n++ {
		got := MillerRabin(big.NewInt(n), witnesses)
		want := isPrime[n]
		if got != want {
			t.Fatalf("MillerRabin(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestMillerRabinHandlesSmallAndEvenInputs(t *testing.T) {
	witnesses := DefaultWitnesses(5)
	if !MillerRabin(big.NewInt(2), witnesses) {
		t.Error("2 should be prime")
	}
	if !MillerRabin(big.NewInt(3), witnesses) {
		t.Error("3 should be prime")
	}
	if MillerRabin(big.NewInt(4), witnesses) {
		t.Error("4 should be composite")
	}
	if MillerRabin(big.NewInt(1), witnesses) {
		t.Error("1 should not be reported prime")
	}
}

func TestDefaultWitnessesReturnsFirstKPrimes(t *testing.T) {
	w := DefaultWitnesses(5)
	want := []int64{2, 3, 5, 7, 11}
	if len(w) != len(want) {
		t.Fatalf("len(DefaultWitnesses(5)) = %d, want %d", len(w), len(want))
	}
	for i, v := range want {
		if w[i].Cmp(big.NewInt(v)) != 0 {
			t.Errorf("DefaultWitnesses(5)[%d] = %v, want %d", i, w[i], v)
		}
	}
}

func TestProbablePrimesFindsKnownPrimesInWindow(t *testing.T) {
	witnesses := DefaultWitnesses(10)
	got := ProbablePrimes(big.NewInt(100), 30, 100, witnesses)
	want := []int64{101, 103, 107, 109, 113, 127}
	if len(got) != len(want) {
		t.Fatalf("ProbablePrimes(100,30) = %v, want %v", got, want)
	}
	for i, v := range want {
		if got[i].Cmp(big.NewInt(v)) != 0 {
			t.Errorf("ProbablePrimes[%d] = %v, want %d", i, got[i], v)
		}
	}
}
