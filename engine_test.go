package ecm

import (
	"math/big"
	"testing"
)

func assertNonTrivialFactor(t *testing.T, n, g *big.Int) {
	t.Helper()
	if g.Cmp(one) <= 0 || g.Cmp(n) >= 0 {
		t.Fatalf("factor %v is not strictly between 1 and %v", g, n)
	}
	rem := new(big.Int).Mod(n, g)
	if rem.Sign() != 0 {
		t.Fatalf("%v does not divide %v", g, n)
	}
}

// Small, fast-converging semiprimes for engine-level unit tests; a fixed
// Seed keeps curve sampling deterministic.
func smallSemiprime() (*big.Int, *big.Int, *big.Int) {
	p := big.NewInt(9973)
	q := big.NewInt(10007)
	return new(big.Int).Mul(p, q), p, q
}

func TestNaiveECMFindsSmallFactor(t *testing.T) {
	n, p, q := smallSemiprime()
	opts := Options{Rounds: 200, B1: 2000, B2: 50000, Wheel: 210, Seed: 1}
	g, ok := NaiveECM(n, opts)
	if !ok {
		t.Fatalf("NaiveECM failed to factor %v", n)
	}
	assertNonTrivialFactor(t, n, g)
	if g.Cmp(p) != 0 && g.Cmp(q) != 0 {
		t.Errorf("factor %v is neither %v nor %v", g, p, q)
	}
}

func TestXZECMFindsSmallFactor(t *testing.T) {
	n, p, q := smallSemiprime()
	opts := Options{Rounds: 200, B1: 2000, B2: 50000, Wheel: 210, Seed: 2}
	g, ok := XZECM(n, opts)
	if !ok {
		t.Fatalf("XZECM failed to factor %v", n)
	}
	assertNonTrivialFactor(t, n, g)
	if g.Cmp(p) != 0 && g.Cmp(q) != 0 {
		t.Errorf("factor %v is neither %v nor %v", g, p, q)
	}
}

func TestPolyevalECMFindsSmallFactor(t *testing.T) {
	n, p, q := smallSemiprime()
	opts := Options{Rounds: 200, B1: 2000, B2: 50000, Wheel: 210, Seed: 3}
	g, ok := PolyevalECM(n, opts)
	if !ok {
		t.Fatalf("PolyevalECM failed to factor %v", n)
	}
	assertNonTrivialFactor(t, n, g)
	if g.Cmp(p) != 0 && g.Cmp(q) != 0 {
		t.Errorf("factor %v is neither %v nor %v", g, p, q)
	}
}

// Spec section 8 scenario 3.
func TestECMFactorsFirstLargeSemiprime(t *testing.T) {
	n, ok := new(big.Int).SetString("10648244288842058842742264007469181", 10)
	if !ok {
		t.Fatal("bad literal")
	}
	g, found := ECM(n, 100, 10_000, 100_000, 0)
	if !found {
		t.Fatalf("ECM failed to factor %v", n)
	}
	assertNonTrivialFactor(t, n, g)
}

// Spec section 8 scenario 4.
func TestECMFactorsSecondLargeSemiprime(t *testing.T) {
	n, ok := new(big.Int).SetString("310739457793333465418548557523014289", 10)
	if !ok {
		t.Fatal("bad literal")
	}
	g, found := ECM(n, 100, 10_000, 800_000, 0)
	if !found {
		t.Fatalf("ECM failed to factor %v", n)
	}
	assertNonTrivialFactor(t, n, g)
}

func TestWheelResiduesAreCoprimeToWheel(t *testing.T) {
	for _, wheel := range []int64{30, 210, 2310} {
		full := wheelResidues(wheel, false)
		half := wheelResidues(wheel, true)
		if len(full) != 2*len(half) {
			t.Errorf("wheel %d: len(full)=%d, want 2*len(half)=%d", wheel, len(full), 2*len(half))
		}
		for _, j := range full {
			if Gcd(big.NewInt(j), big.NewInt(wheel)).Cmp(one) != 0 {
				t.Errorf("wheel %d: residue %d not coprime", wheel, j)
			}
		}
		for _, j := range half {
			if j > wheel/2 {
				t.Errorf("wheel %d: half-period residue %d exceeds wheel/2", wheel, j)
			}
		}
	}
}
