package ecm

import (
	"math/big"
	"testing"
)

func TestGcdCommutativeNonNegative(t *testing.T) {
	cases := [][2]int64{{48, 18}, {18, 48}, {-48, 18}, {0, 7}, {7, 7}}
	for _, c := range cases {
		a, b := big.NewInt(c[0]), big.NewInt(c[1])
		g1 := Gcd(a, b)
		g2 := Gcd(b, a)
		if g1.Cmp(g2) != 0 {
			t.Errorf("Gcd(%v,%v)=%v != Gcd(%v,%v)=%v", a, b, g1, b, a, g2)
		}
		if g1.Sign() < 0 {
			t.Errorf("Gcd(%v,%v) = %v, want non-negative", a, b, g1)
		}
	}
	if Gcd(big.NewInt(9), big.NewInt(9)).Cmp(big.NewInt(9)) != 0 {
		t.Errorf("Gcd(9,9) should be idempotent and equal 9")
	}
}

func TestInvRoundTrips(t *testing.T) {
	n := big.NewInt(1_000_003)
	for _, x := range []int64{1, 2, 5, 12345, 999_999} {
		xb := big.NewInt(x)
		inv, err := Inv(xb, n)
		if err != nil {
			t.Fatalf("Inv(%d): %v", x, err)
		}
		prod := new(big.Int).Mul(xb, inv)
		prod.Mod(prod, n)
		if prod.Cmp(one) != 0 {
			t.Errorf("Inv(%d)*%d = %v, want 1", x, x, prod)
		}
	}
}

func TestInvFailsOnNonCoprime(t *testing.T) {
	n := big.NewInt(35) // 5*7
	_, err := Inv(big.NewInt(10), n) // gcd(10,35) = 5
	inv, ok := err.(*InverseNotFound)
	if !ok {
		t.Fatalf("expected *InverseNotFound, got %v", err)
	}
	if inv.Factor().Cmp(big.NewInt(5)) != 0 {
		t.Errorf("Factor() = %v, want 5", inv.Factor())
	}
}

func TestInvMultiAgreesWithInv(t *testing.T) {
	n := big.NewInt(1_000_003)
	xs := []*big.Int{big.NewInt(3), big.NewInt(17), big.NewInt(101), big.NewInt(998_877)}

	got, err := InvMulti(xs, n)
	if err != nil {
		t.Fatalf("InvMulti: %v", err)
	}
	for i, x := range xs {
		want, err := Inv(x, n)
		if err != nil {
			t.Fatalf("Inv(%v): %v", x, err)
		}
		if got[i].Cmp(want) != 0 {
			t.Errorf("InvMulti[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestInvMultiFailsWithOffendingFactor(t *testing.T) {
	n := big.NewInt(35) // 5*7
	xs := []*big.Int{big.NewInt(3), big.NewInt(10), big.NewInt(4)} // gcd(10,35)=5
	_, err := InvMulti(xs, n)
	inv, ok := err.(*InverseNotFound)
	if !ok {
		t.Fatalf("expected *InverseNotFound, got %v", err)
	}
	g := Gcd(inv.X, n)
	if g.Cmp(one) <= 0 {
		t.Errorf("raised x=%v does not share a factor with n=%v", inv.X, n)
	}
}

func TestIRootExactAndInexact(t *testing.T) {
	cases := []struct {
		x    int64
		d    int
		want int64
		ok   bool
	}{
		{27, 3, 3, true},
		{28, 3, 3, false},
		{1024, 10, 2, true},
		{0, 5, 0, true},
		{81, 4, 3, true},
		{9, 2, 3, true},
	}
	for _, c := range cases {
		r, ok := IRoot(big.NewInt(c.x), c.d)
		if ok != c.ok {
			t.Errorf("IRoot(%d,%d) ok=%v, want %v", c.x, c.d, ok, c.ok)
			continue
		}
		if ok && r.Cmp(big.NewInt(c.want)) != 0 {
			t.Errorf("IRoot(%d,%d) = %v, want %v", c.x, c.d, r, c.want)
		}
	}
}
