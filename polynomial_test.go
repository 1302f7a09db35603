package ecm

import (
	"math/big"
	"testing"
)

func TestPolyAddSub(t *testing.T) {
	n := big.NewInt(11)
	p := NewPolyInt64(n, 4, 0, 0, 3, 0, 1)
	q := NewPolyInt64(n, 0, 0, 0, 4, 0, 0, 6)

	sum := p.Add(q)
	want := NewPolyInt64(n, 4, 0, 0, 7, 0, 1, 6)
	if !sum.Equal(want) {
		t.Errorf("Add: got %v want %v", sum, want)
	}

	diff := p.Sub(q)
	want = NewPolyInt64(n, 4, 0, 0, 10, 0, 1, 5)
	if !diff.Equal(want) {
		t.Errorf("Sub: got %v want %v", diff, want)
	}
}

func TestPolyMul(t *testing.T) {
	n := big.NewInt(11)
	p := NewPolyInt64(n, 4, 0, 0, 3, 0, 1)
	q := NewPolyInt64(n, 0, 0, 0, 4, 0, 0, 6)

	got := p.Mul(q)
	want := NewPolyInt64(n, 0, 0, 0, 5, 0, 0, 3, 0, 4, 7, 0, 6)
	if !got.Equal(want) {
		t.Errorf("Mul: got %v want %v", got, want)
	}
}

func TestPolyTrimKeepsZeroSentinel(t *testing.T) {
	n := big.NewInt(7)
	p := NewPolyInt64(n, 0)
	if p.Deg() != 0 || p.Coeff[0].Sign() != 0 {
		t.Fatalf("zero polynomial should trim to [0], got %v", p)
	}
	if !p.isZero() {
		t.Fatalf("isZero should report true for %v", p)
	}
}

func TestPolySlice(t *testing.T) {
	n := big.NewInt(97)
	p := NewPolyInt64(n, 1, 2, 3, 4, 5)

	upper := p.Upper(2)
	want := NewPolyInt64(n, 3, 4, 5)
	if !upper.Equal(want) {
		t.Errorf("Upper(2): got %v want %v", upper, want)
	}

	mid := p.Slice(1, 3)
	want = NewPolyInt64(n, 2, 3)
	if !mid.Equal(want) {
		t.Errorf("Slice(1,3): got %v want %v", mid, want)
	}
}

func TestPolyEval(t *testing.T) {
	n := big.NewInt(10)
	p := NewPolyInt64(n, 6, 2, 0, 4, 1)
	got := p.Eval(big.NewInt(2))
	want := big.NewInt(8)
	if got.Cmp(want) != 0 {
		t.Errorf("Eval: got %v want %v", got, want)
	}
}

func TestPolyRecipAndDivMod(t *testing.T) {
	n := big.NewInt(307)
	f := NewPolyInt64(n, 98, 35, 0, 0, 23, 55, 44, 32)
	divisor := NewPolyInt64(n, 48, 0, 43, 22, 56, 84, 45, 67, 0, 34, 53)
	dividend := f.Mul(divisor).Add(NewPolyInt64(n, 85, 42, 11, 23, 45))

	quo, rem, err := dividend.DivMod(divisor)
	if err != nil {
		t.Fatalf("DivMod returned error: %v", err)
	}
	if !quo.Equal(f) {
		t.Errorf("DivMod quotient: got %v want %v", quo, f)
	}
	want := NewPolyInt64(n, 85, 42, 11, 23, 45)
	if !rem.Equal(want) {
		t.Errorf("DivMod remainder: got %v want %v", rem, want)
	}
}

func TestPolyRecipSelfInverse(t *testing.T) {
	n := big.NewInt(1000003)
	f := NewPolyInt64(n, 184, 187, 234, 1, 39, 245, 13, 268, 1)

	r, err := f.Recip()
	if err != nil {
		t.Fatalf("Recip returned error: %v", err)
	}

	d := f.Deg()
	product := f.Mul(r)
	// f*recip(f) must equal x^(2d) minus a remainder of degree < d; check
	// that the product reaches degree 2d with x^(2d) coefficient exactly 1.
	if product.Deg() < 2*d {
		t.Fatalf("f*recip(f) degree %d too low, want >= %d", product.Deg(), 2*d)
	}
	top := product.Coeff[2*d]
	if top.Cmp(one) != 0 {
		t.Errorf("leading coefficient of f*recip(f): got %v want 1", top)
	}
}

func TestPolyRecipFailsOnNonInvertibleLeadingCoeff(t *testing.T) {
	n := big.NewInt(15) // 3*5
	f := NewPolyInt64(n, 1, 0, 3) // leading coeff 3 shares a factor with 15
	_, err := f.Recip()
	var target *InverseNotFound
	if !asInverseNotFound(err, &target) {
		t.Fatalf("expected *InverseNotFound, got %v", err)
	}
}

func asInverseNotFound(err error, target **InverseNotFound) bool {
	e, ok := err.(*InverseNotFound)
	if ok {
		*target = e
	}
	return ok
}
