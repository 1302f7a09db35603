package ecm

// Polyeval evaluates a polynomial F at many points in O(M(d) log d) via a
// product/reciprocal/remainder tree over (Z/n)[x], instead of d separate
// Eval calls. This is the machinery the "polyeval" ECM-Stage-2 engine in
// engine.go relies on: it builds F = prod_j (x - x_j) once over the fixed
// residue x-coordinates, folds each block's product G of candidate
// x-coordinates into a running H := H*G mod F, and at the end of Stage 2
// evaluates H at every x_j in one remainder-tree pass instead of |leaves|
// individual polynomial reductions.

import "math/big"

// polyTree is a flat array of length 2k-1 representing a complete binary
// tree over k = len(leaves) padded up to a power of two; node i's children
// live at 2i+1 and 2i+2, and the root (the full product, or its
// reciprocal, or a remainder) is at index 0.
type polyTree struct {
	nodes []Polynomial
	n     *big.Int
}

// nextPow2 returns the smallest power of two >= x (x >= 1).
func nextPow2(x int) int {
	p := 1
	for p < x {
		p <<= 1
	}
	return p
}

// buildProductTree pads leaves with the constant polynomial 1 up to a
// power-of-two count, then folds pairwise products bottom-up so node i
// holds the product of its subtree's leaves, in left-to-right leaf order.
func buildProductTree(leaves []Polynomial, n *big.Int) *polyTree {
	k := nextPow2(len(leaves))
	size := 2*k - 1
	nodes := make([]Polynomial, size)

	one := NewPolyInt64(n, 1)
	firstLeaf := size - k
	for i := 0; i < k; i++ {
		if i < len(leaves) {
			nodes[firstLeaf+i] = leaves[i]
		} else {
			nodes[firstLeaf+i] = one
		}
	}
	for i := firstLeaf - 1; i >= 0; i-- {
		nodes[i] = nodes[2*i+1].Mul(nodes[2*i+2])
	}
	return &polyTree{nodes: nodes, n: n}
}

// root returns the tree's root polynomial (the full product for a product
// tree, or the top-level reciprocal/remainder for the other two trees).
func (t *polyTree) root() Polynomial { return t.nodes[0] }

func (t *polyTree) isLeaf(i int) bool { return 2*i+1 >= len(t.nodes) }

// buildRecipTree computes recip(node) top-down for every node of prod,
// starting from recip(root) and pushing each parent's reciprocal down to
// its children via Montgomery's identity: for gi = g1*g2 with deg d1, d2,
//
//	recip(g1) = (recip(gi)[d2:] * g2)[d2:]
//	recip(g2) = (recip(gi)[d1:] * g1)[d1:]
//
// Leaves (degree-1 factors x - x_i, or the padding constant 1) receive their
// reciprocal from their parent the same way; Recip is called directly only
// for a node the top-down pass has left unset.
func buildRecipTree(prod *polyTree) (*polyTree, error) {
	nodes := make([]Polynomial, len(prod.nodes))
	rootRecip, err := prod.root().Recip()
	if err != nil {
		return nil, err
	}
	nodes[0] = rootRecip

	for i := 0; i < len(prod.nodes); i++ {
		if prod.isLeaf(i) {
			if nodes[i].Coeff == nil {
				r, err := prod.nodes[i].Recip()
				if err != nil {
					return nil, err
				}
				nodes[i] = r
			}
			continue
		}
		left, right := 2*i+1, 2*i+2
		d1, d2 := prod.nodes[left].Deg(), prod.nodes[right].Deg()
		if nodes[i].Coeff == nil {
			r, err := prod.nodes[i].Recip()
			if err != nil {
				return nil, err
			}
			nodes[i] = r
		}
		nodes[left] = nodes[i].Upper(d2).Mul(prod.nodes[right]).Upper(d2)
		nodes[right] = nodes[i].Upper(d1).Mul(prod.nodes[left]).Upper(d1)
	}
	return &polyTree{nodes: nodes, n: prod.n}, nil
}

// remainderTreeLeaves computes F mod g_i for every leaf g_i of prod,
// top-down: the root holds F mod prod.root(), and each child holds its
// parent's remainder reduced modulo the child. At degree-1 leaves the
// remainder is the scalar F(x_i) mod n (a degree-0 polynomial). Any zero
// leaf is replaced with 1 so a single root value never zeros the whole
// running product downstream (spec's remainder-tree invariant). Returns
// the per-leaf values in left-to-right order, padding leaves included;
// internal-node remainders are not returned.
func remainderTreeLeaves(f Polynomial, prod, recip *polyTree) ([]*big.Int, error) {
	n := prod.n
	rem := make([]Polynomial, len(prod.nodes))
	rem[0] = f.ModWithRecip(prod.nodes[0], recip.nodes[0])

	var walk func(i int)
	walk = func(i int) {
		if prod.isLeaf(i) {
			return
		}
		left, right := 2*i+1, 2*i+2
		rem[left] = rem[i].ModWithRecip(prod.nodes[left], recip.nodes[left])
		rem[right] = rem[i].ModWithRecip(prod.nodes[right], recip.nodes[right])
		walk(left)
		walk(right)
	}
	walk(0)

	k := (len(prod.nodes) + 1) / 2
	firstLeaf := len(prod.nodes) - k
	leaves := make([]*big.Int, k)
	for i := 0; i < k; i++ {
		v := rem[firstLeaf+i].Coeff[0]
		if v.Sign() == 0 {
			v = one
		}
		leaves[i] = new(big.Int).Mod(v, n)
	}
	return leaves, nil
}

// RemainderTreeProduct returns prod_i F(x_i) mod n, with every zero
// F(x_i) replaced by 1 before folding — the Stage-2 test value the
// polyeval ECM engine checks gcd(·, n) against. leafVals holds the
// per-leaf F(x_i) values (or 1 where F(x_i) == 0) for a caller that needs
// to identify which specific x_i produced a 0 after a non-trivial gcd is
// found.
func RemainderTreeProduct(f Polynomial, xs []*big.Int, n *big.Int) (product *big.Int, leafVals []*big.Int, err error) {
	leaves := make([]Polynomial, len(xs))
	for i, x := range xs {
		negX := new(big.Int).Neg(x)
		negX.Mod(negX, n)
		leaves[i] = NewPoly([]*big.Int{negX, one}, n)
	}
	prod := buildProductTree(leaves, n)
	recip, err := buildRecipTree(prod)
	if err != nil {
		return nil, nil, err
	}
	leafVals, err = remainderTreeLeaves(f, prod, recip)
	if err != nil {
		return nil, nil, err
	}
	leafVals = leafVals[:len(xs)]
	acc := big.NewInt(1)
	for _, v := range leafVals {
		acc.Mul(acc, v)
		acc.Mod(acc, n)
	}
	return acc, leafVals, nil
}

// ProductTreeRoot is a small public seam onto buildProductTree used by
// tests verifying the "root equals the product of leaves" invariant
// without exposing the whole polyTree type.
func ProductTreeRoot(leaves []Polynomial, n *big.Int) Polynomial {
	return buildProductTree(leaves, n).root()
}
