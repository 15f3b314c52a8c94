package btree

import "github.com/ansel1/merry"

/*
Verify walks the whole tree and checks the B-tree invariants:
  - keys within a node are strictly increasing and bounded by the separators above them
  - every non-root node holds between ceil(order/2)-1 and order-1 keys, the root at most order-1
  - internal nodes have exactly one more child than keys, and each child points back to its parent
  - all leaves are at the same depth

It returns an ErrCorrupt error describing the first violation found.
*/
func (t *Btree) Verify() error {
	if t.root == nil {
		return nil
	}
	if t.root.parent != nil {
		return merry.Appendf(ErrCorrupt, "root %v has a parent", t.root.Keys())
	}
	v := &verifier{leafDepth: -1}
	return v.check(t.root, 0, nil, nil)
}

type verifier struct {
	leafDepth int
}

// check validates n, whose keys must lie strictly between lo and hi (nil means unbounded).
func (v *verifier) check(n *Node, depth int, lo, hi *int) error {
	keys := n.Keys()
	if n.numItems > n.maxItems() {
		return merry.Appendf(ErrCorrupt, "node %v holds %d keys, max is %d", keys, n.numItems, n.maxItems())
	}
	if n.parent != nil && n.numItems < n.minItems() {
		return merry.Appendf(ErrCorrupt, "node %v holds %d keys, min is %d", keys, n.numItems, n.minItems())
	}
	for i, k := range keys {
		if i > 0 && keys[i-1] >= k {
			return merry.Appendf(ErrCorrupt, "node %v keys out of order at %d", keys, i)
		}
		if (lo != nil && k <= *lo) || (hi != nil && k >= *hi) {
			return merry.Appendf(ErrCorrupt, "node %v key %d outside its separators", keys, k)
		}
	}

	if n.isLeaf() {
		for _, child := range n.children {
			if child != nil {
				return merry.Appendf(ErrCorrupt, "leaf %v has a child", keys)
			}
		}
		if v.leafDepth < 0 {
			v.leafDepth = depth
		}
		if depth != v.leafDepth {
			return merry.Appendf(ErrCorrupt, "leaf %v at depth %d, expected %d", keys, depth, v.leafDepth)
		}
		return nil
	}

	for i, child := range n.children {
		if i > n.numItems {
			if child != nil {
				return merry.Appendf(ErrCorrupt, "node %v has a child past slot %d", keys, n.numItems)
			}
			continue
		}
		if child == nil {
			return merry.Appendf(ErrCorrupt, "node %v is missing child %d", keys, i)
		}
		if child.parent != n {
			return merry.Appendf(ErrCorrupt, "child %v of %v has a stale parent", child.Keys(), keys)
		}
		childLo, childHi := lo, hi
		if i > 0 {
			childLo = &keys[i-1]
		}
		if i < n.numItems {
			childHi = &keys[i]
		}
		if err := v.check(child, depth+1, childLo, childHi); err != nil {
			return err
		}
	}
	return nil
}
