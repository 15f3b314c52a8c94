package btree

import (
	"fmt"

	"github.com/ansel1/merry"
	"github.com/sirupsen/logrus"
)

// MinOrder is the smallest order for which splits leave both halves non-empty.
const MinOrder = 3

/*
Btree only keeps a pointer to root node of the tree.
A tree is made up of nodes. Each node contains data items.
A nil root denotes the empty tree.

Btree is not safe for concurrent use: a single mutation can touch every node from a leaf to
the root, so callers sharing a tree must serialize all calls behind one exclusive lock.
*/
type Btree struct {
	root  *Node
	order int
	log   logrus.FieldLogger
}

// Option configures a Btree.
type Option func(*Btree)

// WithLogger routes structural events (splits, rotations, merges) to l at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Btree) {
		t.log = l
	}
}

// NewBTree returns an empty tree whose nodes hold at most order children.
func NewBTree(order int, opts ...Option) (*Btree, error) {
	if order < MinOrder {
		return nil, merry.Appendf(ErrInvalidOrder, "order %d is below %d", order, MinOrder)
	}
	t := &Btree{
		order: order,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Init resets t to the empty tree.
func (t *Btree) Init() {
	t.root = nil
}

func (t *Btree) Order() int {
	return t.order
}

// Root returns the root node, or nil for the empty tree.
func (t *Btree) Root() *Node {
	return t.root
}

func (t *Btree) String() string {
	return fmt.Sprintf("Btree{order: %d, keys: %d, height: %d}", t.order, t.Len(), t.Height())
}

// Len returns the number of keys stored in the tree.
func (t *Btree) Len() int {
	return count(t.root)
}

func count(n *Node) int {
	if n == nil {
		return 0
	}
	total := n.numItems
	if !n.isLeaf() {
		for _, child := range n.children[:n.numItems+1] {
			total += count(child)
		}
	}
	return total
}

// Height returns the number of levels in the tree, 0 when empty.
func (t *Btree) Height() int {
	h := 0
	for n := t.root; n != nil; n = n.children[0] {
		h++
	}
	return h
}

/*
Search descends from the root looking for key.
If found, it returns the node holding key and the key's index in it.
Otherwise it returns the last visited node (always a leaf) and the index where key would be
inserted, which is the anchor expected by Insert. For the empty tree the anchor is nil.
*/
func (t *Btree) Search(key int) (*Node, int, bool) {
	var anchor *Node
	pos := 0
	for next := t.root; next != nil; {
		var found bool
		pos, found = next.search(key)
		if found {
			return next, pos, true
		}
		anchor = next
		next = next.children[pos]
	}
	return anchor, pos, false
}

// Find returns the record identifier stored with key.
func (t *Btree) Find(key int) (int64, error) {
	n, pos, found := t.Search(key)
	if !found {
		return 0, keyNotFound(key)
	}
	return n.items[pos].rec, nil
}

// Put inserts key with record rec. If key already exists its record is replaced and false is returned.
func (t *Btree) Put(key int, rec int64) bool {
	n, pos, found := t.Search(key)
	if found {
		n.items[pos].rec = rec
		return false
	}
	t.InsertRecord(n, pos, key, rec)
	return true
}

// Insert is InsertRecord without a record identifier.
func (t *Btree) Insert(anchor *Node, pos int, key int) {
	t.InsertRecord(anchor, pos, key, 0)
}

/*
InsertRecord inserts key at index pos of anchor, where anchor and pos come from a prior Search
that reported the key absent. Inserting a key that is already present is undefined.

If the anchor overflows it is split, and the promoted median is inserted into the parent at the
parent's own search index, repeating upwards. When the root itself splits, a new root owning
exactly the two halves is created: this is the only way the tree grows in height.
*/
func (t *Btree) InsertRecord(anchor *Node, pos int, key int, rec int64) {
	if anchor == nil && t.root != nil {
		// Caller skipped the search; recover the anchor ourselves.
		anchor, pos, _ = t.Search(key)
	}

	it := item{key: key, rec: rec}
	var right *Node
	for n := anchor; n != nil; {
		n.insertAt(pos, it, right)
		if n.numItems < t.order {
			return
		}
		it, right = n.split()
		t.log.WithFields(logrus.Fields{
			"op":    "split",
			"key":   it.key,
			"left":  n.Keys(),
			"right": right.Keys(),
		}).Debug("node overflow")

		n = n.parent
		if n != nil {
			pos, _ = n.search(it.key)
		}
	}

	// Either the tree was empty, or the split cascade went through the root.
	t.newRoot(it, right)
}

/*
Create a new root node.
The existing root (if any) becomes the new root's left child and the node created after
splitting it becomes the right child.
*/
func (t *Btree) newRoot(it item, right *Node) {
	root := newNode(t.order)
	root.items[0] = it
	root.numItems = 1
	if t.root != nil {
		root.children[0] = t.root
		root.children[1] = right
		t.root.parent = root
		right.parent = root
	}
	t.root = root
	t.log.WithFields(logrus.Fields{"op": "newroot", "key": it.key}).Debug("tree grew")
}

/*
Delete removes key from the tree. If key is absent, an ErrNotFound error is returned and the
tree is left unchanged. If the deletion empties the root, its only child becomes the new root.
*/
func (t *Btree) Delete(key int) error {
	if t.root == nil {
		return keyNotFound(key)
	}
	if !t.delete(t.root, key) {
		return keyNotFound(key)
	}

	if t.root.numItems == 0 {
		old := t.root
		t.root = old.children[0]
		if t.root != nil {
			t.root.parent = nil
		}
		old.release()
		t.log.WithFields(logrus.Fields{"op": "collapse", "height": t.Height()}).Debug("root emptied")
	}
	return nil
}

/*
delete removes key from the subtree rooted at n and reports whether it was found.
A key found in a leaf is compacted out directly. A key found in an internal node is first
overwritten by its in-order successor (the minimum of its right subtree) and that successor is
then deleted from the right subtree, so removal always bottoms out at a leaf.
On the way back up, an underflowing child is repaired by rebalance.
*/
func (t *Btree) delete(n *Node, key int) bool {
	pos, found := n.search(key)

	var child int
	switch {
	case found && n.isLeaf():
		n.removeAt(pos)
		return true
	case found:
		// Substitute first, then delete the substituted value: pos must not move in between.
		succ := n.children[pos+1].min()
		n.items[pos] = succ
		t.delete(n.children[pos+1], succ.key)
		child = pos + 1
	case n.isLeaf():
		return false
	default:
		if !t.delete(n.children[pos], key) {
			return false
		}
		child = pos
	}

	if n.children[child].numItems < n.minItems() {
		t.rebalance(n, child)
	}
	return true
}

/*
rebalance repairs an underflow of n.children[i]:
  - left-most child: borrow from the right sibling, else merge with it
  - right-most child: borrow from the left sibling, else merge with it
  - interior child: borrow from the left sibling, else from the right sibling, else merge with the left one
*/
func (t *Btree) rebalance(n *Node, i int) {
	canLend := func(j int) bool {
		return n.children[j].numItems > n.minItems()
	}

	var op string
	switch {
	case i == 0 && canLend(1):
		n.rotateLeft(0)
		op = "rotateleft"
	case i == 0:
		n.merge(0)
		op = "merge"
	case i == n.numItems && canLend(i-1):
		n.rotateRight(i)
		op = "rotateright"
	case i == n.numItems:
		n.merge(i - 1)
		op = "merge"
	case canLend(i - 1):
		n.rotateRight(i)
		op = "rotateright"
	case canLend(i + 1):
		n.rotateLeft(i)
		op = "rotateleft"
	default:
		n.merge(i - 1)
		op = "merge"
	}

	t.log.WithFields(logrus.Fields{
		"op":    op,
		"index": i,
		"keys":  n.Keys(),
	}).Debug("node underflow")
}

// Destroy releases every node, children before their parent, and leaves t empty.
func (t *Btree) Destroy() {
	released := destroy(t.root)
	t.root = nil
	t.log.WithFields(logrus.Fields{"op": "destroy", "nodes": released}).Debug("tree destroyed")
}

func destroy(n *Node) int {
	if n == nil {
		return 0
	}
	released := 0
	if !n.isLeaf() {
		for _, child := range n.children[:n.numItems+1] {
			released += destroy(child)
		}
	}
	n.release()
	return released + 1
}

/*
Traverse returns the keys of the tree level by level, starting at the root.
Each level lists its nodes front to back, each node as its ascending keys.
*/
func (t *Btree) Traverse() ([][][]int, error) {
	if t.root == nil {
		return nil, merry.Here(ErrEmpty)
	}

	var levels [][][]int
	queue := []*Node{t.root}
	for len(queue) > 0 {
		level := make([][]int, 0, len(queue))
		var next []*Node
		for _, n := range queue {
			level = append(level, n.Keys())
			if !n.isLeaf() {
				next = append(next, n.children[:n.numItems+1]...)
			}
		}
		levels = append(levels, level)
		queue = next
	}
	return levels, nil
}
