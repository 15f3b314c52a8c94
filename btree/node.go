package btree

import "github.com/ansel1/merry"

/*
Node is the storage unit of the tree.

items and children are fixed-length slices allocated once per node: items holds order slots
(order-1 regular slots plus one overflow slot that is filled just before a split) and children
holds order+1 slots. Only the first numItems items and, for internal nodes, the first
numItems+1 children are occupied.

parent is a non-owning back-reference used to walk upwards during split cascades.
Ownership flows strictly from parent to children.
*/
type Node struct {
	items    []item
	children []*Node
	numItems int
	parent   *Node
}

func newNode(order int) *Node {
	return &Node{
		items:    make([]item, order),
		children: make([]*Node, order+1),
	}
}

// order is recovered from the node's fixed capacity.
func (n *Node) order() int {
	return len(n.items)
}

// min number of items a non-root node must hold: ceil(order/2)-1
func (n *Node) minItems() int {
	return (n.order() - 1) / 2
}

func (n *Node) maxItems() int {
	return n.order() - 1
}

func (n *Node) isLeaf() bool {
	return n.children[0] == nil
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.isLeaf()
}

// NumKeys returns the number of occupied key slots.
func (n *Node) NumKeys() int {
	return n.numItems
}

// Keys returns a copy of the keys held by n in ascending order.
func (n *Node) Keys() []int {
	keys := make([]int, n.numItems)
	for i := range keys {
		keys[i] = n.items[i].key
	}
	return keys
}

/*
If data item with key k is found in node n, return its index i.
Else, return the index j where the key would have resided if it was present in the node.
Basically, lower bound of the key in the node -- this coincides with position of the child pointer,
so we can continue the traversal down the tree if the returned boolean value is false.
*/
func (n *Node) search(key int) (int, bool) {
	low, high := 0, n.numItems
	var mid int
	for low < high {
		mid = (low + high) / 2
		switch k := n.items[mid].key; {
		case key > k:
			low = mid + 1
		case key < k:
			high = mid
		default:
			return mid, true
		}
	}
	return low, false
}

/*
insertAt writes item at position pos and right as the child immediately to its right,
shifting every item and child after them one slot right.
This is how a node absorbs a key promoted from a split one level down together with the
new right sibling produced by that split. right is nil when inserting into a leaf.
*/
func (n *Node) insertAt(pos int, it item, right *Node) {
	if n.numItems >= n.order() {
		panic(merry.Errorf("btree: insert into full node (%d items, order %d)", n.numItems, n.order()))
	}
	if pos < n.numItems {
		copy(n.items[pos+1:n.numItems+1], n.items[pos:n.numItems])
		copy(n.children[pos+2:n.numItems+2], n.children[pos+1:n.numItems+1])
	}
	n.items[pos] = it
	n.children[pos+1] = right
	if right != nil {
		right.parent = n
	}
	n.numItems++
}

// removeAt compacts the item at pos out of a leaf.
func (n *Node) removeAt(pos int) item {
	it := n.items[pos]
	copy(n.items[pos:n.numItems-1], n.items[pos+1:n.numItems])
	n.numItems--
	n.items[n.numItems] = item{}
	return it
}

/*
split is called once a node holds order items (one more than it may keep).
It returns the median item and the newly created right sibling, so we can link them to the parent.
With s = (order+1)/2 the node keeps its first s-1 items, the s-th item is promoted,
and the remaining order-s items (and their children) move to the new node.
Note: the caller is responsible for linking the promoted item into the parent, or for creating a new root.
*/
func (n *Node) split() (item, *Node) {
	mid := (n.order()+1)/2 - 1
	midItem := n.items[mid]

	// Create a new node and move the upper half of the items to it.
	newNode := newNode(n.order())
	copy(newNode.items, n.items[mid+1:n.numItems])
	newNode.numItems = n.numItems - mid - 1
	newNode.parent = n.parent

	// Except for leaf nodes, move the matching child pointers as well and retarget their parent.
	if !n.isLeaf() {
		copy(newNode.children, n.children[mid+1:n.numItems+1])
		for _, child := range newNode.children[:newNode.numItems+1] {
			child.parent = newNode
		}
	}

	// Remove data items and child pointers that were moved to the new node, including the median.
	clear(n.items[mid:n.numItems])
	clear(n.children[mid+1 : n.numItems+1])
	n.numItems = mid

	return midItem, newNode
}

// min returns the smallest item of the subtree rooted at n by following left-most child links.
func (n *Node) min() item {
	for !n.isLeaf() {
		n = n.children[0]
	}
	return n.items[0]
}

/*
rotateLeft cures an underflow of children[i] by borrowing from its right sibling:
the separator items[i] moves down to the end of children[i], and the first item of
children[i+1] moves up to replace it. The sibling's first child follows the separator.
*/
func (n *Node) rotateLeft(i int) {
	child, sib := n.children[i], n.children[i+1]

	child.items[child.numItems] = n.items[i]
	child.children[child.numItems+1] = sib.children[0]
	if moved := sib.children[0]; moved != nil {
		moved.parent = child
	}
	child.numItems++

	n.items[i] = sib.items[0]

	copy(sib.items[:sib.numItems-1], sib.items[1:sib.numItems])
	copy(sib.children[:sib.numItems], sib.children[1:sib.numItems+1])
	sib.numItems--
	sib.items[sib.numItems] = item{}
	sib.children[sib.numItems+1] = nil
}

/*
rotateRight cures an underflow of children[i] by borrowing from its left sibling:
the separator items[i-1] moves down to the front of children[i], and the last item of
children[i-1] moves up to replace it. The sibling's last child follows the separator.
*/
func (n *Node) rotateRight(i int) {
	child, sib := n.children[i], n.children[i-1]

	copy(child.items[1:child.numItems+1], child.items[:child.numItems])
	copy(child.children[1:child.numItems+2], child.children[:child.numItems+1])
	child.items[0] = n.items[i-1]
	child.children[0] = sib.children[sib.numItems]
	if moved := child.children[0]; moved != nil {
		moved.parent = child
	}
	child.numItems++

	n.items[i-1] = sib.items[sib.numItems-1]

	sib.items[sib.numItems-1] = item{}
	sib.children[sib.numItems] = nil
	sib.numItems--
}

/*
merge folds children[i+1] and the separator items[i] into children[i].
The separator and the right child disappear from n, and the emptied right node is released.
Returns the merged node.
*/
func (n *Node) merge(i int) *Node {
	left, right := n.children[i], n.children[i+1]

	left.items[left.numItems] = n.items[i]
	copy(left.items[left.numItems+1:], right.items[:right.numItems])
	if !right.isLeaf() {
		copy(left.children[left.numItems+1:], right.children[:right.numItems+1])
		for _, child := range right.children[:right.numItems+1] {
			child.parent = left
		}
	}
	left.numItems += right.numItems + 1

	copy(n.items[i:n.numItems-1], n.items[i+1:n.numItems])
	copy(n.children[i+1:n.numItems], n.children[i+2:n.numItems+1])
	n.numItems--
	n.items[n.numItems] = item{}
	n.children[n.numItems+1] = nil

	right.release()
	return left
}

// release drops every reference held by n. Children are not visited.
func (n *Node) release() {
	clear(n.items)
	clear(n.children)
	n.numItems = 0
	n.parent = nil
}
