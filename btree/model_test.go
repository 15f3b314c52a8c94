package btree

import (
	"math/rand"
	"testing"

	"github.com/ansel1/merry"
	gbtree "github.com/google/btree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inorder collects the keys of the subtree rooted at n in ascending order.
func inorder(n *Node, keys []int) []int {
	if n == nil {
		return keys
	}
	for i := 0; i < n.numItems; i++ {
		keys = inorder(n.children[i], keys)
		keys = append(keys, n.items[i].key)
	}
	return inorder(n.children[n.numItems], keys)
}

func modelKeys(model *gbtree.BTree) []int {
	keys := make([]int, 0, model.Len())
	model.Ascend(func(i gbtree.Item) bool {
		keys = append(keys, int(i.(gbtree.Int)))
		return true
	})
	return keys
}

// Random inserts and deletes are checked against github.com/google/btree after every step.
func TestRandomOperationsMatchModel(t *testing.T) {
	for order := MinOrder; order <= 8; order++ {
		rng := rand.New(rand.NewSource(int64(order)))
		tree := newTestTree(t, order)
		model := gbtree.New(2)

		for step := 0; step < 2000; step++ {
			k := rng.Intn(300)
			if rng.Intn(3) == 0 {
				err := tree.Delete(k)
				if model.Delete(gbtree.Int(k)) == nil {
					require.True(t, merry.Is(err, ErrNotFound), "order %d step %d key %d", order, step, k)
				} else {
					require.NoError(t, err, "order %d step %d key %d", order, step, k)
				}
			} else {
				anchor, pos, found := tree.Search(k)
				require.Equal(t, model.Has(gbtree.Int(k)), found, "order %d step %d key %d", order, step, k)
				if !found {
					tree.Insert(anchor, pos, k)
					model.ReplaceOrInsert(gbtree.Int(k))
				}
			}

			require.NoError(t, tree.Verify(), "order %d step %d key %d", order, step, k)
			require.Equal(t, model.Len(), tree.Len(), "order %d step %d", order, step)
		}

		var got []int
		assert.Equal(t, modelKeys(model), inorder(tree.Root(), got), "order %d", order)
	}
}

func TestDrainInEveryOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for order := MinOrder; order <= 7; order++ {
		tree := newTestTree(t, order)
		keys := rng.Perm(200)
		insertKeys(t, tree, keys...)

		for _, k := range rng.Perm(200) {
			require.NoError(t, tree.Delete(k), "order %d key %d", order, k)
			require.NoError(t, tree.Verify(), "order %d key %d", order, k)
			_, _, found := tree.Search(k)
			require.False(t, found)
		}
		assert.Nil(t, tree.Root(), "order %d", order)
	}
}

func TestDescendingInsertKeepsInvariants(t *testing.T) {
	tree := newTestTree(t, 4)
	for k := 100; k > 0; k-- {
		insertKeys(t, tree, k)
	}
	var got []int
	assert.Equal(t, span(1, 100), inorder(tree.Root(), got))
}
