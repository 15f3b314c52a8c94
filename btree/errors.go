package btree

import "github.com/ansel1/merry"

// Errors returned by the tree. Compare with merry.Is.
var (
	ErrNotFound     = merry.New("key not found")
	ErrEmpty        = merry.New("empty B-Tree")
	ErrInvalidOrder = merry.New("invalid B-Tree order")
	ErrCorrupt      = merry.New("B-Tree invariant violated")
)

// keyNotFound tags ErrNotFound with the key that was looked up.
func keyNotFound(key int) error {
	return merry.Appendf(ErrNotFound, "key %d", key).WithValue("key", key)
}
