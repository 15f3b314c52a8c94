package btree

/*
data item in a node.
key uniquely identifies a data item and is used for sorting them.
rec is an opaque record identifier supplied by the caller (0 when unused).
*/
type item struct {
	key int
	rec int64
}
