package graph

// Composite values group several tensors into one logical result. The scope
// manager's MarkAsReturn understands these shapes and identity-wraps their
// leaf tensors individually.

// IndexedSlices is a variable-length slice of a larger value: the rows in
// Values live at positions Indices within a value of shape DenseShape.
type IndexedSlices struct {
	Values     *Tensor
	Indices    *Tensor
	DenseShape *Tensor
}

// Sparse is a sparse value: Values at coordinate tuples Indices within a
// value of shape DenseShape.
type Sparse struct {
	Indices    *Tensor
	Values     *Tensor
	DenseShape *Tensor
}

// TensorList is a resizable-array handle paired with the Flow token that
// sequences mutations of the array. Only the flow token participates in
// return anchoring; the handle itself is never copied.
type TensorList struct {
	Handle *Tensor
	Flow   *Tensor
}
