// Package tensor provides the shape and element-type primitives shared by
// the recurrent kernels.
package tensor

// Float is a constraint for supported kernel element types.
// It uses Go generics to ensure compile-time type safety; the element type
// is fixed per call, so no dynamic dispatch is involved.
type Float interface {
	~float32 | ~float64
}
