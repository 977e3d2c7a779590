package geom

import (
	"errors"
	"fmt"
)

// ErrBoundsConstruction is returned when a lazy bounds is constructed
// without a compute function.
var ErrBoundsConstruction = errors.New("bounds: no value and no compute function given")

// ErrShortChain is returned when a chain is built from a single point.
var ErrShortChain = errors.New("a chain needs at least two points")

// ErrUnclosedRing is returned when a polygon ring does not end on its
// first point.
var ErrUnclosedRing = errors.New("polygon rings must be closed")

// CoordinateArityError reports a flat coordinate buffer whose length is
// not a valid multiple of the expected per-point arity.
type CoordinateArityError struct {
	Len   int
	Arity int
}

func (e CoordinateArityError) Error() string {
	return fmt.Sprintf("coordinate buffer of length %d does not fit arity %d", e.Len, e.Arity)
}
