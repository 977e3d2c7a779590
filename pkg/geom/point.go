package geom

// Point is a position with 2-4 ordinates (x, y, optional z, optional m).
// The zero value is the distinguished empty point. Points are immutable
// value objects.
type Point struct {
	ords [4]float64
	n    uint8
}

func NewPoint(x, y float64) Point {
	return Point{ords: [4]float64{x, y}, n: 2}
}

func NewPointZ(x, y, z float64) Point {
	return Point{ords: [4]float64{x, y, z}, n: 3}
}

func NewPointZM(x, y, z, m float64) Point {
	return Point{ords: [4]float64{x, y, z, m}, n: 4}
}

// EmptyPoint returns the empty point, which has no ordinates.
func EmptyPoint() Point {
	return Point{}
}

// NewPointFromOrdinates builds a point from 2-4 ordinates in x, y, z, m
// order. Fewer than 2 ordinates is a CoordinateArityError; ordinates
// beyond the fourth are a CoordinateArityError as well.
func NewPointFromOrdinates(ords []float64) (Point, error) {
	if len(ords) < 2 || len(ords) > 4 {
		return Point{}, CoordinateArityError{Len: len(ords), Arity: 2}
	}

	p := Point{n: uint8(len(ords))}
	copy(p.ords[:], ords)
	return p, nil
}

// PointFromBuffer reads a point out of a window of a flat ordinate
// buffer, supporting reconstruction from flattened bbox/coordinate
// arrays. The window must hold 2-4 usable values.
func PointFromBuffer(buf []float64, offset, length int) (Point, error) {
	if offset < 0 || length < 0 || offset+length > len(buf) {
		return Point{}, CoordinateArityError{Len: len(buf), Arity: length}
	}
	return NewPointFromOrdinates(buf[offset : offset+length])
}

func (p Point) X() float64 { return p.ords[0] }
func (p Point) Y() float64 { return p.ords[1] }

// Z returns the z ordinate, or 0 for a 2D point.
func (p Point) Z() float64 { return p.ords[2] }

// M returns the measure ordinate, or 0 when the point has none.
func (p Point) M() float64 { return p.ords[3] }

func (p Point) IsEmpty() bool { return p.n == 0 }
func (p Point) Is3D() bool    { return p.n >= 3 }
func (p Point) HasM() bool    { return p.n == 4 }

// Ordinates returns the present ordinates in x, y, z, m order.
func (p Point) Ordinates() []float64 {
	return p.ords[:p.n:p.n]
}

// Equals reports structural equality over all present ordinates.
func (p Point) Equals(other Point) bool {
	return p == other
}

func (p Point) GeometryType() GeometryType { return GeometryTypePoint }
func (p Point) Dimension() int             { return 0 }

func (p Point) Bounds() Bounds {
	if p.IsEmpty() {
		return EmptyBounds()
	}
	return NewBounds(p, p)
}
