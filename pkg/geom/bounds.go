package geom

import "sync"

// Bounds is an axis-aligned bounding box over a min and a max point.
// The zero value is the distinguished empty bounds, which never
// intersects anything. A bounds is either eager (both corners given at
// construction) or lazy (corners computed and memoized on first read).
type Bounds struct {
	state *boundsState
}

type boundsState struct {
	once     sync.Once
	compute  func() Bounds
	min, max Point
}

// NewBounds creates an eager bounds from both corners. If either corner
// is the empty point the result is the empty bounds.
func NewBounds(min, max Point) Bounds {
	if min.IsEmpty() || max.IsEmpty() {
		return Bounds{}
	}
	return Bounds{state: &boundsState{min: min, max: max}}
}

// EmptyBounds returns the empty bounds.
func EmptyBounds() Bounds {
	return Bounds{}
}

// NewLazyBounds creates a bounds whose corners are produced by compute
// on first access and cached for the lifetime of the value. The compute
// function must be pure; it is invoked at most once even when the first
// reads happen concurrently.
func NewLazyBounds(compute func() Bounds) (Bounds, error) {
	if compute == nil {
		return Bounds{}, ErrBoundsConstruction
	}
	return Bounds{state: &boundsState{compute: compute}}, nil
}

// BoundsFromBuffer rebuilds a bounds from a flattened min/max ordinate
// array of 4 (2D), 6 (3D) or 8 (3D + measure) values, as carried by a
// GeoJSON bbox member.
func BoundsFromBuffer(buf []float64) (Bounds, error) {
	if len(buf)%2 != 0 {
		return Bounds{}, CoordinateArityError{Len: len(buf), Arity: 2}
	}

	stride := len(buf) / 2
	if stride < 2 || stride > 4 {
		return Bounds{}, CoordinateArityError{Len: len(buf), Arity: stride}
	}

	min, err := PointFromBuffer(buf, 0, stride)
	if err != nil {
		return Bounds{}, err
	}
	max, err := PointFromBuffer(buf, stride, stride)
	if err != nil {
		return Bounds{}, err
	}

	return NewBounds(min, max), nil
}

func (b Bounds) corners() (Point, Point) {
	if b.state == nil {
		return Point{}, Point{}
	}

	s := b.state
	s.once.Do(func() {
		if s.compute == nil {
			return
		}
		s.min, s.max = s.compute().corners()
	})

	return s.min, s.max
}

// Min returns the minimum corner, resolving a lazy bounds if needed.
func (b Bounds) Min() Point {
	min, _ := b.corners()
	return min
}

// Max returns the maximum corner, resolving a lazy bounds if needed.
func (b Bounds) Max() Point {
	_, max := b.corners()
	return max
}

func (b Bounds) IsEmpty() bool {
	min, max := b.corners()
	return min.IsEmpty() || max.IsEmpty()
}

func (b Bounds) Is3D() bool {
	min, max := b.corners()
	return min.Is3D() && max.Is3D()
}

func (b Bounds) HasM() bool {
	min, max := b.corners()
	return min.HasM() && max.HasM()
}

// Dimension of a bounds treated as a geometry.
func (b Bounds) Dimension() int { return 1 }

// Equals reports structural equality over both corners. Two empty
// bounds are equal.
func (b Bounds) Equals(other Bounds) bool {
	bmin, bmax := b.corners()
	omin, omax := other.corners()
	return bmin.Equals(omin) && bmax.Equals(omax)
}

// Union returns the smallest bounds covering both operands. The empty
// bounds is the identity element.
func (b Bounds) Union(other Bounds) Bounds {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}

	bmin, bmax := b.corners()
	omin, omax := other.corners()

	min := NewPoint(minf(bmin.X(), omin.X()), minf(bmin.Y(), omin.Y()))
	max := NewPoint(maxf(bmax.X(), omax.X()), maxf(bmax.Y(), omax.Y()))

	if b.Is3D() && other.Is3D() {
		min = NewPointZ(min.X(), min.Y(), minf(bmin.Z(), omin.Z()))
		max = NewPointZ(max.X(), max.Y(), maxf(bmax.Z(), omax.Z()))

		if b.HasM() && other.HasM() {
			min = NewPointZM(min.X(), min.Y(), min.Z(), minf(bmin.M(), omin.M()))
			max = NewPointZM(max.X(), max.Y(), max.Z(), maxf(bmax.M(), omax.M()))
		}
	}

	return NewBounds(min, max)
}

// Intersects2D reports whether the two bounds overlap on the x and y
// axes. Any empty operand yields false.
func (b Bounds) Intersects2D(other Bounds) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}

	bmin, bmax := b.corners()
	omin, omax := other.corners()

	return !(bmin.X() > omax.X() || bmax.X() < omin.X() ||
		bmin.Y() > omax.Y() || bmax.Y() < omin.Y())
}

// Intersects reports overlap on x and y, on z when both bounds are 3D,
// and on m when both carry a measure. An axis only one operand has is
// never grounds for rejection.
func (b Bounds) Intersects(other Bounds) bool {
	if !b.Intersects2D(other) {
		return false
	}

	bmin, bmax := b.corners()
	omin, omax := other.corners()

	if b.Is3D() && other.Is3D() && (bmin.Z() > omax.Z() || bmax.Z() < omin.Z()) {
		return false
	}
	if b.HasM() && other.HasM() && (bmin.M() > omax.M() || bmax.M() < omin.M()) {
		return false
	}

	return true
}

// IntersectsPoint2D reports whether the point lies within the bounds on
// the x and y axes. An empty bounds or an empty point yields false.
func (b Bounds) IntersectsPoint2D(p Point) bool {
	if b.IsEmpty() || p.IsEmpty() {
		return false
	}

	min, max := b.corners()

	return !(min.X() > p.X() || max.X() < p.X() ||
		min.Y() > p.Y() || max.Y() < p.Y())
}

// IntersectsPoint applies the same dimensionality gating as Intersects
// with a single point in place of the other bounds.
func (b Bounds) IntersectsPoint(p Point) bool {
	if !b.IntersectsPoint2D(p) {
		return false
	}

	min, max := b.corners()

	if b.Is3D() && p.Is3D() && (min.Z() > p.Z() || max.Z() < p.Z()) {
		return false
	}
	if b.HasM() && p.HasM() && (min.M() > p.M() || max.M() < p.M()) {
		return false
	}

	return true
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
