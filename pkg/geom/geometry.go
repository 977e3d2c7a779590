package geom

// GeometryType enumerates the closed set of geometry kinds.
type GeometryType string

const (
	GeometryTypePoint              GeometryType = "Point"
	GeometryTypeLineString         GeometryType = "LineString"
	GeometryTypePolygon            GeometryType = "Polygon"
	GeometryTypeMultiPoint         GeometryType = "MultiPoint"
	GeometryTypeMultiLineString    GeometryType = "MultiLineString"
	GeometryTypeMultiPolygon       GeometryType = "MultiPolygon"
	GeometryTypeGeometryCollection GeometryType = "GeometryCollection"
)

// Geometry is the capability shared by all seven geometry kinds. The
// set of implementations is closed; consumers may switch exhaustively
// on GeometryType.
type Geometry interface {
	GeometryType() GeometryType
	Dimension() int
	Bounds() Bounds
	IsEmpty() bool
	Is3D() bool
	HasM() bool
}

// LineString is an ordered chain of points. A valid chain has at least
// two points or is explicitly empty; a closed chain (ring) starts and
// ends on the same point.
type LineString struct {
	points []Point
}

// NewLineString builds a chain. A single point is not a chain.
func NewLineString(points ...Point) (LineString, error) {
	if len(points) == 1 {
		return LineString{}, ErrShortChain
	}
	return LineString{points: points}, nil
}

// LineStringFromBuffer rebuilds a chain from a flat ordinate buffer
// with the given per-point stride (2-4).
func LineStringFromBuffer(buf []float64, stride int) (LineString, error) {
	points, err := pointsFromBuffer(buf, stride)
	if err != nil {
		return LineString{}, err
	}
	return NewLineString(points...)
}

func (l LineString) Points() []Point { return l.points }
func (l LineString) NumPoints() int  { return len(l.points) }

func (l LineString) IsClosed() bool {
	return len(l.points) >= 2 && l.points[0].Equals(l.points[len(l.points)-1])
}

func (l LineString) GeometryType() GeometryType { return GeometryTypeLineString }
func (l LineString) Dimension() int             { return 1 }
func (l LineString) IsEmpty() bool              { return len(l.points) == 0 }
func (l LineString) Is3D() bool                 { return allPoints(l.points, Point.Is3D) }
func (l LineString) HasM() bool                 { return allPoints(l.points, Point.HasM) }
func (l LineString) Bounds() Bounds             { return boundsOfPoints(l.points) }

// Polygon is one closed exterior ring plus zero or more closed interior
// rings (holes). Only the ring structure is validated; hole containment
// is not checked.
type Polygon struct {
	exterior LineString
	holes    []LineString
}

func NewPolygon(exterior LineString, holes ...LineString) (Polygon, error) {
	if !exterior.IsEmpty() && !exterior.IsClosed() {
		return Polygon{}, ErrUnclosedRing
	}
	for _, hole := range holes {
		if !hole.IsClosed() {
			return Polygon{}, ErrUnclosedRing
		}
	}
	return Polygon{exterior: exterior, holes: holes}, nil
}

func (p Polygon) Exterior() LineString { return p.exterior }
func (p Polygon) Holes() []LineString  { return p.holes }

func (p Polygon) GeometryType() GeometryType { return GeometryTypePolygon }
func (p Polygon) Dimension() int             { return 2 }
func (p Polygon) IsEmpty() bool              { return p.exterior.IsEmpty() }
func (p Polygon) Is3D() bool                 { return p.exterior.Is3D() }
func (p Polygon) HasM() bool                 { return p.exterior.HasM() }

// Bounds of a polygon is the bounds of its exterior ring; holes lie
// within it by definition.
func (p Polygon) Bounds() Bounds { return p.exterior.Bounds() }

// MultiPoint is an ordered collection of points.
type MultiPoint struct {
	points []Point
}

func NewMultiPoint(points ...Point) MultiPoint {
	return MultiPoint{points: points}
}

// MultiPointFromBuffer rebuilds a point collection from a flat ordinate
// buffer with the given per-point stride (2-4).
func MultiPointFromBuffer(buf []float64, stride int) (MultiPoint, error) {
	points, err := pointsFromBuffer(buf, stride)
	if err != nil {
		return MultiPoint{}, err
	}
	return NewMultiPoint(points...), nil
}

func (m MultiPoint) Points() []Point { return m.points }

func (m MultiPoint) GeometryType() GeometryType { return GeometryTypeMultiPoint }
func (m MultiPoint) Dimension() int             { return 0 }
func (m MultiPoint) IsEmpty() bool              { return len(m.points) == 0 }
func (m MultiPoint) Is3D() bool                 { return allPoints(m.points, Point.Is3D) }
func (m MultiPoint) HasM() bool                 { return allPoints(m.points, Point.HasM) }
func (m MultiPoint) Bounds() Bounds             { return boundsOfPoints(m.points) }

// MultiLineString is an ordered collection of chains.
type MultiLineString struct {
	lines []LineString
}

func NewMultiLineString(lines ...LineString) MultiLineString {
	return MultiLineString{lines: lines}
}

func (m MultiLineString) LineStrings() []LineString { return m.lines }

func (m MultiLineString) GeometryType() GeometryType { return GeometryTypeMultiLineString }
func (m MultiLineString) Dimension() int             { return 1 }
func (m MultiLineString) IsEmpty() bool              { return len(m.lines) == 0 }

func (m MultiLineString) Is3D() bool {
	return len(m.lines) > 0 && allMembers(m.lines, LineString.Is3D)
}

func (m MultiLineString) HasM() bool {
	return len(m.lines) > 0 && allMembers(m.lines, LineString.HasM)
}

func (m MultiLineString) Bounds() Bounds {
	return unionMemberBounds(len(m.lines), func(i int) Bounds { return m.lines[i].Bounds() })
}

// MultiPolygon is an ordered collection of polygons.
type MultiPolygon struct {
	polygons []Polygon
}

func NewMultiPolygon(polygons ...Polygon) MultiPolygon {
	return MultiPolygon{polygons: polygons}
}

func (m MultiPolygon) Polygons() []Polygon { return m.polygons }

func (m MultiPolygon) GeometryType() GeometryType { return GeometryTypeMultiPolygon }
func (m MultiPolygon) Dimension() int             { return 2 }
func (m MultiPolygon) IsEmpty() bool              { return len(m.polygons) == 0 }

func (m MultiPolygon) Is3D() bool {
	return len(m.polygons) > 0 && allMembers(m.polygons, Polygon.Is3D)
}

func (m MultiPolygon) HasM() bool {
	return len(m.polygons) > 0 && allMembers(m.polygons, Polygon.HasM)
}

func (m MultiPolygon) Bounds() Bounds {
	return unionMemberBounds(len(m.polygons), func(i int) Bounds { return m.polygons[i].Bounds() })
}

// GeometryCollection is an ordered, possibly heterogeneous sequence of
// geometries.
type GeometryCollection struct {
	geometries []Geometry
}

func NewGeometryCollection(geometries ...Geometry) GeometryCollection {
	return GeometryCollection{geometries: geometries}
}

func (g GeometryCollection) Geometries() []Geometry { return g.geometries }

func (g GeometryCollection) GeometryType() GeometryType { return GeometryTypeGeometryCollection }
func (g GeometryCollection) IsEmpty() bool              { return len(g.geometries) == 0 }

// Dimension of a collection is the highest member dimension, 0 when
// empty.
func (g GeometryCollection) Dimension() int {
	dim := 0
	for _, member := range g.geometries {
		if d := member.Dimension(); d > dim {
			dim = d
		}
	}
	return dim
}

func (g GeometryCollection) Is3D() bool {
	return len(g.geometries) > 0 && allMembers(g.geometries, Geometry.Is3D)
}

func (g GeometryCollection) HasM() bool {
	return len(g.geometries) > 0 && allMembers(g.geometries, Geometry.HasM)
}

func (g GeometryCollection) Bounds() Bounds {
	return unionMemberBounds(len(g.geometries), func(i int) Bounds { return g.geometries[i].Bounds() })
}

func pointsFromBuffer(buf []float64, stride int) ([]Point, error) {
	if stride < 2 || stride > 4 || len(buf)%stride != 0 {
		return nil, CoordinateArityError{Len: len(buf), Arity: stride}
	}

	points := make([]Point, 0, len(buf)/stride)
	for offset := 0; offset < len(buf); offset += stride {
		p, err := PointFromBuffer(buf, offset, stride)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, nil
}

func allPoints(points []Point, pred func(Point) bool) bool {
	if len(points) == 0 {
		return false
	}
	for _, p := range points {
		if !pred(p) {
			return false
		}
	}
	return true
}

func allMembers[T any](members []T, pred func(T) bool) bool {
	for _, m := range members {
		if !pred(m) {
			return false
		}
	}
	return true
}

func boundsOfPoints(points []Point) Bounds {
	bounds := EmptyBounds()
	for _, p := range points {
		bounds = bounds.Union(p.Bounds())
	}
	return bounds
}

func unionMemberBounds(n int, boundsAt func(int) Bounds) Bounds {
	bounds := EmptyBounds()
	for i := 0; i < n; i++ {
		bounds = bounds.Union(boundsAt(i))
	}
	return bounds
}
