package geom

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestNewPointFromOrdinates(t *testing.T) {
	is := is.New(t)

	p, err := NewPointFromOrdinates([]float64{125.6, 10.1})
	is.NoErr(err)
	is.Equal(p.X(), 125.6)
	is.Equal(p.Y(), 10.1)
	is.True(!p.Is3D())
	is.True(!p.HasM())
	is.True(!p.IsEmpty())

	p, err = NewPointFromOrdinates([]float64{1, 2, 3})
	is.NoErr(err)
	is.True(p.Is3D())
	is.True(!p.HasM())
	is.Equal(p.Z(), 3.0)

	p, err = NewPointFromOrdinates([]float64{1, 2, 3, 4})
	is.NoErr(err)
	is.True(p.Is3D())
	is.True(p.HasM())
	is.Equal(p.M(), 4.0)
}

func TestNewPointFromTooFewOrdinates(t *testing.T) {
	is := is.New(t)

	for _, ords := range [][]float64{nil, {}, {1}, {1, 2, 3, 4, 5}} {
		_, err := NewPointFromOrdinates(ords)

		var arityErr CoordinateArityError
		is.True(errors.As(err, &arityErr))
	}
}

func TestEmptyPoint(t *testing.T) {
	is := is.New(t)

	p := EmptyPoint()
	is.True(p.IsEmpty())
	is.True(!p.Is3D())
	is.True(!p.HasM())
	is.True(p.Bounds().IsEmpty())
	is.True(p.Equals(Point{}))
}

func TestPointFromBufferWindow(t *testing.T) {
	is := is.New(t)

	buf := []float64{-10, -10, 10, 10}

	min, err := PointFromBuffer(buf, 0, 2)
	is.NoErr(err)
	is.True(min.Equals(NewPoint(-10, -10)))

	max, err := PointFromBuffer(buf, 2, 2)
	is.NoErr(err)
	is.True(max.Equals(NewPoint(10, 10)))

	_, err = PointFromBuffer(buf, 3, 2)
	var arityErr CoordinateArityError
	is.True(errors.As(err, &arityErr))
}

func TestPointStructuralEquality(t *testing.T) {
	is := is.New(t)

	is.True(NewPoint(1, 2).Equals(NewPoint(1, 2)))
	is.True(!NewPoint(1, 2).Equals(NewPointZ(1, 2, 0)))
	is.True(!NewPoint(1, 2).Equals(NewPoint(2, 1)))
}

func TestPointGeometryContract(t *testing.T) {
	is := is.New(t)

	p := NewPoint(125.6, 10.1)
	is.Equal(p.GeometryType(), GeometryTypePoint)
	is.Equal(p.Dimension(), 0)

	b := p.Bounds()
	is.True(b.Min().Equals(p))
	is.True(b.Max().Equals(p))
}
