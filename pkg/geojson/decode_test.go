package geojson

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/openmundi/ogc-feature-proxy/pkg/geom"
)

func TestDecodePointGeometry(t *testing.T) {
	is := is.New(t)

	g, err := DecodeGeometry([]byte(`{"type":"Point","coordinates":[125.6,10.1]}`))
	is.NoErr(err)

	p, ok := g.(geom.Point)
	is.True(ok)
	is.True(p.Equals(geom.NewPoint(125.6, 10.1)))
}

func TestDecodeEveryGeometryKind(t *testing.T) {
	is := is.New(t)

	inputs := map[geom.GeometryType]string{
		geom.GeometryTypePoint:           `{"type":"Point","coordinates":[1,2]}`,
		geom.GeometryTypeLineString:      `{"type":"LineString","coordinates":[[1,2],[3,4]]}`,
		geom.GeometryTypePolygon:         `{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,0]],[[1,1],[2,1],[2,2],[1,1]]]}`,
		geom.GeometryTypeMultiPoint:      `{"type":"MultiPoint","coordinates":[[1,2],[3,4]]}`,
		geom.GeometryTypeMultiLineString: `{"type":"MultiLineString","coordinates":[[[1,2],[3,4]],[[5,6],[7,8]]]}`,
		geom.GeometryTypeMultiPolygon:    `{"type":"MultiPolygon","coordinates":[[[[0,0],[4,0],[4,4],[0,0]]]]}`,
		geom.GeometryTypeGeometryCollection: `{"type":"GeometryCollection","geometries":[
			{"type":"Point","coordinates":[1,2]},
			{"type":"LineString","coordinates":[[1,2],[3,4]]}]}`,
	}

	for want, input := range inputs {
		g, err := DecodeGeometry([]byte(input))
		is.NoErr(err)
		is.Equal(g.GeometryType(), want)
		is.True(!g.IsEmpty())
	}
}

func TestDecodePolygonKeepsHoles(t *testing.T) {
	is := is.New(t)

	g, err := DecodeGeometry([]byte(`{"type":"Polygon","coordinates":[
		[[0,0],[10,0],[10,10],[0,10],[0,0]],
		[[2,2],[4,2],[4,4],[2,2]]]}`))
	is.NoErr(err)

	polygon, ok := g.(geom.Polygon)
	is.True(ok)
	is.Equal(len(polygon.Holes()), 1)
	is.True(polygon.Exterior().IsClosed())
	is.True(polygon.Holes()[0].IsClosed())
}

func TestDecodeUnknownGeometryType(t *testing.T) {
	is := is.New(t)

	_, err := DecodeGeometry([]byte(`{"type":"Triangle","coordinates":[[0,0],[1,0],[0,1]]}`))

	var unknownErr UnknownGeometryTypeError
	is.True(errors.As(err, &unknownErr))
	is.Equal(unknownErr.Type, "Triangle")

	_, err = DecodeGeometry([]byte(`{"coordinates":[1,2]}`))
	is.True(errors.As(err, &unknownErr))
	is.Equal(unknownErr.Type, "")
}

func TestDecodeGeometryOfType(t *testing.T) {
	is := is.New(t)

	input := []byte(`{"type":"Point","coordinates":[1,2]}`)

	g, err := DecodeGeometryOfType(input, geom.GeometryTypePoint)
	is.NoErr(err)
	is.Equal(g.GeometryType(), geom.GeometryTypePoint)

	_, err = DecodeGeometryOfType(input, geom.GeometryTypePolygon)
	var mismatchErr TypeMismatchError
	is.True(errors.As(err, &mismatchErr))
	is.Equal(mismatchErr.Expected, "Polygon")
	is.Equal(mismatchErr.Got, "Point")
}

func TestDecodeMalformedInput(t *testing.T) {
	is := is.New(t)

	var decodeErr DecodeError

	_, err := DecodeGeometry([]byte(`{not json`))
	is.True(errors.As(err, &decodeErr))
	is.True(decodeErr.Unwrap() != nil) // carries the parser cause

	_, err = DecodeGeometry([]byte(`[1,2,3]`))
	is.True(errors.As(err, &decodeErr))

	_, err = GeometryFromValue("not a mapping")
	is.True(errors.As(err, &decodeErr))

	_, err = DecodeGeometry([]byte(`{"type":"Point","coordinates":"125.6,10.1"}`))
	is.True(errors.As(err, &decodeErr))
}

func TestDecodePointWithTooFewOrdinates(t *testing.T) {
	is := is.New(t)

	_, err := DecodeGeometry([]byte(`{"type":"Point","coordinates":[125.6]}`))

	var arityErr geom.CoordinateArityError
	is.True(errors.As(err, &arityErr))
}

func TestTextAndStructureDecodesAgree(t *testing.T) {
	is := is.New(t)

	input := []byte(`{"type":"Feature","id":7,"bbox":[-10,-10,10,10],
		"geometry":{"type":"LineString","coordinates":[[102.0,0.0],[103.0,1.0]]},
		"properties":{"name":"route"}}`)

	fromText, err := DecodeFeature(input)
	is.NoErr(err)

	var tree any
	is.NoErr(json.Unmarshal(input, &tree))
	fromTree, err := FeatureFromValue(tree)
	is.NoErr(err)

	is.True(fromText.ID().Equals(fromTree.ID()))
	is.Equal(fromText.Properties()["name"], fromTree.Properties()["name"])
	is.True(fromText.Bounds().Equals(fromTree.Bounds()))
	is.Equal(fromText.Geometry().GeometryType(), fromTree.Geometry().GeometryType())
}

func TestRepeatedDecodeIsDeterministic(t *testing.T) {
	is := is.New(t)

	input := []byte(`{"type":"Point","coordinates":[125.6,10.1,42.0]}`)

	first, err := DecodeGeometry(input)
	is.NoErr(err)
	second, err := DecodeGeometry(input)
	is.NoErr(err)

	is.True(first.(geom.Point).Equals(second.(geom.Point)))
	is.True(first.Bounds().Equals(second.Bounds()))
}

func TestDecodeFeatureDinagatIslands(t *testing.T) {
	is := is.New(t)

	f, err := DecodeFeature([]byte(`{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [125.6, 10.1]},
		"properties": {"name": "Dinagat Islands"}
	}`))
	is.NoErr(err)

	p, ok := f.Geometry().(geom.Point)
	is.True(ok)
	is.True(p.Equals(geom.NewPoint(125.6, 10.1)))
	is.Equal(f.Properties()["name"], "Dinagat Islands")
	is.True(f.ID().IsZero())
}

func TestDecodeFeatureIdentifiers(t *testing.T) {
	is := is.New(t)

	f, err := DecodeFeature([]byte(`{"type":"Feature","id":"f2","geometry":null,"properties":{}}`))
	is.NoErr(err)
	is.True(!f.ID().IsZero())
	is.Equal(f.ID().String(), "f2")
	_, isInt := f.ID().Int64()
	is.True(!isInt)

	f, err = DecodeFeature([]byte(`{"type":"Feature","id":42,"geometry":null,"properties":{}}`))
	is.NoErr(err)
	n, isInt := f.ID().Int64()
	is.True(isInt)
	is.Equal(n, int64(42))

	f, err = DecodeFeature([]byte(`{"type":"Feature","id":1.5,"geometry":null,"properties":{}}`))
	is.NoErr(err)
	_, isInt = f.ID().Int64()
	is.True(!isInt)
	is.Equal(f.ID().String(), "1.5")

	f, err = DecodeFeature([]byte(`{"type":"Feature","id":null,"geometry":null,"properties":{}}`))
	is.NoErr(err)
	is.True(f.ID().IsZero())

	f, err = DecodeFeature([]byte(`{"type":"Feature","geometry":null,"properties":{}}`))
	is.NoErr(err)
	is.True(f.ID().IsZero())
}

func TestDecodeFeatureDefaults(t *testing.T) {
	is := is.New(t)

	f, err := DecodeFeature([]byte(`{"type":"Feature","geometry":null}`))
	is.NoErr(err)
	is.True(f.Geometry() == nil)
	is.True(f.Properties() != nil) // properties default to an empty map
	is.Equal(len(f.Properties()), 0)
	is.True(f.Bounds().IsEmpty())
}

func TestDecodeFeatureExplicitBBoxWins(t *testing.T) {
	is := is.New(t)

	f, err := DecodeFeature([]byte(`{
		"type": "Feature",
		"bbox": [-10.0, -10.0, 10.0, 10.0],
		"geometry": {"type": "Point", "coordinates": [125.6, 10.1]},
		"properties": {}
	}`))
	is.NoErr(err)

	want := geom.NewBounds(geom.NewPoint(-10, -10), geom.NewPoint(10, 10))
	is.True(f.Bounds().Equals(want))
}

func TestDecodeFeatureBBoxArity(t *testing.T) {
	is := is.New(t)

	_, err := DecodeFeature([]byte(`{"type":"Feature","bbox":[1,2,3],"geometry":null,"properties":{}}`))

	var arityErr geom.CoordinateArityError
	is.True(errors.As(err, &arityErr))
}

func TestDecodeFeatureSchemaViolations(t *testing.T) {
	is := is.New(t)

	var schemaErr SchemaError

	_, err := DecodeFeature([]byte(`{"type":"Point","coordinates":[1,2]}`))
	is.True(errors.As(err, &schemaErr))
	is.Equal(schemaErr.Member, "type")

	_, err = DecodeFeature([]byte(`{"geometry":null,"properties":{}}`))
	is.True(errors.As(err, &schemaErr))

	_, err = DecodeFeatureCollection([]byte(`{"type":"FeatureCollection"}`))
	is.True(errors.As(err, &schemaErr))
	is.Equal(schemaErr.Member, "features")

	_, err = DecodeFeatureCollection([]byte(`{"type":"Whatever","features":[]}`))
	is.True(errors.As(err, &schemaErr))
}

func TestDecodeFeatureWithCustomFactory(t *testing.T) {
	is := is.New(t)

	f, err := DecodeFeature([]byte(`{"type":"Feature","id":"f1","geometry":null,"properties":{},"style":"dashed"}`),
		WithFeatureFactory(RawRetainingFactory))
	is.NoErr(err)

	is.True(f.Raw() != nil)
	is.Equal(f.Raw()["style"], "dashed")

	// default factory drops the raw object
	f, err = DecodeFeature([]byte(`{"type":"Feature","id":"f1","geometry":null,"properties":{}}`))
	is.NoErr(err)
	is.True(f.Raw() == nil)
}
