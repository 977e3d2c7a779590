// Package geojson decodes RFC 7946 GeoJSON into the geometry and
// feature model in pkg/geom. Only decoding is provided; callers that
// need to re-serve source documents retain the raw decoded objects via
// a custom FeatureFactory.
package geojson

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/openmundi/ogc-feature-proxy/pkg/attributes"
	"github.com/openmundi/ogc-feature-proxy/pkg/geom"
)

type decodeOptions struct {
	factory FeatureFactory
}

// DecodeOption customizes feature decoding.
type DecodeOption func(*decodeOptions)

// WithFeatureFactory replaces the default feature factory with a custom
// one, which also receives the raw decoded JSON object per feature.
func WithFeatureFactory(factory FeatureFactory) DecodeOption {
	return func(o *decodeOptions) {
		o.factory = factory
	}
}

func newDecodeOptions(opts []DecodeOption) decodeOptions {
	o := decodeOptions{
		factory: func(id attributes.Identifier, properties map[string]any, geometry geom.Geometry, bounds geom.Bounds, _ map[string]any) (Feature, error) {
			return NewFeature(id, properties, geometry, bounds), nil
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DecodeGeometry parses a JSON text holding a single geometry object.
func DecodeGeometry(data []byte) (geom.Geometry, error) {
	v, err := parseValue(data)
	if err != nil {
		return nil, err
	}
	return GeometryFromValue(v)
}

// GeometryFromValue decodes an already-parsed JSON value into a
// geometry, dispatching on its type discriminator.
func GeometryFromValue(v any) (geom.Geometry, error) {
	obj, err := asObject(v, "geometry")
	if err != nil {
		return nil, err
	}
	return geometryFromObject(obj)
}

// DecodeGeometryOfType parses a JSON text and requires the decoded
// geometry to be of the given kind.
func DecodeGeometryOfType(data []byte, want geom.GeometryType) (geom.Geometry, error) {
	v, err := parseValue(data)
	if err != nil {
		return nil, err
	}
	return GeometryOfTypeFromValue(v, want)
}

// GeometryOfTypeFromValue decodes an already-parsed JSON value and
// requires the result to be of the given kind.
func GeometryOfTypeFromValue(v any, want geom.GeometryType) (geom.Geometry, error) {
	g, err := GeometryFromValue(v)
	if err != nil {
		return nil, err
	}
	if g.GeometryType() != want {
		return nil, TypeMismatchError{Expected: string(want), Got: string(g.GeometryType())}
	}
	return g, nil
}

// DecodeFeature parses a JSON text holding a single feature object.
func DecodeFeature(data []byte, opts ...DecodeOption) (Feature, error) {
	v, err := parseValue(data)
	if err != nil {
		return Feature{}, err
	}
	return FeatureFromValue(v, opts...)
}

// FeatureFromValue decodes an already-parsed JSON value into a feature.
func FeatureFromValue(v any, opts ...DecodeOption) (Feature, error) {
	obj, err := asObject(v, "feature")
	if err != nil {
		return Feature{}, err
	}
	return featureFromObject(obj, newDecodeOptions(opts))
}

// DecodeFeatureCollection parses a JSON text holding a feature
// collection. A bare feature object is tolerated and wrapped into a
// one-element collection.
func DecodeFeatureCollection(data []byte, opts ...DecodeOption) (FeatureCollection, error) {
	v, err := parseValue(data)
	if err != nil {
		return FeatureCollection{}, err
	}
	return FeatureCollectionFromValue(v, opts...)
}

// FeatureCollectionFromValue decodes an already-parsed JSON value into
// a feature collection.
func FeatureCollectionFromValue(v any, opts ...DecodeOption) (FeatureCollection, error) {
	obj, err := asObject(v, "feature collection")
	if err != nil {
		return FeatureCollection{}, err
	}

	o := newDecodeOptions(opts)

	typ, err := discriminator(obj)
	if err != nil {
		return FeatureCollection{}, err
	}

	if typ == "Feature" {
		f, err := featureFromObject(obj, o)
		if err != nil {
			return FeatureCollection{}, err
		}
		return NewFeatureCollection([]Feature{f}, geom.EmptyBounds()), nil
	}

	if typ != "FeatureCollection" {
		return FeatureCollection{}, SchemaError{Member: "type", Reason: "must be \"FeatureCollection\", got \"" + typ + "\""}
	}

	rawFeatures, ok := obj["features"]
	if !ok {
		return FeatureCollection{}, SchemaError{Member: "features", Reason: "missing"}
	}
	arr, err := asArray(rawFeatures, "features")
	if err != nil {
		return FeatureCollection{}, err
	}

	features := make([]Feature, 0, len(arr))
	for _, member := range arr {
		memberObj, err := asObject(member, "features")
		if err != nil {
			return FeatureCollection{}, err
		}
		f, err := featureFromObject(memberObj, o)
		if err != nil {
			return FeatureCollection{}, err
		}
		features = append(features, f)
	}

	bounds, err := bboxFromObject(obj)
	if err != nil {
		return FeatureCollection{}, err
	}

	return NewFeatureCollection(features, bounds), nil
}

func parseValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, DecodeError{Reason: "invalid JSON text", Err: err}
	}

	return v, nil
}

func featureFromObject(obj map[string]any, o decodeOptions) (Feature, error) {
	typ, err := discriminator(obj)
	if err != nil {
		return Feature{}, err
	}
	if typ != "Feature" {
		return Feature{}, SchemaError{Member: "type", Reason: "must be \"Feature\", got \"" + typ + "\""}
	}

	id, err := identifierFromValue(obj["id"])
	if err != nil {
		return Feature{}, err
	}

	var geometry geom.Geometry
	if rawGeometry, ok := obj["geometry"]; ok && rawGeometry != nil {
		geometry, err = GeometryFromValue(rawGeometry)
		if err != nil {
			return Feature{}, err
		}
	}

	properties := map[string]any{}
	if rawProperties, ok := obj["properties"]; ok && rawProperties != nil {
		properties, err = asObject(rawProperties, "properties")
		if err != nil {
			return Feature{}, err
		}
	}

	bounds, err := bboxFromObject(obj)
	if err != nil {
		return Feature{}, err
	}

	return o.factory(id, properties, geometry, bounds, obj)
}

// identifierFromValue applies the id parsing rule: absent or null means
// no identifier, an integral number wraps the integer, any other scalar
// wraps its string form.
func identifierFromValue(v any) (attributes.Identifier, error) {
	switch id := v.(type) {
	case nil:
		return attributes.Identifier{}, nil
	case string:
		return attributes.NewStringIdentifier(id), nil
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return attributes.NewIntIdentifier(n), nil
		}
		return attributes.NewStringIdentifier(id.String()), nil
	case float64:
		if n := int64(id); float64(n) == id {
			return attributes.NewIntIdentifier(n), nil
		}
		return attributes.NewStringIdentifier(strconv.FormatFloat(id, 'g', -1, 64)), nil
	case int:
		return attributes.NewIntIdentifier(int64(id)), nil
	case int64:
		return attributes.NewIntIdentifier(id), nil
	case bool:
		return attributes.NewStringIdentifier(strconv.FormatBool(id)), nil
	default:
		return attributes.Identifier{}, SchemaError{Member: "id", Reason: "must be a string or a number"}
	}
}

func bboxFromObject(obj map[string]any) (geom.Bounds, error) {
	rawBBox, ok := obj["bbox"]
	if !ok || rawBBox == nil {
		return geom.EmptyBounds(), nil
	}

	arr, err := asArray(rawBBox, "bbox")
	if err != nil {
		return geom.EmptyBounds(), err
	}

	buf := make([]float64, 0, len(arr))
	for _, member := range arr {
		n, err := asNumber(member, "bbox")
		if err != nil {
			return geom.EmptyBounds(), err
		}
		buf = append(buf, n)
	}

	return geom.BoundsFromBuffer(buf)
}

func geometryFromObject(obj map[string]any) (geom.Geometry, error) {
	typ, err := discriminator(obj)
	if err != nil {
		return nil, UnknownGeometryTypeError{}
	}

	if typ == "GeometryCollection" {
		return geometryCollectionFromObject(obj)
	}

	coords, ok := obj["coordinates"]
	if !ok {
		return nil, SchemaError{Member: "coordinates", Reason: "missing"}
	}

	switch typ {
	case "Point":
		return parsePosition(coords)
	case "LineString":
		return parseLineString(coords)
	case "Polygon":
		return parsePolygon(coords)
	case "MultiPoint":
		points, err := parsePositionArray(coords)
		if err != nil {
			return nil, err
		}
		return geom.NewMultiPoint(points...), nil
	case "MultiLineString":
		arr, err := asArray(coords, "coordinates")
		if err != nil {
			return nil, err
		}
		lines := make([]geom.LineString, 0, len(arr))
		for _, member := range arr {
			line, err := parseLineString(member)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return geom.NewMultiLineString(lines...), nil
	case "MultiPolygon":
		arr, err := asArray(coords, "coordinates")
		if err != nil {
			return nil, err
		}
		polygons := make([]geom.Polygon, 0, len(arr))
		for _, member := range arr {
			polygon, err := parsePolygon(member)
			if err != nil {
				return nil, err
			}
			polygons = append(polygons, polygon)
		}
		return geom.NewMultiPolygon(polygons...), nil
	default:
		return nil, UnknownGeometryTypeError{Type: typ}
	}
}

func geometryCollectionFromObject(obj map[string]any) (geom.Geometry, error) {
	rawMembers, ok := obj["geometries"]
	if !ok {
		return nil, SchemaError{Member: "geometries", Reason: "missing"}
	}

	arr, err := asArray(rawMembers, "geometries")
	if err != nil {
		return nil, err
	}

	members := make([]geom.Geometry, 0, len(arr))
	for _, member := range arr {
		g, err := GeometryFromValue(member)
		if err != nil {
			return nil, err
		}
		members = append(members, g)
	}

	return geom.NewGeometryCollection(members...), nil
}

func parsePosition(v any) (geom.Point, error) {
	arr, err := asArray(v, "coordinates")
	if err != nil {
		return geom.Point{}, err
	}

	ords := make([]float64, 0, len(arr))
	for _, member := range arr {
		n, err := asNumber(member, "coordinates")
		if err != nil {
			return geom.Point{}, err
		}
		ords = append(ords, n)
	}

	return geom.NewPointFromOrdinates(ords)
}

func parsePositionArray(v any) ([]geom.Point, error) {
	arr, err := asArray(v, "coordinates")
	if err != nil {
		return nil, err
	}

	points := make([]geom.Point, 0, len(arr))
	for _, member := range arr {
		p, err := parsePosition(member)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, nil
}

func parseLineString(v any) (geom.LineString, error) {
	points, err := parsePositionArray(v)
	if err != nil {
		return geom.LineString{}, err
	}
	return geom.NewLineString(points...)
}

func parsePolygon(v any) (geom.Polygon, error) {
	arr, err := asArray(v, "coordinates")
	if err != nil {
		return geom.Polygon{}, err
	}

	rings := make([]geom.LineString, 0, len(arr))
	for _, member := range arr {
		ring, err := parseLineString(member)
		if err != nil {
			return geom.Polygon{}, err
		}
		rings = append(rings, ring)
	}

	if len(rings) == 0 {
		return geom.NewPolygon(geom.LineString{})
	}

	return geom.NewPolygon(rings[0], rings[1:]...)
}

func discriminator(obj map[string]any) (string, error) {
	raw, ok := obj["type"]
	if !ok {
		return "", SchemaError{Member: "type", Reason: "missing"}
	}
	typ, ok := raw.(string)
	if !ok {
		return "", SchemaError{Member: "type", Reason: "must be a string"}
	}
	return typ, nil
}

func asObject(v any, member string) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, DecodeError{Reason: member + " must be a JSON object"}
	}
	return obj, nil
}

func asArray(v any, member string) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, DecodeError{Reason: member + " must be a JSON array"}
	}
	return arr, nil
}

// asNumber accepts the number representations produced both by the
// text parser (json.Number) and by callers handing in pre-parsed trees
// (float64 and friends).
func asNumber(v any, member string) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, DecodeError{Reason: member + " must hold numbers", Err: err}
		}
		return f, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, DecodeError{Reason: member + " must hold numbers"}
	}
}
