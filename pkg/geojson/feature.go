package geojson

import (
	"github.com/openmundi/ogc-feature-proxy/pkg/attributes"
	"github.com/openmundi/ogc-feature-proxy/pkg/geom"
)

// Feature wraps an optional identifier, a property map, an optional
// geometry and an optional explicit bounds. Features are immutable
// after construction.
type Feature struct {
	id         attributes.Identifier
	properties map[string]any
	geometry   geom.Geometry
	bounds     geom.Bounds
	raw        map[string]any
}

// FeatureFactory builds a feature from its decoded parts. The raw
// argument is the decoded JSON object of the feature, so a custom
// factory can read members beyond the standard schema.
type FeatureFactory func(id attributes.Identifier, properties map[string]any, geometry geom.Geometry, bounds geom.Bounds, raw map[string]any) (Feature, error)

// NewFeature is the default feature factory; it ignores the raw object.
// A nil property map becomes an empty one. When bounds is empty and a
// geometry is present, the feature bounds defers lazily to the
// geometry's own bounds.
func NewFeature(id attributes.Identifier, properties map[string]any, geometry geom.Geometry, bounds geom.Bounds) Feature {
	return newFeature(id, properties, geometry, bounds, nil)
}

// NewFeatureWithRaw builds a feature that retains its raw decoded JSON
// object, for layers that re-serve the source representation.
func NewFeatureWithRaw(id attributes.Identifier, properties map[string]any, geometry geom.Geometry, bounds geom.Bounds, raw map[string]any) Feature {
	return newFeature(id, properties, geometry, bounds, raw)
}

// RawRetainingFactory is a FeatureFactory that keeps the raw decoded
// JSON object on every feature it builds.
var RawRetainingFactory FeatureFactory = func(id attributes.Identifier, properties map[string]any, geometry geom.Geometry, bounds geom.Bounds, raw map[string]any) (Feature, error) {
	return NewFeatureWithRaw(id, properties, geometry, bounds, raw), nil
}

func newFeature(id attributes.Identifier, properties map[string]any, geometry geom.Geometry, bounds geom.Bounds, raw map[string]any) Feature {
	if properties == nil {
		properties = map[string]any{}
	}

	if bounds.IsEmpty() && geometry != nil {
		g := geometry
		bounds, _ = geom.NewLazyBounds(func() geom.Bounds { return g.Bounds() })
	}

	return Feature{
		id:         id,
		properties: properties,
		geometry:   geometry,
		bounds:     bounds,
		raw:        raw,
	}
}

// ID returns the feature identifier; it is the zero identifier when the
// feature has none.
func (f Feature) ID() attributes.Identifier { return f.id }

// Properties returns the property map. It is never nil and must be
// treated as read only.
func (f Feature) Properties() map[string]any { return f.properties }

// Geometry returns the feature geometry, or nil when the feature
// carries none.
func (f Feature) Geometry() geom.Geometry { return f.geometry }

// Bounds returns the explicit feature bounds when one was given, and
// otherwise the geometry's bounds. A feature with neither has empty
// bounds.
func (f Feature) Bounds() geom.Bounds { return f.bounds }

// Raw returns the decoded JSON object the feature was built from, when
// it was retained, or nil.
func (f Feature) Raw() map[string]any { return f.raw }

// FeatureCollection is an ordered, index-stable sequence of features
// with an optional aggregate bounds.
type FeatureCollection struct {
	features []Feature
	bounds   geom.Bounds
}

// NewFeatureCollection builds a collection over the given features.
// When bounds is empty the aggregate bounds is derived lazily as the
// union of all member bounds.
func NewFeatureCollection(features []Feature, bounds geom.Bounds) FeatureCollection {
	if bounds.IsEmpty() && len(features) > 0 {
		members := features
		bounds, _ = geom.NewLazyBounds(func() geom.Bounds {
			union := geom.EmptyBounds()
			for _, f := range members {
				union = union.Union(f.Bounds())
			}
			return union
		})
	}

	return FeatureCollection{features: features, bounds: bounds}
}

func (fc FeatureCollection) Len() int { return len(fc.features) }

// At returns the feature at index i, in source order.
func (fc FeatureCollection) At(i int) Feature { return fc.features[i] }

// Features returns the member features in source order; the slice must
// be treated as read only.
func (fc FeatureCollection) Features() []Feature { return fc.features }

// Bounds returns the aggregate bounds, empty for an empty collection.
func (fc FeatureCollection) Bounds() geom.Bounds { return fc.bounds }

// IntersectByBounds returns a new collection holding, in source order,
// every feature whose bounds intersects the query bounds on the x and y
// axes. The result's bounds is recomputed over the retained features;
// the source collection is left untouched.
func (fc FeatureCollection) IntersectByBounds(query geom.Bounds) FeatureCollection {
	kept := make([]Feature, 0, len(fc.features))
	for _, f := range fc.features {
		if f.Bounds().Intersects2D(query) {
			kept = append(kept, f)
		}
	}
	return NewFeatureCollection(kept, geom.EmptyBounds())
}
